// Package workspace resolves where a job's artifacts and error logs live on disk.
//
// The external solver writes three artifacts per job (result CSV, graph,
// interval CSV); the runner itself only writes the error log of a failed job.
// Every path is derived from the job's base name so no two jobs share a file.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Paths are the per-job files handed to the solver plus our error log.
type Paths struct {
	ResultCSV   string
	Graph       string
	IntervalCSV string
	ErrorLog    string
}

// Layout maps job names onto the configured output directories.
type Layout struct {
	CSVDir      string
	GraphDir    string
	IntervalDir string
	ErrorDir    string
}

// NewLayout cleans and validates the four output directories.
func NewLayout(csvDir, graphDir, intervalDir, errorDir string) (*Layout, error) {
	l := &Layout{}
	for _, d := range []struct {
		name string
		in   string
		out  *string
	}{
		{"csv", csvDir, &l.CSVDir},
		{"graph", graphDir, &l.GraphDir},
		{"interval", intervalDir, &l.IntervalDir},
		{"error", errorDir, &l.ErrorDir},
	} {
		trimmed := strings.TrimSpace(d.in)
		if trimmed == "" {
			return nil, fmt.Errorf("%s output directory is empty", d.name)
		}
		*d.out = filepath.Clean(trimmed)
	}
	return l, nil
}

// Prepare creates every output directory.
func (l *Layout) Prepare(ctx context.Context) error {
	for _, dir := range []string{l.CSVDir, l.GraphDir, l.IntervalDir, l.ErrorDir} {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %q: %w", dir, err)
		}
	}
	return nil
}

// Paths resolves the files for the job called name.
func (l *Layout) Paths(name string) (Paths, error) {
	if err := validateName(name); err != nil {
		return Paths{}, err
	}
	return Paths{
		ResultCSV:   filepath.Join(l.CSVDir, name) + ".csv",
		Graph:       filepath.Join(l.GraphDir, name) + ".graphml",
		IntervalCSV: filepath.Join(l.IntervalDir, name) + ".csv",
		ErrorLog:    filepath.Join(l.ErrorDir, name+"-stdout.txt"),
	}, nil
}

// WriteErrorLog persists the captured output of a failed job, replacing any
// log left by an earlier run of the same job.
func (l *Layout) WriteErrorLog(name string, output []byte) (string, error) {
	p, err := l.Paths(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(p.ErrorLog, output, 0o644); err != nil {
		return "", fmt.Errorf("write error log for %q: %w", name, err)
	}
	return p.ErrorLog, nil
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("job name is empty")
	}
	if trimmed != name {
		return fmt.Errorf("job name %q has surrounding whitespace", name)
	}
	if trimmed == "." || trimmed == ".." {
		return fmt.Errorf("job name %q is invalid", name)
	}
	if strings.Contains(trimmed, "/") || strings.Contains(trimmed, `\`) {
		return fmt.Errorf("job name %q must not contain path separators", name)
	}
	if filepath.Clean(trimmed) != trimmed {
		return fmt.Errorf("job name %q is invalid", name)
	}
	return nil
}
