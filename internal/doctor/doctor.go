// Package doctor runs preflight checks on a runner configuration.
//
// None of the findings stop a run: a missing solver binary or map file only
// turns the affected jobs into failures. The checks exist so that a long
// batch is not started against a setup that cannot work.
package doctor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mattjoyce/rotbench/internal/config"
	"github.com/mattjoyce/rotbench/internal/lock"
)

// Result holds the outcome of a preflight run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Doctor checks a loaded configuration against the local machine.
type Doctor struct {
	cfg     *config.Config
	cpus    int
	checkFS func(path string) error
}

// New creates a Doctor for cfg.
func New(cfg *config.Config) *Doctor {
	return &Doctor{cfg: cfg, cpus: runtime.NumCPU(), checkFS: lock.CheckLocalFilesystem}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validateBinary(r)
	d.validateMaps(r)
	d.validateOutputDirs(r)
	d.warnNetworkLock(r)
	d.warnOversubscribed(r)
	d.warnUnusualK(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

// validateBinary checks that the solver exists and is executable.
func (d *Doctor) validateBinary(r *Result) {
	info, err := os.Stat(d.cfg.Binary)
	switch {
	case err != nil:
		d.addError(r, "binary", "binary", fmt.Sprintf("cannot stat %s: %v", d.cfg.Binary, err))
	case info.IsDir():
		d.addError(r, "binary", "binary", fmt.Sprintf("%s is a directory", d.cfg.Binary))
	case info.Mode().Perm()&0o111 == 0:
		d.addError(r, "binary", "binary", fmt.Sprintf("%s is not executable", d.cfg.Binary))
	}
}

// validateMaps checks that every map and preprocessed map is readable.
func (d *Doctor) validateMaps(r *Result) {
	for i, mp := range d.cfg.Maps {
		for _, f := range []struct{ field, path string }{
			{"map", mp.Map},
			{"pmap", mp.PMap},
		} {
			field := fmt.Sprintf("maps[%d].%s", i, f.field)
			info, err := os.Stat(f.path)
			if err != nil {
				d.addError(r, "maps", field, fmt.Sprintf("cannot stat %s: %v", f.path, err))
				continue
			}
			if info.IsDir() {
				d.addError(r, "maps", field, fmt.Sprintf("%s is a directory", f.path))
			}
		}
	}
}

// validateOutputDirs checks that each output directory exists as a
// directory or can be created under its nearest existing ancestor.
func (d *Doctor) validateOutputDirs(r *Result) {
	dirs := []struct{ field, path string }{
		{"output.csv_dir", d.cfg.Output.CSVDir},
		{"output.graph_dir", d.cfg.Output.GraphDir},
		{"output.interval_dir", d.cfg.Output.IntervalDir},
		{"output.error_dir", d.cfg.Output.ErrorDir},
	}
	for _, dir := range dirs {
		info, err := os.Stat(dir.path)
		if err == nil {
			if !info.IsDir() {
				d.addError(r, "output", dir.field, fmt.Sprintf("%s exists and is not a directory", dir.path))
			}
			continue
		}
		if !os.IsNotExist(err) {
			d.addError(r, "output", dir.field, fmt.Sprintf("cannot stat %s: %v", dir.path, err))
			continue
		}
		ancestor := existingAncestor(dir.path)
		if ancestor == "" {
			d.addError(r, "output", dir.field, fmt.Sprintf("no existing parent for %s", dir.path))
			continue
		}
		info, err = os.Stat(ancestor)
		if err != nil || !info.IsDir() {
			d.addError(r, "output", dir.field,
				fmt.Sprintf("%s cannot be created: %s is not a directory", dir.path, ancestor))
			continue
		}
		d.addWarning(r, "output", dir.field, fmt.Sprintf("%s will be created", dir.path))
	}
}

// warnNetworkLock flags a lock file that cannot keep runners on other
// hosts out of the same output tree.
func (d *Doctor) warnNetworkLock(r *Result) {
	if err := d.checkFS(d.cfg.LockFile()); err != nil {
		d.addWarning(r, "lock", "lock_path", err.Error())
	}
}

// warnOversubscribed flags configurations that ask for more solver threads
// than the machine has.
func (d *Doctor) warnOversubscribed(r *Result) {
	want := d.cfg.Parallelism * d.cfg.ILPThreads
	if want > d.cpus {
		d.addWarning(r, "parallelism", "parallelism",
			fmt.Sprintf("%d workers x %d ILP threads exceeds %d CPUs; timings will be skewed",
				d.cfg.Parallelism, d.cfg.ILPThreads, d.cpus))
	}
}

// warnUnusualK flags K values other than positive integers and -1.
func (d *Doctor) warnUnusualK(r *Result) {
	for i, k := range d.cfg.KValues {
		if k == 0 || k < -1 {
			d.addWarning(r, "k_values", fmt.Sprintf("k_values[%d]", i),
				fmt.Sprintf("K=%d is neither positive nor -1 (unbounded)", k))
		}
	}
}

func existingAncestor(path string) string {
	dir := filepath.Clean(path)
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		if _, err := os.Stat(parent); err == nil {
			return parent
		}
		dir = parent
	}
}

// FormatHuman returns a human-readable report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Preflight passed.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		b.WriteString("Preflight passed")
		fmt.Fprintf(&b, " (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Preflight failed (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
