package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/mattjoyce/rotbench/internal/job"
	"github.com/mattjoyce/rotbench/internal/workspace"
)

//go:generate mockgen -destination=mocks/mock_executor.go -package=mocks github.com/mattjoyce/rotbench/internal/dispatch Executor

// Executor runs a program to completion and returns its combined output.
// A nil error means the program exited with status 0.
type Executor interface {
	Run(ctx context.Context, name string, args []string) ([]byte, error)
}

// ExecExecutor runs programs with os/exec.
type ExecExecutor struct{}

var _ Executor = ExecExecutor{}

// Run starts name and waits for it. A job handed to a worker always runs to
// completion, so ctx is ignored.
func (ExecExecutor) Run(_ context.Context, name string, args []string) ([]byte, error) {
	// Don't use CommandContext - in-flight runs must not be killed
	cmd := exec.Command(name, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err == nil {
		return out.Bytes(), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out.Bytes(), exitErr
	}

	// Start failures leave no output; keep the reason for the error log.
	if out.Len() == 0 {
		out.WriteString(err.Error())
		out.WriteByte('\n')
	}
	return out.Bytes(), fmt.Errorf("run %s: %w", name, err)
}

// Invocation builds the solver argv for one job.
func Invocation(j job.Job, p workspace.Paths, ilpThreads, iterations int) []string {
	return []string{
		"--cli",
		"-f",
		"-s", strconv.FormatInt(j.Seed, 10),
		"-m", j.Map,
		"-p", j.PMap,
		"-t", strconv.Itoa(ilpThreads),
		"-o", p.ResultCSV,
		"-g", p.Graph,
		"-v", p.IntervalCSV,
		"-i", strconv.Itoa(iterations),
		"-k", strconv.Itoa(j.K),
	}
}
