package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/rotbench/internal/dispatch/mocks"
	"github.com/mattjoyce/rotbench/internal/job"
	"github.com/mattjoyce/rotbench/internal/workspace"
)

const testBinary = "/opt/labelrotation/LabelRotation"

// NewTestSlogger creates a *slog.Logger writing JSON lines into a buffer.
func NewTestSlogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), &buf
}

func setupLayout(t *testing.T) *workspace.Layout {
	t.Helper()
	root := t.TempDir()
	l, err := workspace.NewLayout(
		filepath.Join(root, "csvs"),
		filepath.Join(root, "graphs"),
		filepath.Join(root, "intervals"),
		filepath.Join(root, "errors"),
	)
	require.NoError(t, err)
	require.NoError(t, l.Prepare(context.Background()))
	return l
}

func testPlan(n int) []job.Job {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = int64(i + 1)
	}
	return job.Plan(seeds, []job.MapPair{{Map: "/maps/karlsruhe.osm", PMap: "/maps/karlsruhe.pycgr"}}, []int{5, 10, -1})
}

func newTestPool(t *testing.T, exec Executor, layout *workspace.Layout, workers int) (*Pool, *bytes.Buffer) {
	t.Helper()
	logger, buf := NewTestSlogger()
	p, err := New(Options{
		RunID:       "run-test",
		Binary:      testBinary,
		Prefix:      "instance",
		ILPThreads:  1,
		Iterations:  1,
		Parallelism: workers,
		Layout:      layout,
		Executor:    exec,
		Logger:      logger,
	})
	require.NoError(t, err)
	return p, buf
}

func errorLogs(t *testing.T, layout *workspace.Layout) []string {
	t.Helper()
	entries, err := os.ReadDir(layout.ErrorDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestInvocation(t *testing.T) {
	j := job.Job{Map: "/maps/karlsruhe.osm", PMap: "/maps/karlsruhe.pycgr", K: -1, Seed: 1234}
	p := workspace.Paths{
		ResultCSV:   "/out/csvs/x.csv",
		Graph:       "/out/graphs/x.graphml",
		IntervalCSV: "/out/intervals/x.csv",
	}
	assert.Equal(t, []string{
		"--cli", "-f",
		"-s", "1234",
		"-m", "/maps/karlsruhe.osm",
		"-p", "/maps/karlsruhe.pycgr",
		"-t", "4",
		"-o", "/out/csvs/x.csv",
		"-g", "/out/graphs/x.graphml",
		"-v", "/out/intervals/x.csv",
		"-i", "1",
		"-k", "-1",
	}, Invocation(j, p, 4, 1))
}

func TestNewValidatesOptions(t *testing.T) {
	layout := setupLayout(t)
	_, err := New(Options{Parallelism: 1, Layout: layout})
	assert.Error(t, err)
	_, err = New(Options{Binary: "x", Parallelism: 0, Layout: layout})
	assert.Error(t, err)
	_, err = New(Options{Binary: "x", Parallelism: 1})
	assert.Error(t, err)

	p, err := New(Options{Binary: "x", Parallelism: 1, Layout: layout})
	require.NoError(t, err)
	assert.Equal(t, ExecExecutor{}, p.opts.Executor)
	assert.Equal(t, 1, p.opts.ILPThreads)
	assert.Equal(t, 1, p.opts.Iterations)
}

func TestPoolPassesSolverArguments(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	layout := setupLayout(t)

	j := job.Job{Map: "/maps/karlsruhe.osm", PMap: "/maps/karlsruhe.pycgr", K: 10, Seed: 77}
	paths, err := layout.Paths("instance-karlsruhe-seed_77-k10")
	require.NoError(t, err)

	exec.EXPECT().
		Run(gomock.Any(), testBinary, Invocation(j, paths, 1, 1)).
		Return([]byte("ok\n"), nil)

	p, _ := newTestPool(t, exec, layout, 2)
	summary, err := p.Run(context.Background(), []job.Job{j})
	require.NoError(t, err)
	assert.Equal(t, Summary{
		RunID:     "run-test",
		Total:     1,
		Succeeded: 1,
		Mean:      summary.Mean,
		Elapsed:   summary.Elapsed,
	}, summary)
}

func TestPoolAllSucceed(t *testing.T) {
	for _, workers := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			exec := mocks.NewMockExecutor(ctrl)
			layout := setupLayout(t)
			jobs := testPlan(9)

			var (
				mu   sync.Mutex
				seen = make(map[string]int)
			)
			exec.EXPECT().
				Run(gomock.Any(), testBinary, gomock.Any()).
				Times(len(jobs)).
				DoAndReturn(func(_ context.Context, _ string, args []string) ([]byte, error) {
					mu.Lock()
					seen[args[3]+"/"+args[19]]++
					mu.Unlock()
					return []byte("done\n"), nil
				})

			p, _ := newTestPool(t, exec, layout, workers)
			summary, err := p.Run(context.Background(), jobs)
			require.NoError(t, err)

			assert.Equal(t, len(jobs), summary.Total)
			assert.Equal(t, len(jobs), summary.Succeeded)
			assert.Zero(t, summary.Failed)
			assert.Zero(t, summary.Skipped)
			assert.Len(t, p.Timings(), len(jobs))
			assert.Empty(t, errorLogs(t, layout))

			require.Len(t, seen, len(jobs))
			for key, n := range seen {
				assert.Equal(t, 1, n, "job %s ran %d times", key, n)
			}
		})
	}
}

func TestPoolAllFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	layout := setupLayout(t)
	jobs := testPlan(4)

	exec.EXPECT().
		Run(gomock.Any(), testBinary, gomock.Any()).
		Times(len(jobs)).
		DoAndReturn(func(_ context.Context, _ string, args []string) ([]byte, error) {
			return []byte("crash seed=" + args[3] + " k=" + args[19] + "\n"), errors.New("exit status 1")
		})

	p, logBuf := newTestPool(t, exec, layout, 3)
	summary, err := p.Run(context.Background(), jobs)
	require.NoError(t, err)

	assert.Equal(t, len(jobs), summary.Failed)
	assert.Zero(t, summary.Succeeded)
	assert.Len(t, p.Timings(), len(jobs))

	logs := errorLogs(t, layout)
	require.Len(t, logs, len(jobs))
	for _, j := range jobs {
		name := j.Filename("instance")
		body, err := os.ReadFile(filepath.Join(layout.ErrorDir, name+"-stdout.txt"))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("crash seed=%d k=%d\n", j.Seed, j.K), string(body))
	}
	assert.Equal(t, len(jobs), strings.Count(logBuf.String(), `"msg":"job failed"`))
}

func TestPoolReportsRunningAverageEveryTenJobs(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	layout := setupLayout(t)
	jobs := testPlan(8) // 24 jobs

	exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Times(len(jobs)).Return(nil, nil)

	p, logBuf := newTestPool(t, exec, layout, 4)
	_, err := p.Run(context.Background(), jobs)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(logBuf.String(), `"msg":"running average"`))
	assert.Contains(t, logBuf.String(), `"completed":10`)
	assert.Contains(t, logBuf.String(), `"completed":20`)
}

func TestPoolCancelledContextSkipsEverything(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	layout := setupLayout(t)
	jobs := testPlan(2)

	exec.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, _ := newTestPool(t, exec, layout, 2)
	summary, err := p.Run(ctx, jobs)
	require.NoError(t, err)
	assert.Equal(t, len(jobs), summary.Skipped)
	assert.Zero(t, summary.Succeeded+summary.Failed)
}

func TestPoolCancelMidRunLetsInFlightFinish(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	layout := setupLayout(t)
	jobs := testPlan(3) // 9 jobs

	ctx, cancel := context.WithCancel(context.Background())
	exec.EXPECT().
		Run(gomock.Any(), gomock.Any(), gomock.Any()).
		Times(1).
		DoAndReturn(func(context.Context, string, []string) ([]byte, error) {
			cancel()
			return []byte("finished anyway\n"), nil
		})

	p, _ := newTestPool(t, exec, layout, 1)
	summary, err := p.Run(ctx, jobs)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, len(jobs)-1, summary.Skipped)
}

func writeFakeSolver(t *testing.T) string {
	t.Helper()
	// Positional layout follows Invocation: $4 seed, $12 result csv, $20 K.
	script := `#!/bin/sh
seed="$4"
echo "solver seed=$seed k=${20}"
echo "warning: stderr line" 1>&2
if [ $((seed % 2)) -eq 1 ]; then
  exit 3
fi
echo "6,${20},$seed" > "${12}"
exit 0
`
	path := filepath.Join(t.TempDir(), "LabelRotation")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestPoolWithRealProcesses(t *testing.T) {
	layout := setupLayout(t)
	solver := writeFakeSolver(t)
	logger, _ := NewTestSlogger()

	p, err := New(Options{
		RunID:       "run-sh",
		Binary:      solver,
		Prefix:      "instance",
		Parallelism: 2,
		Layout:      layout,
		Logger:      logger,
	})
	require.NoError(t, err)

	jobs := job.Plan([]int64{1, 2, 3, 4}, []job.MapPair{{Map: "/m/berlin.osm", PMap: "/m/berlin.pycgr"}}, []int{5})
	summary, err := p.Run(context.Background(), jobs)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)

	assert.Equal(t, []string{
		"instance-berlin-seed_1-k5-stdout.txt",
		"instance-berlin-seed_3-k5-stdout.txt",
	}, errorLogs(t, layout))

	body, err := os.ReadFile(filepath.Join(layout.ErrorDir, "instance-berlin-seed_3-k5-stdout.txt"))
	require.NoError(t, err)
	assert.Equal(t, "solver seed=3 k=5\nwarning: stderr line\n", string(body))

	for _, seed := range []int{2, 4} {
		out, err := os.ReadFile(filepath.Join(layout.CSVDir, "instance-berlin-seed_"+strconv.Itoa(seed)+"-k5.csv"))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("6,5,%d\n", seed), string(out))
	}
}

func TestExecExecutorMissingBinary(t *testing.T) {
	out, err := ExecExecutor{}.Run(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	require.Error(t, err)
	assert.NotEmpty(t, out)
}

func TestExecExecutorNonZeroExit(t *testing.T) {
	out, err := ExecExecutor{}.Run(context.Background(), "/bin/sh", []string{"-c", "echo out; echo err 1>&2; exit 4"})
	require.Error(t, err)
	assert.Equal(t, "out\nerr\n", string(out))
}

func TestPoolMissingBinaryIsAFailure(t *testing.T) {
	layout := setupLayout(t)
	logger, _ := NewTestSlogger()
	p, err := New(Options{
		Binary:      filepath.Join(t.TempDir(), "does-not-exist"),
		Prefix:      "instance",
		Parallelism: 2,
		Layout:      layout,
		Logger:      logger,
	})
	require.NoError(t, err)

	jobs := testPlan(1)
	summary, err := p.Run(context.Background(), jobs)
	require.NoError(t, err)
	assert.Equal(t, len(jobs), summary.Failed)
	assert.Len(t, errorLogs(t, layout), len(jobs))
}
