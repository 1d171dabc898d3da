package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattjoyce/rotbench/internal/job"
	"github.com/mattjoyce/rotbench/internal/log"
	"github.com/mattjoyce/rotbench/internal/queue"
	"github.com/mattjoyce/rotbench/internal/stats"
	"github.com/mattjoyce/rotbench/internal/workspace"
)

// Options configures a Pool.
type Options struct {
	RunID       string
	Binary      string
	Prefix      string
	ILPThreads  int
	Iterations  int
	Parallelism int
	Layout      *workspace.Layout
	Executor    Executor
	Logger      *slog.Logger
}

// Summary describes a finished Run.
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Mean      time.Duration
	Elapsed   time.Duration
}

// Pool executes jobs on a fixed number of workers.
type Pool struct {
	opts    Options
	logger  *slog.Logger
	timings stats.Timings

	succeeded atomic.Int64
	failed    atomic.Int64
}

// New validates opts and returns a Pool.
func New(opts Options) (*Pool, error) {
	if opts.Binary == "" {
		return nil, fmt.Errorf("binary is empty")
	}
	if opts.Parallelism < 1 {
		return nil, fmt.Errorf("parallelism must be at least 1 (got %d)", opts.Parallelism)
	}
	if opts.ILPThreads < 1 {
		opts.ILPThreads = 1
	}
	if opts.Iterations < 1 {
		opts.Iterations = 1
	}
	if opts.Layout == nil {
		return nil, fmt.Errorf("output layout is nil")
	}
	if opts.Executor == nil {
		opts.Executor = ExecExecutor{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithComponent("dispatch")
	}
	if opts.RunID != "" {
		logger = logger.With("run_id", opts.RunID)
	}

	return &Pool{opts: opts, logger: logger}, nil
}

// Timings exposes the per-job durations recorded so far.
func (p *Pool) Timings() []time.Duration {
	return p.timings.Samples()
}

// Run executes every job and returns once all workers have exited.
// Individual job failures never make Run return an error.
func (p *Pool) Run(ctx context.Context, jobs []job.Job) (Summary, error) {
	workers := p.opts.Parallelism

	q := queue.New(len(jobs) + workers)
	if err := q.Fill(jobs, workers); err != nil {
		return Summary{}, fmt.Errorf("fill queue: %w", err)
	}

	p.logger.Info("dispatch started", "jobs", len(jobs), "workers", workers)
	start := time.Now()

	var wg sync.WaitGroup
	for id := 0; id < workers; id++ {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, id, q)
		}()
	}
	wg.Wait()

	skipped := len(q.Drain())
	snap := p.timings.Snapshot()
	summary := Summary{
		RunID:     p.opts.RunID,
		Total:     len(jobs),
		Succeeded: int(p.succeeded.Load()),
		Failed:    int(p.failed.Load()),
		Skipped:   skipped,
		Mean:      snap.Mean,
		Elapsed:   time.Since(start),
	}

	p.logger.Info("dispatch finished",
		"jobs", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"mean_s", summary.Mean.Seconds(),
		"elapsed_s", summary.Elapsed.Seconds(),
	)
	return summary, nil
}

// worker drains the queue until it receives its shutdown item.
func (p *Pool) worker(ctx context.Context, id int, q *queue.Queue) {
	logger := p.logger.With("worker", id)
	for {
		it, err := q.Get(ctx)
		if err != nil {
			logger.Warn("worker stopping before queue drained", "error", err)
			return
		}
		if it.Kind == queue.KindShutdown {
			logger.Debug("worker shutdown")
			return
		}
		p.runJob(ctx, logger, it.Job)
	}
}

// runJob invokes the solver for j and records the outcome.
func (p *Pool) runJob(ctx context.Context, logger *slog.Logger, j job.Job) {
	name := j.Filename(p.opts.Prefix)
	jobLogger := logger.With("job", name)

	paths, err := p.opts.Layout.Paths(name)
	if err != nil {
		p.failed.Add(1)
		jobLogger.Error("job failed", "error", err)
		return
	}

	args := Invocation(j, paths, p.opts.ILPThreads, p.opts.Iterations)
	jobLogger.Info("starting job", "seed", j.Seed, "k", j.K, "map", j.Map)
	jobLogger.Debug("invoking solver", "binary", p.opts.Binary, "args", args)

	start := time.Now()
	output, runErr := p.opts.Executor.Run(ctx, p.opts.Binary, args)
	elapsed := time.Since(start)

	jobLogger.Info("job finished", "elapsed_s", elapsed.Seconds())
	if snap := p.timings.Record(elapsed); snap.Due() {
		p.logger.Info("running average", "completed", snap.Count, "mean_s", snap.Mean.Seconds())
	}

	if runErr == nil {
		p.succeeded.Add(1)
		return
	}

	p.failed.Add(1)
	logPath, err := p.opts.Layout.WriteErrorLog(name, output)
	if err != nil {
		jobLogger.Error("job failed", "error", runErr, "error_log_error", err)
		return
	}
	jobLogger.Error("job failed", "error", runErr, "error_log", logPath)
}
