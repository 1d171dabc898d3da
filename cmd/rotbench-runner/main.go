package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/mattjoyce/rotbench/internal/config"
	"github.com/mattjoyce/rotbench/internal/dispatch"
	"github.com/mattjoyce/rotbench/internal/doctor"
	"github.com/mattjoyce/rotbench/internal/job"
	"github.com/mattjoyce/rotbench/internal/lock"
	"github.com/mattjoyce/rotbench/internal/log"
	"github.com/mattjoyce/rotbench/internal/tui"
	"github.com/mattjoyce/rotbench/internal/workspace"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprint(fs.Output(), `rotbench-runner - run the LabelRotation solver over a seed list

Usage:
  rotbench-runner [flags] <seed-file>
  rotbench-runner -check [-json] [-config <path>]

The seed file holds one integer seed per line. Every seed is run against
every configured map and K value on a fixed pool of workers.

Flags:
`)
	fs.PrintDefaults()
}

func run(args []string) int {
	fs := flag.NewFlagSet("rotbench-runner", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Path to a YAML configuration file (defaults are built in)")
	logLevel := fs.String("log-level", "", "Override log level (debug, info, warn, error)")
	check := fs.Bool("check", false, "Run preflight checks against the configuration and exit")
	jsonOut := fs.Bool("json", false, "With -check, print the report as JSON")
	showVersion := fs.Bool("version", false, "Print version and exit")
	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *showVersion {
		fmt.Printf("rotbench-runner version %s\n", version)
		return 0
	}
	if *check {
		return runCheck(*configPath, *jsonOut)
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Expected exactly one seed file, got %d arguments\n\n", fs.NArg())
		printUsage(fs)
		return 2
	}
	seedPath := fs.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	log.Setup(cfg.LogLevel)
	runID := uuid.NewString()
	logger := log.WithRun(runID).With("component", "main")

	fingerprint, err := config.Fingerprint(cfg)
	if err != nil {
		logger.Error("failed to fingerprint config", "error", err)
		return 1
	}
	logger.Info("rotbench-runner starting", "version", version, "config", *configPath, "config_blake3", fingerprint)

	// Preflight findings never stop a run; affected jobs fail on their own.
	preflight := doctor.New(cfg).Validate()
	for _, issue := range preflight.Errors {
		logger.Warn("preflight error", "category", issue.Category, "field", issue.Field, "message", issue.Message)
	}
	for _, issue := range preflight.Warnings {
		logger.Debug("preflight warning", "category", issue.Category, "field", issue.Field, "message", issue.Message)
	}

	seeds, err := job.LoadSeeds(seedPath)
	if err != nil {
		logger.Error("failed to read seeds", "path", seedPath, "error", err)
		return 1
	}
	seedHash, err := config.ComputeBlake3Hash(seedPath)
	if err != nil {
		logger.Error("failed to hash seed file", "path", seedPath, "error", err)
		return 1
	}
	logger.Info("seeds loaded", "path", seedPath, "count", len(seeds), "seeds_blake3", seedHash)

	pidLockPath := cfg.LockFile()
	pidLock, err := lock.AcquirePIDLock(pidLockPath)
	if err != nil {
		logger.Error("failed to acquire PID lock (another runner may be using these output directories)", "path", pidLockPath, "error", err)
		return 1
	}
	defer pidLock.Release()
	logger.Info("acquired PID lock", "path", pidLockPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	layout, err := workspace.NewLayout(cfg.Output.CSVDir, cfg.Output.GraphDir, cfg.Output.IntervalDir, cfg.Output.ErrorDir)
	if err != nil {
		logger.Error("invalid output layout", "error", err)
		return 1
	}
	if err := layout.Prepare(ctx); err != nil {
		logger.Error("failed to create output directories", "error", err)
		return 1
	}

	maps := make([]job.MapPair, 0, len(cfg.Maps))
	for _, m := range cfg.Maps {
		maps = append(maps, job.MapPair{Map: m.Map, PMap: m.PMap})
	}
	jobs := job.Plan(seeds, maps, cfg.KValues)
	logger.Info("jobs planned", "jobs", len(jobs), "maps", len(maps), "k_values", cfg.KValues)

	pool, err := dispatch.New(dispatch.Options{
		RunID:       runID,
		Binary:      cfg.Binary,
		Prefix:      cfg.Prefix,
		ILPThreads:  cfg.ILPThreads,
		Iterations:  cfg.Iterations,
		Parallelism: cfg.Parallelism,
		Layout:      layout,
		Executor:    dispatch.ExecExecutor{},
		Logger:      log.WithComponent("dispatch"),
	})
	if err != nil {
		logger.Error("failed to create worker pool", "error", err)
		return 1
	}

	summary, err := pool.Run(ctx, jobs)
	if err != nil {
		logger.Error("dispatch failed", "error", err)
		return 1
	}

	fmt.Fprintln(os.Stderr, tui.RenderRun(summary, tui.NewDefaultTheme()))

	if summary.Skipped > 0 {
		logger.Warn("run interrupted before all jobs started", "skipped", summary.Skipped)
		return 1
	}
	logger.Info("rotbench-runner stopped")
	return 0
}

func runCheck(configPath string, jsonOut bool) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	result := doctor.New(cfg).Validate()
	if jsonOut {
		out, err := doctor.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to format result: %v\n", err)
			return 1
		}
		fmt.Println(out)
	} else {
		fmt.Print(doctor.FormatHuman(result))
	}

	if !result.Valid {
		return 1
	}
	return 0
}
