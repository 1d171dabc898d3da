// Package dispatch runs the external solver once per job on a fixed pool of
// workers.
//
// The pool fills a queue with every job followed by one shutdown item per
// worker, starts the workers and waits for all of them to exit. Each worker
// takes one item at a time, invokes the solver and blocks until it exits.
//
// Key features:
//   - Fixed worker count, one shared FIFO queue
//   - Spawn-per-job subprocess execution, stdout and stderr captured together
//   - Wall-clock timing per job, running mean reported every 10 completions
//   - Per-job error log (<name>-stdout.txt) for every failed invocation
//
// Error handling:
//   - Binary not found, start failure and non-zero exit are one failure kind
//   - Failures are logged and recorded; they never stop the pool
//   - Jobs are never retried
//
// Cancellation:
//   - A running invocation is never killed and has no timeout
//   - Once the context is cancelled, workers stop taking new jobs; jobs left
//     in the queue are reported as skipped
package dispatch
