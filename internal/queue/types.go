package queue

import (
	"errors"

	"github.com/mattjoyce/rotbench/internal/job"
)

// Kind tags what a queue Item carries.
type Kind int

const (
	// KindJob carries a job to execute.
	KindJob Kind = iota
	// KindShutdown tells the receiving worker to exit its loop.
	KindShutdown
)

func (k Kind) String() string {
	switch k {
	case KindJob:
		return "job"
	case KindShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Item is one queue entry.
type Item struct {
	Kind Kind
	Job  job.Job
}

// JobItem wraps j for enqueueing.
func JobItem(j job.Job) Item {
	return Item{Kind: KindJob, Job: j}
}

// ShutdownItem is the per-worker stop signal.
func ShutdownItem() Item {
	return Item{Kind: KindShutdown}
}

var ErrQueueFull = errors.New("queue is full")
