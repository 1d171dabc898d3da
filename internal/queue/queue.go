package queue

import (
	"context"
	"fmt"

	"github.com/mattjoyce/rotbench/internal/job"
)

// Queue is a bounded FIFO shared by all workers of a pool.
type Queue struct {
	items chan Item
}

// New returns a queue holding at most capacity items.
func New(capacity int) *Queue {
	return &Queue{items: make(chan Item, capacity)}
}

// Put appends an item without blocking. It returns ErrQueueFull when the
// queue has no room left.
func (q *Queue) Put(it Item) error {
	select {
	case q.items <- it:
		return nil
	default:
		return ErrQueueFull
	}
}

// Fill enqueues every job followed by one shutdown item per worker.
func (q *Queue) Fill(jobs []job.Job, workers int) error {
	for i, j := range jobs {
		if err := q.Put(JobItem(j)); err != nil {
			return fmt.Errorf("enqueue job %d of %d: %w", i+1, len(jobs), err)
		}
	}
	for i := 0; i < workers; i++ {
		if err := q.Put(ShutdownItem()); err != nil {
			return fmt.Errorf("enqueue shutdown %d of %d: %w", i+1, workers, err)
		}
	}
	return nil
}

// Get blocks until an item is available or ctx is done. A cancelled context
// always wins over pending items so callers stop picking up new work.
func (q *Queue) Get(ctx context.Context) (Item, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}
	select {
	case <-ctx.Done():
		return Item{}, ctx.Err()
	case it := <-q.items:
		return it, nil
	}
}

// Len reports how many items are waiting.
func (q *Queue) Len() int {
	return len(q.items)
}

// Drain empties the queue and returns the jobs that were never handed out.
// Shutdown items are discarded.
func (q *Queue) Drain() []job.Job {
	var left []job.Job
	for {
		select {
		case it := <-q.items:
			if it.Kind == KindJob {
				left = append(left, it.Job)
			}
		default:
			return left
		}
	}
}
