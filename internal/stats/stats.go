// Package stats accumulates per-job wall-clock timings across workers.
package stats

import (
	"sync"
	"time"
)

// ReportEvery is the completion interval at which the running mean is reported.
const ReportEvery = 10

// Snapshot is the state of a Timings right after one Record call.
type Snapshot struct {
	Count int
	Total time.Duration
	Mean  time.Duration
}

// Due reports whether this snapshot lands on a reporting boundary.
func (s Snapshot) Due() bool {
	return s.Count > 0 && s.Count%ReportEvery == 0
}

// Timings is an append-only list of durations safe for concurrent use.
type Timings struct {
	mu      sync.Mutex
	samples []time.Duration
	total   time.Duration
}

// Record appends d and returns the snapshot that includes it.
func (t *Timings) Record(d time.Duration) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples = append(t.samples, d)
	t.total += d
	return t.snapshotLocked()
}

// Snapshot returns the current count and mean.
func (t *Timings) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Samples returns a copy of every recorded duration in append order.
func (t *Timings) Samples() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]time.Duration, len(t.samples))
	copy(out, t.samples)
	return out
}

func (t *Timings) snapshotLocked() Snapshot {
	s := Snapshot{Count: len(t.samples), Total: t.total}
	if s.Count > 0 {
		s.Mean = t.total / time.Duration(s.Count)
	}
	return s
}
