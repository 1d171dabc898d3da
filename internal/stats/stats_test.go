package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimingsMean(t *testing.T) {
	var tm Timings
	assert.Equal(t, Snapshot{}, tm.Snapshot())

	tm.Record(1 * time.Second)
	s := tm.Record(3 * time.Second)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 4*time.Second, s.Total)
	assert.Equal(t, 2*time.Second, s.Mean)
	assert.Equal(t, []time.Duration{time.Second, 3 * time.Second}, tm.Samples())
}

func TestSnapshotDue(t *testing.T) {
	var tm Timings
	var due []int
	for i := 1; i <= 25; i++ {
		if s := tm.Record(time.Millisecond); s.Due() {
			due = append(due, s.Count)
		}
	}
	assert.Equal(t, []int{10, 20}, due)
}

func TestTimingsConcurrentRecord(t *testing.T) {
	const (
		workers = 8
		each    = 250
	)
	var (
		tm   Timings
		wg   sync.WaitGroup
		mu   sync.Mutex
		dues int
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				if tm.Record(time.Microsecond).Due() {
					mu.Lock()
					dues++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	s := tm.Snapshot()
	assert.Equal(t, workers*each, s.Count)
	assert.Len(t, tm.Samples(), workers*each)
	// Every boundary is observed by exactly one caller.
	assert.Equal(t, workers*each/ReportEvery, dues)
}
