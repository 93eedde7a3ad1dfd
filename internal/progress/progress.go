// Package progress provides thread-safe counters for a resolution batch and
// derived throughput / ETA figures for live reporting.
package progress

import (
	"time"

	"go.uber.org/atomic"
)

// Tracker counts attempted, succeeded and failed resolutions for one batch.
// The three counters only ever grow. Counter updates are independent of each
// other: a reader may observe attempted ahead of succeeded+failed while
// tasks are mid-flight, which is fine for progress reporting.
type Tracker struct {
	attempted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	start     time.Time
}

// Snapshot is a point-in-time view of a batch's counters.
type Snapshot struct {
	Attempted int64
	Succeeded int64
	Failed    int64
	Elapsed   time.Duration
}

// NewTracker creates a tracker with the batch clock started.
func NewTracker() *Tracker {
	return &Tracker{start: time.Now()}
}

// Record counts one finished task: attempted always, plus exactly one of
// succeeded or failed.
func (t *Tracker) Record(ok bool) {
	t.attempted.Inc()
	if ok {
		t.succeeded.Inc()
	} else {
		t.failed.Inc()
	}
}

// Snapshot returns the current counter values and elapsed time.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		Attempted: t.attempted.Load(),
		Succeeded: t.succeeded.Load(),
		Failed:    t.failed.Load(),
		Elapsed:   time.Since(t.start),
	}
}

// Rate returns completed tasks per second since the batch started.
func (s Snapshot) Rate() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.Attempted) / secs
}

// ETA estimates the time remaining for a batch of total tasks, based on the
// rate so far. Returns zero when no rate is measurable yet.
func (s Snapshot) ETA(total int) time.Duration {
	rate := s.Rate()
	if rate <= 0 {
		return 0
	}
	remaining := float64(int64(total) - s.Attempted)
	if remaining <= 0 {
		return 0
	}
	return time.Duration(remaining / rate * float64(time.Second))
}
