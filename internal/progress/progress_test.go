package progress

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecord(t *testing.T) {
	tr := NewTracker()

	tr.Record(true)
	tr.Record(true)
	tr.Record(false)

	snap := tr.Snapshot()
	assert.EqualValues(t, 3, snap.Attempted)
	assert.EqualValues(t, 2, snap.Succeeded)
	assert.EqualValues(t, 1, snap.Failed)
	assert.Equal(t, snap.Attempted, snap.Succeeded+snap.Failed)
}

func TestConcurrentRecord(t *testing.T) {
	tr := NewTracker()

	const workers = 8
	const perWorker = 500

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				tr.Record(i%2 == 0)
			}
		}(w)
	}
	wg.Wait()

	snap := tr.Snapshot()
	assert.EqualValues(t, workers*perWorker, snap.Attempted)
	assert.EqualValues(t, workers*perWorker/2, snap.Succeeded)
	assert.EqualValues(t, workers*perWorker/2, snap.Failed)
}

func TestRateAndETA(t *testing.T) {
	snap := Snapshot{Attempted: 50, Elapsed: 10 * time.Second}

	assert.InDelta(t, 5.0, snap.Rate(), 0.001)
	assert.Equal(t, 10*time.Second, snap.ETA(100))
	assert.Zero(t, snap.ETA(50))
	assert.Zero(t, snap.ETA(10)) // already past the total

	empty := Snapshot{}
	assert.Zero(t, empty.Rate())
	assert.Zero(t, empty.ETA(100))
}
