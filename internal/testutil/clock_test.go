package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicClock_Sequence(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())

	for want := int64(1); want <= 4; want++ {
		assert.Equal(t, want, clock.Next())
	}
	assert.Equal(t, int64(4), clock.Current())
}

func TestDeterministicClock_ResetToStart(t *testing.T) {
	tests := []struct {
		name  string
		clock *DeterministicClock
		first int64
	}{
		{"zero", NewDeterministicClock(), 1},
		{"resumed", NewDeterministicClockAt(41), 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.first, tt.clock.Next())
			tt.clock.Next()
			tt.clock.Reset()
			assert.Equal(t, tt.first, tt.clock.Next(), "replay must repeat the sequence")
		})
	}
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock()
	const workers, calls = 50, 100

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				v := clock.Next()
				mu.Lock()
				assert.False(t, seen[v], "duplicate value %d", v)
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*calls)
	assert.Equal(t, int64(workers*calls), clock.Current())
}
