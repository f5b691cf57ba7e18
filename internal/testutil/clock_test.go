package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSteppingClock_FirstReadIsStart(t *testing.T) {
	clock := NewSteppingClock()
	assert.Equal(t, Epoch, clock.Now())
	assert.Equal(t, int64(1), clock.Reads())
}

func TestSteppingClock_Advances(t *testing.T) {
	start := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)
	clock := NewSteppingClockAt(start, time.Minute)

	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start.Add(time.Minute), clock.Now())
	assert.Equal(t, start.Add(2*time.Minute), clock.Now())
}

func TestSteppingClock_ZeroStepIsFrozen(t *testing.T) {
	clock := NewSteppingClockAt(Epoch, 0)
	assert.Equal(t, clock.Now(), clock.Now())
}

func TestSteppingClock_Reset(t *testing.T) {
	clock := NewSteppingClock()
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Reads())
	assert.Equal(t, Epoch, clock.Now())
}

func TestSteppingClock_ThreadSafe(t *testing.T) {
	clock := NewSteppingClock()
	const numGoroutines = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	seen := make(chan time.Time, numGoroutines)
	for range numGoroutines {
		go func() {
			defer wg.Done()
			seen <- clock.Now()
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[time.Time]bool)
	for ts := range seen {
		unique[ts] = true
	}
	assert.Len(t, unique, numGoroutines, "every reading must be distinct")
}
