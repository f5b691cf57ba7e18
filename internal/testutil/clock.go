package testutil

import (
	"sync"
	"time"
)

// Epoch is the default start instant for SteppingClock.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// SteppingClock is a wall clock for tests that advances by a fixed step on
// every reading.
//
// The first call to Now returns the start instant; each later call returns
// the previous reading plus step. Two runs of the same scenario therefore
// stamp identical timestamps on guides and history entries.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SteppingClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	reads int64
}

// NewSteppingClock creates a clock starting at Epoch that advances one
// second per reading.
func NewSteppingClock() *SteppingClock {
	return NewSteppingClockAt(Epoch, time.Second)
}

// NewSteppingClockAt creates a clock with an explicit start and step.
// A zero step freezes the clock.
func NewSteppingClockAt(start time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{start: start, step: step}
}

// Now returns the next instant.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.reads) * c.step)
	c.reads++
	return t
}

// Reads returns how many times Now has been called.
func (c *SteppingClock) Reads() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Reset rewinds the clock so the next call to Now returns the start instant.
func (c *SteppingClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads = 0
}
