package engine

import (
	"sync/atomic"
	"time"
)

// Clock supplies wall timestamps for guide bookkeeping and history entries.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Sequence is a monotonic logical counter used to order history entries.
//
// Thread-safety: Sequence is safe for concurrent use (atomic operations).
type Sequence struct {
	seq atomic.Int64
}

// NewSequence creates a sequence starting at 0.
func NewSequence() *Sequence {
	return &Sequence{}
}

// NewSequenceAt creates a sequence starting at a specific number. Used to
// continue numbering for a resumed execution state.
func NewSequenceAt(start int64) *Sequence {
	s := &Sequence{}
	s.seq.Store(start)
	return s
}

// Next returns the next sequence number and increments the counter.
func (s *Sequence) Next() int64 {
	return s.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (s *Sequence) Current() int64 {
	return s.seq.Load()
}
