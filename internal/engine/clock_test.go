package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSequence_NewSequence(t *testing.T) {
	s := NewSequence()
	assert.Equal(t, int64(0), s.Current(), "new sequence should start at 0")
}

func TestSequence_NewSequenceAt(t *testing.T) {
	s := NewSequenceAt(100)
	assert.Equal(t, int64(100), s.Current())
	assert.Equal(t, int64(101), s.Next())
}

func TestSequence_Next_Incrementing(t *testing.T) {
	s := NewSequence()

	assert.Equal(t, int64(1), s.Next())
	assert.Equal(t, int64(2), s.Next())
	assert.Equal(t, int64(3), s.Next())
	assert.Equal(t, int64(3), s.Current())
}

func TestSequence_ThreadSafe(t *testing.T) {
	s := NewSequence()
	const goroutines = 50
	const callsPerGoroutine = 100

	var wg sync.WaitGroup
	seqs := make(chan int64, goroutines*callsPerGoroutine)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				seqs <- s.Next()
			}
		}()
	}
	wg.Wait()
	close(seqs)

	seen := make(map[int64]bool)
	for seq := range seqs {
		assert.False(t, seen[seq], "seq %d generated twice", seq)
		seen[seq] = true
	}
	assert.Len(t, seen, goroutines*callsPerGoroutine)
}

func TestSystemClock_UTC(t *testing.T) {
	now := SystemClock{}.Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Minute)
}
