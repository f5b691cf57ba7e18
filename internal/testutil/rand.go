package testutil

import (
	"fmt"
	"sync"
)

// ScriptedRand is a random source that replays a fixed script of floats in
// [0, 1).
//
// IntN consumes the next scripted float f and returns int(f*n), so a test
// scripts every draw the same way regardless of which method consumes it.
//
// Panics when the script is exhausted: a test that draws more than it
// planned for should fail loudly. Use Loop to cycle instead.
type ScriptedRand struct {
	mu     sync.Mutex
	script []float64
	idx    int
	loop   bool
}

// NewScriptedRand creates a source that returns vals in order.
func NewScriptedRand(vals ...float64) *ScriptedRand {
	for _, v := range vals {
		if v < 0 || v >= 1 {
			panic(fmt.Sprintf("ScriptedRand: %v outside [0, 1)", v))
		}
	}
	return &ScriptedRand{script: vals}
}

// Loop makes the source restart the script once exhausted.
func (r *ScriptedRand) Loop() *ScriptedRand {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loop = true
	return r
}

// Float64 returns the next scripted value.
func (r *ScriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.idx >= len(r.script) {
		if !r.loop || len(r.script) == 0 {
			panic(fmt.Sprintf("ScriptedRand: all %d values consumed", len(r.script)))
		}
		r.idx = 0
	}
	v := r.script[r.idx]
	r.idx++
	return v
}

// IntN returns int(next*n), in [0, n).
func (r *ScriptedRand) IntN(n int) int {
	if n <= 0 {
		panic("ScriptedRand: IntN with non-positive n")
	}
	return int(r.Float64() * float64(n))
}

// Consumed returns how many values have been drawn since the last wrap.
func (r *ScriptedRand) Consumed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idx
}
