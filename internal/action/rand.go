package action

import (
	"math/rand/v2"
)

// Rand is the random source threaded through the executor and every
// built-in handler. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	// Float64 returns a number in [0, 1).
	Float64() float64
	// IntN returns a number in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// NewRand returns a reproducible source for seed.
func NewRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// entropy draws from the runtime-seeded global source.
type entropy struct{}

func (entropy) Float64() float64 { return rand.Float64() }
func (entropy) IntN(n int) int   { return rand.IntN(n) }

// Entropy is the unseeded production source.
var Entropy Rand = entropy{}
