// Package ident generates the opaque identifiers carried by items,
// modifiers, sockets, guides and steps.
package ident

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator produces unique opaque ids.
type Generator interface {
	NewID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids sort by
// creation time. Handy when reading a guide's step history.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Default is the production generator.
var Default Generator = UUIDv7Generator{}

// FixedGenerator returns predetermined ids for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
//	gen := NewFixedGenerator("item-1", "mod-1")
//	gen.NewID() // "item-1"
//	gen.NewID() // "mod-1"
//	gen.NewID() // panic: all ids exhausted
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// NewID returns the next predetermined id.
//
// Panics once every id has been consumed. A test that creates more entities
// than it planned for should fail loudly.
func (g *FixedGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic(fmt.Sprintf("FixedGenerator: all %d ids exhausted", len(g.ids)))
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Func adapts a plain function to Generator.
type Func func() string

// NewID calls f.
func (f Func) NewID() string { return f() }
