package ident

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_Format(t *testing.T) {
	id := UUIDv7Generator{}.NewID()
	assert.Len(t, id, 36)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_Unique(t *testing.T) {
	gen := UUIDv7Generator{}
	seen := make(map[string]bool)
	for range 1000 {
		id := gen.NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestUUIDv7Generator_Sortable(t *testing.T) {
	gen := UUIDv7Generator{}
	prev := gen.NewID()
	for range 100 {
		next := gen.NewID()
		assert.LessOrEqual(t, prev[:13], next[:13], "timestamp prefix must not decrease")
		prev = next
	}
}

func TestFixedGenerator_Sequence(t *testing.T) {
	gen := NewFixedGenerator("a", "b", "c")
	assert.Equal(t, "a", gen.NewID())
	assert.Equal(t, "b", gen.NewID())
	assert.Equal(t, "c", gen.NewID())
}

func TestFixedGenerator_PanicsWhenExhausted(t *testing.T) {
	gen := NewFixedGenerator("only")
	gen.NewID()
	assert.Panics(t, func() { gen.NewID() })
}

func TestFixedGenerator_Concurrent(t *testing.T) {
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = string(rune('A' + i))
	}
	gen := NewFixedGenerator(ids...)

	var mu sync.Mutex
	got := make(map[string]bool)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.NewID()
			mu.Lock()
			got[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, got, 50)
}

func TestFunc(t *testing.T) {
	var g Generator = Func(func() string { return "fixed" })
	assert.Equal(t, "fixed", g.NewID())
}
