package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craftforge/internal/guide"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testGuide(id string, created time.Time) guide.CraftGuide {
	return guide.CraftGuide{
		ID:        id,
		Title:     "guide " + id,
		CreatedAt: created,
		UpdatedAt: created,
		Steps:     []guide.Step{guide.Linear("s1", "chaos_orb", "")},
		Tags:      []string{"league"},
	}
}

func TestMemory_PutGet(t *testing.T) {
	m := NewMemory()
	m.Put(testGuide("g1", t0))

	got, ok := m.Get("g1")
	require.True(t, ok)
	assert.Equal(t, "guide g1", got.Title)
	assert.Equal(t, 1, m.Len())

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestMemory_Isolation(t *testing.T) {
	m := NewMemory()
	g := testGuide("g1", t0)
	m.Put(g)

	// Edits to the source or to a returned copy never reach the store.
	g.Steps[0].ActionID = "changed"
	got, _ := m.Get("g1")
	got.Tags[0] = "edited"

	again, _ := m.Get("g1")
	assert.Equal(t, "chaos_orb", again.Steps[0].ActionID)
	assert.Equal(t, []string{"league"}, again.Tags)
}

func TestMemory_PutReplaces(t *testing.T) {
	m := NewMemory()
	m.Put(testGuide("g1", t0))
	g := testGuide("g1", t0)
	g.Title = "renamed"
	m.Put(g)

	got, _ := m.Get("g1")
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory()
	m.Put(testGuide("g1", t0))

	assert.True(t, m.Delete("g1"))
	assert.False(t, m.Delete("g1"))
	assert.Equal(t, 0, m.Len())
}

func TestMemory_ListOrdering(t *testing.T) {
	m := NewMemory()
	m.Put(testGuide("b", t0.Add(time.Second)))
	m.Put(testGuide("c", t0))
	m.Put(testGuide("a", t0.Add(time.Second)))

	var ids []string
	for _, g := range m.List() {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestMemory_ListEmpty(t *testing.T) {
	list := NewMemory().List()
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
