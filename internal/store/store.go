package store

import (
	"cmp"
	"slices"
	"sync"

	"github.com/roach88/craftforge/internal/guide"
)

// GuideStore is the keyed guide storage the guide manager works against.
type GuideStore interface {
	// Get returns a copy of the guide with the given id.
	Get(id string) (guide.CraftGuide, bool)
	// Put inserts or replaces g under g.ID.
	Put(g guide.CraftGuide)
	// Delete removes the guide with the given id and reports whether it
	// existed.
	Delete(id string) bool
	// List returns copies of every guide, ordered by creation time then id.
	List() []guide.CraftGuide
	// Len returns the number of stored guides.
	Len() int
}

// Memory is a GuideStore backed by a map.
type Memory struct {
	mu     sync.RWMutex
	guides map[string]guide.CraftGuide
}

var _ GuideStore = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{guides: make(map[string]guide.CraftGuide)}
}

func (m *Memory) Get(id string) (guide.CraftGuide, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.guides[id]
	if !ok {
		return guide.CraftGuide{}, false
	}
	return guide.Copy(g), true
}

func (m *Memory) Put(g guide.CraftGuide) {
	cp := guide.Copy(g)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guides[g.ID] = cp
}

func (m *Memory) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.guides[id]; !ok {
		return false
	}
	delete(m.guides, id)
	return true
}

func (m *Memory) List() []guide.CraftGuide {
	m.mu.RLock()
	out := make([]guide.CraftGuide, 0, len(m.guides))
	for _, g := range m.guides {
		out = append(out, guide.Copy(g))
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b guide.CraftGuide) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.guides)
}
