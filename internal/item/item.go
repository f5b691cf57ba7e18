package item

import (
	"maps"
	"slices"

	"github.com/roach88/craftforge/internal/ident"
	"github.com/roach88/craftforge/internal/ir"
)

// New creates an empty normal item of the given base type.
func New(baseType string, ids ident.Generator) Item {
	return Item{
		ID:           ids.NewID(),
		BaseType:     baseType,
		Name:         baseType,
		ItemLevel:    1,
		Rarity:       RarityNormal,
		IsIdentified: true,
		Properties:   map[string]Property{},
		Modifiers:    []Modifier{},
		Sockets:      []Socket{},
	}
}

// NewModifier builds a modifier with a fresh id. A tier below 1 becomes 1.
func NewModifier(ids ident.Generator, name string, typ ModifierType, tier int, values ir.Object) Modifier {
	if tier < 1 {
		tier = 1
	}
	if values == nil {
		values = ir.Object{}
	}
	return Modifier{
		ID:     ids.NewID(),
		Name:   name,
		Tier:   tier,
		Values: maps.Clone(values),
		Type:   typ,
	}
}

// NewSocket builds an unlinked socket with a fresh id. An empty color
// becomes white.
func NewSocket(ids ident.Generator, color SocketColor) Socket {
	if color == "" {
		color = SocketWhite
	}
	return Socket{ID: ids.NewID(), Color: color, Links: []string{}}
}

// NewProperty builds a property whose type tag is derived from value.
func NewProperty(ids ident.Generator, name string, value ir.Value) Property {
	return Property{ID: ids.NewID(), Name: name, Value: value, Type: PropertyTypeOf(value)}
}

// AddProperty stores p under p.Name, replacing any property of that name.
func AddProperty(it Item, p Property) Item {
	props := maps.Clone(it.Properties)
	if props == nil {
		props = map[string]Property{}
	}
	props[p.Name] = p
	it.Properties = props
	return it
}

// UpdateProperty sets the value of the named property and re-derives its
// type tag. A missing property is created with an empty id.
func UpdateProperty(it Item, name string, value ir.Value) Item {
	p, ok := it.Properties[name]
	if !ok {
		p = Property{Name: name}
	}
	p.Value = value
	p.Type = PropertyTypeOf(value)
	return AddProperty(it, p)
}

// RemoveProperty drops the named property.
func RemoveProperty(it Item, name string) Item {
	if _, ok := it.Properties[name]; !ok {
		return it
	}
	props := maps.Clone(it.Properties)
	delete(props, name)
	it.Properties = props
	return it
}

// AddModifier appends m.
func AddModifier(it Item, m Modifier) Item {
	mods := make([]Modifier, 0, len(it.Modifiers)+1)
	mods = append(mods, it.Modifiers...)
	it.Modifiers = append(mods, m)
	return it
}

// RemoveModifier drops every modifier with the given id.
func RemoveModifier(it Item, id string) Item {
	it.Modifiers = slices.DeleteFunc(slices.Clone(it.Modifiers), func(m Modifier) bool {
		return m.ID == id
	})
	return it
}

// UpdateModifier merges patch into the modifier with the given id. It is a
// no-op when no modifier matches.
func UpdateModifier(it Item, id string, patch ModifierPatch) Item {
	idx := slices.IndexFunc(it.Modifiers, func(m Modifier) bool { return m.ID == id })
	if idx < 0 {
		return it
	}
	mods := slices.Clone(it.Modifiers)
	m := mods[idx]
	if patch.Name != nil {
		m.Name = *patch.Name
	}
	if patch.Tier != nil {
		m.Tier = *patch.Tier
	}
	if patch.Values != nil {
		m.Values = maps.Clone(patch.Values)
	}
	if patch.Type != nil {
		m.Type = *patch.Type
	}
	if patch.Tags != nil {
		m.Tags = slices.Clone(patch.Tags)
	}
	mods[idx] = m
	it.Modifiers = mods
	return it
}

// ClearModifiers removes every modifier.
func ClearModifiers(it Item) Item {
	it.Modifiers = []Modifier{}
	return it
}

// AddSocket appends s.
func AddSocket(it Item, s Socket) Item {
	sockets := make([]Socket, 0, len(it.Sockets)+1)
	sockets = append(sockets, it.Sockets...)
	it.Sockets = append(sockets, s)
	return it
}

// RemoveSocket drops the socket with the given id. Links other sockets hold
// to it are left in place.
func RemoveSocket(it Item, id string) Item {
	it.Sockets = slices.DeleteFunc(slices.Clone(it.Sockets), func(s Socket) bool {
		return s.ID == id
	})
	return it
}

// LinkSockets rewrites, for every socket whose id is in ids, its links to be
// exactly the other ids of the set. Sockets outside the set are untouched,
// so links they hold into the set may become asymmetric.
func LinkSockets(it Item, ids []string) Item {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	sockets := slices.Clone(it.Sockets)
	for i, s := range sockets {
		if !set[s.ID] {
			continue
		}
		links := make([]string, 0, len(ids))
		for _, other := range ids {
			if other != s.ID && !slices.Contains(links, other) {
				links = append(links, other)
			}
		}
		sockets[i].Links = links
	}
	it.Sockets = sockets
	return it
}

// Corrupt marks the item corrupted. Corrupting a corrupted item is allowed.
func Corrupt(it Item) Item {
	it.IsCorrupted = true
	return it
}

// SetRarity returns it with the given rarity.
func SetRarity(it Item, r Rarity) Item {
	it.Rarity = r
	return it
}

// SetQuality returns it with the given quality.
func SetQuality(it Item, q int) Item {
	it.Quality = q
	return it
}

// ModifierByName returns the first modifier with the given name.
func (it Item) ModifierByName(name string) (Modifier, bool) {
	for _, m := range it.Modifiers {
		if m.Name == name {
			return m, true
		}
	}
	return Modifier{}, false
}

// ModifierByID returns the modifier with the given id.
func (it Item) ModifierByID(id string) (Modifier, bool) {
	for _, m := range it.Modifiers {
		if m.ID == id {
			return m, true
		}
	}
	return Modifier{}, false
}

// HasModifier reports whether a modifier with the given name exists.
func (it Item) HasModifier(name string) bool {
	_, ok := it.ModifierByName(name)
	return ok
}

// HasProperty reports whether a property with the given name exists.
func (it Item) HasProperty(name string) bool {
	_, ok := it.Properties[name]
	return ok
}

// CountModifiers returns how many modifiers have the given type.
func (it Item) CountModifiers(typ ModifierType) int {
	n := 0
	for _, m := range it.Modifiers {
		if m.Type == typ {
			n++
		}
	}
	return n
}

// SocketByID returns the socket with the given id.
func (it Item) SocketByID(id string) (Socket, bool) {
	for _, s := range it.Sockets {
		if s.ID == id {
			return s, true
		}
	}
	return Socket{}, false
}
