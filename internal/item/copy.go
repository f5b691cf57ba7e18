package item

import (
	"reflect"
	"slices"
	"time"

	"github.com/mitchellh/copystructure"

	"github.com/roach88/craftforge/internal/ident"
	"github.com/roach88/craftforge/internal/ir"
)

// copyConfig deep-copies item graphs. ir.Value keeps its state in unexported
// fields that reflection cannot set, so it is copied by value; Values are
// immutable, which makes that safe.
var copyConfig = copystructure.Config{
	Copiers: map[reflect.Type]copystructure.CopierFunc{
		reflect.TypeOf(ir.Value{}):  func(v any) (any, error) { return v, nil },
		reflect.TypeOf(time.Time{}): func(v any) (any, error) { return v, nil },
	},
}

// DeepCopy copies any value built from items, keeping ir.Value members
// intact. Other packages use it for structures that embed items.
func DeepCopy(v any) (any, error) {
	return copyConfig.Copy(v)
}

// Copy returns a deep copy of it with the same id.
func Copy(it Item) Item {
	dup, err := copyConfig.Copy(it)
	if err != nil {
		// Item contains only maps, slices, strings and Values; Copy cannot fail.
		panic("item: deep copy: " + err.Error())
	}
	return normalize(dup.(Item))
}

// Clone returns a deep copy of it with a fresh id.
func Clone(it Item, ids ident.Generator) Item {
	dup := Copy(it)
	dup.ID = ids.NewID()
	return dup
}

// normalize replaces nil collections with empty ones so that encoded items
// always carry properties, modifiers, sockets, links and value bags. Slices
// are cloned before any element is rewritten.
func normalize(it Item) Item {
	if it.Properties == nil {
		it.Properties = map[string]Property{}
	}
	if it.Modifiers == nil {
		it.Modifiers = []Modifier{}
	}
	if it.Sockets == nil {
		it.Sockets = []Socket{}
	}
	if slices.ContainsFunc(it.Sockets, func(s Socket) bool { return s.Links == nil }) {
		it.Sockets = slices.Clone(it.Sockets)
		for i := range it.Sockets {
			if it.Sockets[i].Links == nil {
				it.Sockets[i].Links = []string{}
			}
		}
	}
	if slices.ContainsFunc(it.Modifiers, func(m Modifier) bool { return m.Values == nil }) {
		it.Modifiers = slices.Clone(it.Modifiers)
		for i := range it.Modifiers {
			if it.Modifiers[i].Values == nil {
				it.Modifiers[i].Values = ir.Object{}
			}
		}
	}
	return it
}
