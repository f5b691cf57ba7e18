package condition

import (
	"strings"

	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
)

// Target namespaces.
const (
	nsItem     = "item"
	nsProperty = "property"
	nsModifier = "modifier"
)

// Resolve maps a dotted target path to a value on it.
//
//	item.<field>[.<sub>...]        raw field of the item document
//	property.<name>[.<sub>...]     value of the named property
//	modifier.<name>[.<field>...]   the named modifier, optionally drilled
//	<anything else>                raw field path on the item document
//
// Numeric segments index sequences and "length" sizes sequences and strings.
// Misses resolve to ir.Absent.
func Resolve(target string, it item.Item) (ir.Value, error) {
	if target == "" {
		return ir.Absent, nil
	}
	segs := strings.Split(target, ".")

	switch segs[0] {
	case nsProperty:
		if len(segs) < 2 {
			return ir.Absent, nil
		}
		p, ok := it.Properties[segs[1]]
		if !ok {
			return ir.Absent, nil
		}
		return p.Value.Lookup(segs[2:]...), nil

	case nsModifier:
		if len(segs) < 2 {
			return ir.Absent, nil
		}
		m, ok := it.ModifierByName(segs[1])
		if !ok {
			return ir.Absent, nil
		}
		doc, err := ir.CanonicalDocument(m)
		if err != nil {
			return ir.Absent, err
		}
		return doc.Lookup(segs[2:]...), nil

	case nsItem:
		segs = segs[1:]
	}

	doc, err := item.Document(it)
	if err != nil {
		return ir.Absent, err
	}
	return doc.Lookup(segs...), nil
}
