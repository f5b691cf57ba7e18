package action

import (
	"fmt"

	"github.com/roach88/craftforge/internal/ident"
	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
)

// MaxTier is the highest tier a reroll can produce.
const MaxTier = 5

// applyChanges applies changes in order to a working copy of it. Unknown or
// incomplete changes are skipped with a warning. An error from a registered
// custom change handler aborts the whole outcome.
func (x *Executor) applyChanges(a CraftAction, changes []ItemChange, it item.Item, ctx ir.Object) (item.Item, []string, error) {
	var warnings []string
	warn := func(ch ItemChange, reason string) {
		msg := fmt.Sprintf("%s: %s", ch.Type, reason)
		warnings = append(warnings, msg)
		x.logger.Warn("item change skipped",
			"action", a.ID,
			"change_type", string(ch.Type),
			"reason", reason,
		)
	}

	cur := it
	for _, ch := range changes {
		switch ch.Type {
		case ChangeAddModifier:
			if ch.Target == "" {
				warn(ch, "target (modifier name) is required")
				continue
			}
			cur = item.AddModifier(cur, modifierFromChange(x.ids, ch))

		case ChangeRemoveModifier:
			if ch.ModifierID == "" {
				warn(ch, "modifierId is required")
				continue
			}
			cur = item.RemoveModifier(cur, ch.ModifierID)

		case ChangeModifyProperty:
			if ch.Target == "" {
				warn(ch, "target (property name) is required")
				continue
			}
			cur = item.UpdateProperty(cur, ch.Target, ch.Value)

		case ChangeAddSocket:
			// Anything but a color string or {"color": ...} defaults to white.
			color := ""
			if s, ok := ch.Value.Text(); ok {
				color = s
			} else if s, ok := ch.Value.Field("color").Text(); ok {
				color = s
			}
			cur = item.AddSocket(cur, item.NewSocket(x.ids, item.SocketColor(color)))

		case ChangeRemoveSocket:
			if ch.SocketID == "" {
				warn(ch, "socketId is required")
				continue
			}
			cur = item.RemoveSocket(cur, ch.SocketID)

		case ChangeLinkSockets:
			ids, ok := stringList(ch.Value)
			if !ok {
				warn(ch, "value must be a list of socket ids")
				continue
			}
			cur = item.LinkSockets(cur, ids)

		case ChangeReroll:
			cur = rerollTiers(x.rand, cur, ch.ModifierID)

		case ChangeCorrupt:
			cur = item.Corrupt(cur)

		case ChangeCustom:
			h, ok := x.changeHandlers[ch.CustomHandler]
			if !ok {
				warn(ch, fmt.Sprintf("custom change handler %q not registered", ch.CustomHandler))
				continue
			}
			next, err := h.ApplyChange(x.env(), cur, ch, ctx)
			if err != nil {
				return it, nil, NewHandlerError(a.ID, ch.CustomHandler, err)
			}
			cur = next

		default:
			warn(ch, "unknown change type")
		}
	}
	return cur, warnings, nil
}

// modifierFromChange synthesizes a modifier named by the change target.
// The value may be a bare tier number or an object with tier, type and
// values members; tier defaults to 1 and type to prefix.
func modifierFromChange(ids ident.Generator, ch ItemChange) item.Modifier {
	tier := 1
	typ := item.ModifierPrefix
	var values ir.Object

	switch ch.Value.Kind() {
	case ir.KindNumber:
		if n, ok := ch.Value.Int(); ok {
			tier = n
		}
	case ir.KindObject:
		if n, ok := ch.Value.Field("tier").Int(); ok {
			tier = n
		}
		if s, ok := ch.Value.Field("type").Text(); ok && s != "" {
			typ = item.ModifierType(s)
		}
		values, _ = ch.Value.Field("values").Fields()
	}
	return item.NewModifier(ids, ch.Target, typ, tier, values)
}

// rerollTiers redraws the tier of the modifier with the given id, or of
// every modifier when id is empty.
func rerollTiers(r Rand, it item.Item, id string) item.Item {
	cur := it
	for _, m := range it.Modifiers {
		if id != "" && m.ID != id {
			continue
		}
		tier := 1 + r.IntN(MaxTier)
		cur = item.UpdateModifier(cur, m.ID, item.ModifierPatch{Tier: &tier})
	}
	return cur
}

func stringList(v ir.Value) ([]string, bool) {
	elems, ok := v.Items()
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		s, ok := e.Text()
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
