package action

import (
	"errors"
	"slices"

	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
)

// Built-in handler names.
const (
	HandlerChaos           = "chaos_orb"
	HandlerAlchemy         = "orb_of_alchemy"
	HandlerRegal           = "regal_orb"
	HandlerExalted         = "exalted_orb"
	HandlerDivine          = "divine_orb"
	HandlerQualityIncrease = "quality_increment"
)

// MaxQuality is the cap applied by the quality handler.
const MaxQuality = 20

// ErrNoAffixSlot is returned when a handler must add a modifier to an item
// whose prefix and suffix slots are all taken.
var ErrNoAffixSlot = errors.New("no open prefix or suffix slot")

// ErrPoolExhausted is returned when every modifier name of a pool is
// already on the item.
var ErrPoolExhausted = errors.New("modifier pool exhausted")

// PrefixPool and SuffixPool are the modifier names the orb handlers draw
// from.
var (
	PrefixPool = []string{
		"Maximum Life",
		"Maximum Mana",
		"Maximum Energy Shield",
		"Increased Armour",
		"Increased Evasion",
		"Physical Damage",
		"Spell Damage",
		"Elemental Damage",
	}
	SuffixPool = []string{
		"Fire Resistance",
		"Cold Resistance",
		"Lightning Resistance",
		"Chaos Resistance",
		"Attack Speed",
		"Cast Speed",
		"Critical Strike Chance",
		"Strength",
		"Dexterity",
		"Intelligence",
	}
)

func builtinHandlers() map[string]Handler {
	return map[string]Handler{
		HandlerChaos:           HandlerFunc(chaosOrb),
		HandlerAlchemy:         HandlerFunc(orbOfAlchemy),
		HandlerRegal:           HandlerFunc(regalOrb),
		HandlerExalted:         HandlerFunc(exaltedOrb),
		HandlerDivine:          HandlerFunc(divineOrb),
		HandlerQualityIncrease: HandlerFunc(qualityIncrement),
	}
}

// chaosOrb clears every modifier and rolls 0-3 prefixes and 0-3 suffixes.
// Draw order: prefix count, suffix count, then one name and one tier per
// modifier, prefixes first.
func chaosOrb(env Env, it item.Item, _ CraftAction, _ ir.Object) (item.Item, error) {
	prefixes := env.Rand.IntN(4)
	suffixes := env.Rand.IntN(4)
	return rollAffixes(env, item.ClearModifiers(it), prefixes, suffixes)
}

// orbOfAlchemy makes the item rare and rolls 4-6 modifiers, never more than
// three of either type. Draw order: total, prefix count, then modifiers.
func orbOfAlchemy(env Env, it item.Item, _ CraftAction, _ ir.Object) (item.Item, error) {
	total := 4 + env.Rand.IntN(3)
	lo := total - 3
	prefixes := lo + env.Rand.IntN(3-lo+1)
	next := item.ClearModifiers(item.SetRarity(it, item.RarityRare))
	return rollAffixes(env, next, prefixes, total-prefixes)
}

// regalOrb makes the item rare and adds one modifier.
func regalOrb(env Env, it item.Item, _ CraftAction, _ ir.Object) (item.Item, error) {
	return addRandomAffix(env, item.SetRarity(it, item.RarityRare))
}

// exaltedOrb adds one modifier without changing rarity.
func exaltedOrb(env Env, it item.Item, _ CraftAction, _ ir.Object) (item.Item, error) {
	return addRandomAffix(env, it)
}

// divineOrb moves every modifier tier one step up or down, never below 1.
func divineOrb(env Env, it item.Item, _ CraftAction, _ ir.Object) (item.Item, error) {
	cur := it
	for _, m := range it.Modifiers {
		tier := m.Tier + 1
		if env.Rand.IntN(2) == 0 {
			tier = m.Tier - 1
		}
		tier = max(tier, 1)
		cur = item.UpdateModifier(cur, m.ID, item.ModifierPatch{Tier: &tier})
	}
	return cur, nil
}

// qualityIncrement raises quality by one up to MaxQuality.
func qualityIncrement(_ Env, it item.Item, _ CraftAction, _ ir.Object) (item.Item, error) {
	if it.Quality >= MaxQuality {
		return it, nil
	}
	return item.SetQuality(it, it.Quality+1), nil
}

// addRandomAffix adds one prefix or suffix, choosing between the types that
// still have an open slot for the item's rarity.
func addRandomAffix(env Env, it item.Item) (item.Item, error) {
	limits, ok := item.LimitsFor(it.Rarity)
	if !ok {
		limits = item.AffixLimits{Prefixes: 3, Suffixes: 3}
	}
	var open []item.ModifierType
	if it.CountModifiers(item.ModifierPrefix) < limits.Prefixes {
		open = append(open, item.ModifierPrefix)
	}
	if it.CountModifiers(item.ModifierSuffix) < limits.Suffixes {
		open = append(open, item.ModifierSuffix)
	}
	if len(open) == 0 {
		return it, ErrNoAffixSlot
	}
	typ := open[env.Rand.IntN(len(open))]
	if typ == item.ModifierPrefix {
		return rollAffixes(env, it, 1, 0)
	}
	return rollAffixes(env, it, 0, 1)
}

func rollAffixes(env Env, it item.Item, prefixes, suffixes int) (item.Item, error) {
	cur := it
	var err error
	for range prefixes {
		if cur, err = rollModifier(env, cur, item.ModifierPrefix, PrefixPool); err != nil {
			return it, err
		}
	}
	for range suffixes {
		if cur, err = rollModifier(env, cur, item.ModifierSuffix, SuffixPool); err != nil {
			return it, err
		}
	}
	return cur, nil
}

// rollModifier adds one modifier drawn from pool, skipping names already on
// the item. Draw order: name, then tier.
func rollModifier(env Env, it item.Item, typ item.ModifierType, pool []string) (item.Item, error) {
	available := slices.DeleteFunc(slices.Clone(pool), it.HasModifier)
	if len(available) == 0 {
		return it, ErrPoolExhausted
	}
	name := available[env.Rand.IntN(len(available))]
	tier := 1 + env.Rand.IntN(MaxTier)
	return item.AddModifier(it, item.NewModifier(env.IDs, name, typ, tier, nil)), nil
}
