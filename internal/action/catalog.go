package action

import (
	"github.com/roach88/craftforge/internal/condition"
	"github.com/roach88/craftforge/internal/ir"
)

// Built-in action categories.
const (
	CategoryCurrency = "currency"
	CategoryQuality  = "quality"
)

var (
	notCorrupted = condition.Equals("item.isCorrupted", ir.Bool(false))
	hasModifiers = condition.GreaterThan("item.modifiers.length", ir.Int(0))
)

func rarityIs(r string) condition.Condition {
	return condition.Equals("item.rarity", ir.String(r))
}

func currency(name string) []Requirement {
	return []Requirement{{Type: "currency", Value: ir.String(name), Description: "Consumes one " + name}}
}

// BuiltinActions returns the default action catalog. Each call returns
// fresh values.
func BuiltinActions() []CraftAction {
	return []CraftAction{
		{
			ID:            "chaos_orb",
			Name:          "Chaos Orb",
			Description:   "Reforges a rare item with new random modifiers",
			Category:      CategoryCurrency,
			Preconditions: []condition.Condition{rarityIs("rare"), notCorrupted},
			Requirements:  currency("Chaos Orb"),
			Outcomes: []Outcome{{
				Probability: 1,
				Description: "Reroll all modifiers",
				Changes:     []ItemChange{},
			}},
			CustomHandler: HandlerChaos,
			Tags:          []string{"reroll", "rare"},
			IsEnabled:     true,
		},
		{
			ID:            "orb_of_alchemy",
			Name:          "Orb of Alchemy",
			Description:   "Upgrades a normal item to a rare item",
			Category:      CategoryCurrency,
			Preconditions: []condition.Condition{rarityIs("normal"), notCorrupted},
			Requirements:  currency("Orb of Alchemy"),
			Outcomes: []Outcome{{
				Probability: 1,
				Description: "Upgrade to rare with 4-6 modifiers",
				Changes:     []ItemChange{},
			}},
			CustomHandler: HandlerAlchemy,
			Tags:          []string{"upgrade", "rare"},
			IsEnabled:     true,
		},
		{
			ID:            "regal_orb",
			Name:          "Regal Orb",
			Description:   "Upgrades a magic item to a rare item, adding one modifier",
			Category:      CategoryCurrency,
			Preconditions: []condition.Condition{rarityIs("magic"), notCorrupted},
			Requirements:  currency("Regal Orb"),
			Outcomes: []Outcome{{
				Probability: 1,
				Description: "Upgrade to rare and add one modifier",
				Changes:     []ItemChange{},
			}},
			CustomHandler: HandlerRegal,
			Tags:          []string{"upgrade", "rare"},
			IsEnabled:     true,
		},
		{
			ID:          "exalted_orb",
			Name:        "Exalted Orb",
			Description: "Adds a new random modifier to a rare item",
			Category:    CategoryCurrency,
			Preconditions: []condition.Condition{
				rarityIs("rare"),
				notCorrupted,
				condition.LessThan("item.modifiers.length", ir.Int(6)),
			},
			Requirements: currency("Exalted Orb"),
			Outcomes: []Outcome{{
				Probability: 1,
				Description: "Add one modifier",
				Changes:     []ItemChange{},
			}},
			CustomHandler: HandlerExalted,
			Tags:          []string{"add", "rare"},
			IsEnabled:     true,
		},
		{
			ID:            "divine_orb",
			Name:          "Divine Orb",
			Description:   "Rerolls the numeric tiers of every modifier",
			Category:      CategoryCurrency,
			Preconditions: []condition.Condition{notCorrupted, hasModifiers},
			Requirements:  currency("Divine Orb"),
			Outcomes: []Outcome{{
				Probability: 1,
				Description: "Shift every modifier tier by one",
				Changes:     []ItemChange{},
			}},
			CustomHandler: HandlerDivine,
			Tags:          []string{"reroll"},
			IsEnabled:     true,
		},
		{
			ID:            "vaal_orb",
			Name:          "Vaal Orb",
			Description:   "Corrupts an item with an unpredictable result",
			Category:      CategoryCurrency,
			Preconditions: []condition.Condition{notCorrupted},
			Requirements:  currency("Vaal Orb"),
			Outcomes: []Outcome{
				{
					Probability: 0.25,
					Description: "Corrupted with no other change",
					Changes:     []ItemChange{{Type: ChangeCorrupt}},
				},
				{
					Probability: 0.25,
					Description: "Corrupted with a new implicit",
					Changes: []ItemChange{
						{Type: ChangeCorrupt},
						{
							Type:   ChangeAddModifier,
							Target: "Corrupted Blood Immunity",
							Value:  ir.FromObject(ir.Object{"type": ir.String("corrupted"), "tier": ir.Int(1)}),
						},
					},
				},
				{
					Probability: 0.25,
					Description: "Corrupted with rerolled modifier tiers",
					Changes:     []ItemChange{{Type: ChangeCorrupt}, {Type: ChangeReroll}},
					Conditions:  []condition.Condition{hasModifiers},
				},
				{
					Probability: 0.25,
					Description: "Corrupted with an added white socket",
					Changes: []ItemChange{
						{Type: ChangeCorrupt},
						{Type: ChangeAddSocket, Value: ir.String("white")},
					},
				},
			},
			Tags:      []string{"corrupt"},
			IsEnabled: true,
		},
		{
			ID:          "armourers_scrap",
			Name:        "Armourer's Scrap",
			Description: "Improves the quality of an armour by one",
			Category:    CategoryQuality,
			Preconditions: []condition.Condition{
				notCorrupted,
				condition.LessThan("item.quality", ir.Int(MaxQuality)),
			},
			Requirements: currency("Armourer's Scrap"),
			Outcomes: []Outcome{{
				Probability: 1,
				Description: "Quality increased by 1",
				Changes:     []ItemChange{},
			}},
			CustomHandler: HandlerQualityIncrease,
			Tags:          []string{"quality"},
			IsEnabled:     true,
		},
	}
}
