package item

import (
	"github.com/roach88/craftforge/internal/ir"
)

// Rarity is the item's rarity tier.
type Rarity string

const (
	RarityNormal Rarity = "normal"
	RarityMagic  Rarity = "magic"
	RarityRare   Rarity = "rare"
	RarityUnique Rarity = "unique"
)

// ModifierType is the affix slot a modifier occupies.
type ModifierType string

const (
	ModifierPrefix    ModifierType = "prefix"
	ModifierSuffix    ModifierType = "suffix"
	ModifierImplicit  ModifierType = "implicit"
	ModifierEnchant   ModifierType = "enchant"
	ModifierCorrupted ModifierType = "corrupted"
)

// SocketColor is the color of a socket.
type SocketColor string

const (
	SocketRed   SocketColor = "red"
	SocketGreen SocketColor = "green"
	SocketBlue  SocketColor = "blue"
	SocketWhite SocketColor = "white"
)

// PropertyType tags the shape of a property value.
type PropertyType string

const (
	PropertyString  PropertyType = "string"
	PropertyNumber  PropertyType = "number"
	PropertyBoolean PropertyType = "boolean"
	PropertyArray   PropertyType = "array"
	PropertyObject  PropertyType = "object"
)

// Item is the subject of crafting.
type Item struct {
	ID           string              `json:"id" yaml:"id"`
	BaseType     string              `json:"baseType" yaml:"baseType"`
	Name         string              `json:"name" yaml:"name"`
	ItemLevel    int                 `json:"itemLevel" yaml:"itemLevel"`
	Quality      int                 `json:"quality" yaml:"quality"`
	Rarity       Rarity              `json:"rarity" yaml:"rarity"`
	IsCorrupted  bool                `json:"isCorrupted" yaml:"isCorrupted"`
	IsIdentified bool                `json:"isIdentified" yaml:"isIdentified"`
	Properties   map[string]Property `json:"properties" yaml:"properties"`
	Modifiers    []Modifier          `json:"modifiers" yaml:"modifiers"`
	Sockets      []Socket            `json:"sockets" yaml:"sockets"`
	CustomData   ir.Object           `json:"customData,omitempty" yaml:"customData,omitempty"`
	Tags         []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Property is a named item property.
type Property struct {
	ID    string       `json:"id" yaml:"id"`
	Name  string       `json:"name" yaml:"name"`
	Value ir.Value     `json:"value" yaml:"value"`
	Type  PropertyType `json:"type" yaml:"type"`
}

// Modifier is a named affix with a tier and an open value bag.
type Modifier struct {
	ID     string       `json:"id" yaml:"id"`
	Name   string       `json:"name" yaml:"name"`
	Tier   int          `json:"tier" yaml:"tier"`
	Values ir.Object    `json:"values" yaml:"values"`
	Type   ModifierType `json:"type" yaml:"type"`
	Tags   []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Socket is one socket. Links holds the ids of the sockets it is linked to.
type Socket struct {
	ID    string      `json:"id" yaml:"id"`
	Color SocketColor `json:"color" yaml:"color"`
	Links []string    `json:"links" yaml:"links"`
}

// ModifierPatch is a partial update for UpdateModifier. Nil fields are left
// unchanged.
type ModifierPatch struct {
	Name   *string
	Tier   *int
	Values ir.Object
	Type   *ModifierType
	Tags   []string
}

// AffixLimits is the maximum number of prefixes and suffixes per rarity.
type AffixLimits struct {
	Prefixes int
	Suffixes int
}

var affixLimits = map[Rarity]AffixLimits{
	RarityNormal: {0, 0},
	RarityMagic:  {1, 1},
	RarityRare:   {3, 3},
	RarityUnique: {6, 6},
}

// LimitsFor returns the affix limits for r.
func LimitsFor(r Rarity) (AffixLimits, bool) {
	l, ok := affixLimits[r]
	return l, ok
}

// PropertyTypeOf derives the type tag for a value. Absent reads as string.
func PropertyTypeOf(v ir.Value) PropertyType {
	switch v.Kind() {
	case ir.KindNumber:
		return PropertyNumber
	case ir.KindBool:
		return PropertyBoolean
	case ir.KindArray:
		return PropertyArray
	case ir.KindObject:
		return PropertyObject
	default:
		return PropertyString
	}
}
