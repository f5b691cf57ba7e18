package item

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craftforge/internal/ident"
	"github.com/roach88/craftforge/internal/ir"
)

func newTestItem(t *testing.T) Item {
	t.Helper()
	return New("Vaal Regalia", ident.NewFixedGenerator("item-1"))
}

func TestNew_Defaults(t *testing.T) {
	it := newTestItem(t)
	assert.Equal(t, "item-1", it.ID)
	assert.Equal(t, "Vaal Regalia", it.BaseType)
	assert.Equal(t, "Vaal Regalia", it.Name)
	assert.Equal(t, 1, it.ItemLevel)
	assert.Equal(t, RarityNormal, it.Rarity)
	assert.False(t, it.IsCorrupted)
	assert.NotNil(t, it.Properties)
	assert.NotNil(t, it.Modifiers)
	assert.NotNil(t, it.Sockets)
	assert.True(t, Validate(it).IsValid)
}

// =============================================================================
// Mutators return new values
// =============================================================================

func TestAddModifier_DoesNotMutateInput(t *testing.T) {
	ids := ident.NewFixedGenerator("m1", "m2")
	base := newTestItem(t)

	one := AddModifier(base, NewModifier(ids, "Life", ModifierPrefix, 1, nil))
	two := AddModifier(one, NewModifier(ids, "Mana", ModifierSuffix, 2, nil))

	assert.Empty(t, base.Modifiers)
	assert.Len(t, one.Modifiers, 1)
	assert.Len(t, two.Modifiers, 2)
	assert.Equal(t, "Life", two.Modifiers[0].Name)
	assert.Equal(t, "Mana", two.Modifiers[1].Name)
}

func TestRemoveModifier(t *testing.T) {
	ids := ident.NewFixedGenerator("m1", "m2")
	it := AddModifier(newTestItem(t), NewModifier(ids, "Life", ModifierPrefix, 1, nil))
	it = AddModifier(it, NewModifier(ids, "Mana", ModifierSuffix, 1, nil))

	removed := RemoveModifier(it, "m1")
	require.Len(t, removed.Modifiers, 1)
	assert.Equal(t, "m2", removed.Modifiers[0].ID)
	assert.Len(t, it.Modifiers, 2, "input keeps both modifiers")

	same := RemoveModifier(it, "missing")
	assert.Len(t, same.Modifiers, 2)
}

func TestUpdateModifier(t *testing.T) {
	ids := ident.NewFixedGenerator("m1")
	it := AddModifier(newTestItem(t), NewModifier(ids, "Life", ModifierPrefix, 1, ir.Object{"min": ir.Int(10)}))

	tier := 3
	updated := UpdateModifier(it, "m1", ModifierPatch{Tier: &tier})
	assert.Equal(t, 3, updated.Modifiers[0].Tier)
	assert.Equal(t, "Life", updated.Modifiers[0].Name, "unpatched fields are kept")
	assert.Equal(t, 1, it.Modifiers[0].Tier)

	noop := UpdateModifier(it, "missing", ModifierPatch{Tier: &tier})
	assert.Equal(t, it, noop)
}

func TestPropertyMutators(t *testing.T) {
	ids := ident.NewFixedGenerator("p1")
	it := AddProperty(newTestItem(t), NewProperty(ids, "armour", ir.Int(300)))
	assert.Equal(t, PropertyNumber, it.Properties["armour"].Type)

	updated := UpdateProperty(it, "armour", ir.String("high"))
	assert.Equal(t, "high", updated.Properties["armour"].Value.String())
	assert.Equal(t, PropertyString, updated.Properties["armour"].Type)
	assert.Equal(t, "p1", updated.Properties["armour"].ID, "update keeps the property id")
	assert.Equal(t, "300", it.Properties["armour"].Value.String())

	created := UpdateProperty(it, "evasion", ir.Int(5))
	assert.True(t, created.HasProperty("evasion"))
	assert.False(t, it.HasProperty("evasion"))

	removed := RemoveProperty(updated, "armour")
	assert.False(t, removed.HasProperty("armour"))
	assert.True(t, updated.HasProperty("armour"))
}

func TestSocketMutators(t *testing.T) {
	ids := ident.NewFixedGenerator("s1", "s2")
	it := AddSocket(newTestItem(t), NewSocket(ids, SocketRed))
	it = AddSocket(it, NewSocket(ids, ""))

	require.Len(t, it.Sockets, 2)
	assert.Equal(t, SocketWhite, it.Sockets[1].Color, "empty color defaults to white")

	removed := RemoveSocket(it, "s1")
	require.Len(t, removed.Sockets, 1)
	assert.Equal(t, "s2", removed.Sockets[0].ID)
}

func TestLinkSockets_Symmetric(t *testing.T) {
	ids := ident.NewFixedGenerator("a", "b", "c")
	it := newTestItem(t)
	for range 3 {
		it = AddSocket(it, NewSocket(ids, SocketBlue))
	}
	// Arbitrary prior state: a already links to c.
	it.Sockets[0].Links = []string{"c"}
	it.Sockets[2].Links = []string{"a"}

	linked := LinkSockets(it, []string{"a", "b"})
	a, _ := linked.SocketByID("a")
	b, _ := linked.SocketByID("b")
	c, _ := linked.SocketByID("c")

	assert.Equal(t, []string{"b"}, a.Links, "full re-link replaces prior links")
	assert.Equal(t, []string{"a"}, b.Links)
	assert.Equal(t, []string{"a"}, c.Links, "sockets outside the set are untouched")
	assert.Equal(t, []string{"c"}, it.Sockets[0].Links, "input is not modified")
}

func TestCorrupt_Unconditional(t *testing.T) {
	it := Corrupt(newTestItem(t))
	assert.True(t, it.IsCorrupted)
	assert.True(t, Corrupt(it).IsCorrupted)
}

// =============================================================================
// Copy and clone
// =============================================================================

func TestCopy_Deep(t *testing.T) {
	ids := ident.NewFixedGenerator("m1", "s1")
	it := AddModifier(newTestItem(t), NewModifier(ids, "Life", ModifierPrefix, 2, ir.Object{"min": ir.Int(10)}))
	it = AddSocket(it, NewSocket(ids, SocketGreen))
	it.CustomData = ir.Object{"note": ir.String("keep")}

	dup := Copy(it)
	want, err := json.Marshal(it)
	require.NoError(t, err)
	got, err := json.Marshal(dup)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	dup.Modifiers[0].Values["min"] = ir.Int(99)
	dup.Sockets[0].Links = append(dup.Sockets[0].Links, "x")
	assert.Equal(t, "10", it.Modifiers[0].Values["min"].String())
	assert.Empty(t, it.Sockets[0].Links)
	assert.Equal(t, "keep", dup.CustomData["note"].String(), "dynamic values survive the copy")
}

func TestClone_FreshID(t *testing.T) {
	it := newTestItem(t)
	clone := Clone(it, ident.NewFixedGenerator("item-2"))
	assert.Equal(t, "item-2", clone.ID)
	assert.Equal(t, it.BaseType, clone.BaseType)
	assert.Equal(t, "item-1", it.ID)
}
