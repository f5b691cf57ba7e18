package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craftforge/internal/action"
	"github.com/roach88/craftforge/internal/condition"
	"github.com/roach88/craftforge/internal/ir"
)

const scouringCatalog = `
action: orb_of_scouring: {
	name:        "Orb of Scouring"
	description: "Removes all modifiers"
	category:    "currency"
	preconditions: [
		{operator: "equals", target: "item.isCorrupted", value: false},
		{operator: "greaterThan", target: "item.modifiers.length", value: 0},
	]
	requirements: [{type: "currency", value: "Orb of Scouring"}]
	outcomes: [{
		probability: 1
		description: "Modifiers removed"
		changes: [{type: "modifyProperty", target: "scoured", value: true}]
	}]
	tags: ["reset"]
}

action: "blessed-orb": {
	name:      "Blessed Orb"
	category:  "currency"
	isEnabled: false
	outcomes: [
		{probability: 0.7, description: "nothing", changes: []},
		{
			probability: 0.3
			description: "socket"
			changes: [{type: "addSocket", value: "red"}]
			conditions: [{operator: "socket_check", value: 1}]
		},
	]
}
`

func TestCompileSource(t *testing.T) {
	actions, err := CompileSource("catalog.cue", []byte(scouringCatalog))
	require.NoError(t, err)
	require.Len(t, actions, 2)

	scour := actions[0]
	assert.Equal(t, "orb_of_scouring", scour.ID)
	assert.Equal(t, "Orb of Scouring", scour.Name)
	assert.Equal(t, "currency", scour.Category)
	assert.True(t, scour.IsEnabled, "isEnabled defaults to true")
	require.Len(t, scour.Preconditions, 2)
	assert.Equal(t, condition.OpEquals, scour.Preconditions[0].Operator)
	assert.True(t, ir.Equal(ir.Bool(false), scour.Preconditions[0].Value))
	require.Len(t, scour.Outcomes, 1)
	assert.Equal(t, 1.0, scour.Outcomes[0].Probability)
	assert.Equal(t, action.ChangeModifyProperty, scour.Outcomes[0].Changes[0].Type)
	assert.Equal(t, []string{"reset"}, scour.Tags)

	blessed := actions[1]
	assert.Equal(t, "blessed-orb", blessed.ID)
	assert.False(t, blessed.IsEnabled)
	require.Len(t, blessed.Outcomes, 2)
	assert.InDelta(t, 0.3, blessed.Outcomes[1].Probability, 1e-9)
	assert.Equal(t, condition.Operator("socket_check"), blessed.Outcomes[1].Conditions[0].Operator)
}

func TestCompileAction(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(scouringCatalog)
	require.NoError(t, v.Err())

	a, err := CompileAction(v.LookupPath(cue.ParsePath("action.orb_of_scouring")))
	require.NoError(t, err)
	assert.Equal(t, "orb_of_scouring", a.ID)
}

func TestCompileCatalog_Empty(t *testing.T) {
	actions, err := CompileSource("empty.cue", []byte(`other: 1`))
	require.NoError(t, err)
	assert.NotNil(t, actions)
	assert.Empty(t, actions)
}

func TestCompileAction_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		contains []string
	}{
		{
			name:     "missing name",
			src:      `action: x: { outcomes: [] }`,
			contains: []string{"action.x.name", "name is required"},
		},
		{
			name:     "unknown field",
			src:      `action: x: { name: "X", weight: 3 }`,
			contains: []string{"action.x.weight", "unknown field"},
		},
		{
			name:     "incomplete value",
			src:      `action: x: { name: "X", category: string }`,
			contains: nil,
		},
		{
			name:     "wrong shape",
			src:      `action: x: { name: "X", outcomes: "lots" }`,
			contains: []string{"action.x"},
		},
		{
			name:     "syntax error",
			src:      `action: x: { name: }`,
			contains: []string{"catalog.cue"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileSource("catalog.cue", []byte(tt.src))
			require.Error(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.cue")
	require.NoError(t, os.WriteFile(path, []byte(scouringCatalog), 0o644))

	actions, err := CompileFile(path)
	require.NoError(t, err)
	assert.Len(t, actions, 2)

	_, err = CompileFile(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}

func TestCompileError_Format(t *testing.T) {
	err := &CompileError{Field: "action.x.name", Message: "name is required"}
	assert.Equal(t, "action.x.name: name is required", err.Error())
}
