package harness

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craftforge/internal/item"
)

func mustParse(t *testing.T, content string) *Scenario {
	t.Helper()
	scenario, err := ParseScenario([]byte(content), "")
	require.NoError(t, err)
	return scenario
}

func TestRun_ScrapToCap(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/scrap_to_cap.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.True(t, result.Success)
	assert.False(t, result.BudgetExhausted)
	require.Len(t, result.Steps, 2)
	assert.Equal(t, 3, result.Steps[0].Iterations)
	assert.Equal(t, "capped", result.Steps[1].BranchLabel)
	require.Len(t, result.Actions, 3)
	for i, a := range result.Actions {
		assert.Equal(t, int64(i+1), a.Seq)
		assert.Equal(t, "s1a", a.StepID)
	}
	assert.Equal(t, 20, result.Final.Quality)
	assert.Equal(t, "id-1", result.Final.ID, "starting item gets the first sequential id")
}

func TestRun_CatalogAction(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/runic_polish.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Final.Modifiers, 1)
	assert.Equal(t, item.ModifierImplicit, result.Final.Modifiers[0].Type)
	assert.Equal(t, 2, result.Final.Modifiers[0].Tier)
}

func TestRun_FailedStep(t *testing.T) {
	scenario := mustParse(t, `
name: capped_scrap
description: "Scrap on a capped item fails its precondition"
item: { baseType: Iron Hat, itemLevel: 1, rarity: normal, quality: 20 }
guide:
  title: Scrap
  steps:
    - { id: s1, type: linear, actionId: armourers_scrap }
    - { id: s2, type: linear, actionId: armourers_scrap }
assertions:
  - type: run_success
    success: false
  - type: step_result
    step: s1
    success: false
    message: "preconditions not met for Armourer's Scrap"
  - type: trace_count
    action: armourers_scrap
    count: 0
`)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.False(t, result.Success)
	require.Len(t, result.Steps, 1, "the run stops at the failing step")
	assert.Equal(t, "armourers_scrap", result.Steps[0].ActionID)
}

func TestRun_AssertionFailuresMarkResult(t *testing.T) {
	scenario := mustParse(t, `
name: wrong_expectations
description: "Every assertion is off by one"
item: { baseType: Iron Hat, itemLevel: 1, rarity: normal, quality: 18 }
guide:
  title: Scrap
  steps:
    - { id: s1, type: linear, actionId: armourers_scrap }
assertions:
  - type: run_success
    success: false
  - type: trace_count
    action: armourers_scrap
    count: 2
  - type: trace_contains
    action: chaos_orb
  - type: step_result
    step: s9
  - type: final_item
    target: item.quality
    value: 20
`)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.True(t, result.Success)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "run_success")
	assert.Contains(t, result.Errors[1], "2 occurrences of armourers_scrap")
	assert.Contains(t, result.Errors[2], "chaos_orb")
	assert.Contains(t, result.Errors[3], "step never ran")
	assert.Contains(t, result.Errors[4], "item.quality = 19")
}

func TestRun_BudgetExhausted(t *testing.T) {
	scenario := mustParse(t, `
name: endless_chaos
description: "A loop that never finishes stops at the step budget"
seed: 3
max_steps: 3
item: { baseType: Iron Hat, itemLevel: 60, rarity: rare }
guide:
  title: Chaos spam
  steps:
    - id: spam
      type: loop
      condition: { operator: equals, target: item.rarity, value: rare }
      maxIterations: 1
      steps:
        - { id: roll, type: linear, actionId: chaos_orb }
assertions:
  - type: run_success
    success: false
  - type: trace_count
    action: chaos_orb
    count: 3
`)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.True(t, result.BudgetExhausted)
	require.Len(t, result.Steps, 3)
	for _, s := range result.Steps {
		assert.True(t, s.ShouldLoop)
	}
}

func TestRun_ScriptedRolls(t *testing.T) {
	const tmpl = `
name: vaal
description: "Vaal outcome follows the scripted roll"
rolls: [%s]
item: { baseType: Coral Ring, itemLevel: 10, rarity: magic }
guide:
  title: Vaal
  steps:
    - { id: v, type: linear, actionId: vaal_orb }
assertions:
  - type: final_item
    target: item.isCorrupted
    value: true
`
	// Without modifiers three outcomes are eligible (weight 0.75 in total).
	high := mustParse(t, fmt.Sprintf(tmpl, "0.9"))
	result, err := Run(high)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Final.Sockets, 1, "0.9 * 0.75 lands on the socket outcome")

	low := mustParse(t, fmt.Sprintf(tmpl, "0.1"))
	result, err = Run(low)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Final.Sockets)
	assert.Empty(t, result.Final.Modifiers)
}

func TestRun_SeedIsDeterministic(t *testing.T) {
	const content = `
name: alchemy
description: "Same seed, same item"
seed: 11
item: { baseType: Vaal Regalia, itemLevel: 84, rarity: normal }
guide:
  title: Alch and chaos
  steps:
    - { id: a, type: linear, actionId: orb_of_alchemy }
    - { id: c, type: linear, actionId: chaos_orb }
assertions:
  - type: trace_order
    actions: [orb_of_alchemy, chaos_orb]
`
	first, err := Run(mustParse(t, content))
	require.NoError(t, err)
	second, err := Run(mustParse(t, content))
	require.NoError(t, err)

	assert.True(t, first.Pass, "errors: %v", first.Errors)
	assert.Equal(t, first.Final, second.Final)
	assert.Equal(t, first.Actions, second.Actions)
}

func TestRun_SetupErrors(t *testing.T) {
	dir := t.TempDir()
	badCatalog := writeScenario(t, dir, "bad.cue", `action: x: { name: "X", weight: 1 }`)
	unknownOp := writeScenario(t, dir, "unknown_op.cue", `action: sift: {
	name: "Sift"
	preconditions: [{operator: "resonates", target: "item.quality"}]
	outcomes: [{probability: 1, changes: [{type: "corrupt"}]}]
}`)
	dupCatalog := writeScenario(t, dir, "dup.cue", `action: chaos_orb: { name: "Other Chaos", outcomes: [{probability: 1}] }`)

	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{
			name: "unknown action",
			content: `
name: n
description: d
item: { baseType: Iron Hat, itemLevel: 1, rarity: normal }
guide: { title: t, steps: [{ id: s1, type: linear, actionId: mirror_of_kalandra }] }
assertions: [{ type: run_success, success: true }]
`,
			contains: "invalid guide",
		},
		{
			name: "invalid item",
			content: `
name: n
description: d
item: { baseType: Iron Hat, itemLevel: 0, rarity: normal }
guide: { title: t, steps: [] }
assertions: [{ type: run_success, success: true }]
`,
			contains: "invalid item",
		},
		{
			name: "bad catalog",
			content: `
name: n
description: d
catalog: ` + filepath.Base(badCatalog) + `
item: { baseType: Iron Hat, itemLevel: 1, rarity: normal }
guide: { title: t, steps: [] }
assertions: [{ type: run_success, success: true }]
`,
			contains: "failed to compile catalog",
		},
		{
			name: "catalog operator without evaluator",
			content: `
name: n
description: d
catalog: ` + filepath.Base(unknownOp) + `
item: { baseType: Iron Hat, itemLevel: 1, rarity: normal }
guide: { title: t, steps: [] }
assertions: [{ type: run_success, success: true }]
`,
			contains: "invalid catalog",
		},
		{
			name: "catalog shadows a built-in",
			content: `
name: n
description: d
catalog: ` + filepath.Base(dupCatalog) + `
item: { baseType: Iron Hat, itemLevel: 1, rarity: normal }
guide: { title: t, steps: [] }
assertions: [{ type: run_success, success: true }]
`,
			contains: "failed to register catalog",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario, err := ParseScenario([]byte(tt.content), dir)
			require.NoError(t, err)
			_, err = Run(scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
