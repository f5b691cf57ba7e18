package guide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craftforge/internal/condition"
)

func TestAnalyzeCycles_Acyclic(t *testing.T) {
	errs := AnalyzeCycles(validGuide().Steps)
	assert.NotNil(t, errs)
	assert.Empty(t, errs)
}

func TestAnalyzeCycles_Empty(t *testing.T) {
	assert.Empty(t, AnalyzeCycles(nil))
}

func TestAnalyzeCycles_SelfContainment(t *testing.T) {
	steps := []Step{
		Loop("loop-1", condition.HasModifier("Life"), 2, Linear("loop-1", "chaos_orb", "")),
	}
	errs := AnalyzeCycles(steps)
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"loop-1", "loop-1"}, errs[0].Path)
	assert.Contains(t, errs[0].Message, "loop-1")
}

func TestAnalyzeCycles_TwoStepCycle(t *testing.T) {
	// a contains b, and a later b contains a.
	steps := []Step{
		Loop("a", condition.HasModifier("Life"), 1, Linear("b", "chaos_orb", "")),
		Loop("b", condition.HasModifier("Life"), 1, Linear("a", "chaos_orb", "")),
	}
	errs := AnalyzeCycles(steps)
	require.Len(t, errs, 1)
	assert.Equal(t, "circular step reference: a -> b -> a", errs[0].Message)
}

func TestAnalyzeCycles_SiblingReuseIsNotACycle(t *testing.T) {
	steps := []Step{
		Linear("a", "chaos_orb", ""),
		BranchStep("b",
			Branch{Condition: condition.HasModifier("Life"), Steps: []Step{Linear("c", "x", "")}},
			Branch{Condition: condition.HasModifier("Mana"), Steps: []Step{Linear("c", "y", "")}},
		),
	}
	assert.Empty(t, AnalyzeCycles(steps))
}

func TestWalk_PointerCycleTerminates(t *testing.T) {
	s := Step{ID: "c", Type: StepConditional, Condition: &condition.Condition{Operator: condition.OpAnd}}
	steps := []Step{s}
	steps[0].TrueStep = &steps[0]
	steps[0].FalseStep = &Step{ID: "leaf", Type: StepLinear, ActionID: "x"}

	var paths []string
	Walk(steps, func(path string, _ Step) bool {
		paths = append(paths, path)
		return true
	})
	assert.Equal(t, []string{"steps[0]", "steps[0].falseStep"}, paths)
}

func TestWalk_SkipChildren(t *testing.T) {
	var ids []string
	Walk(validGuide().Steps, func(_ string, s Step) bool {
		ids = append(ids, s.ID)
		return s.Type != StepConditional
	})
	assert.Equal(t, []string{"s1", "s2", "s3", "s3-a", "s4", "s4-a"}, ids)
}
