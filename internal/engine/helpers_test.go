package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/craftforge/internal/action"
	"github.com/roach88/craftforge/internal/condition"
	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
	"github.com/roach88/craftforge/internal/registry"
	"github.com/roach88/craftforge/internal/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTestRegistry returns the built-in catalog plus "noop", an action that
// always succeeds and changes nothing.
func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New(
		registry.WithRand(testutil.NewScriptedRand(0.5).Loop()),
		registry.WithIDGenerator(testutil.NewSequentialIDs("gen")),
		registry.WithLogger(discard),
	)
	require.NoError(t, r.RegisterAction(action.CraftAction{
		ID:        "noop",
		Name:      "No-op",
		Category:  "test",
		IsEnabled: true,
		Outcomes:  []action.Outcome{{Probability: 1, Description: "nothing happened", Changes: []action.ItemChange{}}},
	}))
	require.NoError(t, r.RegisterAction(action.CraftAction{
		ID:        "off",
		Name:      "Disabled",
		Category:  "test",
		IsEnabled: false,
		Outcomes:  []action.Outcome{{Probability: 1}},
	}))
	return r
}

func newTestStepExecutor(t *testing.T, opts ...Option) *StepExecutor {
	t.Helper()
	base := []Option{WithClock(testutil.NewSteppingClock()), WithLogger(discard)}
	return NewStepExecutor(newTestRegistry(t), append(base, opts...)...)
}

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	base := []Option{
		WithClock(testutil.NewSteppingClock()),
		WithIDGenerator(testutil.NewSequentialIDs("guide")),
		WithLogger(discard),
	}
	return NewManager(newTestRegistry(t), append(base, opts...)...)
}

func plate(quality int) item.Item {
	it := item.New("Astral Plate", testutil.NewSequentialIDs("item"))
	return item.SetQuality(it, quality)
}

func qualityBelow(n int) condition.Condition {
	return condition.LessThan("item.quality", ir.Int(n))
}

// always is a condition that holds for every item.
var always = condition.Condition{Operator: condition.OpNot}
