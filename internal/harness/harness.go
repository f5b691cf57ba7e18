package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/craftforge/internal/action"
	"github.com/roach88/craftforge/internal/compiler"
	"github.com/roach88/craftforge/internal/engine"
	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
	"github.com/roach88/craftforge/internal/registry"
	"github.com/roach88/craftforge/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each scenario gets its own registry and manager:
//  1. Build the random source (scripted rolls or seed)
//  2. Register the built-in actions plus the scenario catalog
//  3. Validate and store the guide, then run it on the starting item
//  4. Evaluate assertions against the recorded run
//
// An error is returned when the scenario cannot be run at all (a catalog
// that fails to compile or validate, an invalid guide or item). Failed assertions only mark the result.
func Run(scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ids := testutil.NewSequentialIDs("id")

	reg := registry.New(
		registry.WithRand(scenario.random()),
		registry.WithIDGenerator(ids),
		registry.WithLogger(logger),
	)
	if scenario.Catalog != "" {
		actions, err := compiler.CompileFile(scenario.Catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to compile catalog: %w", err)
		}
		if errs := compiler.Validate(actions, compiler.KnownFrom(reg.Evaluator(), reg.Executor())); len(errs) > 0 {
			return nil, fmt.Errorf("invalid catalog: %w", ir.ValidationErrors(errs))
		}
		for _, a := range actions {
			if err := reg.RegisterAction(a); err != nil {
				return nil, fmt.Errorf("failed to register catalog: %w", err)
			}
		}
	}

	mgr := engine.NewManager(reg,
		engine.WithClock(testutil.NewSteppingClock()),
		engine.WithIDGenerator(ids),
		engine.WithMaxSteps(scenario.MaxSteps),
		engine.WithLogger(logger),
	)

	if res := mgr.ValidateGuide(*scenario.Guide); !res.IsValid {
		return nil, fmt.Errorf("invalid guide: %w", ir.ValidationErrors(res.Errors))
	}

	start := item.Copy(scenario.Item)
	if start.ID == "" {
		start.ID = ids.NewID()
	}
	if res := item.Validate(start); !res.IsValid {
		return nil, fmt.Errorf("invalid item: %w", ir.ValidationErrors(res.Errors))
	}

	g := mgr.CreateGuide(*scenario.Guide)
	run, err := mgr.ExecuteGuide(g.ID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to run guide: %w", err)
	}

	result := NewResult()
	result.Record(run)

	actx := &AssertionContext{Evaluator: reg.Evaluator()}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}
	return result, nil
}

// random returns the scenario's random source.
func (s *Scenario) random() action.Rand {
	if len(s.Rolls) > 0 {
		return testutil.NewScriptedRand(s.Rolls...).Loop()
	}
	return action.NewRand(s.Seed)
}
