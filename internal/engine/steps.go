package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/craftforge/internal/action"
	"github.com/roach88/craftforge/internal/condition"
	"github.com/roach88/craftforge/internal/guide"
	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
)

// ActionRegistry is what the step executor needs from the action catalog.
// *registry.Registry satisfies it.
type ActionRegistry interface {
	GetAction(id string) (action.CraftAction, bool)
	HasAction(id string) bool
	CanExecuteAction(id string, it item.Item, ctx ir.Object) (bool, error)
	ExecuteAction(id string, it item.Item, ctx ir.Object) (action.Result, error)
	EvaluateCondition(c condition.Condition, it item.Item, ctx ir.Object) (bool, error)
}

// StepExecutor interprets guide steps.
type StepExecutor struct {
	actions       ActionRegistry
	clock         Clock
	seq           *Sequence
	maxIterations int
	logger        *slog.Logger
}

// NewStepExecutor creates a step executor over actions. Honors WithClock,
// WithSequence, WithMaxIterations and WithLogger.
func NewStepExecutor(actions ActionRegistry, opts ...Option) *StepExecutor {
	o := buildOptions(opts)
	return newStepExecutor(actions, o)
}

func newStepExecutor(actions ActionRegistry, o options) *StepExecutor {
	return &StepExecutor{
		actions:       actions,
		clock:         o.clock,
		seq:           o.seq,
		maxIterations: o.maxIterations,
		logger:        o.logger,
	}
}

// Execute runs s against it. Executed actions are appended to
// state.StepHistory; nothing else in state is touched. The returned result
// carries the new item. A failed result carries the item as it stood after
// the last successful action inside s.
func (x *StepExecutor) Execute(s guide.Step, it item.Item, state *ExecutionState) StepResult {
	switch s.Type {
	case guide.StepLinear:
		return x.executeLinear(s, it, state)
	case guide.StepConditional:
		return x.executeConditional(s, it, state)
	case guide.StepBranch:
		return x.executeBranch(s, it, state)
	case guide.StepLoop:
		return x.executeLoop(s, it, state)
	default:
		return failure(s.ID, it, fmt.Sprintf("Unknown step type: %s", s.Type))
	}
}

func failure(stepID string, it item.Item, msg string) StepResult {
	return StepResult{StepID: stepID, Success: false, Item: it, Message: msg}
}

func (x *StepExecutor) executeLinear(s guide.Step, it item.Item, state *ExecutionState) StepResult {
	fail := func(msg string) StepResult {
		r := failure(s.ID, it, msg)
		r.ActionID = s.ActionID
		return r
	}

	a, ok := x.actions.GetAction(s.ActionID)
	if !ok {
		return fail(fmt.Sprintf("Step %s: %v", s.ID, action.NewNotFoundError(s.ActionID)))
	}
	if !a.IsEnabled {
		return fail(fmt.Sprintf("Step %s: %v", s.ID, action.NewDisabledError(s.ActionID)))
	}

	ok, err := x.actions.CanExecuteAction(s.ActionID, it, state.Variables)
	if err != nil {
		return fail(fmt.Sprintf("Step %s: checking preconditions of %s: %v", s.ID, s.ActionID, err))
	}
	if !ok {
		return fail(fmt.Sprintf("Step %s: preconditions not met for %s", s.ID, a.Name))
	}

	res, err := x.actions.ExecuteAction(s.ActionID, it, state.Variables)
	if err != nil {
		x.logger.Debug("step action failed", "step", s.ID, "action", s.ActionID, "error", err)
		return fail(fmt.Sprintf("Step %s: %v", s.ID, err))
	}

	state.StepHistory = append(state.StepHistory, HistoryEntry{
		StepID:     s.ID,
		ActionID:   s.ActionID,
		Seq:        x.seq.Next(),
		ItemBefore: item.Copy(it),
		ItemAfter:  item.Copy(res.Item),
		Timestamp:  x.clock.Now(),
	})

	description := "custom handler applied"
	if res.Outcome != nil && res.Outcome.Description != "" {
		description = res.Outcome.Description
	}
	x.logger.Debug("step executed", "step", s.ID, "action", s.ActionID, "outcome", description)

	return StepResult{
		StepID:   s.ID,
		Success:  true,
		Item:     res.Item,
		Message:  fmt.Sprintf("Executed %s: %s", a.Name, description),
		ActionID: s.ActionID,
		Outcome:  res.Outcome,
		Warnings: res.Warnings,
	}
}

func (x *StepExecutor) executeConditional(s guide.Step, it item.Item, state *ExecutionState) StepResult {
	if s.Condition == nil {
		return failure(s.ID, it, fmt.Sprintf("Conditional step %s has no condition", s.ID))
	}
	holds, err := x.actions.EvaluateCondition(*s.Condition, it, state.Variables)
	if err != nil {
		return failure(s.ID, it, fmt.Sprintf("Step %s: evaluating condition on %s: %v", s.ID, describeTarget(*s.Condition), err))
	}

	next, path := s.FalseStep, PathFalse
	if holds {
		next, path = s.TrueStep, PathTrue
	}
	if next == nil {
		r := failure(s.ID, it, fmt.Sprintf("Conditional step %s has no %s step", s.ID, path))
		r.BranchTaken = path
		return r
	}

	r := x.Execute(*next, it, state)
	r.StepID = s.ID
	r.BranchTaken = path
	r.Message = fmt.Sprintf("Condition %s: %s", path, r.Message)
	return r
}

func (x *StepExecutor) executeBranch(s guide.Step, it item.Item, state *ExecutionState) StepResult {
	for i, b := range s.Branches {
		matches, err := x.actions.EvaluateCondition(b.Condition, it, state.Variables)
		if err != nil {
			return failure(s.ID, it, fmt.Sprintf("Step %s: evaluating branch %d condition on %s: %v",
				s.ID, i, describeTarget(b.Condition), err))
		}
		if !matches {
			continue
		}

		label := b.Label
		if label == "" {
			label = fmt.Sprintf("branch %d", i)
		}
		current, warnings, failed := x.runSequence(b.Steps, it, state)
		if failed != nil {
			r := failure(s.ID, current, fmt.Sprintf("Branch %q failed: %s", label, failed.Message))
			r.BranchLabel = b.Label
			r.ActionID = failed.ActionID
			return r
		}
		return StepResult{
			StepID:      s.ID,
			Success:     true,
			Item:        current,
			Message:     fmt.Sprintf("Executed branch %q (%d steps)", label, len(b.Steps)),
			BranchLabel: b.Label,
			Warnings:    warnings,
		}
	}
	return failure(s.ID, it, "No matching branch found")
}

func (x *StepExecutor) executeLoop(s guide.Step, it item.Item, state *ExecutionState) StepResult {
	if s.Condition == nil {
		return failure(s.ID, it, fmt.Sprintf("Loop step %s has no condition", s.ID))
	}
	limit := s.MaxIterations
	if limit <= 0 {
		limit = x.maxIterations
	}

	current := it
	var warnings []string
	iterations := 0
	for iterations < limit {
		holds, err := x.actions.EvaluateCondition(*s.Condition, current, state.Variables)
		if err != nil {
			return failure(s.ID, current, fmt.Sprintf("Step %s: evaluating loop condition on %s: %v",
				s.ID, describeTarget(*s.Condition), err))
		}
		if !holds {
			break
		}

		next, w, failed := x.runSequence(s.Steps, current, state)
		warnings = append(warnings, w...)
		if failed != nil {
			r := failure(s.ID, next, fmt.Sprintf("Loop iteration %d failed: %s", iterations+1, failed.Message))
			r.Iterations = iterations + 1
			r.ActionID = failed.ActionID
			return r
		}
		current = next
		iterations++
	}

	capped := iterations >= limit
	shouldLoop := false
	if capped {
		holds, err := x.actions.EvaluateCondition(*s.Condition, current, state.Variables)
		if err != nil {
			return failure(s.ID, current, fmt.Sprintf("Step %s: evaluating loop condition on %s: %v",
				s.ID, describeTarget(*s.Condition), err))
		}
		shouldLoop = holds
	}

	msg := fmt.Sprintf("Loop completed after %d iterations", iterations)
	if capped {
		msg += " (max iterations reached)"
	}
	x.logger.Debug("loop finished", "step", s.ID, "iterations", iterations, "should_loop", shouldLoop)

	return StepResult{
		StepID:     s.ID,
		Success:    true,
		Item:       current,
		Message:    msg,
		Iterations: iterations,
		ShouldLoop: shouldLoop,
		Warnings:   warnings,
	}
}

// runSequence executes steps in order, threading the item. It stops at the
// first failure and returns it together with the item reached so far.
func (x *StepExecutor) runSequence(steps []guide.Step, it item.Item, state *ExecutionState) (item.Item, []string, *StepResult) {
	current := it
	var warnings []string
	for _, sub := range steps {
		r := x.Execute(sub, current, state)
		if !r.Success {
			return current, warnings, &r
		}
		warnings = append(warnings, r.Warnings...)
		current = r.Item
	}
	return current, warnings, nil
}

// describeTarget names a condition for failure messages.
func describeTarget(c condition.Condition) string {
	if c.Target != "" {
		return fmt.Sprintf("%s %s", c.Target, c.Operator)
	}
	return string(c.Operator)
}
