package harness

import (
	"github.com/roach88/craftforge/internal/engine"
	"github.com/roach88/craftforge/internal/item"
)

// StepEvent is one top-level step result of the run.
type StepEvent struct {
	Index       int    `json:"index"`
	StepID      string `json:"step_id"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ActionID    string `json:"action_id,omitempty"`
	BranchTaken string `json:"branch_taken,omitempty"`
	BranchLabel string `json:"branch_label,omitempty"`
	Iterations  int    `json:"iterations,omitempty"`
	ShouldLoop  bool   `json:"should_loop,omitempty"`
}

// ActionEvent is one executed action, in execution order.
type ActionEvent struct {
	Seq      int64  `json:"seq"`
	StepID   string `json:"step_id"`
	ActionID string `json:"action_id"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Success mirrors engine.GuideRun.Success.
	Success         bool `json:"success"`
	BudgetExhausted bool `json:"budget_exhausted,omitempty"`

	Steps   []StepEvent   `json:"steps"`
	Actions []ActionEvent `json:"actions"`

	// Final is the item the run ended with.
	Final item.Item `json:"final"`

	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Steps:   []StepEvent{},
		Actions: []ActionEvent{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Record copies a finished guide run into the result.
func (r *Result) Record(run engine.GuideRun) {
	r.Success = run.Success
	r.BudgetExhausted = run.BudgetExhausted
	for i, sr := range run.Results {
		r.Steps = append(r.Steps, StepEvent{
			Index:       i,
			StepID:      sr.StepID,
			Success:     sr.Success,
			Message:     sr.Message,
			ActionID:    sr.ActionID,
			BranchTaken: sr.BranchTaken,
			BranchLabel: sr.BranchLabel,
			Iterations:  sr.Iterations,
			ShouldLoop:  sr.ShouldLoop,
		})
	}
	for _, h := range run.State.StepHistory {
		r.Actions = append(r.Actions, ActionEvent{Seq: h.Seq, StepID: h.StepID, ActionID: h.ActionID})
	}
	r.Final = run.State.CurrentItem
}
