package engine

import (
	"time"

	"github.com/roach88/craftforge/internal/action"
	"github.com/roach88/craftforge/internal/ir"
	"github.com/roach88/craftforge/internal/item"
)

// ExecutionState is the running snapshot of one guide run.
//
// The state is owned by whoever runs the guide and is never stored by the
// manager.
type ExecutionState struct {
	GuideID          string         `json:"guideId"`
	CurrentItem      item.Item      `json:"currentItem"`
	CurrentStepIndex int            `json:"currentStepIndex"`
	StepHistory      []HistoryEntry `json:"stepHistory"`
	Variables        ir.Object      `json:"variables"`
}

// HistoryEntry records one executed action. Items are deep copies.
type HistoryEntry struct {
	StepID     string    `json:"stepId"`
	ActionID   string    `json:"actionId"`
	Seq        int64     `json:"seq"`
	ItemBefore item.Item `json:"itemBefore"`
	ItemAfter  item.Item `json:"itemAfter"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewExecutionState starts a run of guideID on a copy of start.
func NewExecutionState(guideID string, start item.Item) ExecutionState {
	return ExecutionState{
		GuideID:     guideID,
		CurrentItem: item.Copy(start),
		StepHistory: []HistoryEntry{},
		Variables:   ir.Object{},
	}
}

// Branch paths taken by a conditional step.
const (
	PathTrue  = "true"
	PathFalse = "false"
)

// StepResult is the outcome of executing one step.
type StepResult struct {
	StepID  string    `json:"stepId"`
	Success bool      `json:"success"`
	Item    item.Item `json:"item"`
	Message string    `json:"message"`

	// ActionID and Outcome are set for linear steps and for conditional
	// steps that delegated to one.
	ActionID string          `json:"actionId,omitempty"`
	Outcome  *action.Outcome `json:"outcome,omitempty"`

	// BranchTaken is "true" or "false" for conditional steps.
	BranchTaken string `json:"branchTaken,omitempty"`
	// BranchLabel is the label of the branch arm that ran.
	BranchLabel string `json:"branchLabel,omitempty"`

	// Iterations counts completed loop iterations. On a failed loop it is
	// the iteration that failed.
	Iterations int `json:"iterations,omitempty"`
	// ShouldLoop is set when a loop stopped at its cap while its condition
	// still held. The manager keeps the cursor on the loop step.
	ShouldLoop bool `json:"shouldLoop,omitempty"`
	// NextStepIndex overrides the cursor advance when set.
	NextStepIndex *int `json:"nextStepIndex,omitempty"`

	// Done is set by Manager.ExecuteNextStep when the cursor was already
	// past the last step and nothing ran.
	Done bool `json:"done,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}
