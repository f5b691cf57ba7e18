package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/craftforge/internal/ir"
)

// RuntimeError represents an error detected while managing or running
// guides.
//
// Runtime errors include:
//   - Guide not found: the guide id is not in the store
//   - Step not found: a step edit names a step the guide does not have
//   - Invalid guide: import or run rejected a guide that fails validation
//   - Step budget exceeded: a run stopped at its step budget
//
// RuntimeError includes structured fields for diagnostics.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// GuideID identifies the affected guide.
	GuideID string

	// StepID identifies the affected step, if any.
	StepID string

	// Details contains additional context.
	Details map[string]string

	// Cause is the underlying error, if any.
	Cause error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeGuideNotFound indicates the guide id is unknown.
	ErrCodeGuideNotFound RuntimeErrorCode = "GUIDE_NOT_FOUND"

	// ErrCodeStepNotFound indicates the step id is unknown within the guide.
	ErrCodeStepNotFound RuntimeErrorCode = "STEP_NOT_FOUND"

	// ErrCodeInvalidGuide indicates the guide failed validation.
	ErrCodeInvalidGuide RuntimeErrorCode = "INVALID_GUIDE"

	// ErrCodeStepBudgetExceeded indicates a run reached its step budget.
	ErrCodeStepBudgetExceeded RuntimeErrorCode = "STEP_BUDGET_EXCEEDED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.GuideID != "" && e.StepID != "" {
		return fmt.Sprintf("%s: %s (guide=%s, step=%s)", e.Code, e.Message, e.GuideID, e.StepID)
	}
	if e.GuideID != "" {
		return fmt.Sprintf("%s: %s (guide=%s)", e.Code, e.Message, e.GuideID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RuntimeError) Unwrap() error { return e.Cause }

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsNotFound reports whether err is a guide-not-found or step-not-found
// error. Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeGuideNotFound) || hasCode(err, ErrCodeStepNotFound)
}

// IsInvalidGuide reports whether err is a validation failure.
func IsInvalidGuide(err error) bool {
	return hasCode(err, ErrCodeInvalidGuide)
}

// IsBudgetError reports whether err is a step budget error.
func IsBudgetError(err error) bool {
	return hasCode(err, ErrCodeStepBudgetExceeded)
}

// NewGuideNotFoundError creates a RuntimeError for an unknown guide id.
func NewGuideNotFoundError(guideID string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeGuideNotFound,
		Message: "guide not found",
		GuideID: guideID,
	}
}

// NewStepNotFoundError creates a RuntimeError for an unknown step id.
func NewStepNotFoundError(guideID, stepID string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeStepNotFound,
		Message: "step not found",
		GuideID: guideID,
		StepID:  stepID,
	}
}

// NewInvalidGuideError creates a RuntimeError carrying every validation
// failure. errors.As with ir.ValidationErrors recovers the list.
func NewInvalidGuideError(guideID string, errs []ir.ValidationError) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidGuide,
		Message: fmt.Sprintf("guide failed validation with %d error(s)", len(errs)),
		GuideID: guideID,
		Details: map[string]string{"errors": fmt.Sprintf("%d", len(errs))},
		Cause:   ir.ValidationErrors(errs),
	}
}

// NewBudgetError creates a RuntimeError for an exhausted step budget.
func NewBudgetError(guideID string, steps, maxSteps int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeStepBudgetExceeded,
		Message: fmt.Sprintf("run exceeded step budget (%d > %d)", steps, maxSteps),
		GuideID: guideID,
		Details: map[string]string{
			"steps":     fmt.Sprintf("%d", steps),
			"max_steps": fmt.Sprintf("%d", maxSteps),
		},
	}
}
