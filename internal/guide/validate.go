package guide

import (
	"fmt"
	"strings"

	"github.com/roach88/craftforge/internal/ir"
)

// Guide validation error codes (E300-E399)
const (
	ErrTitleRequired          = "E300" // title is required
	ErrLinearNoAction         = "E301" // linear step needs an actionId
	ErrConditionalNoCondition = "E302" // conditional step needs a condition
	ErrConditionalNoBranches  = "E303" // conditional step needs trueStep and falseStep
	ErrBranchNoBranches       = "E304" // branch step needs at least one branch
	ErrLoopNoCondition        = "E305" // loop step needs a condition
	ErrLoopNoSteps            = "E306" // loop step needs at least one step
	ErrUnknownStepType        = "E307" // step type outside the closed set
	ErrStepIDRequired         = "E308" // step id is required
	ErrDuplicateStepID        = "E309" // two steps share an id
	ErrCircularReference      = "E310" // step id reachable from itself
	ErrNegativeMaxIterations  = "E311" // maxIterations below 0
	ErrUnknownAction          = "E312" // linear step names an unregistered action
)

// ActionLookup reports whether an action id is registered.
type ActionLookup func(id string) bool

// Validate checks g and returns every finding. knownAction may be nil, in
// which case action ids are not resolved.
func Validate(g CraftGuide, knownAction ActionLookup) ir.ValidationResult {
	return ir.NewValidationResult(validate(g, knownAction))
}

func validate(g CraftGuide, knownAction ActionLookup) []ir.ValidationError {
	var errs []ir.ValidationError

	if strings.TrimSpace(g.Title) == "" {
		errs = append(errs, ir.ValidationError{
			Field:   "title",
			Message: "title is required",
			Code:    ErrTitleRequired,
		})
	}

	firstSeen := make(map[string]string)
	Walk(g.Steps, func(path string, s Step) bool {
		errs = append(errs, validateStep(path, s, knownAction)...)
		if s.ID == "" {
			return true
		}
		if prev, dup := firstSeen[s.ID]; dup {
			errs = append(errs, ir.ValidationError{
				Field:   path + ".id",
				Message: fmt.Sprintf("duplicate step id %q (first used at %s)", s.ID, prev),
				Code:    ErrDuplicateStepID,
			})
		} else {
			firstSeen[s.ID] = path
		}
		return true
	})

	for _, c := range AnalyzeCycles(g.Steps) {
		errs = append(errs, ir.ValidationError{
			Field:   "steps",
			Message: c.Message,
			Code:    ErrCircularReference,
		})
	}
	return errs
}

// validateStep checks one step without descending into its children.
func validateStep(path string, s Step, knownAction ActionLookup) []ir.ValidationError {
	var errs []ir.ValidationError
	add := func(field, code, msg string) {
		errs = append(errs, ir.ValidationError{Field: path + field, Message: msg, Code: code})
	}

	if s.ID == "" {
		add(".id", ErrStepIDRequired, "step id is required")
	}

	switch s.Type {
	case StepLinear:
		if s.ActionID == "" {
			add(".actionId", ErrLinearNoAction, "linear step requires an actionId")
		} else if knownAction != nil && !knownAction(s.ActionID) {
			add(".actionId", ErrUnknownAction, fmt.Sprintf("action %q is not registered", s.ActionID))
		}

	case StepConditional:
		if s.Condition == nil {
			add(".condition", ErrConditionalNoCondition, "conditional step requires a condition")
		}
		if s.TrueStep == nil || s.FalseStep == nil {
			add("", ErrConditionalNoBranches, "conditional step requires both trueStep and falseStep")
		}

	case StepBranch:
		if len(s.Branches) == 0 {
			add(".branches", ErrBranchNoBranches, "branch step requires at least one branch")
		}

	case StepLoop:
		if s.Condition == nil {
			add(".condition", ErrLoopNoCondition, "loop step requires a condition")
		}
		if len(s.Steps) == 0 {
			add(".steps", ErrLoopNoSteps, "loop step requires at least one step")
		}
		if s.MaxIterations < 0 {
			add(".maxIterations", ErrNegativeMaxIterations,
				fmt.Sprintf("maxIterations must not be negative, got %d", s.MaxIterations))
		}

	default:
		add(".type", ErrUnknownStepType, fmt.Sprintf("unknown step type %q", s.Type))
	}
	return errs
}
