package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/craftforge/internal/action"
	"github.com/roach88/craftforge/internal/condition"
	"github.com/roach88/craftforge/internal/ir"
)

// Catalog validation error codes (E100-E199)
const (
	ErrActionIDEmpty        = "E100" // action id is required
	ErrActionNameEmpty      = "E101" // action name is required
	ErrActionNoOutcomes     = "E102" // action needs outcomes or a custom handler
	ErrNegativeProbability  = "E103" // outcome weight below 0
	ErrUnknownChangeType    = "E104" // change type outside the closed set
	ErrDuplicateActionID    = "E105" // two actions share an id
	ErrUnknownOperator      = "E106" // operator with no registered evaluator
	ErrUnknownHandler       = "E107" // handler not registered and nothing to fall back on
	ErrChangeMissingField   = "E108" // change lacks the field its type needs
	ErrUnknownChangeHandler = "E109" // custom change names an unregistered handler
)

// Known resolves extension names during validation. A nil func skips that
// check.
type Known struct {
	Evaluator     func(name string) bool
	Handler       func(name string) bool
	ChangeHandler func(name string) bool
}

// KnownFrom resolves extension names against what ev and x have
// registered.
func KnownFrom(ev *condition.Evaluator, x *action.Executor) Known {
	handlers := x.HandlerNames()
	return Known{
		Evaluator:     ev.Has,
		Handler:       func(name string) bool { return slices.Contains(handlers, name) },
		ChangeHandler: x.HasChangeHandler,
	}
}

// Validate checks a compiled catalog. Returns all errors found (does not
// fail-fast).
func Validate(actions []action.CraftAction, known Known) []ir.ValidationError {
	var errs []ir.ValidationError
	seen := make(map[string]bool)

	for i, a := range actions {
		prefix := fmt.Sprintf("actions[%d]", i)

		// E100/E105: ids are required and unique
		if strings.TrimSpace(a.ID) == "" {
			errs = append(errs, ir.ValidationError{
				Field:   prefix + ".id",
				Message: "action id is required",
				Code:    ErrActionIDEmpty,
			})
		} else if seen[a.ID] {
			errs = append(errs, ir.ValidationError{
				Field:   prefix + ".id",
				Message: fmt.Sprintf("duplicate action id: %q", a.ID),
				Code:    ErrDuplicateActionID,
			})
		}
		seen[a.ID] = true

		errs = append(errs, validateAction(prefix, a, known)...)
	}
	return errs
}

func validateAction(prefix string, a action.CraftAction, known Known) []ir.ValidationError {
	var errs []ir.ValidationError

	// E101: name is required
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, ir.ValidationError{
			Field:   prefix + ".name",
			Message: "action name is required",
			Code:    ErrActionNameEmpty,
		})
	}

	// E102/E107: something must produce the result
	switch {
	case len(a.Outcomes) == 0 && a.CustomHandler == "":
		errs = append(errs, ir.ValidationError{
			Field:   prefix + ".outcomes",
			Message: fmt.Sprintf("action %q must declare outcomes or a custom handler", a.ID),
			Code:    ErrActionNoOutcomes,
		})
	case len(a.Outcomes) == 0 && known.Handler != nil && !known.Handler(a.CustomHandler):
		errs = append(errs, ir.ValidationError{
			Field:   prefix + ".customHandler",
			Message: fmt.Sprintf("custom handler %q is not registered and the action has no outcomes to fall back on", a.CustomHandler),
			Code:    ErrUnknownHandler,
		})
	}

	for j, c := range a.Preconditions {
		errs = append(errs, validateCondition(fmt.Sprintf("%s.preconditions[%d]", prefix, j), c, known)...)
	}

	for j, o := range a.Outcomes {
		outPath := fmt.Sprintf("%s.outcomes[%d]", prefix, j)

		// E103: weights are non-negative
		if o.Probability < 0 {
			errs = append(errs, ir.ValidationError{
				Field:   outPath + ".probability",
				Message: fmt.Sprintf("probability must not be negative, got %v", o.Probability),
				Code:    ErrNegativeProbability,
			})
		}
		for k, c := range o.Conditions {
			errs = append(errs, validateCondition(fmt.Sprintf("%s.conditions[%d]", outPath, k), c, known)...)
		}
		for k, ch := range o.Changes {
			errs = append(errs, validateChange(fmt.Sprintf("%s.changes[%d]", outPath, k), ch, known)...)
		}
	}
	return errs
}

// validateCondition checks that every operator in the tree can be
// evaluated.
func validateCondition(path string, c condition.Condition, known Known) []ir.ValidationError {
	var errs []ir.ValidationError

	// E106: non-builtin operators need a registered evaluator
	if !c.Operator.IsBuiltin() && known.Evaluator != nil {
		name := c.EvaluatorName()
		if name == "" || !known.Evaluator(name) {
			errs = append(errs, ir.ValidationError{
				Field:   path + ".operator",
				Message: fmt.Sprintf("operator %q has no registered evaluator %q", c.Operator, name),
				Code:    ErrUnknownOperator,
			})
		}
	}
	for i, child := range c.Conditions {
		errs = append(errs, validateCondition(fmt.Sprintf("%s.conditions[%d]", path, i), child, known)...)
	}
	return errs
}

// validateChange checks a change's type and the fields that type needs.
func validateChange(path string, ch action.ItemChange, known Known) []ir.ValidationError {
	missing := func(field string) []ir.ValidationError {
		return []ir.ValidationError{{
			Field:   path + "." + field,
			Message: fmt.Sprintf("%s change requires %s", ch.Type, field),
			Code:    ErrChangeMissingField,
		}}
	}

	switch ch.Type {
	case action.ChangeAddModifier, action.ChangeModifyProperty:
		if ch.Target == "" {
			return missing("target")
		}
	case action.ChangeRemoveModifier:
		if ch.ModifierID == "" {
			return missing("modifierId")
		}
	case action.ChangeRemoveSocket:
		if ch.SocketID == "" {
			return missing("socketId")
		}
	case action.ChangeLinkSockets:
		if ch.Value.IsAbsent() {
			return missing("value")
		}
	case action.ChangeCustom:
		if ch.CustomHandler == "" {
			return missing("customHandler")
		}
		// E109
		if known.ChangeHandler != nil && !known.ChangeHandler(ch.CustomHandler) {
			return []ir.ValidationError{{
				Field:   path + ".customHandler",
				Message: fmt.Sprintf("custom change handler %q is not registered", ch.CustomHandler),
				Code:    ErrUnknownChangeHandler,
			}}
		}
	case action.ChangeAddSocket, action.ChangeReroll, action.ChangeCorrupt:
	default:
		// E104
		return []ir.ValidationError{{
			Field:   path + ".type",
			Message: fmt.Sprintf("unknown change type %q", ch.Type),
			Code:    ErrUnknownChangeType,
		}}
	}
	return nil
}
