package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/craftforge/internal/condition"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Trace    []ActionEvent // Executed actions for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s (step %s)\n", event.Seq, event.ActionID, event.StepID)
		}
	}
	return buf.String()
}

func assertRunSuccess(result *Result, assertion Assertion) error {
	if assertion.Success == nil {
		return fmt.Errorf("run_success assertion requires success")
	}
	if result.Success == *assertion.Success {
		return nil
	}
	actual := "run stopped early"
	if result.Success {
		actual = "run completed"
	}
	if result.BudgetExhausted {
		actual = "run stopped at the step budget"
	}
	return &AssertionError{
		Type:     AssertRunSuccess,
		Expected: fmt.Sprintf("success = %t", *assertion.Success),
		Actual:   actual,
		Trace:    result.Actions,
	}
}

// assertTraceContains checks that the action ran, from the given step when
// one is named.
func assertTraceContains(trace []ActionEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.ActionID == assertion.Action && (assertion.Step == "" || event.StepID == assertion.Step) {
			return nil
		}
	}

	expected := "action " + assertion.Action
	if assertion.Step != "" {
		expected += " from step " + assertion.Step
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that actions first ran in the specified order.
// Actions don't need to be consecutive (intervening actions are allowed).
func assertTraceOrder(trace []ActionEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if _, seen := positions[event.ActionID]; !seen {
			positions[event.ActionID] = i + 1 // 1-indexed for readability
		}
	}

	for _, action := range assertion.Actions {
		if positions[action] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all actions present: %v", assertion.Actions),
				Actual:   fmt.Sprintf("missing action: %s", action),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Actions); i++ {
		prev := assertion.Actions[i-1]
		curr := assertion.Actions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks if the action ran exactly the specified number of times.
func assertTraceCount(trace []ActionEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.ActionID == assertion.Action {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertStepResult checks the last result recorded for a top-level step.
func assertStepResult(result *Result, assertion Assertion) error {
	var found *StepEvent
	for i := range result.Steps {
		if result.Steps[i].StepID == assertion.Step {
			found = &result.Steps[i]
		}
	}
	if found == nil {
		return &AssertionError{
			Type:     AssertStepResult,
			Expected: fmt.Sprintf("step %s to run", assertion.Step),
			Actual:   "step never ran",
			Trace:    result.Actions,
		}
	}
	if assertion.Success != nil && found.Success != *assertion.Success {
		return &AssertionError{
			Type:     AssertStepResult,
			Expected: fmt.Sprintf("step %s success = %t", assertion.Step, *assertion.Success),
			Actual:   fmt.Sprintf("success = %t: %s", found.Success, found.Message),
			Trace:    result.Actions,
		}
	}
	if assertion.Message != "" && !strings.Contains(found.Message, assertion.Message) {
		return &AssertionError{
			Type:     AssertStepResult,
			Expected: fmt.Sprintf("step %s message containing %q", assertion.Step, assertion.Message),
			Actual:   fmt.Sprintf("message %q", found.Message),
			Trace:    result.Actions,
		}
	}
	return nil
}

// assertFinalItem evaluates the assertion's condition on the final item.
func assertFinalItem(ev *condition.Evaluator, result *Result, assertion Assertion) error {
	c := condition.Equals(assertion.Target, assertion.Value)
	if assertion.Condition != nil {
		c = *assertion.Condition
	}

	holds, err := ev.Evaluate(c, result.Final, nil)
	if err != nil {
		return fmt.Errorf("final_item: %w", err)
	}
	if holds {
		return nil
	}

	actual := "condition does not hold"
	if c.Target != "" {
		if v, err := condition.Resolve(c.Target, result.Final); err == nil {
			actual = fmt.Sprintf("%s = %s", c.Target, describe(v.String()))
		}
	}
	return &AssertionError{
		Type:     AssertFinalItem,
		Expected: fmt.Sprintf("%s %s %s", c.Target, c.Operator, describe(c.Value.String())),
		Actual:   actual,
	}
}

func describe(s string) string {
	if s == "" {
		return "(absent)"
	}
	return s
}

// AssertionContext provides what assertions need beyond the result.
type AssertionContext struct {
	// Evaluator decides final_item conditions. It should be the run's
	// evaluator so custom evaluators resolve.
	Evaluator *condition.Evaluator
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertRunSuccess:
			err = assertRunSuccess(result, assertion)
		case AssertTraceContains:
			err = assertTraceContains(result.Actions, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Actions, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Actions, assertion)
		case AssertStepResult:
			err = assertStepResult(result, assertion)
		case AssertFinalItem:
			if actx == nil || actx.Evaluator == nil {
				err = fmt.Errorf("assertion[%d]: final_item requires an evaluator", i)
			} else {
				err = assertFinalItem(actx.Evaluator, result, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
