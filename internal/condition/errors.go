package condition

import "errors"

var (
	// ErrUnknownOperator is returned when an operator is outside the closed
	// set and no custom evaluator is registered under its name.
	ErrUnknownOperator = errors.New("unknown condition operator")

	// ErrDuplicateEvaluator is returned when registering a name twice.
	ErrDuplicateEvaluator = errors.New("custom evaluator already registered")

	// ErrEvaluatorNotFound is returned by Lookup for unregistered names.
	ErrEvaluatorNotFound = errors.New("custom evaluator not registered")
)

// IsUnknownOperator reports whether err stems from an unresolvable operator.
func IsUnknownOperator(err error) bool {
	return errors.Is(err, ErrUnknownOperator)
}
