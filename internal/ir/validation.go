package ir

import (
	"fmt"
	"strings"
)

// ValidationError is one finding from a validation pass.
//
// Codes are grouped by producer: E1xx action catalogs, E2xx items, E3xx
// guides.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationResult is the batch outcome of a validation pass. Errors holds
// every finding, never only the first.
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  []ValidationError `json:"errors"`
}

// NewValidationResult wraps errs. A nil slice is reported as an empty list.
func NewValidationResult(errs []ValidationError) ValidationResult {
	if errs == nil {
		errs = []ValidationError{}
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// ValidationErrors aggregates findings into a single error value.
type ValidationErrors []ValidationError

// Error lists every finding, one per line.
func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return "validation failed"
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return fmt.Sprintf("validation failed with %d error(s):\n  %s", len(errs), strings.Join(lines, "\n  "))
}
