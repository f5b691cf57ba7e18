package action

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an execution failure.
type ErrorCode string

const (
	// CodePreconditionNotMet: at least one precondition evaluated false.
	CodePreconditionNotMet ErrorCode = "PRECONDITION_NOT_MET"

	// CodeNoValidOutcome: every outcome was filtered out by its conditions.
	CodeNoValidOutcome ErrorCode = "NO_VALID_OUTCOME"

	// CodeActionNotFound: the action id is not registered.
	CodeActionNotFound ErrorCode = "ACTION_NOT_FOUND"

	// CodeActionDisabled: the action's isEnabled flag is false.
	CodeActionDisabled ErrorCode = "ACTION_DISABLED"

	// CodeHandlerFailed: a custom handler returned an error.
	CodeHandlerFailed ErrorCode = "HANDLER_FAILED"
)

var (
	// ErrDuplicateHandler is returned when a handler name is registered twice.
	ErrDuplicateHandler = errors.New("handler already registered")

	// ErrHandlerNotFound is returned by handler lookups that miss.
	ErrHandlerNotFound = errors.New("handler not registered")
)

// Error is a structured execution failure.
type Error struct {
	Code     ErrorCode
	ActionID string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ActionID != "" {
		return fmt.Sprintf("[%s] action %s: %s", e.Code, e.ActionID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

func hasCode(err error, code ErrorCode) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// IsPreconditionError reports whether err is a PRECONDITION_NOT_MET error.
func IsPreconditionError(err error) bool { return hasCode(err, CodePreconditionNotMet) }

// IsNoValidOutcome reports whether err is a NO_VALID_OUTCOME error.
func IsNoValidOutcome(err error) bool { return hasCode(err, CodeNoValidOutcome) }

// IsNotFound reports whether err is an ACTION_NOT_FOUND error.
func IsNotFound(err error) bool { return hasCode(err, CodeActionNotFound) }

// IsDisabled reports whether err is an ACTION_DISABLED error.
func IsDisabled(err error) bool { return hasCode(err, CodeActionDisabled) }

// IsHandlerFailed reports whether err is a HANDLER_FAILED error.
func IsHandlerFailed(err error) bool { return hasCode(err, CodeHandlerFailed) }

// NewNotFoundError creates an ACTION_NOT_FOUND error.
func NewNotFoundError(actionID string) *Error {
	return &Error{
		Code:     CodeActionNotFound,
		ActionID: actionID,
		Message:  "action is not registered",
	}
}

// NewDisabledError creates an ACTION_DISABLED error.
func NewDisabledError(actionID string) *Error {
	return &Error{
		Code:     CodeActionDisabled,
		ActionID: actionID,
		Message:  "action is disabled",
	}
}

// NewPreconditionError creates a PRECONDITION_NOT_MET error. detail names
// the failing precondition.
func NewPreconditionError(actionID, detail string) *Error {
	return &Error{
		Code:     CodePreconditionNotMet,
		ActionID: actionID,
		Message:  "preconditions not met: " + detail,
	}
}

// NewNoValidOutcomeError creates a NO_VALID_OUTCOME error.
func NewNoValidOutcomeError(actionID string, declared int) *Error {
	return &Error{
		Code:     CodeNoValidOutcome,
		ActionID: actionID,
		Message:  fmt.Sprintf("no valid outcome (0 of %d outcomes eligible)", declared),
	}
}

// NewHandlerError creates a HANDLER_FAILED error wrapping cause.
func NewHandlerError(actionID, handler string, cause error) *Error {
	return &Error{
		Code:     CodeHandlerFailed,
		ActionID: actionID,
		Message:  fmt.Sprintf("handler %s failed: %v", handler, cause),
		Cause:    cause,
	}
}
