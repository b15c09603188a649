// Package services implements the application layer between the HTTP
// handlers and persistence.
package services

import (
	"errors"
	"fmt"
)

// Client errors, mapped to 4xx responses by the web layer.
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidSortField   = errors.New("invalid sort field")
	ErrInvalidSortOrder   = errors.New("invalid sort order")
	ErrInvalidWindow      = errors.New("window days must be a positive integer")
	ErrWorkflowNil        = errors.New("workflow cannot be nil")
	ErrWorkflowDeleted    = errors.New("workflow is deleted")
	ErrInvalidDefinition  = errors.New("invalid workflow definition")
	ErrUnknownTriggerType = errors.New("unknown trigger type")
	ErrWorkflowNotEnabled = errors.New("workflow is not enabled")
)

// ValidationError wraps a client error with the failing operation and a
// stable code for API responses.
type ValidationError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError reports whether the error should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrInvalidDefinition) ||
		errors.Is(err, ErrUnknownTriggerType)
}

// IsConflictError reports whether the error should map to HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrWorkflowDeleted) ||
		errors.Is(err, ErrWorkflowNotEnabled)
}

func newValidationError(op, code, message string, err error) *ValidationError {
	return &ValidationError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
