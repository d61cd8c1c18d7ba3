package shared

import (
	"errors"
	"fmt"
)

// DomainError is a rule violation with a stable code. The HTTP layer maps the code to
// a status; the message is safe to show to callers.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is compares by code, so a sentinel wrapped with fmt.Errorf("...: %w") still matches
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewTransitionError reports a status change the state machine of kind does not allow
func NewTransitionError(kind, from, to string) *DomainError {
	return &DomainError{
		Code:    ErrInvalidState.Code,
		Message: fmt.Sprintf("%s cannot move from %s to %s", kind, from, to),
	}
}

var (
	ErrNotFound     = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidState = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)
