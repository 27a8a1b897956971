package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across the stores.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeTransport    ErrorCode = "TRANSPORT"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a local (non-remote) failure.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUnauthenticated = NewError(ErrCodeUnauthorized, "no active session")
	ErrInvalidPayload  = NewError(ErrCodeInvalid, "invalid payload")
	ErrNotStored       = NewError(ErrCodeNotFound, "no persisted state")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// RemoteError is the machine-readable rejection body returned by the remote API.
// It is propagated to callers exactly as received.
type RemoteError struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Kind      string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Kind, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// RemoteMessage extracts the human readable message of a structured remote
// rejection. ok is false for every other kind of error.
func RemoteMessage(err error) (msg string, ok bool) {
	var rErr *RemoteError
	if errors.As(err, &rErr) && rErr.Message != "" {
		return rErr.Message, true
	}
	return "", false
}
