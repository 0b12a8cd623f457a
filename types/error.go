package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

// Run-level error codes. These abort a run.
const (
	ErrUnknownTeam        ErrorCode = "UNKNOWN_TEAM"
	ErrOrchestrationFault ErrorCode = "ORCHESTRATION_FAULT"
)

// Specialist error codes. These are folded into the specialist's result
// and never abort the run.
const (
	ErrBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	ErrTimeout            ErrorCode = "TIMEOUT"
	ErrMalformedResponse  ErrorCode = "MALFORMED_RESPONSE"
	ErrToolNotPermitted   ErrorCode = "TOOL_NOT_PERMITTED"
	ErrToolExecution      ErrorCode = "TOOL_EXECUTION_ERROR"
)

// Lookup / request error codes
const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Backend    string    `json:"backend,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithBackend sets the inference backend name.
func (e *Error) WithBackend(backend string) *Error {
	e.Backend = backend
	return e
}

// IsRetryable checks if an error is retryable. Wrapped errors are
// unwrapped via errors.As, so fmt.Errorf("...: %w", err) keeps the flag.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error, unwrapping as needed.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
