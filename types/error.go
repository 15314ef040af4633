package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unified error code across paperflow.
type ErrorCode string

// Session error codes.
const (
	// ErrTemplate marks a configuration defect in a prompt template.
	// Fatal: the session cannot proceed with broken templates.
	ErrTemplate ErrorCode = "TEMPLATE_ERROR"

	// ErrDependencyNotReady means an agent was dispatched before its
	// declared dependencies were accepted. This is a coordinator
	// scheduling bug, never a user-facing condition.
	ErrDependencyNotReady ErrorCode = "DEPENDENCY_NOT_READY"

	// ErrExtraction means no structured facts could be built from the
	// raw research material. Fatal for the session.
	ErrExtraction ErrorCode = "EXTRACTION_ERROR"
)

// Model error codes. All are transient and retryable.
const (
	ErrModelRateLimited     ErrorCode = "MODEL_RATE_LIMITED"
	ErrModelTimeout         ErrorCode = "MODEL_TIMEOUT"
	ErrModelInvalidResponse ErrorCode = "MODEL_INVALID_RESPONSE"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Role      Role      `json:"role,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	Retryable bool      `json:"retryable"`
	Cause     error     `json:"-"`
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
// Model error codes are marked retryable automatically.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: strings.HasPrefix(string(code), "MODEL_"),
	}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRole tags the error with the role it occurred for.
func (e *Error) WithRole(role Role) *Error {
	e.Role = role
	return e
}

// WithProvider sets the inference provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// WithRetryable overrides the retryable flag.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error, or "" if the error
// is not a *types.Error.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsModelError reports whether err carries one of the MODEL_* codes.
func IsModelError(err error) bool {
	return strings.HasPrefix(string(GetErrorCode(err)), "MODEL_")
}
