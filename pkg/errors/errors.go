// Package errors defines common error types for the schelling-cs engine.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application. Only configuration and input validation
// ever surface an AppError in this engine (spec §7): invariant violations
// are debug-only assertions, and numerical/degenerate-geometry edge cases
// are not errors at all.
const (
	CodeUnknown      = "UNKNOWN_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeConfigError  = "CONFIG_ERROR"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Common error instances.
var (
	ErrInvalidInput = New(CodeInvalidInput, "invalid input")
	ErrConfigError  = New(CodeConfigError, "configuration error")
)

// IsConfigError reports whether err is (or wraps) a configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigError)
}

// IsInvalidInput reports whether err is (or wraps) an invalid-input error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
