// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters and malformed price series
//   - Data/Resource errors (200-299): Price source loading and query failures
//   - Indicator errors (300-399): Rolling statistic calculation errors
//   - Strategy errors (400-499): Strategy lookup and configuration errors
//   - Backtest errors (600-699): Executor state and result errors
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Report a bad parameter
//	err := errors.NewValidationError("short_window", 0, "must be at least 1")
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to execute query", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeInvalidWindow) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error.
// Returns ErrCodeUnknown if the chain holds neither an *Error nor a *ValidationError.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var v *ValidationError
	if errors.As(err, &v) {
		return v.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// ValidationError reports a rejected input and names the parameter responsible
// for it, e.g. "long_window" or "bars[3].time".
type ValidationError struct {
	Code      ErrorCode
	Parameter string
	Value     any
	Reason    string
}

// NewValidationError creates a ValidationError with ErrCodeInvalidParameter.
func NewValidationError(parameter string, value any, reason string) *ValidationError {
	return &ValidationError{
		Code:      ErrCodeInvalidParameter,
		Parameter: parameter,
		Value:     value,
		Reason:    reason,
	}
}

// NewValidationErrorf creates a ValidationError with the given code and a formatted reason.
func NewValidationErrorf(code ErrorCode, parameter string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{
		Code:      code,
		Parameter: parameter,
		Value:     value,
		Reason:    fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%d] invalid %s (%v): %s", e.Code, e.Parameter, e.Value, e.Reason)
}

// IsValidationError checks if an error chain contains a ValidationError.
func IsValidationError(err error) bool {
	var validationErr *ValidationError

	return errors.As(err, &validationErr)
}

// InvalidParameter returns the offending parameter name of a ValidationError
// in err's chain, or "" when there is none.
func InvalidParameter(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Parameter
	}

	return ""
}
