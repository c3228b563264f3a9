// Package errors provides structured error types for dtxwif.
//
// Conversion failures fall into a small taxonomy so that the CLI, the batch
// runner, and the HTTP service can react to them uniformly:
//   - MISSING_SECTION: a required section is absent (structural error)
//   - INVALID_VALUE: a token or palette entry cannot be decoded (value error)
//   - IO_ERROR: the source cannot be read or the destination written
//   - UNSUPPORTED_FORMAT / INVALID_INPUT: the request itself is wrong
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingSection, "%s: no threading section", name)
//	if errors.Is(err, errors.ErrCodeMissingSection) {
//	    // Handle structural error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeMissingSection    Code = "MISSING_SECTION"
	ErrCodeInvalidValue      Code = "INVALID_VALUE"
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"

	// Resource errors
	ErrCodeIO       Code = "IO_ERROR"
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// IsInputError reports whether err describes a problem with the pattern data
// itself (structural or value error) rather than the environment.
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeMissingSection, ErrCodeInvalidValue:
		return true
	}
	return false
}
