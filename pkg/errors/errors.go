// Package errors provides structured error types for specdex.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND_*: Resource not found
//   - TRANSPORT_*: Network-related errors
//   - CORRUPT_CACHE: A local cache file that cannot be decoded
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDependency, "invalid constraint: %s", raw)
//	if errors.Is(err, errors.ErrCodeInvalidDependency) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeTransport, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidSource     Code = "INVALID_SOURCE"
	ErrCodeInvalidPackage    Code = "INVALID_PACKAGE"
	ErrCodeInvalidDependency Code = "INVALID_DEPENDENCY"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidQuery      Code = "INVALID_QUERY"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"

	// Network errors
	ErrCodeTransport Code = "TRANSPORT_ERROR"
	ErrCodeTimeout   Code = "TRANSPORT_TIMEOUT"

	// Cache errors
	ErrCodeCorruptCache Code = "CORRUPT_CACHE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
		return e.Message
	}
	return err.Error()
}

// CorruptCacheError reports a local cache file whose contents survived the
// single self-heal retry without becoming decodable. It carries the offending
// path so callers can tell users which file to inspect or delete.
type CorruptCacheError struct {
	Path string // Local cache file that failed to decode
	Err  error  // Decode error from the codec
}

// Error implements the error interface.
func (e *CorruptCacheError) Error() string {
	return fmt.Sprintf("corrupt cache file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *CorruptCacheError) Unwrap() error {
	return e.Err
}

// Code returns the error code for this error type.
func (e *CorruptCacheError) Code() Code {
	return ErrCodeCorruptCache
}

// IsCorruptCache reports whether err is (or wraps) a CorruptCacheError.
func IsCorruptCache(err error) bool {
	var e *CorruptCacheError
	return errors.As(err, &e)
}
