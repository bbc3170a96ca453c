// Package errors provides structured error types for the modkit engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine and CLI
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - DEPENDENCY_*: Dependency resolution failures
//   - CIRCULAR_*: Import-graph cycles
//   - CONFIGURATION_*: Module or binder configuration mistakes
//   - LIFECYCLE_*: Lifecycle violations (failed imports, retainer misuse)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeSealedScope, "export scope of %s is sealed", name)
//	if errors.Is(err, errors.ErrCodeSealedScope) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeImportFailed, cause, "import %s failed", name)
//
// Resolution and cycle errors carry structured detail beyond the code; use
// stdlib errors.As to recover [NotFoundError] or [CycleError] from a chain.
package errors

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Dependency resolution errors
	ErrCodeNotFound Code = "DEPENDENCY_NOT_FOUND"

	// Import-graph errors
	ErrCodeCircular Code = "CIRCULAR_DEPENDENCY"

	// Module/binder configuration errors
	ErrCodeConfiguration   Code = "CONFIGURATION"
	ErrCodeSealedScope     Code = "CONFIGURATION_SEALED_SCOPE"
	ErrCodeDuplicateExport Code = "CONFIGURATION_DUPLICATE_EXPORT"
	ErrCodeMissingExpected Code = "CONFIGURATION_MISSING_EXPECTED"

	// Lifecycle errors
	ErrCodeLifecycle       Code = "LIFECYCLE"
	ErrCodeImportFailed    Code = "LIFECYCLE_IMPORT_FAILED"
	ErrCodeDuplicateRetain Code = "LIFECYCLE_DUPLICATE_RETAIN"
	ErrCodeBadConfigure    Code = "LIFECYCLE_BAD_CONFIGURE"

	// Manifest errors (CLI collaborator)
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
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
// It unwraps the error chain looking for a coded error with a matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// coded is implemented by error types that carry their own Code.
type coded interface {
	error
	CodeOf() Code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coded
	if errors.As(err, &c) {
		return c.CodeOf()
	}
	return ""
}

// NotFoundError reports a failed dependency lookup. It carries the requested
// type and the types visible from the binder that performed the lookup, so
// the failure message can point at near misses.
type NotFoundError struct {
	Requested reflect.Type   // The type that was asked for
	Owner     string         // Module (or binder) the lookup started from
	Visible   []reflect.Type // Types registered locally at lookup time
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: no registration for %s", ErrCodeNotFound, typeName(e.Requested))
	if e.Owner != "" {
		fmt.Fprintf(&b, " in %s", e.Owner)
	}
	if len(e.Visible) > 0 {
		names := make([]string, len(e.Visible))
		for i, t := range e.Visible {
			names[i] = typeName(t)
		}
		fmt.Fprintf(&b, " (locally visible: %s)", strings.Join(names, ", "))
	}
	return b.String()
}

// CodeOf returns the error code for this error type.
func (e *NotFoundError) CodeOf() Code { return ErrCodeNotFound }

// CycleError reports a circular module import. Chain holds the module names
// along the offending branch, in resolution order, ending with the name that
// closed the cycle.
type CycleError struct {
	Chain []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCodeCircular, strings.Join(e.Chain, " -> "))
}

// CodeOf returns the error code for this error type.
func (e *CycleError) CodeOf() Code { return ErrCodeCircular }

// typeName renders a reflect.Type compactly, tolerating nil.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// TypeNames renders a slice of types with typeName semantics. It is the
// conversion used to build a [CycleError] chain from resolution paths.
func TypeNames(types []reflect.Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = typeName(t)
	}
	return names
}
