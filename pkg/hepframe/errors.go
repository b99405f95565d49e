// Package hepframe implements an in-memory tabular wrapper for HEP event
// analysis: an EventTable bundles a field-bearing columnar record of event
// data with row-aligned per-event weights and boolean filters plus
// free-form metadata, and GroupedTables partitions a table by named
// boolean selectors.
package hepframe

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by the kind of contract violation.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryIndex      ErrorCategory = "INDEX"
	ErrCategoryMutation   ErrorCategory = "MUTATION"
	ErrCategoryLookup     ErrorCategory = "LOOKUP"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeNotColumnar     = "NOT_COLUMNAR"
	CodeNoFields        = "NO_FIELDS"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeShapeMismatch   = "SHAPE_MISMATCH"
	CodeInvalidMeta     = "INVALID_META"

	// Index codes
	CodeSubsetFailed = "SUBSET_FAILED"

	// Mutation codes
	CodeRowAssignment   = "ROW_ASSIGNMENT"
	CodeGroupAssignment = "GROUP_ASSIGNMENT"

	// Lookup codes
	CodeGroupNotFound = "GROUP_NOT_FOUND"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// FrameError is the structured error type used throughout the library.
type FrameError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
}

// Error returns a formatted error string.
func (e *FrameError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *FrameError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *FrameError) Is(target error) bool {
	var t *FrameError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// NewError creates a new FrameError.
func NewError(category ErrorCategory, code, message string) *FrameError {
	return &FrameError{Category: category, Code: code, Message: message}
}

// WrapError creates a new FrameError wrapping an existing error.
func WrapError(category ErrorCategory, code, message string, cause error) *FrameError {
	return &FrameError{Category: category, Code: code, Message: message, Cause: cause}
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a FrameError.
func GetCategory(err error) ErrorCategory {
	var fe *FrameError
	if errors.As(err, &fe) {
		return fe.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a FrameError.
func GetCode(err error) string {
	var fe *FrameError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// Convenience constructors for common errors.

func newValidationError(code, message string) *FrameError {
	return NewError(ErrCategoryValidation, code, message)
}

func newIndexError(message string, cause error) *FrameError {
	return WrapError(ErrCategoryIndex, CodeSubsetFailed, message, cause)
}

func newMutationError(code, message string) *FrameError {
	return NewError(ErrCategoryMutation, code, message)
}

func newLookupError(message string) *FrameError {
	return NewError(ErrCategoryLookup, CodeGroupNotFound, message)
}
