package survey

import (
	"errors"
	"fmt"
)

// Error is the error type returned by the response store, the merge engine
// and the snapshot transport.
//
// Every failure that reaches a caller maps onto one Code. Storage paths never
// leave a partial write behind an Error: the operation either completed or it
// changed nothing.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field names the offending field (validation errors).
	Field string

	// Index is the position of the offending element in a foreign batch,
	// or -1 when not applicable.
	Index int

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes survey errors.
type ErrorCode string

const (
	// ErrCodeValidation indicates a draft that must not be persisted.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeFormat indicates a snapshot or batch that is not an array of
	// record-shaped objects.
	ErrCodeFormat ErrorCode = "FORMAT"

	// ErrCodeStorage indicates the persistence medium failed a read or write.
	ErrCodeStorage ErrorCode = "STORAGE"

	// ErrCodeDependency indicates an external collaborator (AI summary) failed.
	ErrCodeDependency ErrorCode = "DEPENDENCY"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field=%s)", msg, e.Field)
	}
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s (index=%d)", msg, e.Index)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates an Error for a rejected draft field.
func NewValidationError(field, message string) *Error {
	return &Error{Code: ErrCodeValidation, Message: message, Field: field, Index: -1}
}

// NewFormatError creates an Error for a malformed snapshot or batch element.
// Pass index -1 when the whole input is malformed.
func NewFormatError(index int, message string, err error) *Error {
	return &Error{Code: ErrCodeFormat, Message: message, Index: index, Err: err}
}

// NewStorageError wraps a persistence failure for operation op.
func NewStorageError(op string, err error) *Error {
	return &Error{Code: ErrCodeStorage, Message: op, Index: -1, Err: err}
}

// NewDependencyError wraps a failure of an external collaborator.
func NewDependencyError(message string, err error) *Error {
	return &Error{Code: ErrCodeDependency, Message: message, Index: -1, Err: err}
}

// CodeOf returns the Code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }

// IsFormat reports whether err is a format error.
func IsFormat(err error) bool { return CodeOf(err) == ErrCodeFormat }

// IsStorage reports whether err is a storage error.
func IsStorage(err error) bool { return CodeOf(err) == ErrCodeStorage }

// IsDependency reports whether err is a dependency error.
func IsDependency(err error) bool { return CodeOf(err) == ErrCodeDependency }
