package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies workflow failures so controllers can map each kind to
// a distinct HTTP status and message.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindForbidden         ErrorKind = "forbidden"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindValidation        ErrorKind = "validation_error"
	KindStorageFailure    ErrorKind = "storage_failure"
)

// WorkflowError is the typed failure returned by every workflow operation.
// Callers must not retry an InvalidTransition automatically; a
// StorageFailure is fully rolled back and safe to re-issue in full.
type WorkflowError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *WorkflowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *WorkflowError) Unwrap() error { return e.Err }

func notFoundError(format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func forbiddenError(format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func invalidTransitionError(format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...interface{}) *WorkflowError {
	return &WorkflowError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func storageError(message string, err error) *WorkflowError {
	return &WorkflowError{Kind: KindStorageFailure, Message: message, Err: err}
}

// KindOf extracts the error kind, defaulting to StorageFailure for
// unclassified errors bubbling up from the persistence layer.
func KindOf(err error) ErrorKind {
	var werr *WorkflowError
	if errors.As(err, &werr) {
		return werr.Kind
	}
	return KindStorageFailure
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
