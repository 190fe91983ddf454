// sbbs/models/errors.go
package models

import "errors"

// The service layer reports failures in four categories. Callers branch on
// the category with the predicates below; messages are safe to show to end
// users except for StorageError, which is logged and masked at the boundary.

// ValidationError means the caller supplied malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError means a referenced board, thread, post, or user is absent.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ConflictError means a unique key (slug, email) is already taken.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// StorageError wraps directory, file, or driver failures. Treated as fatal
// for the current request; the cause is kept for logging.
type StorageError struct {
	Message string
	Cause   error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *StorageError) Unwrap() error { return e.Cause }

func Validation(msg string) error         { return &ValidationError{Message: msg} }
func NotFound(msg string) error           { return &NotFoundError{Message: msg} }
func Conflict(msg string) error           { return &ConflictError{Message: msg} }
func Storage(msg string, cause error) error { return &StorageError{Message: msg, Cause: cause} }

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsStorage(err error) bool {
	var e *StorageError
	return errors.As(err, &e)
}
