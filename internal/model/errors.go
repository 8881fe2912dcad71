package model

import (
	"errors"
	"fmt"
)

// Error is a definite domain failure. It is never retried.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ID identifies the document involved, if any.
	ID string
}

// ErrorCode categorizes domain errors.
type ErrorCode string

const (
	// ErrCodeParentNotFound indicates the reply's parent post does not exist.
	ErrCodeParentNotFound ErrorCode = "PARENT_NOT_FOUND"

	// ErrCodeRootNotFound indicates the parent's chain root does not exist.
	ErrCodeRootNotFound ErrorCode = "ROOT_NOT_FOUND"

	// ErrCodePostNotFound indicates a referenced post does not exist.
	ErrCodePostNotFound ErrorCode = "POST_NOT_FOUND"

	// ErrCodeTaskNotFound indicates a referenced task does not exist.
	ErrCodeTaskNotFound ErrorCode = "TASK_NOT_FOUND"

	// ErrCodeTaskCompleted indicates a reply through a task that already
	// has its completing action.
	ErrCodeTaskCompleted ErrorCode = "TASK_COMPLETED"

	// ErrCodeInvalidArgument indicates malformed caller input.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: %s (id=%s)", e.Code, e.Message, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code, so sentinels below work with
// errors.Is regardless of ID and message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrParentNotFound  = &Error{Code: ErrCodeParentNotFound, Message: "parent post not found"}
	ErrRootNotFound    = &Error{Code: ErrCodeRootNotFound, Message: "root post not found"}
	ErrPostNotFound    = &Error{Code: ErrCodePostNotFound, Message: "post not found"}
	ErrTaskNotFound    = &Error{Code: ErrCodeTaskNotFound, Message: "task not found"}
	ErrTaskCompleted   = &Error{Code: ErrCodeTaskCompleted, Message: "task already completed"}
	ErrInvalidArgument = &Error{Code: ErrCodeInvalidArgument, Message: "invalid argument"}
)

// NewError creates an Error for the document id.
func NewError(code ErrorCode, id, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), ID: id}
}

// ParentNotFound creates an ErrCodeParentNotFound error.
func ParentNotFound(id string) *Error {
	return NewError(ErrCodeParentNotFound, id, "parent post not found")
}

// RootNotFound creates an ErrCodeRootNotFound error.
func RootNotFound(id string) *Error {
	return NewError(ErrCodeRootNotFound, id, "root post not found")
}

// PostNotFound creates an ErrCodePostNotFound error.
func PostNotFound(id string) *Error {
	return NewError(ErrCodePostNotFound, id, "post not found")
}

// TaskNotFound creates an ErrCodeTaskNotFound error.
func TaskNotFound(id string) *Error {
	return NewError(ErrCodeTaskNotFound, id, "task not found")
}

// TaskCompleted creates an ErrCodeTaskCompleted error.
func TaskCompleted(id string) *Error {
	return NewError(ErrCodeTaskCompleted, id, "task already completed")
}

// InvalidArgument creates an ErrCodeInvalidArgument error.
func InvalidArgument(format string, args ...any) *Error {
	return NewError(ErrCodeInvalidArgument, "", format, args...)
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err is any of the not-found family.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	switch CodeOf(err) {
	case ErrCodeParentNotFound, ErrCodeRootNotFound, ErrCodePostNotFound, ErrCodeTaskNotFound:
		return true
	}
	return false
}
