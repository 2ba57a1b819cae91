package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeDestinationNotFound ErrorCode = "DESTINATION_NOT_FOUND"
	ErrCodeInvalid             ErrorCode = "INVALID"
	ErrCodeConflict            ErrorCode = "CONFLICT"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodePersistence         ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeInternal            ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches sentinel errors by code and message so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrDestinationNotFound = NewError(ErrCodeDestinationNotFound, "destination not found")
	ErrRecordNotFound      = NewError(ErrCodeNotFound, "record not found")
	ErrBoardNotFound       = NewError(ErrCodeNotFound, "board not found")
	ErrTaskNotFound        = NewError(ErrCodeNotFound, "task not found")
	ErrSessionNotFound     = NewError(ErrCodeNotFound, "session not found")
	ErrInvalidNesting      = NewError(ErrCodeInvalid, "boards nest at most one level deep")
	ErrInvalidPayload      = NewError(ErrCodeInvalid, "invalid payload")
	ErrInvalidTimestamp    = NewError(ErrCodeInvalid, "invalid timestamp")
	ErrUnauthorized        = NewError(ErrCodeUnauthorized, "unauthorized")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
