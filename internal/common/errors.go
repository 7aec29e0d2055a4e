package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")

	// ErrModelUnavailable means the language model cannot be reached or did
	// not answer in time. Callers should stop retrying.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrAborted means the in-flight prompt was cancelled. The session can be
	// recreated and the request retried.
	ErrAborted = errors.New("request aborted")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ModelUnavailableError wraps cause so that errors.Is(err, ErrModelUnavailable) holds.
func ModelUnavailableError(message string, cause error) error {
	return NewAppError("MODEL_UNAVAILABLE", message, errors.Join(ErrModelUnavailable, cause))
}

// AbortedError wraps cause so that errors.Is(err, ErrAborted) holds.
func AbortedError(message string, cause error) error {
	return NewAppError("ABORTED", message, errors.Join(ErrAborted, cause))
}

// NotFoundError reports a missing resource, matching ErrNotFound.
func NotFoundError(message string) error {
	return NewAppError("NOT_FOUND", message, ErrNotFound)
}

// InvalidArgumentError reports rejected input, matching ErrInvalidInput.
func InvalidArgumentError(message string) error {
	return NewAppError("INVALID_ARGUMENT", message, ErrInvalidInput)
}

func InvalidArgumentErrorf(format string, args ...any) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}
