package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors. Every recoverable condition the triage engine can
// surface has its own code so callers can branch without string matching.
var (
	ErrLoginRequired      = New("LOGIN_REQUIRED", http.StatusUnauthorized, "login required")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusForbidden, "administrator access required")
	ErrAlreadyVoted       = New("ALREADY_VOTED", http.StatusBadRequest, "already voted on this issue")
	ErrAlreadyLiked       = New("ALREADY_LIKED", http.StatusBadRequest, "already liked this issue")
	ErrInvalidProblem     = New("INVALID_PROBLEM", http.StatusBadRequest, "issue not found or not resolved")
	ErrInvalidStatus      = New("INVALID_STATUS", http.StatusBadRequest, "invalid issue status")
	ErrInvalidLocation    = New("INVALID_LOCATION", http.StatusBadRequest, "issue coordinates missing or zero")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrExportDenied       = New("EXPORT_DENIED", http.StatusForbidden, "issue is not a verified priority report")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrRateLimited        = New("RATE_LIMITED", http.StatusTooManyRequests, "rate limit exceeded")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
