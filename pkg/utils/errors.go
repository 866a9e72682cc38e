// Package utils provides utility functions for the winoreat application.
package utils

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of application failure kinds.
type ErrorKind string

const (
	KindBadRequest       ErrorKind = "BAD_REQUEST"
	KindForbidden        ErrorKind = "FORBIDDEN"
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindInternal         ErrorKind = "INTERNAL_ERROR"
	KindAlreadyExists    ErrorKind = "ALREADY_EXISTS"
	KindCategoryNotFound ErrorKind = "CATEGORY_NOT_FOUND"
)

// Common error types for reuse.
var (
	ErrBadRequest          = NewError(KindBadRequest, "Invalid request")
	ErrForbidden           = NewError(KindForbidden, "Forbidden")
	ErrNotFound            = NewError(KindNotFound, "Resource not found")
	ErrInternalServerError = NewError(KindInternal, "Internal server error")
	ErrAlreadyExists       = NewError(KindAlreadyExists, "Already exists")
	ErrCategoryNotFound    = NewError(KindCategoryNotFound, "Category not found")
)

// CustomError represents a structured error for the web app.
type CustomError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// NewError creates a new Error with a kind, message, and optional details.
func NewError(kind ErrorKind, message string, details ...string) *CustomError {
	e := &CustomError{
		Kind:    kind,
		Message: message,
	}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is a CustomError of the same kind, so the
// package-level sentinels work with errors.Is.
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithCause returns a copy of the error carrying the underlying error text as details.
func (e *CustomError) WithCause(err error) *CustomError {
	c := *e
	if err != nil {
		c.Details = err.Error()
	}
	return &c
}

// WrapError wraps an existing error with a kind and message.
func WrapError(err error, kind ErrorKind, message string) *CustomError {
	return NewError(kind, message, err.Error())
}

// KindOf returns the kind of err, or KindInternal when err carries none.
func KindOf(err error) ErrorKind {
	var appErr *CustomError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message of err.
func MessageOf(err error) string {
	var appErr *CustomError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
