// Package errors provides the standardized error values shared by all
// modules of the service. Use cases return these sentinels (usually
// wrapped with context) and the HTTP layer maps them to status codes.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the operation conflicts with existing state.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request is missing valid caller identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal indicates an unexpected internal failure that should not
	// leak details to API callers.
	ErrInternal = errors.New("internal error")
)

// New creates a new error with the given message.
// Convenience wrapper around errors.New so callers import a single package.
func New(message string) error {
	return errors.New(message)
}

// Wrap adds context to an error while preserving the error chain.
// Returns nil when err is nil so call sites can wrap unconditionally.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error while preserving the error chain.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
