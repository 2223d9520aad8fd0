package domain

import (
	"github.com/allisson/stepup/internal/errors"
)

// Two-factor enforcement errors.
var (
	// ErrEventNotFound indicates a verification event with the specified ID was not found.
	ErrEventNotFound = errors.Wrap(errors.ErrNotFound, "verification event not found")

	// ErrSignatureInvalid indicates a verification event failed signature verification.
	ErrSignatureInvalid = errors.Wrap(errors.ErrInvalidInput, "verification event signature is invalid")

	// ErrProviderUnavailable indicates the two-factor provider could not be consulted.
	ErrProviderUnavailable = errors.Wrap(errors.ErrInternal, "two-factor provider unavailable")

	// ErrMissingActor indicates the caller identity headers were absent or blank.
	ErrMissingActor = errors.Wrap(errors.ErrUnauthorized, "caller identity is missing")
)
