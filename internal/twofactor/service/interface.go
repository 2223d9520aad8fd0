// Package service provides technical services for two-factor enforcement.
//
// This package implements the client for the external two-factor provider and
// the HMAC-based signer that protects verification event journal entries.
package service

import (
	"context"

	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
)

// StatusProvider looks up two-factor state from the external provider.
// Implementations must not cache or retry: enforcement decisions treat any
// lookup failure as fail-closed, and freshness matters more than latency.
type StatusProvider interface {
	// Status returns whether the given principal has two-factor enabled.
	Status(ctx context.Context, principalID string) (twofactorDomain.TwoFactorStatus, error)

	// Settings returns the platform-wide two-factor enforcement configuration.
	Settings(ctx context.Context) (twofactorDomain.TwoFactorSettings, error)
}

// EventSigner signs and verifies verification event journal entries.
// Implementations must produce deterministic signatures so events can be
// re-verified long after creation.
type EventSigner interface {
	// Sign generates a signature covering the event's identifying fields,
	// metadata, and creation time. The event's Signature field is not part
	// of the signed content.
	Sign(event *twofactorDomain.VerificationEvent) ([]byte, error)

	// Verify checks the event's stored signature. Returns nil if valid,
	// ErrSignatureInvalid if tampered or invalid.
	Verify(event *twofactorDomain.VerificationEvent) error
}
