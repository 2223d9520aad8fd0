// Package usecase defines business logic interfaces for two-factor enforcement operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
)

// VerificationEventRepository defines persistence operations for the
// verification event journal. Implementations must support transaction-aware
// operations via context propagation.
type VerificationEventRepository interface {
	// Create stores a new verification event in the repository.
	Create(ctx context.Context, event *twofactorDomain.VerificationEvent) error

	// Get retrieves a verification event by ID. Returns ErrEventNotFound if not found.
	Get(ctx context.Context, id uuid.UUID) (*twofactorDomain.VerificationEvent, error)

	// List retrieves verification events ordered by created_at descending with
	// pagination and optional inclusive time filters (nil means no filter).
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*twofactorDomain.VerificationEvent, error)

	// DeleteOlderThan removes events created before the given timestamp.
	// When dryRun is true, returns the count without deleting.
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// EnforcementUseCase decides whether sensitive operations need fresh
// two-factor verification and maintains per-session verification grants.
//
// Decisions consult the external provider and the caller session's ledger;
// they never read the verification event journal. Provider failures are
// absorbed fail-closed: the caller sees a demand for verification, never an
// error, on the reasoning that a system that cannot confirm its own security
// posture must assume the stricter requirement.
type EnforcementUseCase interface {
	// RequiredGlobally reports whether two-factor verification applies to
	// sensitive operations for this actor at all. Returns false when the
	// principal has two-factor disabled, otherwise the platform-wide
	// "require for sensitive actions" setting. Provider failures yield true.
	RequiredGlobally(ctx context.Context, actor twofactorDomain.Actor) bool

	// HasValidVerification reports whether a recent verification currently
	// covers the given kind for this actor's session. Kinds that do not
	// participate in the grace period always yield false. Absence of a
	// ledger entry is a valid non-error state.
	HasValidVerification(ctx context.Context, actor twofactorDomain.Actor, kind twofactorDomain.OperationKind) bool

	// RemainingGraceMillis returns the unelapsed portion of the grace period
	// in milliseconds for the given kind, or 0 when no entry exists. Never
	// negative.
	RemainingGraceMillis(ctx context.Context, actor twofactorDomain.Actor, kind twofactorDomain.OperationKind) int64

	// Evaluate is the primary decision entry point. It composes the global
	// requirement check with the session ledger lookup and returns the
	// decision together with the kind's static policy. Safe to call
	// repeatedly; no side effects.
	Evaluate(
		ctx context.Context,
		actor twofactorDomain.Actor,
		kind twofactorDomain.OperationKind,
	) (*twofactorDomain.Decision, error)

	// RecordVerification stores a verification grant for the given kind in
	// the actor's session ledger and then appends a signed journal entry.
	// The grant takes effect even when the journal write fails; the returned
	// error reports the journal failure to the caller.
	RecordVerification(
		ctx context.Context,
		actor twofactorDomain.Actor,
		kind twofactorDomain.OperationKind,
		requestID uuid.UUID,
		metadata map[string]any,
	) error

	// ResetAll clears the actor's session ledger and removes the session
	// from the registry, then appends a signed journal entry. Intended for
	// principal logout or session termination.
	ResetAll(ctx context.Context, actor twofactorDomain.Actor, requestID uuid.UUID) error
}

// VerificationEventUseCase defines read and maintenance operations over the
// verification event journal.
type VerificationEventUseCase interface {
	// List retrieves verification events ordered by created_at descending
	// with pagination and optional inclusive time filters.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*twofactorDomain.VerificationEvent, error)

	// DeleteOlderThan removes events older than the given number of days.
	// When dryRun is true, reports the count without deleting.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)

	// VerifyIntegrity checks the signature of a single event.
	// Returns ErrEventNotFound or ErrSignatureInvalid on failure.
	VerifyIntegrity(ctx context.Context, id uuid.UUID) error

	// VerifyBatch checks signatures for all events created in the given
	// time range and returns a summary report.
	VerifyBatch(ctx context.Context, startTime, endTime time.Time) (*VerificationReport, error)
}
