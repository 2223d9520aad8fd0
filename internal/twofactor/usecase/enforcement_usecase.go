// Package usecase implements business logic orchestration for two-factor enforcement.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/stepup/internal/errors"
	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
	twofactorService "github.com/allisson/stepup/internal/twofactor/service"
)

// enforcementUseCase implements EnforcementUseCase over a session registry,
// the external status provider, and the signed event journal.
type enforcementUseCase struct {
	registry    *SessionRegistry
	provider    twofactorService.StatusProvider
	eventRepo   VerificationEventRepository
	eventSigner twofactorService.EventSigner
	gracePeriod time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// EnforcementOption configures optional behavior of the enforcement use case.
type EnforcementOption func(*enforcementUseCase)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) EnforcementOption {
	return func(e *enforcementUseCase) {
		if fn != nil {
			e.now = fn
		}
	}
}

// NewEnforcementUseCase creates a new EnforcementUseCase with the provided
// dependencies. gracePeriod bounds how long a recorded verification covers
// subsequent decisions for the same operation kind and session.
func NewEnforcementUseCase(
	registry *SessionRegistry,
	provider twofactorService.StatusProvider,
	eventRepo VerificationEventRepository,
	eventSigner twofactorService.EventSigner,
	gracePeriod time.Duration,
	logger *slog.Logger,
	opts ...EnforcementOption,
) EnforcementUseCase {
	useCase := &enforcementUseCase{
		registry:    registry,
		provider:    provider,
		eventRepo:   eventRepo,
		eventSigner: eventSigner,
		gracePeriod: gracePeriod,
		logger:      logger,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(useCase)
	}

	return useCase
}

// globalRequirement consults the provider for the actor's two-factor status
// and the platform-wide setting. The failClosed return distinguishes
// "provider demanded verification" from "provider could not be consulted":
// both yield required=true, but only the latter bypasses the grace period.
func (e *enforcementUseCase) globalRequirement(ctx context.Context, actor twofactorDomain.Actor) (required, failClosed bool) {
	status, err := e.provider.Status(ctx, actor.PrincipalID)
	if err != nil {
		e.logger.Warn("two-factor status lookup failed, failing closed",
			slog.String("principal_id", actor.PrincipalID),
			slog.Any("error", err))
		return true, true
	}

	if !status.Enabled {
		return false, false
	}

	settings, err := e.provider.Settings(ctx)
	if err != nil {
		e.logger.Warn("two-factor settings lookup failed, failing closed",
			slog.String("principal_id", actor.PrincipalID),
			slog.Any("error", err))
		return true, true
	}

	return settings.RequireForSensitiveActions, false
}

// RequiredGlobally reports whether two-factor verification applies to
// sensitive operations for this actor. Provider failures are absorbed and
// yield true.
func (e *enforcementUseCase) RequiredGlobally(ctx context.Context, actor twofactorDomain.Actor) bool {
	required, _ := e.globalRequirement(ctx, actor)
	return required
}

// hasValid reports whether the ledger holds a verification for kind that is
// still inside the grace period. Kinds outside the policy table or without
// the grace flag never qualify.
func (e *enforcementUseCase) hasValid(ledger *twofactorDomain.VerificationLedger, kind twofactorDomain.OperationKind) bool {
	policy, err := twofactorDomain.PolicyFor(kind)
	if err != nil || !policy.RequiresRecentAuth {
		return false
	}

	verifiedAt, ok := ledger.LastVerifiedAt(kind)
	if !ok {
		return false
	}

	return e.now().Sub(verifiedAt) < e.gracePeriod
}

// HasValidVerification reports whether a recent verification currently
// covers the given kind for this actor's session.
func (e *enforcementUseCase) HasValidVerification(
	_ context.Context,
	actor twofactorDomain.Actor,
	kind twofactorDomain.OperationKind,
) bool {
	ledger := e.registry.LedgerFor(actor.SessionID)
	return e.hasValid(ledger, kind)
}

// RemainingGraceMillis returns the unelapsed grace period in milliseconds
// for the given kind, or 0 when no ledger entry exists. The countdown runs
// even for kinds without the grace flag; it reflects ledger contents, not
// decision outcomes.
func (e *enforcementUseCase) RemainingGraceMillis(
	_ context.Context,
	actor twofactorDomain.Actor,
	kind twofactorDomain.OperationKind,
) int64 {
	ledger := e.registry.LedgerFor(actor.SessionID)

	verifiedAt, ok := ledger.LastVerifiedAt(kind)
	if !ok {
		return 0
	}

	remaining := e.gracePeriod - e.now().Sub(verifiedAt)
	if remaining < 0 {
		return 0
	}

	return remaining.Milliseconds()
}

// Evaluate decides whether the actor must complete a fresh two-factor
// verification before performing the operation.
//
// The global requirement check is authoritative and short-circuits: when the
// provider reports two-factor off, the ledger is never consulted, and when
// the provider cannot be consulted, the decision is a fail-closed demand for
// verification regardless of any recorded grant.
func (e *enforcementUseCase) Evaluate(
	ctx context.Context,
	actor twofactorDomain.Actor,
	kind twofactorDomain.OperationKind,
) (*twofactorDomain.Decision, error) {
	policy, err := twofactorDomain.PolicyFor(kind)
	if err != nil {
		return nil, err
	}

	required, failClosed := e.globalRequirement(ctx, actor)

	if failClosed {
		return &twofactorDomain.Decision{
			Required:   true,
			Policy:     policy,
			FailClosed: true,
		}, nil
	}

	if !required {
		return &twofactorDomain.Decision{
			Required: false,
			Reason:   twofactorDomain.ReasonNotRequired,
			Policy:   policy,
		}, nil
	}

	if policy.RequiresRecentAuth && e.HasValidVerification(ctx, actor, kind) {
		return &twofactorDomain.Decision{
			Required: false,
			Reason:   twofactorDomain.ReasonRecentValid,
			Policy:   policy,
		}, nil
	}

	return &twofactorDomain.Decision{
		Required: true,
		Policy:   policy,
	}, nil
}

// RecordVerification stores a verification grant for the given kind in the
// actor's session ledger, then appends a signed journal entry. The ledger
// write happens first: a journal failure surfaces as an error but never
// revokes the grant.
func (e *enforcementUseCase) RecordVerification(
	ctx context.Context,
	actor twofactorDomain.Actor,
	kind twofactorDomain.OperationKind,
	requestID uuid.UUID,
	metadata map[string]any,
) error {
	// Truncate to microseconds: the journal column stores at most microsecond
	// precision, and the signature must survive a database round trip.
	verifiedAt := e.now().UTC().Truncate(time.Microsecond)

	ledger := e.registry.LedgerFor(actor.SessionID)
	ledger.Record(kind, verifiedAt)

	event := &twofactorDomain.VerificationEvent{
		ID:          uuid.Must(uuid.NewV7()),
		RequestID:   requestID,
		PrincipalID: actor.PrincipalID,
		SessionID:   actor.SessionID,
		Operation:   kind,
		EventType:   twofactorDomain.VerificationEventType,
		Metadata:    metadata,
		CreatedAt:   verifiedAt,
	}

	return e.appendEvent(ctx, event)
}

// ResetAll clears the actor's session ledger and removes the session from
// the registry, then appends a signed journal entry.
func (e *enforcementUseCase) ResetAll(
	ctx context.Context,
	actor twofactorDomain.Actor,
	requestID uuid.UUID,
) error {
	ledger := e.registry.LedgerFor(actor.SessionID)
	ledger.Reset()
	e.registry.Remove(actor.SessionID)

	event := &twofactorDomain.VerificationEvent{
		ID:          uuid.Must(uuid.NewV7()),
		RequestID:   requestID,
		PrincipalID: actor.PrincipalID,
		SessionID:   actor.SessionID,
		EventType:   twofactorDomain.ResetEventType,
		CreatedAt:   e.now().UTC().Truncate(time.Microsecond),
	}

	return e.appendEvent(ctx, event)
}

// appendEvent signs and persists a journal entry.
func (e *enforcementUseCase) appendEvent(ctx context.Context, event *twofactorDomain.VerificationEvent) error {
	signature, err := e.eventSigner.Sign(event)
	if err != nil {
		return apperrors.Wrap(err, "failed to sign verification event")
	}
	event.Signature = signature

	if err := e.eventRepo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to journal verification event")
	}

	return nil
}
