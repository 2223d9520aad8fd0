package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/stepup/internal/metrics"
	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
)

// enforcementUseCaseWithMetrics decorates EnforcementUseCase with metrics instrumentation.
type enforcementUseCaseWithMetrics struct {
	next    EnforcementUseCase
	metrics metrics.BusinessMetrics
}

// NewEnforcementUseCaseWithMetrics wraps an EnforcementUseCase with metrics recording.
func NewEnforcementUseCaseWithMetrics(useCase EnforcementUseCase, m metrics.BusinessMetrics) EnforcementUseCase {
	return &enforcementUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// RequiredGlobally records metrics for global requirement checks.
func (e *enforcementUseCaseWithMetrics) RequiredGlobally(ctx context.Context, actor twofactorDomain.Actor) bool {
	start := time.Now()
	required := e.next.RequiredGlobally(ctx, actor)

	e.metrics.RecordOperation(ctx, "twofactor", "required_globally", "success")
	e.metrics.RecordDuration(ctx, "twofactor", "required_globally", time.Since(start), "success")

	return required
}

// HasValidVerification records metrics for grace validity checks.
func (e *enforcementUseCaseWithMetrics) HasValidVerification(
	ctx context.Context,
	actor twofactorDomain.Actor,
	kind twofactorDomain.OperationKind,
) bool {
	start := time.Now()
	valid := e.next.HasValidVerification(ctx, actor, kind)

	e.metrics.RecordOperation(ctx, "twofactor", "has_valid_verification", "success")
	e.metrics.RecordDuration(ctx, "twofactor", "has_valid_verification", time.Since(start), "success")

	return valid
}

// RemainingGraceMillis records metrics for grace countdown reads.
func (e *enforcementUseCaseWithMetrics) RemainingGraceMillis(
	ctx context.Context,
	actor twofactorDomain.Actor,
	kind twofactorDomain.OperationKind,
) int64 {
	start := time.Now()
	remaining := e.next.RemainingGraceMillis(ctx, actor, kind)

	e.metrics.RecordOperation(ctx, "twofactor", "remaining_grace", "success")
	e.metrics.RecordDuration(ctx, "twofactor", "remaining_grace", time.Since(start), "success")

	return remaining
}

// Evaluate records metrics for enforcement decisions. Fail-closed decisions
// are reported under their own status so provider outages are visible.
func (e *enforcementUseCaseWithMetrics) Evaluate(
	ctx context.Context,
	actor twofactorDomain.Actor,
	kind twofactorDomain.OperationKind,
) (*twofactorDomain.Decision, error) {
	start := time.Now()
	decision, err := e.next.Evaluate(ctx, actor, kind)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case decision.FailClosed:
		status = "fail_closed"
	}

	e.metrics.RecordOperation(ctx, "twofactor", "evaluate", status)
	e.metrics.RecordDuration(ctx, "twofactor", "evaluate", time.Since(start), status)

	return decision, err
}

// RecordVerification records metrics for verification grant writes.
func (e *enforcementUseCaseWithMetrics) RecordVerification(
	ctx context.Context,
	actor twofactorDomain.Actor,
	kind twofactorDomain.OperationKind,
	requestID uuid.UUID,
	metadata map[string]any,
) error {
	start := time.Now()
	err := e.next.RecordVerification(ctx, actor, kind, requestID, metadata)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "twofactor", "record_verification", status)
	e.metrics.RecordDuration(ctx, "twofactor", "record_verification", time.Since(start), status)

	return err
}

// ResetAll records metrics for session ledger resets.
func (e *enforcementUseCaseWithMetrics) ResetAll(
	ctx context.Context,
	actor twofactorDomain.Actor,
	requestID uuid.UUID,
) error {
	start := time.Now()
	err := e.next.ResetAll(ctx, actor, requestID)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "twofactor", "reset_all", status)
	e.metrics.RecordDuration(ctx, "twofactor", "reset_all", time.Since(start), status)

	return err
}

// verificationEventUseCaseWithMetrics decorates VerificationEventUseCase with metrics instrumentation.
type verificationEventUseCaseWithMetrics struct {
	next    VerificationEventUseCase
	metrics metrics.BusinessMetrics
}

// NewVerificationEventUseCaseWithMetrics wraps a VerificationEventUseCase with metrics recording.
func NewVerificationEventUseCaseWithMetrics(
	useCase VerificationEventUseCase,
	m metrics.BusinessMetrics,
) VerificationEventUseCase {
	return &verificationEventUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// List records metrics for verification event list operations.
func (v *verificationEventUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*twofactorDomain.VerificationEvent, error) {
	start := time.Now()
	events, err := v.next.List(ctx, offset, limit, createdAtFrom, createdAtTo)

	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "twofactor", "event_list", status)
	v.metrics.RecordDuration(ctx, "twofactor", "event_list", time.Since(start), status)

	return events, err
}

// DeleteOlderThan records metrics for verification event cleanup operations.
func (v *verificationEventUseCaseWithMetrics) DeleteOlderThan(
	ctx context.Context,
	days int,
	dryRun bool,
) (int64, error) {
	start := time.Now()
	count, err := v.next.DeleteOlderThan(ctx, days, dryRun)

	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "twofactor", "event_delete", status)
	v.metrics.RecordDuration(ctx, "twofactor", "event_delete", time.Since(start), status)

	return count, err
}

// VerifyIntegrity records metrics for single event verification operations.
func (v *verificationEventUseCaseWithMetrics) VerifyIntegrity(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := v.next.VerifyIntegrity(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "twofactor", "event_verify", status)
	v.metrics.RecordDuration(ctx, "twofactor", "event_verify", time.Since(start), status)

	return err
}

// VerifyBatch records metrics for batch event verification operations.
func (v *verificationEventUseCaseWithMetrics) VerifyBatch(
	ctx context.Context,
	startTime, endTime time.Time,
) (*VerificationReport, error) {
	start := time.Now()
	report, err := v.next.VerifyBatch(ctx, startTime, endTime)

	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "twofactor", "event_verify_batch", status)
	v.metrics.RecordDuration(ctx, "twofactor", "event_verify_batch", time.Since(start), status)

	return report, err
}
