package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/stepup/internal/database"
	apperrors "github.com/allisson/stepup/internal/errors"
	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
	twofactorService "github.com/allisson/stepup/internal/twofactor/service"
)

// verifyBatchPageSize bounds how many events VerifyBatch loads per page.
const verifyBatchPageSize = 500

// VerificationReport summarizes a batch signature verification run.
type VerificationReport struct {
	TotalChecked int64
	Valid        int64
	Invalid      int64
	InvalidIDs   []uuid.UUID
}

// verificationEventUseCase implements VerificationEventUseCase for reading
// and maintaining the signed event journal.
type verificationEventUseCase struct {
	txManager   database.TxManager
	eventRepo   VerificationEventRepository
	eventSigner twofactorService.EventSigner
}

// NewVerificationEventUseCase creates a new VerificationEventUseCase with
// the provided dependencies.
func NewVerificationEventUseCase(
	txManager database.TxManager,
	eventRepo VerificationEventRepository,
	eventSigner twofactorService.EventSigner,
) VerificationEventUseCase {
	return &verificationEventUseCase{
		txManager:   txManager,
		eventRepo:   eventRepo,
		eventSigner: eventSigner,
	}
}

// List retrieves verification events ordered by created_at descending with
// pagination and optional inclusive time filters (nil means no filter).
// All timestamps are expected in UTC.
func (v *verificationEventUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*twofactorDomain.VerificationEvent, error) {
	events, err := v.eventRepo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list verification events")
	}

	return events, nil
}

// DeleteOlderThan removes verification events older than the given number of
// days. When dryRun is true, reports the count without deleting. The real
// deletion runs inside a transaction so the returned count matches exactly
// what was removed.
func (v *verificationEventUseCase) DeleteOlderThan(
	ctx context.Context,
	days int,
	dryRun bool,
) (int64, error) {
	if days <= 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "retention days must be positive")
	}

	olderThan := time.Now().UTC().AddDate(0, 0, -days)

	if dryRun {
		count, err := v.eventRepo.DeleteOlderThan(ctx, olderThan, true)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count verification events")
		}
		return count, nil
	}

	var count int64
	err := v.txManager.WithTx(ctx, func(txCtx context.Context) error {
		deleted, err := v.eventRepo.DeleteOlderThan(txCtx, olderThan, false)
		if err != nil {
			return err
		}
		count = deleted
		return nil
	})
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete verification events")
	}

	return count, nil
}

// VerifyIntegrity checks the signature of a single verification event.
func (v *verificationEventUseCase) VerifyIntegrity(ctx context.Context, id uuid.UUID) error {
	event, err := v.eventRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	return v.eventSigner.Verify(event)
}

// VerifyBatch checks signatures for all events created between startTime and
// endTime (inclusive) and returns a summary report. Events are paged so the
// full range never loads into memory at once.
func (v *verificationEventUseCase) VerifyBatch(
	ctx context.Context,
	startTime, endTime time.Time,
) (*VerificationReport, error) {
	if endTime.Before(startTime) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "end time must not precede start time")
	}

	report := &VerificationReport{}
	offset := 0

	for {
		events, err := v.eventRepo.List(ctx, offset, verifyBatchPageSize, &startTime, &endTime)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list verification events")
		}

		if len(events) == 0 {
			break
		}

		for _, event := range events {
			report.TotalChecked++
			if err := v.eventSigner.Verify(event); err != nil {
				report.Invalid++
				report.InvalidIDs = append(report.InvalidIDs, event.ID)
				continue
			}
			report.Valid++
		}

		if len(events) < verifyBatchPageSize {
			break
		}
		offset += verifyBatchPageSize
	}

	return report, nil
}
