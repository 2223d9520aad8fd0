// Package mocks provides mock implementations of use case interfaces for testing.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
	twofactorUseCase "github.com/allisson/stepup/internal/twofactor/usecase"
)

// MockEnforcementUseCase is a mock implementation of EnforcementUseCase for testing.
type MockEnforcementUseCase struct {
	mock.Mock
}

// RequiredGlobally mocks the RequiredGlobally method of EnforcementUseCase.
func (m *MockEnforcementUseCase) RequiredGlobally(ctx context.Context, actor twofactorDomain.Actor) bool {
	args := m.Called(ctx, actor)
	return args.Bool(0)
}

// HasValidVerification mocks the HasValidVerification method of EnforcementUseCase.
func (m *MockEnforcementUseCase) HasValidVerification(
	ctx context.Context,
	actor twofactorDomain.Actor,
	kind twofactorDomain.OperationKind,
) bool {
	args := m.Called(ctx, actor, kind)
	return args.Bool(0)
}

// RemainingGraceMillis mocks the RemainingGraceMillis method of EnforcementUseCase.
func (m *MockEnforcementUseCase) RemainingGraceMillis(
	ctx context.Context,
	actor twofactorDomain.Actor,
	kind twofactorDomain.OperationKind,
) int64 {
	args := m.Called(ctx, actor, kind)
	return args.Get(0).(int64)
}

// Evaluate mocks the Evaluate method of EnforcementUseCase.
func (m *MockEnforcementUseCase) Evaluate(
	ctx context.Context,
	actor twofactorDomain.Actor,
	kind twofactorDomain.OperationKind,
) (*twofactorDomain.Decision, error) {
	args := m.Called(ctx, actor, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twofactorDomain.Decision), args.Error(1)
}

// RecordVerification mocks the RecordVerification method of EnforcementUseCase.
func (m *MockEnforcementUseCase) RecordVerification(
	ctx context.Context,
	actor twofactorDomain.Actor,
	kind twofactorDomain.OperationKind,
	requestID uuid.UUID,
	metadata map[string]any,
) error {
	args := m.Called(ctx, actor, kind, requestID, metadata)
	return args.Error(0)
}

// ResetAll mocks the ResetAll method of EnforcementUseCase.
func (m *MockEnforcementUseCase) ResetAll(
	ctx context.Context,
	actor twofactorDomain.Actor,
	requestID uuid.UUID,
) error {
	args := m.Called(ctx, actor, requestID)
	return args.Error(0)
}

// MockVerificationEventUseCase is a mock implementation of VerificationEventUseCase for testing.
type MockVerificationEventUseCase struct {
	mock.Mock
}

// List mocks the List method of VerificationEventUseCase.
func (m *MockVerificationEventUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*twofactorDomain.VerificationEvent, error) {
	args := m.Called(ctx, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*twofactorDomain.VerificationEvent), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method of VerificationEventUseCase.
func (m *MockVerificationEventUseCase) DeleteOlderThan(
	ctx context.Context,
	days int,
	dryRun bool,
) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// VerifyIntegrity mocks the VerifyIntegrity method of VerificationEventUseCase.
func (m *MockVerificationEventUseCase) VerifyIntegrity(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// VerifyBatch mocks the VerifyBatch method of VerificationEventUseCase.
func (m *MockVerificationEventUseCase) VerifyBatch(
	ctx context.Context,
	startTime, endTime time.Time,
) (*twofactorUseCase.VerificationReport, error) {
	args := m.Called(ctx, startTime, endTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twofactorUseCase.VerificationReport), args.Error(1)
}
