package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
	twofactorMocks "github.com/allisson/stepup/internal/twofactor/usecase/mocks"
)

func TestRunCheck(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	actor := twofactorDomain.Actor{PrincipalID: "admin-42", SessionID: "session-abc"}

	policy, err := twofactorDomain.PolicyFor(twofactorDomain.DeleteAccountOperation)
	require.NoError(t, err)

	t.Run("required-text", func(t *testing.T) {
		mockUseCase := &twofactorMocks.MockEnforcementUseCase{}
		mockUseCase.On("Evaluate", ctx, actor, twofactorDomain.DeleteAccountOperation).
			Return(&twofactorDomain.Decision{Required: true, Policy: policy}, nil)

		var out bytes.Buffer
		err := RunCheck(ctx, mockUseCase, logger, &out,
			"delete-single-account", "admin-42", "session-abc", "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Verification Required: YES")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("not-required-json", func(t *testing.T) {
		mockUseCase := &twofactorMocks.MockEnforcementUseCase{}
		mockUseCase.On("Evaluate", ctx, actor, twofactorDomain.DeleteAccountOperation).
			Return(&twofactorDomain.Decision{
				Required: false,
				Reason:   twofactorDomain.ReasonRecentValid,
				Policy:   policy,
			}, nil)

		var out bytes.Buffer
		err := RunCheck(ctx, mockUseCase, logger, &out,
			"delete-single-account", "admin-42", "session-abc", "json")
		require.NoError(t, err)

		var result map[string]interface{}
		err = json.Unmarshal(out.Bytes(), &result)
		require.NoError(t, err)
		require.Equal(t, false, result["required"])
		require.Equal(t, twofactorDomain.ReasonRecentValid, result["reason"])
		mockUseCase.AssertExpectations(t)
	})

	t.Run("fail-closed-note", func(t *testing.T) {
		mockUseCase := &twofactorMocks.MockEnforcementUseCase{}
		mockUseCase.On("Evaluate", ctx, actor, twofactorDomain.DeleteAccountOperation).
			Return(&twofactorDomain.Decision{Required: true, Policy: policy, FailClosed: true}, nil)

		var out bytes.Buffer
		err := RunCheck(ctx, mockUseCase, logger, &out,
			"delete-single-account", "admin-42", "session-abc", "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "provider unavailable, failing closed")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("unknown-operation", func(t *testing.T) {
		err := RunCheck(ctx, nil, logger, nil,
			"format-hard-drive", "admin-42", "session-abc", "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid operation")
	})

	t.Run("missing-principal", func(t *testing.T) {
		err := RunCheck(ctx, nil, logger, nil,
			"delete-single-account", "", "session-abc", "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "principal is required")
	})

	t.Run("missing-session", func(t *testing.T) {
		err := RunCheck(ctx, nil, logger, nil,
			"delete-single-account", "admin-42", "", "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "session is required")
	})
}
