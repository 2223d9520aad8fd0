package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/stepup/internal/errors"
	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
	"github.com/allisson/stepup/internal/twofactor/http/dto"
	"github.com/allisson/stepup/internal/twofactor/usecase/mocks"
)

// testActor is the actor injected into handler test requests.
var testActor = twofactorDomain.Actor{
	PrincipalID: "admin-42",
	SessionID:   "session-abc",
}

// setupTestEnforcementHandler creates a test handler with mocked dependencies.
func setupTestEnforcementHandler(t *testing.T) (*EnforcementHandler, *mocks.MockEnforcementUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockEnforcementUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewEnforcementHandler(mockUseCase, logger)

	return handler, mockUseCase
}

// createTestContext builds a gin test context with the test actor stored in
// the request context, mirroring what ActorMiddleware does in production.
func createTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.Request = req.WithContext(WithActor(req.Context(), testActor))
	return c, w
}

// createTestContextWithoutActor builds a gin test context with no actor in
// the request context, simulating a route missing the actor middleware.
func createTestContextWithoutActor(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func TestEnforcementHandler_ListOperationsHandler(t *testing.T) {
	t.Run("Success_FullPolicyTable", func(t *testing.T) {
		handler, _ := setupTestEnforcementHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/operations", nil)

		handler.ListOperationsHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListOperationsResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.Len(t, response.Data, 7)

		kinds := make(map[string]dto.OperationPolicyResponse)
		for _, policy := range response.Data {
			kinds[policy.Kind] = policy
		}

		bulkDelete, ok := kinds["bulk-delete-accounts"]
		require.True(t, ok)
		assert.Equal(t, "critical", bulkDelete.RiskLevel)
		assert.True(t, bulkDelete.RequiresRecentAuth)

		deactivate, ok := kinds["deactivate-account"]
		require.True(t, ok)
		assert.Equal(t, "high", deactivate.RiskLevel)
		assert.False(t, deactivate.RequiresRecentAuth)
	})
}

func TestEnforcementHandler_DecisionHandler(t *testing.T) {
	t.Run("Success_NotRequired", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		policy, err := twofactorDomain.PolicyFor(twofactorDomain.DeleteAccountOperation)
		require.NoError(t, err)

		mockUseCase.On("Evaluate", mock.Anything, testActor, twofactorDomain.DeleteAccountOperation).
			Return(&twofactorDomain.Decision{
				Required: false,
				Reason:   twofactorDomain.ReasonRecentValid,
				Policy:   policy,
			}, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/operations/delete-single-account/decision", nil)
		c.Params = gin.Params{{Key: "operation", Value: "delete-single-account"}}

		handler.DecisionHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.DecisionResponse
		err = json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.False(t, response.Required)
		assert.Equal(t, twofactorDomain.ReasonRecentValid, response.Reason)
		assert.Equal(t, "delete-single-account", response.Policy.Kind)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_Required_NoReason", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		policy, err := twofactorDomain.PolicyFor(twofactorDomain.ChangeSystemSettingsOperation)
		require.NoError(t, err)

		mockUseCase.On("Evaluate", mock.Anything, testActor, twofactorDomain.ChangeSystemSettingsOperation).
			Return(&twofactorDomain.Decision{
				Required: true,
				Policy:   policy,
			}, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/operations/change-system-settings/decision", nil)
		c.Params = gin.Params{{Key: "operation", Value: "change-system-settings"}}

		handler.DecisionHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var raw map[string]any
		err = json.Unmarshal(w.Body.Bytes(), &raw)
		require.NoError(t, err)
		assert.Equal(t, true, raw["required"])
		_, hasReason := raw["reason"]
		assert.False(t, hasReason, "required decisions must not carry a reason")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_UnknownOperation", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/operations/format-hard-drive/decision", nil)
		c.Params = gin.Params{{Key: "operation", Value: "format-hard-drive"}}

		handler.DecisionHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Evaluate")
	})

	t.Run("Error_MissingActor", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		c, w := createTestContextWithoutActor(http.MethodGet, "/v1/operations/delete-single-account/decision")
		c.Params = gin.Params{{Key: "operation", Value: "delete-single-account"}}

		handler.DecisionHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockUseCase.AssertNotCalled(t, "Evaluate")
	})

	t.Run("Error_UseCaseFailure", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		mockUseCase.On("Evaluate", mock.Anything, testActor, twofactorDomain.DeleteAccountOperation).
			Return(nil, apperrors.ErrInternal).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/operations/delete-single-account/decision", nil)
		c.Params = gin.Params{{Key: "operation", Value: "delete-single-account"}}

		handler.DecisionHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}

func TestEnforcementHandler_GraceHandler(t *testing.T) {
	t.Run("Success_ActiveGrant", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		mockUseCase.On("RemainingGraceMillis", mock.Anything, testActor, twofactorDomain.ChangeRoleOperation).
			Return(int64(123456)).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/operations/change-role-single/grace", nil)
		c.Params = gin.Params{{Key: "operation", Value: "change-role-single"}}

		handler.GraceHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.GraceResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.Equal(t, "change-role-single", response.Operation)
		assert.Equal(t, int64(123456), response.RemainingMS)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_NoGrant", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		mockUseCase.On("RemainingGraceMillis", mock.Anything, testActor, twofactorDomain.ChangeRoleOperation).
			Return(int64(0)).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/operations/change-role-single/grace", nil)
		c.Params = gin.Params{{Key: "operation", Value: "change-role-single"}}

		handler.GraceHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.GraceResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.Equal(t, int64(0), response.RemainingMS)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_UnknownOperation", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/operations/unknown/grace", nil)
		c.Params = gin.Params{{Key: "operation", Value: "unknown"}}

		handler.GraceHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "RemainingGraceMillis")
	})
}

func TestEnforcementHandler_RecordVerificationHandler(t *testing.T) {
	t.Run("Success_Created", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		mockUseCase.On(
			"RecordVerification",
			mock.Anything,
			testActor,
			twofactorDomain.BulkDeleteAccountsOperation,
			mock.Anything,
			mock.Anything,
		).Return(nil).Once()
		mockUseCase.On("RemainingGraceMillis", mock.Anything, testActor, twofactorDomain.BulkDeleteAccountsOperation).
			Return(int64(300000)).
			Once()

		body, err := json.Marshal(dto.RecordVerificationRequest{Operation: "bulk-delete-accounts"})
		require.NoError(t, err)

		c, w := createTestContext(http.MethodPost, "/v1/verifications", body)

		handler.RecordVerificationHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.VerificationResponse
		err = json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)
		assert.Equal(t, "bulk-delete-accounts", response.Operation)
		assert.Equal(t, response.VerifiedAt.Add(300000*time.Millisecond), response.ExpiresAt)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/verifications", []byte("{not json"))

		handler.RecordVerificationHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUseCase.AssertNotCalled(t, "RecordVerification")
	})

	t.Run("Error_UnknownOperation", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		body, err := json.Marshal(dto.RecordVerificationRequest{Operation: "not-a-real-operation"})
		require.NoError(t, err)

		c, w := createTestContext(http.MethodPost, "/v1/verifications", body)

		handler.RecordVerificationHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "RecordVerification")
	})

	t.Run("Error_JournalFailure", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		mockUseCase.On(
			"RecordVerification",
			mock.Anything,
			testActor,
			twofactorDomain.ChangeRoleOperation,
			mock.Anything,
			mock.Anything,
		).Return(apperrors.ErrInternal).Once()

		body, err := json.Marshal(dto.RecordVerificationRequest{Operation: "change-role-single"})
		require.NoError(t, err)

		c, w := createTestContext(http.MethodPost, "/v1/verifications", body)

		handler.RecordVerificationHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}

func TestEnforcementHandler_ResetHandler(t *testing.T) {
	t.Run("Success_NoContent", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		mockUseCase.On("ResetAll", mock.Anything, testActor, mock.Anything).
			Return(nil).
			Once()

		c, w := createTestContext(http.MethodDelete, "/v1/verifications", nil)

		handler.ResetHandler(c)
		// c.Status only records the code; flush it to the recorder as gin's
		// engine would after the handler chain completes.
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MissingActor", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		c, w := createTestContextWithoutActor(http.MethodDelete, "/v1/verifications")

		handler.ResetHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockUseCase.AssertNotCalled(t, "ResetAll")
	})

	t.Run("Error_JournalFailure", func(t *testing.T) {
		handler, mockUseCase := setupTestEnforcementHandler(t)

		mockUseCase.On("ResetAll", mock.Anything, testActor, mock.Anything).
			Return(apperrors.ErrInternal).
			Once()

		c, w := createTestContext(http.MethodDelete, "/v1/verifications", nil)

		handler.ResetHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}
