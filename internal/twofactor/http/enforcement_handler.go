package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/stepup/internal/httputil"
	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
	"github.com/allisson/stepup/internal/twofactor/http/dto"
	twofactorUseCase "github.com/allisson/stepup/internal/twofactor/usecase"
)

// EnforcementHandler handles HTTP requests for two-factor enforcement decisions.
type EnforcementHandler struct {
	enforcementUseCase twofactorUseCase.EnforcementUseCase
	logger             *slog.Logger
}

// NewEnforcementHandler creates a new enforcement handler with required dependencies.
func NewEnforcementHandler(
	enforcementUseCase twofactorUseCase.EnforcementUseCase,
	logger *slog.Logger,
) *EnforcementHandler {
	return &EnforcementHandler{
		enforcementUseCase: enforcementUseCase,
		logger:             logger,
	}
}

// ListOperationsHandler returns the static operation policy table.
// GET /v1/operations
// Returns 200 OK with every registered operation kind, its risk level,
// description, and whether it participates in the grace period. Dashboards
// use this to render confirmation dialogs without hardcoding the table.
func (h *EnforcementHandler) ListOperationsHandler(c *gin.Context) {
	response := dto.MapPoliciesToListResponse(twofactorDomain.Policies())
	c.JSON(http.StatusOK, response)
}

// DecisionHandler evaluates whether the acting session must complete a fresh
// two-factor verification before performing the operation.
// GET /v1/operations/:operation/decision
// Returns 200 OK with {required, reason?, policy}. The decision has no side
// effects, so clients may re-check right before executing the action.
// Unknown operation slugs return 422. Provider outages are absorbed into a
// required=true decision, never an error status.
func (h *EnforcementHandler) DecisionHandler(c *gin.Context) {
	actor, ok := actorFromContext(c, h.logger)
	if !ok {
		return
	}

	kind, err := twofactorDomain.ParseOperationKind(c.Param("operation"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	decision, err := h.enforcementUseCase.Evaluate(c.Request.Context(), actor, kind)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDecisionToResponse(decision))
}

// GraceHandler reports the remaining grace period for an operation kind.
// GET /v1/operations/:operation/grace
// Returns 200 OK with {operation, remaining_ms}. remaining_ms is 0 when no
// verification was recorded or the window has elapsed; it is never negative.
// Dashboards use this to render countdowns next to sensitive actions.
func (h *EnforcementHandler) GraceHandler(c *gin.Context) {
	actor, ok := actorFromContext(c, h.logger)
	if !ok {
		return
	}

	kind, err := twofactorDomain.ParseOperationKind(c.Param("operation"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	remaining := h.enforcementUseCase.RemainingGraceMillis(c.Request.Context(), actor, kind)

	c.JSON(http.StatusOK, dto.GraceResponse{
		Operation:   string(kind),
		RemainingMS: remaining,
	})
}

// RecordVerificationHandler records a completed interactive verification for
// the acting session.
// POST /v1/verifications
// Body: {"operation": "<slug>", "metadata": {...}}. Returns 201 Created with
// {operation, verified_at, expires_at}. Repeated calls overwrite the grant
// (last write wins). The grant takes effect even when journaling fails; in
// that case the response is an error but the session keeps its grace period.
func (h *EnforcementHandler) RecordVerificationHandler(c *gin.Context) {
	actor, ok := actorFromContext(c, h.logger)
	if !ok {
		return
	}

	var request dto.RecordVerificationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := request.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validated above, cannot fail here
	kind, _ := twofactorDomain.ParseOperationKind(request.Operation)

	verifiedAt := time.Now().UTC()
	err := h.enforcementUseCase.RecordVerification(
		c.Request.Context(),
		actor,
		kind,
		requestIDFromContext(c),
		request.Metadata,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	remaining := h.enforcementUseCase.RemainingGraceMillis(c.Request.Context(), actor, kind)
	expiresAt := verifiedAt.Add(time.Duration(remaining) * time.Millisecond)

	c.JSON(http.StatusCreated, dto.VerificationResponse{
		Operation:  string(kind),
		VerifiedAt: verifiedAt,
		ExpiresAt:  expiresAt,
	})
}

// ResetHandler clears every verification grant of the acting session.
// DELETE /v1/verifications
// Returns 204 No Content. Intended as the logout hook so grace periods never
// leak into the principal's next session.
func (h *EnforcementHandler) ResetHandler(c *gin.Context) {
	actor, ok := actorFromContext(c, h.logger)
	if !ok {
		return
	}

	err := h.enforcementUseCase.ResetAll(c.Request.Context(), actor, requestIDFromContext(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// requestIDFromContext parses the request id set by the requestid middleware.
// Falls back to a fresh UUIDv7 when the header is absent or not a UUID, so
// journal entries always carry a usable correlation id.
func requestIDFromContext(c *gin.Context) uuid.UUID {
	if id, err := uuid.Parse(requestid.Get(c)); err == nil {
		return id
	}
	return uuid.Must(uuid.NewV7())
}
