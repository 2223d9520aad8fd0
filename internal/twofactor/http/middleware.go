package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/stepup/internal/errors"
	"github.com/allisson/stepup/internal/httputil"
	twofactorDomain "github.com/allisson/stepup/internal/twofactor/domain"
)

// Identity headers forwarded by the platform's API gateway. The gateway
// authenticates the admin; this service trusts the headers it forwards.
const (
	PrincipalIDHeader = "X-Principal-Id"
	SessionIDHeader   = "X-Session-Id"
)

// ActorMiddleware extracts the acting principal and session from the gateway
// headers and stores them in the request context.
//
// The middleware:
// 1. Reads X-Principal-Id and X-Session-Id from the request headers
// 2. Rejects requests where either header is missing or blank
// 3. Stores the actor in the request context for handlers via GetActor()
//
// Error handling:
//   - Missing or blank X-Principal-Id → 401 Unauthorized
//   - Missing or blank X-Session-Id → 401 Unauthorized
//
// Usage:
//
//	v1 := router.Group("/v1")
//	v1.Use(ActorMiddleware(logger))
//	v1.GET("/operations/:operation/decision", handler.DecisionHandler)
func ActorMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principalID := strings.TrimSpace(c.GetHeader(PrincipalIDHeader))
		sessionID := strings.TrimSpace(c.GetHeader(SessionIDHeader))

		if principalID == "" || sessionID == "" {
			logger.Debug("actor extraction failed: missing identity headers",
				slog.Bool("has_principal_id", principalID != ""),
				slog.Bool("has_session_id", sessionID != ""))
			httputil.HandleErrorGin(c, twofactorDomain.ErrMissingActor, logger)
			c.Abort()
			return
		}

		actor := twofactorDomain.Actor{
			PrincipalID: principalID,
			SessionID:   sessionID,
		}

		ctx := WithActor(c.Request.Context(), actor)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// actorFromContext returns the actor stored by ActorMiddleware or writes a
// 401 response when it is absent. Handlers call this instead of GetActor so
// a misconfigured route never reaches decision logic without an identity.
func actorFromContext(c *gin.Context, logger *slog.Logger) (twofactorDomain.Actor, bool) {
	actor, ok := GetActor(c.Request.Context())
	if !ok {
		logger.Error("no actor in request context: actor middleware missing from route")
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
		return twofactorDomain.Actor{}, false
	}
	return actor, true
}
