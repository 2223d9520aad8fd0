// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/allisson/stepup/internal/metrics"
	twofactorHTTP "github.com/allisson/stepup/internal/twofactor/http"
)

// Server represents the API HTTP server.
type Server struct {
	db     *sql.DB
	host   string
	port   int
	logger *slog.Logger
	router *gin.Engine
	server *http.Server
}

// NewServer creates a new HTTP server. The database handle is used only by
// the readiness probe; pass nil in tests that do not exercise readiness.
// Call SetupRouter before Start to register the API routes.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		host:   host,
		port:   port,
		logger: logger,
	}
}

// RouterConfig holds the handlers and middleware settings for route registration.
type RouterConfig struct {
	// EnforcementHandler serves decisions, grace countdowns, and verifications.
	EnforcementHandler *twofactorHTTP.EnforcementHandler

	// VerificationEventHandler serves the journal listing.
	VerificationEventHandler *twofactorHTTP.VerificationEventHandler

	// MeterProvider enables HTTP request metrics when non-nil.
	MeterProvider metric.MeterProvider

	// MetricsNamespace prefixes HTTP metric names.
	MetricsNamespace string

	// RateLimitEnabled toggles per-session rate limiting on /v1 routes.
	RateLimitEnabled bool

	// RateLimitRequestsPerSec is the sustained per-session request rate.
	RateLimitRequestsPerSec float64

	// RateLimitBurst is the per-session burst capacity.
	RateLimitBurst int

	// CORSEnabled toggles CORS handling.
	CORSEnabled bool

	// CORSAllowOrigins is a comma-separated list of allowed origins.
	CORSAllowOrigins string
}

// SetupRouter builds the Gin router with the full middleware stack and API
// routes. Middleware order: recovery, request id, logging, CORS, HTTP
// metrics; the /v1 group additionally runs actor extraction and per-session
// rate limiting before any handler.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}

	// Probes stay outside /v1: the gateway does not forward identity
	// headers for them.
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(twofactorHTTP.ActorMiddleware(s.logger))
	if cfg.RateLimitEnabled {
		v1.Use(twofactorHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	if cfg.EnforcementHandler != nil {
		v1.GET("/operations", cfg.EnforcementHandler.ListOperationsHandler)
		v1.GET("/operations/:operation/decision", cfg.EnforcementHandler.DecisionHandler)
		v1.GET("/operations/:operation/grace", cfg.EnforcementHandler.GraceHandler)
		v1.POST("/verifications", cfg.EnforcementHandler.RecordVerificationHandler)
		v1.DELETE("/verifications", cfg.EnforcementHandler.ResetHandler)
	}

	if cfg.VerificationEventHandler != nil {
		v1.GET("/verification-events", cfg.VerificationEventHandler.ListHandler)
	}

	s.router = router
}

// GetHandler returns the underlying router, for tests that mount the API on
// an httptest server. Nil until SetupRouter runs.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can do useful work. Readiness
// requires a reachable database; the ping is bounded so a hung connection
// cannot stall the probe.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.host, s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
