// Package api exposes the report engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/config"
	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/middleware"
	"github.com/dental-report-engine/internal/pipeline"
	"github.com/dental-report-engine/internal/rules"
)

// Server is the HTTP front of the report engine.
type Server struct {
	logger   *logrus.Logger
	cfg      *config.Config
	rules    *rules.RuleSet
	pipeline *pipeline.Pipeline
	audits   domain.AuditStore
	router   *gin.Engine
	server   *http.Server
}

// NewServer wires the routes and middleware.
func NewServer(logger *logrus.Logger, cfg *config.Config, rs *rules.RuleSet,
	p *pipeline.Pipeline, audits domain.AuditStore) *Server {

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.AuditLogger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))
	router.Use(middleware.RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))

	s := &Server{
		logger:   logger,
		cfg:      cfg,
		rules:    rs,
		pipeline: p,
		audits:   audits,
		router:   router,
	}
	s.setupRoutes()
	return s
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("Starting HTTP server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/reports", s.handleGenerateReport)
		v1.GET("/audits/:session_id", s.handleGetAudit)
	}
}

// generateReportRequest is the report generation payload. Placeholder values
// are caller-side overrides for tokens the intake cannot satisfy.
type generateReportRequest struct {
	SessionID         string                  `json:"session_id" binding:"required"`
	Language          string                  `json:"language"`
	Answers           []domain.QuestionAnswer `json:"answers" binding:"required"`
	Metadata          map[string]string       `json:"metadata"`
	PlaceholderValues map[string]string       `json:"placeholder_values"`
}

func (s *Server) handleGenerateReport(c *gin.Context) {
	var req generateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          fmt.Sprintf("invalid request body: %v", err),
			"correlation_id": c.GetString("correlation_id"),
		})
		return
	}

	in := &domain.Intake{
		SessionID: req.SessionID,
		Timestamp: time.Now().UTC(),
		Language:  req.Language,
		Answers:   req.Answers,
		Metadata:  req.Metadata,
	}

	result := s.pipeline.Run(c.Request.Context(), in, req.PlaceholderValues)

	status := http.StatusOK
	if result.Outcome == domain.OutcomeBlock {
		// the caller gets the outcome and the audit reference, never a
		// blocked report body
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{
		"success":        result.Success,
		"outcome":        result.Outcome,
		"run_id":         result.Audit.RunID,
		"report":         result.Report,
		"error":          result.Error,
		"correlation_id": c.GetString("correlation_id"),
	})
}

func (s *Server) handleGetAudit(c *gin.Context) {
	sessionID := c.Param("session_id")

	record, err := s.audits.GetBySession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":          "no audit record for session",
				"correlation_id": c.GetString("correlation_id"),
			})
			return
		}
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Audit lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          "audit lookup failed",
			"correlation_id": c.GetString("correlation_id"),
		})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"timestamp":     time.Now().UTC(),
		"rules_version": s.rules.Version,
	})
}

// corsMiddleware adds CORS headers to responses.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	origin := "*"
	if len(allowedOrigins) > 0 {
		origin = allowedOrigins[0]
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Correlation-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
