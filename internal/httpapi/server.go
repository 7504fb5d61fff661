// Package httpapi is the inbound HTTP surface of causewayd.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/causewayd/internal/confession"
	"github.com/fyrsmithlabs/causewayd/internal/dispatch"
	"github.com/fyrsmithlabs/causewayd/internal/objectstore"
	"github.com/fyrsmithlabs/causewayd/internal/persona"
	"github.com/fyrsmithlabs/causewayd/internal/store"
	"github.com/fyrsmithlabs/causewayd/internal/vision"
)

// Dispatcher runs one full dispatch round.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) (dispatch.Envelope, error)
}

// ConfessionAnalyzer produces single-shot confession verdicts.
type ConfessionAnalyzer interface {
	Analyze(ctx context.Context, req confession.Request) (confession.Result, error)
}

// NarrativeGenerator turns transcripts into shareable text.
type NarrativeGenerator interface {
	Confession(ctx context.Context, history []dispatch.Turn) (string, error)
	Report(ctx context.Context, history []dispatch.Turn) (string, error)
}

// VisionAnalyzer rules on uploaded screenshots.
type VisionAnalyzer interface {
	Analyze(ctx context.Context, gsURI, personaPrompt, mimeType string) (vision.Verdict, error)
}

// Transcriber converts voice notes to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Host           string
	Port           int
	AnalyzeTimeout time.Duration
}

// Deps are the services behind the API. Vision, Speech, and Uploader may
// be nil when their backends are not configured; the matching routes then
// answer 503.
type Deps struct {
	Dispatcher Dispatcher
	Confession ConfessionAnalyzer
	Narrative  NarrativeGenerator
	Vision     VisionAnalyzer
	Speech     Transcriber
	Uploader   objectstore.Uploader
	Store      store.Store
	Personas   *persona.Registry
	Metrics    *Metrics
}

// Server serves the causewayd HTTP API.
type Server struct {
	echo   *echo.Echo
	deps   Deps
	logger *zap.Logger
	config *Config
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(deps Deps, logger *zap.Logger, cfg *Config) (*Server, error) {
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher cannot be nil")
	}
	if deps.Confession == nil {
		return nil, fmt.Errorf("confession analyzer cannot be nil")
	}
	if deps.Narrative == nil {
		return nil, fmt.Errorf("narrative generator cannot be nil")
	}
	if deps.Personas == nil {
		return nil, fmt.Errorf("persona registry cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if deps.Store == nil {
		deps.Store = store.NoOp{}
	}
	if cfg == nil {
		cfg = &Config{
			Host:           "localhost",
			Port:           9090,
			AnalyzeTimeout: 60 * time.Second,
		}
	}
	if cfg.AnalyzeTimeout == 0 {
		cfg.AnalyzeTimeout = 60 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(deps.Metrics.Middleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:   e,
		deps:   deps,
		logger: logger,
		config: cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/starters", s.handleStarters)
	v1.POST("/analyze", s.handleAnalyze)
	v1.POST("/analyze-confession", s.handleAnalyzeConfession)
	v1.POST("/analyze-vision", s.handleAnalyzeVision)
	v1.POST("/generate-confession", s.handleGenerateConfession)
	v1.POST("/generate-report", s.handleGenerateReport)
	v1.POST("/upload", s.handleUpload)
	v1.POST("/voice", s.handleVoice)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
