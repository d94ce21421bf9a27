// Package server exposes validation runs over HTTP: a health probe,
// Prometheus metrics, a trigger endpoint for batch runs, the results of the
// last run, and a websocket stream of run progress.
package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nitya2202/ocr-string-validation-tool/internal/config"
	"github.com/nitya2202/ocr-string-validation-tool/internal/dataset"
	"github.com/nitya2202/ocr-string-validation-tool/internal/extractor"
	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
	"github.com/nitya2202/ocr-string-validation-tool/internal/validation"
)

// Server holds the HTTP server state and dependencies. Validation runs are
// single-flight: a second trigger while one is running is rejected.
type Server struct {
	appConfig  config.Config
	extractor  extractor.Extractor
	corsOrigin string
	timeoutSec int
	wsEnabled  bool
	hub        *progressHub

	newEngine func(req ValidationRequest) (*validation.Engine, error)

	mu      sync.Mutex
	running bool
	lastRun *ValidationResponse
}

// Config holds server configuration.
type Config struct {
	Host             string
	Port             int
	CORSOrigin       string
	TimeoutSec       int
	ShutdownTimeout  int
	WebSocketEnabled bool
	AppConfig        config.Config
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ValidationRequest carries optional per-run overrides for a triggered
// validation run. Zero values fall back to the server configuration.
type ValidationRequest struct {
	Language       string   `json:"language,omitempty"`
	Strategy       string   `json:"strategy,omitempty"`
	FuzzyThreshold *float64 `json:"fuzzy_threshold,omitempty"`
	Workers        int      `json:"workers,omitempty"`
}

// ValidationResponse is the payload of the validate and results endpoints.
type ValidationResponse struct {
	Success     bool                     `json:"success"`
	Language    string                   `json:"language,omitempty"`
	GeneratedAt string                   `json:"generated_at,omitempty"`
	Summary     *model.ValidationSummary `json:"summary,omitempty"`
	Results     []model.ValidationResult `json:"results,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

// NewServer creates a validation server instance. The extractor backend is
// built once and shared by all runs.
func NewServer(cfg Config) (*Server, error) {
	if err := cfg.AppConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	ext, err := extractor.New(cfg.AppConfig.ToExtractorConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize extractor: %w", err)
	}

	s := &Server{
		appConfig:  cfg.AppConfig,
		extractor:  ext,
		corsOrigin: cfg.CORSOrigin,
		timeoutSec: cfg.TimeoutSec,
		wsEnabled:  cfg.WebSocketEnabled,
		hub:        newProgressHub(),
	}
	s.newEngine = s.buildEngine
	return s, nil
}

// buildEngine assembles a validation engine for one run, applying request
// overrides on top of the server configuration.
func (s *Server) buildEngine(req ValidationRequest) (*validation.Engine, error) {
	cfg := s.appConfig
	if req.Language != "" {
		cfg.Language = req.Language
	}
	if req.Strategy != "" {
		cfg.Validation.Strategy = req.Strategy
	}
	if req.FuzzyThreshold != nil {
		cfg.Validation.FuzzyThreshold = *req.FuzzyThreshold
	}
	if req.Workers > 0 {
		cfg.Validation.Workers = req.Workers
	}

	m, err := cfg.Matcher()
	if err != nil {
		return nil, err
	}

	loader := dataset.NewFileLoader(
		cfg.TestProtocolPath(),
		cfg.ExpectedStringsPath(),
		cfg.CoordinatesPath(),
	)

	return validation.NewBuilder().
		WithLoader(loader).
		WithExtractor(s.extractor).
		WithMatcher(m).
		WithScreenshotDir(cfg.ScreenshotsDir()).
		WithRequest(cfg.ToRequest()).
		WithWorkers(cfg.Validation.Workers).
		Build()
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.extractor != nil {
		return s.extractor.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.withCORS(s.instrumented(s.healthHandler)))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/v1/validate", s.withCORS(s.instrumented(s.validateHandler)))
	mux.HandleFunc("/api/v1/results", s.withCORS(s.instrumented(s.resultsHandler)))
	if s.wsEnabled {
		mux.HandleFunc("/ws", s.progressWebSocketHandler)
	}
}
