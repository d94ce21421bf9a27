package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nitya2202/ocr-string-validation-tool/internal/common"
	"github.com/nitya2202/ocr-string-validation-tool/internal/validation"
	"github.com/nitya2202/ocr-string-validation-tool/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// validateHandler triggers a validation run. The optional JSON body carries
// per-run overrides; an empty body runs with the server configuration. Only
// one run executes at a time.
func (s *Server) validateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeErrorResponse(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.FuzzyThreshold != nil && (*req.FuzzyThreshold < 0 || *req.FuzzyThreshold > 1) {
		s.writeErrorResponse(w, "fuzzy_threshold must be between 0 and 1", http.StatusBadRequest)
		return
	}
	if req.Workers < 0 {
		s.writeErrorResponse(w, "workers must not be negative", http.StatusBadRequest)
		return
	}

	if s.newEngine == nil {
		s.writeErrorResponse(w, "Validation engine not initialized", http.StatusInternalServerError)
		return
	}

	if !s.tryAcquireRun() {
		validationRunsTotal.WithLabelValues("rejected").Inc()
		s.writeErrorResponse(w, "A validation run is already in progress", http.StatusConflict)
		return
	}
	defer s.releaseRun()

	engine, err := s.newEngine(req)
	if err != nil {
		s.writeErrorResponse(w, "Failed to configure validation run: "+err.Error(), http.StatusBadRequest)
		return
	}
	engine.AddObserver(validation.NewMetricsObserver())
	if s.hub != nil {
		engine.AddObserver(newProgressObserver(s.hub))
	}

	ctx := r.Context()
	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	timer := common.StartStopwatch()
	results, err := engine.ValidateAll(ctx)
	if err != nil {
		validationRunsTotal.WithLabelValues("failed").Inc()
		s.writeErrorResponse(w, "Validation run failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	validationRunsTotal.WithLabelValues("completed").Inc()
	validationRunDuration.Observe(timer.Elapsed().Seconds())

	language := s.appConfig.Language
	if req.Language != "" {
		language = req.Language
	}

	summary := validation.Summarize(results)
	response := ValidationResponse{
		Success:     true,
		Language:    language,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Summary:     &summary,
		Results:     results,
	}
	s.storeLastRun(response)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode validation response", "error", err)
	}
}

// resultsHandler returns the most recent completed run.
func (s *Server) resultsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	last := s.lastRun
	s.mu.Unlock()

	if last == nil {
		s.writeErrorResponse(w, "No validation run recorded yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(last); err != nil {
		slog.Error("Failed to encode results response", "error", err)
	}
}

// tryAcquireRun marks a run as in progress. It returns false when another
// run already holds the slot.
func (s *Server) tryAcquireRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Server) releaseRun() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Server) storeLastRun(response ValidationResponse) {
	s.mu.Lock()
	s.lastRun = &response
	s.mu.Unlock()
}

// writeErrorResponse writes a JSON error response with the given status code.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ValidationResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
