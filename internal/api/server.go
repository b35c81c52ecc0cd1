// Package api exposes usage logging and risk analysis over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/screentime-dashboard-tui/internal/logger"
	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
	"github.com/j-veylop/screentime-dashboard-tui/internal/usage"
)

// Backend is the service layer the API serves.
type Backend interface {
	LogUsage(ctx context.Context, s *models.UsageSession) error
	Analyze(ctx context.Context, userID string) (*models.UserReport, error)
	AnalyzeRaw(raw any) (*models.AnalysisResult, error)
	History(ctx context.Context, userID string, limit int) ([]models.StoredAnalysis, error)
}

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
	maxBodyBytes        = 1 << 20

	// maxSessionMinutes caps a single logged session at one day.
	maxSessionMinutes = 24 * 60
)

// Server routes HTTP requests to a Backend.
type Server struct {
	backend   Backend
	events    EventSource
	mux       *http.ServeMux
	now       func() time.Time
	heartbeat time.Duration
}

// New creates a Server.
func New(backend Backend) *Server {
	s := &Server{
		backend:   backend,
		mux:       http.NewServeMux(),
		now:       time.Now,
		heartbeat: sseHeartbeatInterval,
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /api/usage", s.handleLogUsage)
	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /api/addiction-insights/{user}", s.handleInsights)
	s.mux.HandleFunc("GET /api/history/{user}", s.handleHistory)
	if events, ok := backend.(EventSource); ok {
		s.events = events
		s.mux.HandleFunc("GET /api/events", s.handleEvents)
	}
	return s
}

// ServeHTTP implements http.Handler, tagging every request with an id.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := logger.RequestID(r)
	w.Header().Set(logger.RequestIDHeader, reqID)

	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)

	logger.WithRequest(r, reqID).Info("request handled",
		"status", rec.status,
		"duration_ms", time.Since(start).Milliseconds())
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_, _ = fmt.Fprint(w, "ok")
}

type usageRequest struct {
	UserID          string  `json:"user_id"`
	App             string  `json:"app"`
	StartedAt       string  `json:"started_at"`
	DurationMinutes float64 `json:"duration_minutes"`
}

func (s *Server) handleLogUsage(w http.ResponseWriter, r *http.Request) {
	var req usageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	req.App = strings.TrimSpace(req.App)
	if req.UserID == "" || req.App == "" {
		writeError(w, http.StatusBadRequest, "user_id and app are required")
		return
	}
	if req.DurationMinutes < 0 || req.DurationMinutes > maxSessionMinutes {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("duration_minutes must be between 0 and %d", maxSessionMinutes))
		return
	}

	started := s.now()
	if req.StartedAt != "" {
		t, err := time.Parse(time.RFC3339, req.StartedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "started_at must be RFC3339")
			return
		}
		started = t
	}

	session := &models.UsageSession{
		UserID:          req.UserID,
		App:             req.App,
		StartedAt:       started,
		DurationMinutes: int(math.Round(req.DurationMinutes)),
	}
	if err := s.backend.LogUsage(r.Context(), session); err != nil {
		logger.Error("failed to log usage", "user", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to log usage")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"status": "logged", "id": session.ID})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.backend.AnalyzeRaw(raw)
	if err != nil {
		var ve *usage.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		logger.Error("failed to analyze window", "error", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type insightsResponse struct {
	UserID          string                `json:"user_id"`
	AnalysisID      string                `json:"analysis_id,omitempty"`
	CurrentRisk     models.RiskAssessment `json:"current_risk"`
	RiskColor       string                `json:"risk_color"`
	Insights        []models.Insight      `json:"insights"`
	Recommendations []string              `json:"recommendations"`
	Visualization   models.Visualization  `json:"visualization"`
	Summary         models.WindowSummary  `json:"three_day_summary"`
	AnalyzedAt      time.Time             `json:"analyzed_at"`
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	report, err := s.backend.Analyze(r.Context(), user)
	if err != nil {
		logger.Error("failed to analyze user", "user", user, "error", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	res := report.Result
	writeJSON(w, http.StatusOK, insightsResponse{
		UserID:          user,
		AnalysisID:      report.ID,
		CurrentRisk:     res.CurrentRisk,
		RiskColor:       res.CurrentRisk.RiskLevel.Color(),
		Insights:        res.Insights,
		Recommendations: res.Recommendations,
		Visualization:   res.Visualization,
		Summary:         report.Summary,
		AnalyzedAt:      report.AnalyzedAt,
	})
}

type historyEntry struct {
	ID          string                `json:"id"`
	CreatedAt   time.Time             `json:"created_at"`
	CurrentRisk models.RiskAssessment `json:"current_risk"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	history, err := s.backend.History(r.Context(), user, limit)
	if err != nil {
		logger.Error("failed to load history", "user", user, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	out := make([]historyEntry, len(history))
	for i, h := range history {
		out[i] = historyEntry{ID: h.ID, CreatedAt: h.CreatedAt, CurrentRisk: h.Result.CurrentRisk}
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": user, "history": out})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
