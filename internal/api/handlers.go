package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/candor-ai/go-tribunal/internal/domain"
	"github.com/candor-ai/go-tribunal/internal/ports"
)

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"service": "go-tribunal",
		"version": s.version,
		"endpoints": []string{
			"GET /health",
			"GET /metrics",
			"POST /api/v1/positions",
			"POST /api/v1/explore",
			"GET /api/v1/sessions",
			"GET /api/v1/sessions/{id}",
			"GET /api/v1/config",
			"GET /api/v1/domains",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleAdjudicate generates a position for the posted problem and runs the
// full critique-decide loop, returning the finished session.
func (s *Server) handleAdjudicate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Problem == "" {
		respondError(w, http.StatusBadRequest, "problem is required")
		return
	}

	session, err := s.engine.Adjudicate(r.Context(), req)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session.Snapshot())
}

type exploreRequest struct {
	domain.GenerationRequest
	Variations       int     `json:"variations,omitempty"`
	SimilarityCutoff float64 `json:"similarity_cutoff,omitempty"`
}

// handleExplore generates several position variations for the problem,
// adjudicates the survivors, and returns the ranked report.
func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	var req exploreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Problem == "" {
		respondError(w, http.StatusBadRequest, "problem is required")
		return
	}

	cfg := s.cfg.Explore
	if req.Variations > 0 {
		cfg.Variations = req.Variations
	}
	if req.SimilarityCutoff > 0 {
		cfg.SimilarityCutoff = req.SimilarityCutoff
	}

	report, err := s.engine.Explore(r.Context(), req.GenerationRequest, cfg, s.similarity)
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := s.store.List(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing sessions failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"sessions": records,
		"count":    len(records),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	record, err := s.store.Get(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "loading session failed")
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// handleConfig reports the effective non-secret configuration. Provider API
// keys are masked; the endpoint exists for operability, not disclosure.
func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	providers := make(map[string]any, len(s.cfg.LLM.Providers))
	for name, p := range s.cfg.LLM.Providers {
		providers[name] = map[string]any{
			"api_key":             maskSecret(p.APIKey),
			"base_url":            p.BaseURL,
			"max_retries":         p.MaxRetries,
			"requests_per_minute": p.RequestsPerMinute,
			"timeout":             p.Timeout.String(),
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"consensus":      s.engine.Consensus(),
		"collector":      s.cfg.Collector,
		"explore":        s.cfg.Explore,
		"max_iterations": s.cfg.Engine.MaxIterations,
		"default_model":  s.cfg.LLM.DefaultModel,
		"providers":      providers,
	})
}

func (s *Server) handleDomains(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"domains": domain.ProblemDomains(),
	})
}

// respondEngineError maps pipeline failures to HTTP statuses.
func (s *Server) respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidJudgment):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrEmptyCritique):
		respondError(w, http.StatusBadGateway, "all evaluators failed")
	case errors.Is(err, ports.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, "upstream rate limited")
	default:
		s.logger.Error("adjudication failed", "error", err)
		respondError(w, http.StatusInternalServerError, "adjudication failed")
	}
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****" + secret[len(secret)-4:]
}
