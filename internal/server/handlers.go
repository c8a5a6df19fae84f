package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gapscout/internal/analysis"
	"gapscout/internal/core"
)

// maxRequestBody caps POST /api/gaps payloads, which may carry full keyword lists.
const maxRequestBody = 10 << 20

// HealthResponse is returned by /health
type HealthResponse struct {
	Status     string   `json:"status"`
	Uptime     string   `json:"uptime"`
	Strategies []string `json:"strategies"`
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Strategies: s.strategyNames(),
	})
}

// handleStrategies handles GET /api/strategies
func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string][]string{"strategies": s.strategyNames()})
}

// handleAnalyze handles POST /api/gaps
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_json", "Request body must be a JSON analysis request")
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		status, code := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.log.Error().Err(err).Str("primary", req.PrimaryDomain).Msg("Analysis request failed")
		}
		s.respondError(w, status, code, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// statusFor maps analysis errors to HTTP status codes and stable error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidDomainInput):
		return http.StatusBadRequest, "invalid_domain"
	case errors.Is(err, core.ErrAllStrategiesExhausted):
		return http.StatusBadGateway, "strategies_exhausted"
	case errors.Is(err, core.ErrNoKeywordData):
		return http.StatusBadRequest, "no_keyword_data"
	case errors.Is(err, analysis.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (s *Server) strategyNames() []string {
	names := s.analyzer.Strategies()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// respondError writes a JSON error response
func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}
