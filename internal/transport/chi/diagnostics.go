package chi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kailas-cloud/storefind/internal/domain/query"
	"github.com/kailas-cloud/storefind/internal/usecase/retrieve"
)

// Diagnostics is the read-only datastore diagnostics contract. None of these
// operations are required for the search path.
type Diagnostics interface {
	ValidateSchema(ctx context.Context) (retrieve.SchemaReport, error)
	InspectIndexes(ctx context.Context) (retrieve.IndexReport, error)
	AnalyzePlan(
		ctx context.Context, semanticQuery string,
		filters query.FilterParams, limit int,
	) (retrieve.PlanReport, error)
}

func (s *Server) handleSchemaDiagnostics(w http.ResponseWriter, r *http.Request) {
	if s.diagnostics == nil {
		writeError(w, http.StatusNotImplemented, "diagnostics_disabled", "Diagnostics are not configured")
		return
	}
	report, err := s.diagnostics.ValidateSchema(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleIndexDiagnostics(w http.ResponseWriter, r *http.Request) {
	if s.diagnostics == nil {
		writeError(w, http.StatusNotImplemented, "diagnostics_disabled", "Diagnostics are not configured")
		return
	}
	report, err := s.diagnostics.InspectIndexes(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// planRequest is the POST /diagnostics/plan body.
type planRequest struct {
	Query         string   `json:"query"`
	MinPrice      *float64 `json:"min_price,omitempty"`
	MaxPrice      *float64 `json:"max_price,omitempty"`
	ExcludedTerms []string `json:"excluded_terms,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

func (s *Server) handlePlanDiagnostics(w http.ResponseWriter, r *http.Request) {
	if s.diagnostics == nil {
		writeError(w, http.StatusNotImplemented, "diagnostics_disabled", "Diagnostics are not configured")
		return
	}

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query is required")
		return
	}

	filters, err := query.NewFilterParams(req.MinPrice, req.MaxPrice, req.ExcludedTerms)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	report, err := s.diagnostics.AnalyzePlan(r.Context(), req.Query, filters, req.Limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
