// Package chi exposes the search pipeline over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storefind/internal/domain"
	"github.com/kailas-cloud/storefind/internal/logger"
	"github.com/kailas-cloud/storefind/internal/metrics"
	"github.com/kailas-cloud/storefind/internal/trace"
	healthuc "github.com/kailas-cloud/storefind/internal/usecase/health"
	"github.com/kailas-cloud/storefind/internal/usecase/pipeline"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server wires the usecases into an HTTP API.
type Server struct {
	search        *pipeline.Service
	diagnostics   Diagnostics
	health        *healthuc.Service
	apiKeys       []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. diagnostics may be nil.
func NewServer(
	search *pipeline.Service,
	diagnostics Diagnostics,
	health *healthuc.Service,
	apiKeys []string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:      search,
		diagnostics: diagnostics,
		health:      health,
		apiKeys:     apiKeys,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrExtractionFailed, http.StatusUnprocessableEntity, "extraction_failed"),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrQueryExecution, http.StatusBadGateway, "query_execution_failed"),
	}
	return s
}

// Router assembles the route tree with middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(s.requestContext)
	r.Use(BearerAuthMiddleware(s.apiKeys))

	r.Post("/search", s.handleSearch)
	r.Route("/diagnostics", func(r chi.Router) {
		r.Get("/schema", s.handleSchemaDiagnostics)
		r.Get("/indexes", s.handleIndexDiagnostics)
		r.Post("/plan", s.handlePlanDiagnostics)
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requestContext tags each request with an id and threads the request-scoped
// logger and trace recorder through the context.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		reqLogger := logger.WithRequestID(s.logger, requestID)
		ctx := logger.ContextWithLogger(r.Context(), reqLogger)
		ctx = trace.WithRecorder(ctx, trace.NewZapRecorder(s.logger, requestID))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handleSearch handles POST /search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	resp, err := s.search.Search(r.Context(), req.Query, pipeline.Options{
		Limit:               req.Limit,
		Debug:               req.Debug,
		SimilarityThreshold: req.SimilarityThreshold,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, responseToWire(resp))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthToWire(report))
}

// handleDomainError walks the handler chain; unhandled errors become 500s.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, handle := range s.errorHandlers {
		if handle(w, err) {
			return
		}
	}
	s.logger.Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
