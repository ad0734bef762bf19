package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchstate/internal/domain"
	"github.com/kailas-cloud/searchstate/internal/domain/search/arguments"
	"github.com/kailas-cloud/searchstate/internal/logger"
	healthuc "github.com/kailas-cloud/searchstate/internal/usecase/health"
	searchuc "github.com/kailas-cloud/searchstate/internal/usecase/search"
	"github.com/kailas-cloud/searchstate/internal/version"
)

// maxBodyBytes caps request bodies; argument trees are small.
const maxBodyBytes = 1 << 20

// SearchService is the consumer interface of the session handlers.
type SearchService interface {
	Open(ctx context.Context, sessionID string, args arguments.Tree) (searchuc.Snapshot, error)
	Get(ctx context.Context, id string) (searchuc.Snapshot, error)
	SetQuery(ctx context.Context, id, q string) (searchuc.Snapshot, error)
	SetPage(ctx context.Context, id string, n int) (searchuc.Snapshot, error)
	SetResultsPerPage(ctx context.Context, id string, n int) (searchuc.Snapshot, error)
	AddFacet(ctx context.Context, id, name, value string) (searchuc.Snapshot, error)
	SubRequest(ctx context.Context, id string, onlyPersistent bool) (searchuc.Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the session API.
type Server struct {
	search        SearchService
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, ErrorCodeSessionNotFound),
		invalidArgumentHandler,
	}
	return s
}

// Routes registers all endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.OpenSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Put("/query", s.SetQuery)
			r.Put("/page", s.SetPage)
			r.Put("/results-per-page", s.SetResultsPerPage)
			r.Post("/facets", s.AddFacet)
			r.Post("/sub-requests", s.CreateSubRequest)
		})
	})
}

// OpenSession handles POST /sessions.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if !s.decodeBody(w, r, &req, true) {
		return
	}

	snap, err := s.search.Open(r.Context(), req.SessionID, req.Arguments)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	annotate(r, snap.SessionID)
	writeJSON(w, http.StatusOK, sessionToResponse(snap))
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	snap, err := s.search.Get(r.Context(), id)
	s.respond(w, r, http.StatusOK, snap, err)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	annotate(r, id)
	if err := s.search.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetQuery handles PUT /sessions/{id}/query.
func (s *Server) SetQuery(w http.ResponseWriter, r *http.Request) {
	var req SetQueryRequest
	if !s.decodeBody(w, r, &req, false) {
		return
	}
	if req.Q == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "q is required")
		return
	}

	snap, err := s.search.SetQuery(r.Context(), sessionID(r), *req.Q)
	s.respond(w, r, http.StatusOK, snap, err)
}

// SetPage handles PUT /sessions/{id}/page?page=N.
func (s *Server) SetPage(w http.ResponseWriter, r *http.Request) {
	var page int
	if err := runtime.BindQueryParameter("form", true, true, "page", r.URL.Query(), &page); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter page: "+err.Error())
		return
	}

	snap, err := s.search.SetPage(r.Context(), sessionID(r), page)
	s.respond(w, r, http.StatusOK, snap, err)
}

// SetResultsPerPage handles PUT /sessions/{id}/results-per-page?results_per_page=N.
func (s *Server) SetResultsPerPage(w http.ResponseWriter, r *http.Request) {
	var n int
	if err := runtime.BindQueryParameter("form", true, true, "results_per_page", r.URL.Query(), &n); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
			"Invalid format for parameter results_per_page: "+err.Error())
		return
	}

	snap, err := s.search.SetResultsPerPage(r.Context(), sessionID(r), n)
	s.respond(w, r, http.StatusOK, snap, err)
}

// AddFacet handles POST /sessions/{id}/facets.
func (s *Server) AddFacet(w http.ResponseWriter, r *http.Request) {
	var req AddFacetRequest
	if !s.decodeBody(w, r, &req, false) {
		return
	}

	snap, err := s.search.AddFacet(r.Context(), sessionID(r), req.Name, req.Value)
	s.respond(w, r, http.StatusOK, snap, err)
}

// CreateSubRequest handles POST /sessions/{id}/sub-requests?persistent_only=true|false.
func (s *Server) CreateSubRequest(w http.ResponseWriter, r *http.Request) {
	var persistentOnly *bool
	err := runtime.BindQueryParameter("form", true, false, "persistent_only", r.URL.Query(), &persistentOnly)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest,
			"Invalid format for parameter persistent_only: "+err.Error())
		return
	}
	onlyPersistent := persistentOnly == nil || *persistentOnly

	snap, err := s.search.SubRequest(r.Context(), sessionID(r), onlyPersistent)
	s.respond(w, r, http.StatusCreated, snap, err)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, snap searchuc.Snapshot, err error) {
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	annotate(r, snap.SessionID)
	writeJSON(w, status, sessionToResponse(snap))
}

// decodeBody decodes a JSON body into v. An empty body is accepted only when allowEmpty is set.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
	return false
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// annotate adds the session id to the request's wide event, if any.
func annotate(r *http.Request, id string) {
	if ev := WideEventFromContext(r.Context()); ev != nil {
		ev.SessionID = id
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message without exposing internals.
func safeDomainMessage(err error) string {
	var iae *domain.InvalidArgumentError
	if errors.As(err, &iae) {
		return iae.Error()
	}
	for _, s := range []error{domain.ErrSessionNotFound, domain.ErrInvalidArgument} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func invalidArgumentHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInvalidArgument) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Debug("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
