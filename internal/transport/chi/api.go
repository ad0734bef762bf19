package chi

import (
	"github.com/kailas-cloud/searchstate/internal/domain/search/arguments"
	searchuc "github.com/kailas-cloud/searchstate/internal/usecase/search"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeSessionNotFound  ErrorCode = "session_not_found"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// OpenSessionRequest is the body of POST /sessions.
type OpenSessionRequest struct {
	SessionID string         `json:"session_id,omitempty"`
	Arguments arguments.Tree `json:"arguments,omitempty"`
}

// SetQueryRequest is the body of PUT /sessions/{id}/query.
type SetQueryRequest struct {
	Q *string `json:"q"`
}

// AddFacetRequest is the body of POST /sessions/{id}/facets.
type AddFacetRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SessionResponse describes a session and the backend parameters it renders to.
type SessionResponse struct {
	SessionID        string              `json:"session_id"`
	Arguments        arguments.Tree      `json:"arguments"`
	ActiveFacets     []string            `json:"active_facets"`
	ActiveFacetNames []string            `json:"active_facet_names"`
	Dirty            bool                `json:"dirty"`
	Params           map[string][]string `json:"params"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func sessionToResponse(s searchuc.Snapshot) SessionResponse {
	args := s.Arguments
	if args == nil {
		args = arguments.Tree{}
	}
	return SessionResponse{
		SessionID:        s.SessionID,
		Arguments:        args,
		ActiveFacets:     s.ActiveFacets,
		ActiveFacetNames: s.ActiveFacetNames,
		Dirty:            s.Dirty,
		Params:           s.Params,
	}
}
