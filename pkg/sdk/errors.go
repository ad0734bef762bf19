package searchstate

import "github.com/kailas-cloud/searchstate/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrSessionNotFound = domain.ErrSessionNotFound
	ErrInvalidArgument = domain.ErrInvalidArgument
)
