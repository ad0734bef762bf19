package searchstate

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/searchstate/internal/domain/search/arguments"
	searchuc "github.com/kailas-cloud/searchstate/internal/usecase/search"
)

// SessionService manages search sessions.
type SessionService struct {
	svc sessionUseCase
	obs *observer
}

// Open resumes the session id, or starts a new one when id is empty or
// unknown, and merges args over its arguments. args uses plain Go values as
// produced by encoding/json.
func (s *SessionService) Open(ctx context.Context, id string, args map[string]any) (_ Session, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.open", start, err) }()

	tree, err := arguments.FromPlain(args)
	if err != nil {
		return Session{}, fmt.Errorf("%w: arguments: %w", ErrInvalidArgument, err)
	}
	return s.wrap(s.svc.Open(ctx, id, tree))
}

// Get returns a session.
func (s *SessionService) Get(ctx context.Context, id string) (_ Session, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.get", start, err) }()

	return s.wrap(s.svc.Get(ctx, id))
}

// SetQuery replaces the raw user query.
func (s *SessionService) SetQuery(ctx context.Context, id, q string) (_ Session, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.set_query", start, err) }()

	return s.wrap(s.svc.SetQuery(ctx, id, q))
}

// SetPage moves to page n (1-based).
func (s *SessionService) SetPage(ctx context.Context, id string, n int) (_ Session, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.set_page", start, err) }()

	return s.wrap(s.svc.SetPage(ctx, id, n))
}

// SetResultsPerPage sets the page size, clamped to the configured maximum.
func (s *SessionService) SetResultsPerPage(ctx context.Context, id string, n int) (_ Session, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.set_results_per_page", start, err) }()

	return s.wrap(s.svc.SetResultsPerPage(ctx, id, n))
}

// AddFacet activates the facet value name:value.
func (s *SessionService) AddFacet(ctx context.Context, id, name, value string) (_ Session, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.add_facet", start, err) }()

	return s.wrap(s.svc.AddFacet(ctx, id, name, value))
}

// SubRequest derives a new session from id, e.g. for a facet drill-down.
// With onlyPersistent only the query and filters are carried over.
func (s *SessionService) SubRequest(ctx context.Context, id string, onlyPersistent bool) (_ Session, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.sub_request", start, err) }()

	return s.wrap(s.svc.SubRequest(ctx, id, onlyPersistent))
}

// Delete ends a session. Deleting an unknown session succeeds.
func (s *SessionService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.delete", start, err) }()

	return s.svc.Delete(ctx, id)
}

func (s *SessionService) wrap(snap searchuc.Snapshot, err error) (Session, error) {
	if err != nil {
		return Session{}, err
	}
	return fromSnapshot(snap), nil
}
