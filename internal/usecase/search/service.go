package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchstate/internal/domain"
	"github.com/kailas-cloud/searchstate/internal/domain/search/arguments"
	"github.com/kailas-cloud/searchstate/internal/domain/search/request"
)

// Snapshot is the observable state of a session after an operation.
type Snapshot struct {
	SessionID        string
	Arguments        arguments.Tree
	ActiveFacets     []string
	ActiveFacetNames []string
	Dirty            bool
	Params           url.Values
}

// Options configures a Service.
type Options struct {
	Fields FieldLists
	Paging Paging
	// State configures every request state the service opens.
	State []request.Option
	// MalformedTokensTotal is labelled by "list"; SubRequestsTotal by "mode". Both may be nil.
	MalformedTokensTotal *prometheus.CounterVec
	SubRequestsTotal     *prometheus.CounterVec
	// NewID defaults to random UUIDs.
	NewID IDGenerator
}

// Service manages the request state of search sessions.
// It is safe for concurrent use: every call works on its own State.
type Service struct {
	repo        Repository
	fields      FieldLists
	paging      Paging
	stateOpts   []request.Option
	subRequests *prometheus.CounterVec
	newID       IDGenerator
	logger      *zap.Logger
}

// New creates a search state service. Malformed field list tokens are
// reported once here; the lists themselves stay usable.
func New(repo Repository, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	for _, l := range opts.Fields.all() {
		bad := l.Malformed()
		if len(bad) == 0 {
			continue
		}
		logger.Warn("field list has malformed boosts",
			zap.String("list", l.ParameterKey()),
			zap.Strings("tokens", bad),
		)
		if opts.MalformedTokensTotal != nil {
			opts.MalformedTokensTotal.WithLabelValues(l.ParameterKey()).Add(float64(len(bad)))
		}
	}

	return &Service{
		repo:        repo,
		fields:      opts.Fields,
		paging:      opts.Paging,
		stateOpts:   opts.State,
		subRequests: opts.SubRequestsTotal,
		newID:       newID,
		logger:      logger,
	}
}

// Open resumes sessionID, or starts a new session when it is empty or
// unknown, and merges args over the stored arguments.
func (s *Service) Open(ctx context.Context, sessionID string, args arguments.Tree) (Snapshot, error) {
	var tree arguments.Tree
	if sessionID != "" {
		loaded, err := s.repo.Load(ctx, sessionID)
		switch {
		case err == nil:
			tree = loaded
		case errors.Is(err, domain.ErrSessionNotFound):
			s.logger.Debug("session not found, starting a new one", zap.String("session_id", sessionID))
			sessionID = ""
		default:
			return Snapshot{}, fmt.Errorf("open session: %w", err)
		}
	}
	if sessionID == "" {
		sessionID = s.newID()
	}

	state := request.New(tree, s.stateOpts...)
	if len(args) > 0 {
		state.MergeArguments(args.Clone())
	}
	return s.save(ctx, sessionID, state)
}

// Get returns the current snapshot of a session.
func (s *Service) Get(ctx context.Context, id string) (Snapshot, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(id, state)
}

// SetQuery replaces the raw user query. An empty query is kept as such and
// matches everything.
func (s *Service) SetQuery(ctx context.Context, id, q string) (Snapshot, error) {
	return s.update(ctx, id, func(st *request.State) {
		st.SetRawQueryString(q)
	})
}

// SetPage moves to page n (1-based).
func (s *Service) SetPage(ctx context.Context, id string, n int) (Snapshot, error) {
	if n < 1 {
		return Snapshot{}, domain.NewInvalidArgument("page", "must be at least 1")
	}
	return s.update(ctx, id, func(st *request.State) {
		st.SetPage(n)
	})
}

// SetResultsPerPage sets the page size, clamped to the configured maximum.
func (s *Service) SetResultsPerPage(ctx context.Context, id string, n int) (Snapshot, error) {
	if n < 1 {
		return Snapshot{}, domain.NewInvalidArgument("results_per_page", "must be at least 1")
	}
	if s.paging.MaxResultsPerPage > 0 && n > s.paging.MaxResultsPerPage {
		n = s.paging.MaxResultsPerPage
	}
	return s.update(ctx, id, func(st *request.State) {
		st.SetResultsPerPage(n)
	})
}

// AddFacet activates name:value. Adding an active facet again is a no-op
// apart from marking the state dirty.
func (s *Service) AddFacet(ctx context.Context, id, name, value string) (Snapshot, error) {
	if strings.TrimSpace(name) == "" {
		return Snapshot{}, domain.NewInvalidArgument("name", "must not be empty")
	}
	return s.update(ctx, id, func(st *request.State) {
		st.AddFacetValue(name, value)
	})
}

// SubRequest derives a new session from id. With onlyPersistent only the
// persistent arguments (query and filters by default) are carried over.
// The parent session is not modified.
func (s *Service) SubRequest(ctx context.Context, id string, onlyPersistent bool) (Snapshot, error) {
	parent, err := s.load(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}

	child := parent.CopyForSubRequest(onlyPersistent)
	snap, err := s.save(ctx, s.newID(), child)
	if err != nil {
		return Snapshot{}, err
	}

	if s.subRequests != nil {
		mode := "full"
		if onlyPersistent {
			mode = "persistent"
		}
		s.subRequests.WithLabelValues(mode).Inc()
	}
	s.logger.Debug("sub-request derived",
		zap.String("parent_id", id),
		zap.String("session_id", snap.SessionID),
		zap.Bool("persistent_only", onlyPersistent),
	)
	return snap, nil
}

// Delete ends a session. Deleting an unknown or expired session succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Debug("session deleted", zap.String("session_id", id))
	return nil
}

func (s *Service) load(ctx context.Context, id string) (*request.State, error) {
	tree, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return request.New(tree, s.stateOpts...), nil
}

func (s *Service) update(ctx context.Context, id string, fn func(*request.State)) (Snapshot, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	fn(state)
	return s.save(ctx, id, state)
}

// save validates the state by rendering its parameters before persisting it.
func (s *Service) save(ctx context.Context, id string, state *request.State) (Snapshot, error) {
	snap, err := s.snapshot(id, state)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.repo.Save(ctx, id, state.AsTree()); err != nil {
		return Snapshot{}, fmt.Errorf("save session: %w", err)
	}
	return snap, nil
}

func (s *Service) snapshot(id string, state *request.State) (Snapshot, error) {
	params, err := BuildParams(state, s.fields, s.paging)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		SessionID:        id,
		Arguments:        state.AsTree().Clone(),
		ActiveFacets:     state.ActiveFacets(),
		ActiveFacetNames: state.ActiveFacetNames(),
		Dirty:            state.Dirty(),
		Params:           params,
	}, nil
}
