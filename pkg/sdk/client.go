package searchstate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/searchstate/internal/db"
	dbRedis "github.com/kailas-cloud/searchstate/internal/db/redis"
	"github.com/kailas-cloud/searchstate/internal/domain/search/arguments"
	"github.com/kailas-cloud/searchstate/internal/domain/search/fieldlist"
	"github.com/kailas-cloud/searchstate/internal/domain/search/request"
	sessionrepo "github.com/kailas-cloud/searchstate/internal/repository/session"
	healthuc "github.com/kailas-cloud/searchstate/internal/usecase/health"
	searchuc "github.com/kailas-cloud/searchstate/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// sessionUseCase is the internal interface of the session service, swapped in tests.
type sessionUseCase interface {
	Open(ctx context.Context, sessionID string, args arguments.Tree) (searchuc.Snapshot, error)
	Get(ctx context.Context, id string) (searchuc.Snapshot, error)
	SetQuery(ctx context.Context, id, q string) (searchuc.Snapshot, error)
	SetPage(ctx context.Context, id string, n int) (searchuc.Snapshot, error)
	SetResultsPerPage(ctx context.Context, id string, n int) (searchuc.Snapshot, error)
	AddFacet(ctx context.Context, id, name, value string) (searchuc.Snapshot, error)
	SubRequest(ctx context.Context, id string, onlyPersistent bool) (searchuc.Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// Client is the searchstate SDK entry point.
type Client struct {
	store      db.Store
	sessionSvc sessionUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("searchstate: database address required (use WithValkey or WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("searchstate: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
			RESP2:    cfg.driver == "redis",
		})
		if err != nil {
			return nil, fmt.Errorf("searchstate: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("searchstate: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	repo := sessionrepo.New(store, cfg.keyPrefix, cfg.ttl, nil, obs.zapLogger())

	var stateOpts []request.Option
	if cfg.namespace != "" {
		stateOpts = append(stateOpts, request.WithNamespace(cfg.namespace))
	}
	if len(cfg.persistentPaths) > 0 {
		stateOpts = append(stateOpts, request.WithPersistentPaths(cfg.persistentPaths...))
	}

	sessionSvc := searchuc.New(repo, searchuc.Options{
		Fields: searchuc.FieldLists{
			Query:         fieldListOf(cfg.queryFields, fieldlist.QueryFields),
			Phrase:        fieldListOf(cfg.phraseFields, fieldlist.PhraseFields),
			BigramPhrase:  fieldListOf(cfg.bigramFields, fieldlist.BigramPhraseFields),
			TrigramPhrase: fieldListOf(cfg.trigramFields, fieldlist.TrigramPhraseFields),
		},
		Paging: searchuc.Paging{
			DefaultResultsPerPage: cfg.defaultResultsPerPage,
			MaxResultsPerPage:     cfg.maxResultsPerPage,
		},
		State:                stateOpts,
		MalformedTokensTotal: obs.malformedCounter(),
		SubRequestsTotal:     obs.subRequestCounter(),
	}, obs.zapLogger())

	return &Client{
		store:      store,
		sessionSvc: sessionSvc,
		healthSvc:  healthuc.New(store, 0),
		obs:        obs,
	}
}

// fieldSource is a field list option value. A list is enabled once fields are given.
type fieldSource string

func (f fieldSource) IsEnabled() bool          { return strings.TrimSpace(string(f)) != "" }
func (f fieldSource) ConfiguredFields() string { return string(f) }

func fieldListOf(fields, key string) fieldlist.List {
	return fieldlist.FromConfiguration(fieldSource(fields), fieldlist.WithParameterKey(key))
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Sessions returns the session service.
func (c *Client) Sessions() *SessionService {
	return &SessionService{svc: c.sessionSvc, obs: c.obs}
}
