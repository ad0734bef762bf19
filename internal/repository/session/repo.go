package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchstate/internal/db"
	"github.com/kailas-cloud/searchstate/internal/domain"
	"github.com/kailas-cloud/searchstate/internal/domain/search/arguments"
)

// store is the consumer interface for session persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Repo persists the argument tree of a search session as JSON with a TTL.
type Repo struct {
	store    store
	prefix   string
	ttl      time.Duration
	opsTotal *prometheus.CounterVec
	logger   *zap.Logger
}

// New creates a session repository.
// opsTotal is a counter vec with labels "op" and "result", passed explicitly; it may be nil.
func New(s store, keyPrefix string, ttl time.Duration, opsTotal *prometheus.CounterVec, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{
		store:    s,
		prefix:   keyPrefix + "session:",
		ttl:      ttl,
		opsTotal: opsTotal,
		logger:   logger,
	}
}

// Save stores tree under id, refreshing the TTL.
func (r *Repo) Save(ctx context.Context, id string, tree arguments.Tree) error {
	data, err := json.Marshal(tree)
	if err != nil {
		r.inc("save", "error")
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	if err := r.store.SetWithTTL(ctx, r.key(id), data, r.ttl); err != nil {
		r.inc("save", "error")
		return fmt.Errorf("save session %s: %w", id, err)
	}
	r.inc("save", "ok")
	return nil
}

// Load returns the tree stored under id, or domain.ErrSessionNotFound.
func (r *Repo) Load(ctx context.Context, id string) (arguments.Tree, error) {
	data, err := r.store.Get(ctx, r.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			r.inc("load", "miss")
			return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
		}
		r.inc("load", "error")
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var tree arguments.Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		// A corrupt entry is treated like an expired one.
		r.inc("load", "corrupt")
		r.logger.Warn("discarding corrupt session", zap.String("session_id", id), zap.Error(err))
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	r.inc("load", "hit")
	return tree, nil
}

// Delete removes the session.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.key(id)); err != nil {
		r.inc("delete", "error")
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	r.inc("delete", "ok")
	return nil
}

func (r *Repo) key(id string) string {
	return r.prefix + id
}

func (r *Repo) inc(op, result string) {
	if r.opsTotal != nil {
		r.opsTotal.WithLabelValues(op, result).Inc()
	}
}
