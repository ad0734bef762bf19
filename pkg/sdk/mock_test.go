package searchstate

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/searchstate/internal/db"
	"github.com/kailas-cloud/searchstate/internal/domain/search/arguments"
	searchuc "github.com/kailas-cloud/searchstate/internal/usecase/search"
)

// --- sessionUseCase mock ---

type mockSessionUC struct {
	openFn  func(ctx context.Context, id string, args arguments.Tree) (searchuc.Snapshot, error)
	getFn   func(ctx context.Context, id string) (searchuc.Snapshot, error)
	queryFn func(ctx context.Context, id, q string) (searchuc.Snapshot, error)
	pageFn  func(ctx context.Context, id string, n int) (searchuc.Snapshot, error)
	rowsFn  func(ctx context.Context, id string, n int) (searchuc.Snapshot, error)
	facetFn func(ctx context.Context, id, name, value string) (searchuc.Snapshot, error)
	subFn   func(ctx context.Context, id string, onlyPersistent bool) (searchuc.Snapshot, error)
	delFn   func(ctx context.Context, id string) error
}

func (m *mockSessionUC) Open(ctx context.Context, id string, args arguments.Tree) (searchuc.Snapshot, error) {
	return m.openFn(ctx, id, args)
}

func (m *mockSessionUC) Get(ctx context.Context, id string) (searchuc.Snapshot, error) {
	return m.getFn(ctx, id)
}

func (m *mockSessionUC) SetQuery(ctx context.Context, id, q string) (searchuc.Snapshot, error) {
	return m.queryFn(ctx, id, q)
}

func (m *mockSessionUC) SetPage(ctx context.Context, id string, n int) (searchuc.Snapshot, error) {
	return m.pageFn(ctx, id, n)
}

func (m *mockSessionUC) SetResultsPerPage(ctx context.Context, id string, n int) (searchuc.Snapshot, error) {
	return m.rowsFn(ctx, id, n)
}

func (m *mockSessionUC) AddFacet(ctx context.Context, id, name, value string) (searchuc.Snapshot, error) {
	return m.facetFn(ctx, id, name, value)
}

func (m *mockSessionUC) SubRequest(ctx context.Context, id string, onlyPersistent bool) (searchuc.Snapshot, error) {
	return m.subFn(ctx, id, onlyPersistent)
}

func (m *mockSessionUC) Delete(ctx context.Context, id string) error {
	return m.delFn(ctx, id)
}

// --- in-memory db.Store ---

type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	pingErr error
	closed  bool
}

var _ db.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) Close() { m.closed = true }

func (m *memStore) WaitForReady(context.Context, time.Duration) error { return m.pingErr }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
