package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchstate/internal/domain"
	"github.com/kailas-cloud/searchstate/internal/domain/search/arguments"
	"github.com/kailas-cloud/searchstate/internal/domain/search/fieldlist"
)

// mockRepo keeps cloned trees so that callers cannot alias stored sessions.
type mockRepo struct {
	sessions map[string]arguments.Tree
	loadErr  error
	saveErr  error
	delErr   error
	saves    int
}

func newMockRepo() *mockRepo {
	return &mockRepo{sessions: make(map[string]arguments.Tree)}
}

func (m *mockRepo) Save(_ context.Context, id string, tree arguments.Tree) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.sessions[id] = tree.Clone()
	return nil
}

func (m *mockRepo) Load(_ context.Context, id string) (arguments.Tree, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	t, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return t.Clone(), nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.sessions, id)
	return nil
}

// sequentialIDs returns s1, s2, ...
func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
}

type testService struct {
	svc       *Service
	repo      *mockRepo
	malformed *prometheus.CounterVec
	subs      *prometheus.CounterVec
}

func newTestService(t *testing.T, fields FieldLists) testService {
	t.Helper()
	repo := newMockRepo()
	malformed := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_malformed_total"}, []string{"list"})
	subs := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_subrequests_total"}, []string{"mode"})
	svc := New(repo, Options{
		Fields:               fields,
		Paging:               Paging{DefaultResultsPerPage: 10, MaxResultsPerPage: 100},
		MalformedTokensTotal: malformed,
		SubRequestsTotal:     subs,
		NewID:                sequentialIDs(),
	}, zap.NewNop())
	return testService{svc: svc, repo: repo, malformed: malformed, subs: subs}
}

func defaultFields() FieldLists {
	return FieldLists{
		Query:         fieldlist.Parse("title^5, content", fieldlist.WithParameterKey(fieldlist.QueryFields)),
		Phrase:        fieldlist.Parse("title^10", fieldlist.WithParameterKey(fieldlist.PhraseFields)),
		BigramPhrase:  fieldlist.Disabled(fieldlist.WithParameterKey(fieldlist.BigramPhraseFields)),
		TrigramPhrase: fieldlist.Disabled(fieldlist.WithParameterKey(fieldlist.TrigramPhraseFields)),
	}
}

func testutilCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_counter_total"}, []string{"list"})
}
