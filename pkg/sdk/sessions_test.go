package searchstate

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/kailas-cloud/searchstate/internal/domain/search/arguments"
	searchuc "github.com/kailas-cloud/searchstate/internal/usecase/search"
)

func snapshot(id string) searchuc.Snapshot {
	return searchuc.Snapshot{
		SessionID:        id,
		Arguments:        arguments.Tree{"q": arguments.StringValue("bar")},
		ActiveFacets:     []string{"color:red"},
		ActiveFacetNames: []string{"color"},
		Dirty:            true,
		Params:           url.Values{"q": {"bar"}},
	}
}

func TestSessionService_Open(t *testing.T) {
	mock := &mockSessionUC{
		openFn: func(_ context.Context, id string, args arguments.Tree) (searchuc.Snapshot, error) {
			if id != "abc" {
				t.Errorf("id = %q, want abc", id)
			}
			ns, ok := args["tx_solr"].AsTree()
			if !ok {
				t.Fatalf("tx_solr not a map: %v", args["tx_solr"])
			}
			if facets := ns["filter"].AsStrings(); len(facets) != 1 || facets[0] != "color:red" {
				t.Errorf("filter = %v", facets)
			}
			return snapshot(id), nil
		},
	}

	svc := &SessionService{svc: mock}
	s, err := svc.Open(context.Background(), "abc", map[string]any{
		"tx_solr": map[string]any{"filter": []string{"color:red"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != "abc" || s.Arguments["q"] != "bar" || !s.Dirty {
		t.Errorf("session = %+v", s)
	}
}

func TestSessionService_Open_InvalidArguments(t *testing.T) {
	svc := &SessionService{svc: &mockSessionUC{}}

	_, err := svc.Open(context.Background(), "", map[string]any{"q": struct{}{}})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSessionService_Delegates(t *testing.T) {
	var got []any
	mock := &mockSessionUC{
		getFn: func(_ context.Context, id string) (searchuc.Snapshot, error) {
			got = append(got, "get", id)
			return snapshot(id), nil
		},
		queryFn: func(_ context.Context, id, q string) (searchuc.Snapshot, error) {
			got = append(got, "query", q)
			return snapshot(id), nil
		},
		pageFn: func(_ context.Context, id string, n int) (searchuc.Snapshot, error) {
			got = append(got, "page", n)
			return snapshot(id), nil
		},
		rowsFn: func(_ context.Context, id string, n int) (searchuc.Snapshot, error) {
			got = append(got, "rows", n)
			return snapshot(id), nil
		},
		facetFn: func(_ context.Context, id, name, value string) (searchuc.Snapshot, error) {
			got = append(got, "facet", name+":"+value)
			return snapshot(id), nil
		},
		subFn: func(_ context.Context, _ string, onlyPersistent bool) (searchuc.Snapshot, error) {
			got = append(got, "sub", onlyPersistent)
			return snapshot("child"), nil
		},
		delFn: func(_ context.Context, id string) error {
			got = append(got, "delete", id)
			return nil
		},
	}

	svc := &SessionService{svc: mock}
	ctx := context.Background()
	_, _ = svc.Get(ctx, "abc")
	_, _ = svc.SetQuery(ctx, "abc", "foo")
	_, _ = svc.SetPage(ctx, "abc", 2)
	_, _ = svc.SetResultsPerPage(ctx, "abc", 25)
	_, _ = svc.AddFacet(ctx, "abc", "type", "pdf")
	child, _ := svc.SubRequest(ctx, "abc", false)
	_ = svc.Delete(ctx, "abc")

	want := []any{
		"get", "abc", "query", "foo", "page", 2, "rows", 25,
		"facet", "type:pdf", "sub", false, "delete", "abc",
	}
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if child.ID != "child" {
		t.Errorf("child id = %q", child.ID)
	}
}

func TestSessionService_Error(t *testing.T) {
	mock := &mockSessionUC{
		getFn: func(_ context.Context, _ string) (searchuc.Snapshot, error) {
			return searchuc.Snapshot{}, ErrSessionNotFound
		},
	}

	svc := &SessionService{svc: mock}
	s, err := svc.Get(context.Background(), "abc")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if s.ID != "" {
		t.Errorf("expected zero session, got %+v", s)
	}
}
