package request

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/searchstate/internal/domain/search/arguments"
)

func TestNew_IsDirty(t *testing.T) {
	s := New(nil)
	if !s.Dirty() {
		t.Error("Dirty() = false for a fresh state")
	}
	if s.Namespace() != DefaultNamespace {
		t.Errorf("Namespace() = %q", s.Namespace())
	}
	want := []string{"q", "tx_solr:filter"}
	if got := s.PersistentPaths(); !reflect.DeepEqual(got, want) {
		t.Errorf("PersistentPaths() = %v, want %v", got, want)
	}
}

func TestNew_CustomNamespaceDefaultsPersistentPaths(t *testing.T) {
	s := New(nil, WithNamespace("shop"))
	want := []string{"q", "shop:filter"}
	if got := s.PersistentPaths(); !reflect.DeepEqual(got, want) {
		t.Errorf("PersistentPaths() = %v, want %v", got, want)
	}

	s.SetPage(2)
	if _, ok := arguments.NewStore(s.AsTree()).Lookup("shop:page"); !ok {
		t.Error("page not written under custom namespace")
	}
}

func TestRawUserQuery_TriState(t *testing.T) {
	tests := []struct {
		name      string
		args      arguments.Tree
		wantNull  bool
		wantEmpty bool
	}{
		{"unset", nil, true, false},
		{"empty", arguments.Tree{"q": arguments.StringValue("")}, false, true},
		{"blank", arguments.Tree{"q": arguments.StringValue("   ")}, false, true},
		{"content", arguments.Tree{"q": arguments.StringValue("foo")}, false, false},
		{"map", arguments.Tree{"q": arguments.MapValue(arguments.Tree{})}, false, false},
		{"list", arguments.Tree{"q": arguments.ListValue()}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.args)
			if got := s.RawUserQueryIsNull(); got != tt.wantNull {
				t.Errorf("RawUserQueryIsNull() = %v, want %v", got, tt.wantNull)
			}
			if got := s.RawUserQueryIsEmptyString(); got != tt.wantEmpty {
				t.Errorf("RawUserQueryIsEmptyString() = %v, want %v", got, tt.wantEmpty)
			}
		})
	}
}

func TestSetRawQueryString_Unnamespaced(t *testing.T) {
	s := New(nil).SetRawQueryString("shoes")

	q, ok := s.RawUserQuery()
	if !ok || q != "shoes" {
		t.Errorf("RawUserQuery() = %q, %v", q, ok)
	}
	if _, ok := s.AsTree()["q"]; !ok {
		t.Error("q not stored at top level")
	}
	if _, ok := arguments.NewStore(s.AsTree()).Lookup("tx_solr:q"); ok {
		t.Error("q stored inside the namespace")
	}
}

func TestPageAndResultsPerPage(t *testing.T) {
	s := New(nil)
	if _, ok := s.Page(); ok {
		t.Error("Page() present on empty state")
	}
	if _, ok := s.ResultsPerPage(); ok {
		t.Error("ResultsPerPage() present on empty state")
	}

	s.SetPage(3).SetResultsPerPage(25)
	if p, _ := s.Page(); p != 3 {
		t.Errorf("Page() = %d", p)
	}
	if n, _ := s.ResultsPerPage(); n != 25 {
		t.Errorf("ResultsPerPage() = %d", n)
	}
}

func TestPage_FromStringArgument(t *testing.T) {
	s := New(arguments.Tree{"tx_solr": arguments.MapValue(arguments.Tree{
		"page": arguments.StringValue("4"),
	})})
	if p, ok := s.Page(); !ok || p != 4 {
		t.Errorf("Page() = %d, %v", p, ok)
	}
}

func TestAddFacetValue_Idempotent(t *testing.T) {
	once := New(nil).AddFacetValue("color", "red")
	twice := New(nil).AddFacetValue("color", "red").AddFacetValue("color", "red")

	if !reflect.DeepEqual(once.ActiveFacets(), twice.ActiveFacets()) {
		t.Errorf("once = %v, twice = %v", once.ActiveFacets(), twice.ActiveFacets())
	}
	if got := twice.ActiveFacets(); len(got) != 1 || got[0] != "color:red" {
		t.Errorf("ActiveFacets() = %v", got)
	}
}

func TestAddFacetValue_PreservesOrder(t *testing.T) {
	s := New(nil).
		AddFacetValue("color", "red").
		AddFacetValue("size", "M").
		AddFacetValue("color", "blue")

	want := []string{"color:red", "size:M", "color:blue"}
	if got := s.ActiveFacets(); !reflect.DeepEqual(got, want) {
		t.Errorf("ActiveFacets() = %v, want %v", got, want)
	}
	if !s.HasFacetValue("size", "M") {
		t.Error("HasFacetValue(size, M) = false")
	}
	if s.HasFacetValue("size", "L") {
		t.Error("HasFacetValue(size, L) = true")
	}
}

func TestAddFacetValue_ReplacesNonListFilter(t *testing.T) {
	s := New(arguments.Tree{"tx_solr": arguments.MapValue(arguments.Tree{
		"filter": arguments.StringValue("garbage"),
	})})
	if got := s.ActiveFacets(); len(got) != 0 {
		t.Errorf("ActiveFacets() = %v, want empty", got)
	}

	s.AddFacetValue("color", "red")
	if got := s.ActiveFacets(); len(got) != 1 || got[0] != "color:red" {
		t.Errorf("ActiveFacets() = %v", got)
	}
}

func TestAddFacetValue_KeepsOtherFilterEntries(t *testing.T) {
	nested := arguments.MapValue(arguments.Tree{"x": arguments.IntValue(1)})
	s := New(arguments.Tree{"tx_solr": arguments.MapValue(arguments.Tree{
		"filter": arguments.ListValue(
			arguments.StringValue("color:red"),
			nested,
			arguments.IntValue(7),
		),
	})})

	s.AddFacetValue("size", "M")

	got, ok := arguments.NewStore(s.AsTree()).Get("tx_solr:filter", arguments.Value{}).AsList()
	if !ok {
		t.Fatal("filter is not a list")
	}
	want := []arguments.Value{
		arguments.StringValue("color:red"),
		nested,
		arguments.IntValue(7),
		arguments.StringValue("size:M"),
	}
	if len(got) != len(want) {
		t.Fatalf("filter has %d entries, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("filter[%d] = %v (%s), want %v (%s)", i, got[i], got[i].Kind(), want[i], want[i].Kind())
		}
	}
}

func TestActiveFacetNames(t *testing.T) {
	s := New(arguments.Tree{"tx_solr": arguments.MapValue(arguments.Tree{
		"filter": arguments.StringsValue([]string{"color:red", "color:blue", "size:M", "date:2024:01"}),
	})})

	want := []string{"color", "color", "size", "date"}
	if got := s.ActiveFacetNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("ActiveFacetNames() = %v, want %v", got, want)
	}
}

func TestMergeArguments_Overrule(t *testing.T) {
	s := New(arguments.Tree{"tx_solr": arguments.MapValue(arguments.Tree{
		"page":           arguments.IntValue(1),
		"resultsPerPage": arguments.IntValue(10),
	})})

	s.MergeArguments(arguments.Tree{"tx_solr": arguments.MapValue(arguments.Tree{
		"page": arguments.IntValue(2),
	})})

	if p, _ := s.Page(); p != 2 {
		t.Errorf("Page() = %d, want 2", p)
	}
	if n, _ := s.ResultsPerPage(); n != 10 {
		t.Errorf("ResultsPerPage() = %d, want 10 (untouched)", n)
	}
}

func TestCopyForSubRequest_PersistentOnly(t *testing.T) {
	s := New(nil).
		SetRawQueryString("bar").
		AddFacetValue("color", "red").
		SetResultsPerPage(20)

	sub := s.CopyForSubRequest(true)

	if q, _ := sub.RawUserQuery(); q != "bar" {
		t.Errorf("sub query = %q", q)
	}
	if got := sub.ActiveFacets(); !reflect.DeepEqual(got, []string{"color:red"}) {
		t.Errorf("sub facets = %v", got)
	}
	if n, ok := sub.ResultsPerPage(); ok {
		t.Errorf("sub ResultsPerPage() = %d, want absent", n)
	}
	if !sub.Dirty() {
		t.Error("sub-request not dirty")
	}
}

func TestCopyForSubRequest_MissingPersistentPathOmitted(t *testing.T) {
	s := New(nil).SetPage(2)
	sub := s.CopyForSubRequest(true)

	if len(sub.AsTree()) != 0 {
		t.Errorf("sub tree = %v, want empty", arguments.MapValue(sub.AsTree()))
	}
	if !sub.RawUserQueryIsNull() {
		t.Error("sub has a query that the parent never had")
	}
}

func TestCopyForSubRequest_Full(t *testing.T) {
	s := New(nil).SetRawQueryString("bar").SetResultsPerPage(20)
	sub := s.CopyForSubRequest(false)

	if n, _ := sub.ResultsPerPage(); n != 20 {
		t.Errorf("ResultsPerPage() = %d, want 20", n)
	}
	if !sub.AsTree().Equal(s.AsTree()) {
		t.Error("full copy differs from source")
	}
}

func TestCopyForSubRequest_Isolation(t *testing.T) {
	for _, onlyPersistent := range []bool{true, false} {
		s := New(nil).SetRawQueryString("bar").AddFacetValue("color", "red").SetPage(1)
		sub := s.CopyForSubRequest(onlyPersistent)

		sub.SetPage(5).AddFacetValue("size", "M").SetRawQueryString("other")

		if p, _ := s.Page(); p != 1 {
			t.Errorf("onlyPersistent=%v: parent page = %d, want 1", onlyPersistent, p)
		}
		if got := s.ActiveFacets(); !reflect.DeepEqual(got, []string{"color:red"}) {
			t.Errorf("onlyPersistent=%v: parent facets = %v", onlyPersistent, got)
		}
		if q, _ := s.RawUserQuery(); q != "bar" {
			t.Errorf("onlyPersistent=%v: parent query = %q", onlyPersistent, q)
		}
	}
}

func TestCopyForSubRequest_KeepsConfiguration(t *testing.T) {
	s := New(nil, WithNamespace("shop"), WithPersistentPaths("q", "shop:filter", "shop:sort"))
	s.store.Set("shop:sort", arguments.StringValue("price asc"))

	sub := s.CopyForSubRequest(true)
	if sub.Namespace() != "shop" {
		t.Errorf("Namespace() = %q", sub.Namespace())
	}
	if !reflect.DeepEqual(sub.PersistentPaths(), s.PersistentPaths()) {
		t.Errorf("PersistentPaths() = %v", sub.PersistentPaths())
	}
	if v, _ := arguments.NewStore(sub.AsTree()).Get("shop:sort", arguments.Value{}).AsString(); v != "price asc" {
		t.Errorf("sort = %q", v)
	}
}
