// Package request models the arguments of one search interaction: the user
// query, paging, active facets, and derivation of sub-requests for facet
// drill-downs.
package request

import (
	"strings"

	"github.com/kailas-cloud/searchstate/internal/domain/search/arguments"
)

// DefaultNamespace prefixes every argument except the raw user query.
const DefaultNamespace = "tx_solr"

// Argument keys.
const (
	KeyQuery          = "q"
	KeyFilter         = "filter"
	KeyPage           = "page"
	KeyResultsPerPage = "resultsPerPage"
)

// facetSeparator joins facet name and value in an active facet.
const facetSeparator = ":"

// State wraps the argument tree of one search interaction.
//
// A State is not safe for concurrent use. It never shares its tree with
// another State: sub-requests get deep copies.
type State struct {
	store           *arguments.Store
	namespace       string
	persistentPaths []arguments.Path
	dirty           bool
}

// Option configures a State.
type Option func(*State)

// WithNamespace overrides the argument namespace.
func WithNamespace(ns string) Option {
	return func(s *State) {
		if ns != "" {
			s.namespace = ns
		}
	}
}

// WithPersistentPaths sets the colon-delimited paths kept for sub-requests.
func WithPersistentPaths(paths ...string) Option {
	return func(s *State) {
		s.persistentPaths = make([]arguments.Path, 0, len(paths))
		for _, p := range paths {
			if p != "" {
				s.persistentPaths = append(s.persistentPaths, arguments.ParsePath(p))
			}
		}
	}
}

// DefaultPersistentPaths returns the raw query and the namespaced filter path.
func DefaultPersistentPaths(namespace string) []string {
	return []string{KeyQuery, namespace + arguments.PathSeparator + KeyFilter}
}

// New wraps args and takes ownership of it. The new state is dirty.
func New(args arguments.Tree, opts ...Option) *State {
	s := &State{
		store:     arguments.NewStore(args),
		namespace: DefaultNamespace,
		dirty:     true,
	}
	for _, o := range opts {
		o(s)
	}
	if s.persistentPaths == nil {
		WithPersistentPaths(DefaultPersistentPaths(s.namespace)...)(s)
	}
	return s
}

// Namespace returns the argument namespace.
func (s *State) Namespace() string { return s.namespace }

// PersistentPaths returns the paths kept by CopyForSubRequest.
func (s *State) PersistentPaths() []string {
	out := make([]string, len(s.persistentPaths))
	for i, p := range s.persistentPaths {
		out[i] = p.String()
	}
	return out
}

// Dirty reports whether the state changed. It is set by every mutation and
// never cleared.
func (s *State) Dirty() bool { return s.dirty }

func (s *State) prefixWithNamespace(key string) string {
	return s.namespace + arguments.PathSeparator + key
}

// MergeArguments merges overrides into the arguments, overruling existing
// values key by key.
func (s *State) MergeArguments(overrides arguments.Tree) *State {
	arguments.Merge(s.store.Data(), overrides)
	s.dirty = true
	return s
}

// SetRawQueryString sets the user query. It lives outside the namespace.
func (s *State) SetRawQueryString(q string) *State {
	s.store.Set(KeyQuery, arguments.StringValue(q))
	s.dirty = true
	return s
}

// RawUserQuery returns the user query and whether one was passed at all.
func (s *State) RawUserQuery() (string, bool) {
	v, ok := s.store.Lookup(KeyQuery)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// RawUserQueryIsNull reports whether no query was passed, i.e. no search was
// triggered by the user.
func (s *State) RawUserQueryIsNull() bool {
	return !s.store.Has(KeyQuery)
}

// RawUserQueryIsEmptyString reports whether a query was passed but is blank.
// It is false when no query was passed at all or q is not a scalar.
func (s *State) RawUserQueryIsEmptyString() bool {
	q, ok := s.RawUserQuery()
	return ok && strings.TrimSpace(q) == ""
}

// SetPage sets the result page.
func (s *State) SetPage(page int) *State {
	s.store.Set(s.prefixWithNamespace(KeyPage), arguments.IntValue(int64(page)))
	s.dirty = true
	return s
}

// Page returns the requested page, if any.
func (s *State) Page() (int, bool) {
	return s.store.Get(s.prefixWithNamespace(KeyPage), arguments.Value{}).AsInt()
}

// SetResultsPerPage sets the page size.
func (s *State) SetResultsPerPage(n int) *State {
	s.store.Set(s.prefixWithNamespace(KeyResultsPerPage), arguments.IntValue(int64(n)))
	s.dirty = true
	return s
}

// ResultsPerPage returns the requested page size, if any.
func (s *State) ResultsPerPage() (int, bool) {
	return s.store.Get(s.prefixWithNamespace(KeyResultsPerPage), arguments.Value{}).AsInt()
}

// ActiveFacets returns the active facets as "name:value" strings in order.
// A non-list value at the filter path counts as no active facets.
func (s *State) ActiveFacets() []string {
	v := s.store.Get(s.prefixWithNamespace(KeyFilter), arguments.ListValue())
	facets := v.AsStrings()
	if facets == nil {
		return []string{}
	}
	return facets
}

// AddFacetValue activates name:value unless it is already active. Existing
// filter entries are kept as they are, including ones that are not facets.
func (s *State) AddFacetValue(name, value string) *State {
	s.dirty = true
	if s.HasFacetValue(name, value) {
		return s
	}
	path := s.prefixWithNamespace(KeyFilter)
	current, _ := s.store.Get(path, arguments.ListValue()).AsList()
	items := make([]arguments.Value, len(current), len(current)+1)
	copy(items, current)
	items = append(items, arguments.StringValue(formatFacet(name, value)))
	s.store.Set(path, arguments.ListValue(items...))
	return s
}

// HasFacetValue reports whether name:value is active.
func (s *State) HasFacetValue(name, value string) bool {
	want := formatFacet(name, value)
	for _, f := range s.ActiveFacets() {
		if f == want {
			return true
		}
	}
	return false
}

// ActiveFacetNames returns the name part of every active facet, keeping
// order and duplicates.
func (s *State) ActiveFacetNames() []string {
	facets := s.ActiveFacets()
	names := make([]string, len(facets))
	for i, f := range facets {
		names[i], _, _ = strings.Cut(f, facetSeparator)
	}
	return names
}

// CopyForSubRequest starts an independent state for a sub-request, e.g. a
// facet drill-down. With onlyPersistent only the persistent paths present in
// s are carried over; otherwise the whole tree is copied.
func (s *State) CopyForSubRequest(onlyPersistent bool) *State {
	var tree arguments.Tree
	if onlyPersistent {
		sub := arguments.NewStore(nil)
		for _, p := range s.persistentPaths {
			if v, ok := s.store.LookupPath(p); ok {
				sub.SetPath(p, v.Clone())
			}
		}
		tree = sub.Data()
	} else {
		tree = s.store.Data().Clone()
	}

	paths := make([]arguments.Path, len(s.persistentPaths))
	copy(paths, s.persistentPaths)

	return &State{
		store:           arguments.NewStore(tree),
		namespace:       s.namespace,
		persistentPaths: paths,
		dirty:           true,
	}
}

// AsTree returns the argument tree for serialization. It is a view, not a copy.
func (s *State) AsTree() arguments.Tree {
	return s.store.Data()
}

func formatFacet(name, value string) string {
	return name + facetSeparator + value
}
