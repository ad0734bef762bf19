// Package arguments holds the untyped, nested argument tree of a search
// request and colon-delimited path access to it.
package arguments

import "strings"

// PathSeparator separates path segments, e.g. "tx_solr:filter".
//
// Paths are not escape-aware: a key that itself contains the separator
// cannot be addressed.
const PathSeparator = ":"

// Path is a parsed parameter path.
type Path []string

// ParsePath splits a colon-delimited path into segments.
func ParsePath(s string) Path {
	return strings.Split(s, PathSeparator)
}

// Join builds a path from segments.
func Join(segments ...string) Path {
	return Path(segments)
}

func (p Path) String() string {
	return strings.Join(p, PathSeparator)
}

// Store resolves paths against the tree it owns.
type Store struct {
	data Tree
}

// NewStore wraps t. The store takes ownership; nil becomes an empty tree.
func NewStore(t Tree) *Store {
	if t == nil {
		t = Tree{}
	}
	return &Store{data: t}
}

// Data returns the underlying tree. It is not a copy.
func (s *Store) Data() Tree {
	return s.data
}

// Get returns the value at path, or def when any segment is missing.
func (s *Store) Get(path string, def Value) Value {
	if v, ok := s.Lookup(path); ok {
		return v
	}
	return def
}

// Lookup returns the value at path and whether it exists.
func (s *Store) Lookup(path string) (Value, bool) {
	return s.LookupPath(ParsePath(path))
}

// LookupPath is Lookup for an already parsed path.
func (s *Store) LookupPath(p Path) (Value, bool) {
	if len(p) == 0 {
		return Value{}, false
	}
	level := s.data
	for i, seg := range p {
		v, ok := level[seg]
		if !ok {
			return Value{}, false
		}
		if i == len(p)-1 {
			return v, true
		}
		level, ok = v.AsTree()
		if !ok {
			return Value{}, false
		}
	}
	return Value{}, false
}

// Has reports whether every segment of path resolves.
func (s *Store) Has(path string) bool {
	_, ok := s.Lookup(path)
	return ok
}

// Set assigns v at path, creating intermediate maps as needed. Non-map
// intermediate values are replaced by maps; the final key is overwritten
// whatever it held before.
func (s *Store) Set(path string, v Value) {
	s.SetPath(ParsePath(path), v)
}

// SetPath is Set for an already parsed path.
func (s *Store) SetPath(p Path, v Value) {
	if len(p) == 0 {
		return
	}
	level := s.data
	for _, seg := range p[:len(p)-1] {
		next, ok := level[seg].AsTree()
		if !ok {
			next = Tree{}
			level[seg] = MapValue(next)
		}
		level = next
	}
	level[p[len(p)-1]] = v
}
