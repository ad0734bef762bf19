package searchstate

import (
	"net/url"

	searchuc "github.com/kailas-cloud/searchstate/internal/usecase/search"
)

// Session is the state of one search interaction.
type Session struct {
	ID string
	// Arguments is the argument tree: nested maps, []any lists and
	// string, int64, float64 or bool leaves.
	Arguments        map[string]any
	ActiveFacets     []string // "name:value"
	ActiveFacetNames []string
	// Dirty reports that the state was modified since it was created.
	Dirty bool
	// Params are the backend query parameters (q, start, rows, fq, qf, pf, ...).
	Params url.Values
}

func fromSnapshot(s searchuc.Snapshot) Session {
	return Session{
		ID:               s.SessionID,
		Arguments:        s.Arguments.Plain(),
		ActiveFacets:     s.ActiveFacets,
		ActiveFacetNames: s.ActiveFacetNames,
		Dirty:            s.Dirty,
		Params:           s.Params,
	}
}
