package search

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/kailas-cloud/searchstate/internal/domain"
	"github.com/kailas-cloud/searchstate/internal/domain/search/fieldlist"
	"github.com/kailas-cloud/searchstate/internal/domain/search/filter"
	"github.com/kailas-cloud/searchstate/internal/domain/search/request"
)

// Backend parameter names.
const (
	ParamQuery       = "q"
	ParamStart       = "start"
	ParamRows        = "rows"
	ParamFilterQuery = "fq"
)

// MatchAllQuery replaces an absent or blank user query.
const MatchAllQuery = "*:*"

// MaxStart is the largest result offset the backend accepts.
const MaxStart = math.MaxInt32

// FieldLists holds the configured weighted field lists.
type FieldLists struct {
	Query         fieldlist.List
	Phrase        fieldlist.List
	BigramPhrase  fieldlist.List
	TrigramPhrase fieldlist.List
}

func (f FieldLists) all() []fieldlist.List {
	return []fieldlist.List{f.Query, f.Phrase, f.BigramPhrase, f.TrigramPhrase}
}

// Paging bounds the page size.
type Paging struct {
	DefaultResultsPerPage int
	MaxResultsPerPage     int
}

// rows resolves the effective page size: missing or non-positive values use
// the default, larger ones are clamped to the maximum.
func (p Paging) rows(requested int, ok bool) int {
	n := p.DefaultResultsPerPage
	if ok && requested > 0 {
		n = requested
	}
	if p.MaxResultsPerPage > 0 && n > p.MaxResultsPerPage {
		n = p.MaxResultsPerPage
	}
	return n
}

// BuildParams renders backend query parameters from a request state.
func BuildParams(state *request.State, fields FieldLists, paging Paging) (url.Values, error) {
	params := url.Values{}

	q, ok := state.RawUserQuery()
	if !ok || strings.TrimSpace(q) == "" {
		q = MatchAllQuery
	}
	params.Set(ParamQuery, q)

	rpp, ok := state.ResultsPerPage()
	rows := paging.rows(rpp, ok)
	page, ok := state.Page()
	if !ok || page < 1 {
		page = 1
	}
	if rows > 0 && page-1 > MaxStart/rows {
		return nil, domain.NewInvalidArgument("page", fmt.Sprintf("%d puts the result offset above %d", page, MaxStart))
	}
	params.Set(ParamStart, strconv.Itoa((page-1)*rows))
	params.Set(ParamRows, strconv.Itoa(rows))

	expr, err := filter.FromActiveFacets(state.ActiveFacets())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}
	for _, fq := range expr.Queries() {
		params.Add(ParamFilterQuery, fq)
	}

	for _, l := range fields.all() {
		if key, value, ok := l.Parameter(); ok {
			params.Set(key, value)
		}
	}

	return params, nil
}
