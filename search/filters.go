package search

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/shelf/core"
)

// SearchFilters narrows fused results after ranking. Zero-valued fields
// are ignored; set fields must all hold.
type SearchFilters struct {
	Extensions []string
	Tags       []string
	Project    string
	DateFrom   time.Time
	DateTo     time.Time
}

// IsEmpty reports whether no filter field is set.
func (f *SearchFilters) IsEmpty() bool {
	return f == nil ||
		(len(f.Extensions) == 0 && len(f.Tags) == 0 && f.Project == "" &&
			f.DateFrom.IsZero() && f.DateTo.IsZero())
}

// Match reports whether a record passes every set filter field.
func (f *SearchFilters) Match(record *core.FileRecord) bool {
	if f.IsEmpty() {
		return true
	}
	if len(f.Extensions) > 0 && !slices.Contains(f.Extensions, strings.ToLower(record.Extension)) {
		return false
	}
	for _, tag := range f.Tags {
		if !slices.Contains(record.Tags, tag) {
			return false
		}
	}
	if f.Project != "" && record.Project != f.Project {
		return false
	}
	if !f.DateFrom.IsZero() && record.ModifiedAt.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && record.ModifiedAt.After(f.DateTo) {
		return false
	}
	return true
}

// Apply keeps the results whose records pass the filters, preserving rank.
func (f *SearchFilters) Apply(results []*core.SearchResult) []*core.SearchResult {
	if f.IsEmpty() {
		return results
	}
	kept := make([]*core.SearchResult, 0, len(results))
	for _, result := range results {
		if f.Match(result.Record) {
			kept = append(kept, result)
		}
	}
	return kept
}

// SearchFiltered runs a fused query and post-filters the ranked results.
// The fused stage over-fetches so that filtering rarely starves the page.
func (s *Searcher) SearchFiltered(ctx context.Context, query string, maxHits int, filters *SearchFilters) ([]*core.SearchResult, error) {
	fetch := maxHits
	if !filters.IsEmpty() && maxHits > 0 {
		fetch = maxHits * 4
	}
	results, err := s.Search(ctx, query, fetch)
	if err != nil {
		return nil, err
	}
	results = filters.Apply(results)
	if maxHits > 0 && len(results) > maxHits {
		results = results[:maxHits]
	}
	return results, nil
}
