package search

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/shelf/core"
)

func TestSearchFiltersMatch(t *testing.T) {
	record := core.NewFileRecord("/docs/acme report.pdf")
	record.Project = "acme"
	record.Tags = []string{"finance", "q2"}
	record.ModifiedAt = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		filters SearchFilters
		want    bool
	}{
		{"empty matches", SearchFilters{}, true},
		{"extension match", SearchFilters{Extensions: []string{".pdf"}}, true},
		{"extension miss", SearchFilters{Extensions: []string{".txt"}}, false},
		{"all tags present", SearchFilters{Tags: []string{"finance", "q2"}}, true},
		{"missing tag", SearchFilters{Tags: []string{"finance", "q3"}}, false},
		{"project match", SearchFilters{Project: "acme"}, true},
		{"project miss", SearchFilters{Project: "globex"}, false},
		{"inside date range", SearchFilters{
			DateFrom: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			DateTo:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		}, true},
		{"before date_from", SearchFilters{
			DateFrom: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Match(record); got != tt.want {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSearchFilteredNarrowsResults(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	pdf := core.NewFileRecord("/docs/report one.pdf")
	txt := core.NewFileRecord("/docs/report two.txt")
	for _, record := range []*core.FileRecord{pdf, txt} {
		if _, err := stores.Files.Upsert(ctx, record); err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}
	}

	searcher, err := NewSearcher(stores.Files)
	if err != nil {
		t.Fatalf("Failed to create searcher: %v", err)
	}

	results, err := searcher.SearchFiltered(ctx, "report", 10,
		&SearchFilters{Extensions: []string{".pdf"}})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Record.Extension != ".pdf" {
		t.Fatalf("Expected only the pdf, got %v", results)
	}

	all, err := searcher.SearchFiltered(ctx, "report", 10, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected nil filters to keep everything, got %d", len(all))
	}
}
