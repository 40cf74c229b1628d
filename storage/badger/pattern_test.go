package badger

import (
	"context"
	"testing"

	"github.com/poiesic/shelf/core"
)

func TestPatternPutGetAll(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()

	patterns := []*core.Pattern{
		{Type: "search", Key: "invoice", Confidence: 0.9, Frequency: 10},
		{Type: "search", Key: "report", Confidence: 0.4, Frequency: 3},
		{Type: "folder", Key: "downloads", Confidence: 0.9, Frequency: 20},
	}
	for _, pattern := range patterns {
		if err := stores.Patterns.Put(ctx, pattern); err != nil {
			t.Fatalf("Failed to put pattern: %v", err)
		}
		if pattern.Id != core.PatternID(pattern.Type, pattern.Key) {
			t.Fatal("Expected content-derived pattern ID")
		}
	}

	all, err := stores.Patterns.All(ctx)
	if err != nil {
		t.Fatalf("Failed to list patterns: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 patterns, got %d", len(all))
	}
	// Confidence descending, frequency breaks ties
	if all[0].Key != "downloads" || all[1].Key != "invoice" || all[2].Key != "report" {
		t.Fatalf("Unexpected order: %s, %s, %s", all[0].Key, all[1].Key, all[2].Key)
	}

	// Re-putting the same (type, key) replaces, not duplicates
	if err := stores.Patterns.Put(ctx, &core.Pattern{
		Type: "search", Key: "invoice", Confidence: 0.95, Frequency: 11,
	}); err != nil {
		t.Fatalf("Failed to re-put pattern: %v", err)
	}
	all, err = stores.Patterns.All(ctx)
	if err != nil {
		t.Fatalf("Failed to list patterns: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 patterns after replace, got %d", len(all))
	}
}

func TestPatternPrune(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()

	for _, pattern := range []*core.Pattern{
		{Type: "search", Key: "keep", Confidence: 0.5},
		{Type: "search", Key: "drop", Confidence: 0.05},
		{Type: "search", Key: "borderline", Confidence: 0.1},
	} {
		if err := stores.Patterns.Put(ctx, pattern); err != nil {
			t.Fatalf("Failed to put pattern: %v", err)
		}
	}

	pruned, err := stores.Patterns.Prune(ctx, 0.1)
	if err != nil {
		t.Fatalf("Failed to prune: %v", err)
	}
	// Only strictly-below-floor patterns go
	if pruned != 1 {
		t.Fatalf("Expected 1 pruned, got %d", pruned)
	}

	all, err := stores.Patterns.All(ctx)
	if err != nil {
		t.Fatalf("Failed to list patterns: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 patterns left, got %d", len(all))
	}
}
