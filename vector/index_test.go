package vector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/shelf/ai/local"
	"github.com/poiesic/shelf/ai/mock"
	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
	storagebadger "github.com/poiesic/shelf/storage/badger"
)

func newTestIndex(t *testing.T) (*Index, *mock.MockEmbedder, *storagebadger.Stores) {
	t.Helper()
	stores, err := storagebadger.NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	t.Cleanup(func() { stores.Close() })

	embedder := mock.NewMockEmbedder()
	index := NewIndex(embedder, "mock", stores.Vectors, stores.Files)
	return index, embedder, stores
}

func TestIndexAndSearch(t *testing.T) {
	index, _, _ := newTestIndex(t)
	ctx := context.Background()

	if err := index.IndexText(ctx, 1, "quarterly invoice payment"); err != nil {
		t.Fatalf("Failed to index: %v", err)
	}
	if err := index.IndexText(ctx, 2, "chocolate cake recipe"); err != nil {
		t.Fatalf("Failed to index: %v", err)
	}

	// The mock is deterministic: an identical query embeds identically
	hits, err := index.Search(ctx, "quarterly invoice payment", 0.99, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(hits) != 1 || hits[0].FileId != 1 {
		t.Fatalf("Expected exact match on file 1, got %v", hits)
	}
}

func TestIndexStampsMeta(t *testing.T) {
	index, _, stores := newTestIndex(t)
	ctx := context.Background()

	if err := index.IndexText(ctx, 1, "some text"); err != nil {
		t.Fatalf("Failed to index: %v", err)
	}

	meta, err := stores.Vectors.Meta(ctx)
	if err != nil {
		t.Fatalf("Failed to get meta: %v", err)
	}
	if meta.Backend != "mock" || meta.Dim != 384 {
		t.Fatalf("Unexpected meta: %+v", meta)
	}
	if meta.Generation != 1 {
		t.Fatalf("Expected generation 1, got %d", meta.Generation)
	}
}

func TestBackendMismatchDegrades(t *testing.T) {
	index, _, stores := newTestIndex(t)
	ctx := context.Background()

	if err := index.IndexText(ctx, 1, "some text"); err != nil {
		t.Fatalf("Failed to index: %v", err)
	}

	// Simulate a backend swap under a populated store
	other := NewIndex(mock.NewMockEmbedder(), "other-model", stores.Vectors, stores.Files)

	stale, err := other.NeedsRebuild(ctx)
	if err != nil {
		t.Fatalf("Failed to check rebuild: %v", err)
	}
	if !stale {
		t.Fatal("Expected backend change to require rebuild")
	}

	// Search degrades to empty, never an error
	hits, err := other.Search(ctx, "some text", 0, 10)
	if err != nil {
		t.Fatalf("Expected degraded search to succeed, got %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("Expected empty results from stale index, got %d", len(hits))
	}

	// Indexing against the stale generation is refused
	err = other.IndexText(ctx, 2, "more text")
	if !errors.Is(err, storage.ErrRebuildRequired) {
		t.Fatalf("Expected ErrRebuildRequired, got %v", err)
	}
}

func TestDimensionChangeRequiresRebuild(t *testing.T) {
	stores, err := storagebadger.NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	t.Cleanup(func() { stores.Close() })
	ctx := context.Background()

	narrow := NewIndex(local.NewEmbedder(4), "local", stores.Vectors, stores.Files)
	if err := narrow.IndexText(ctx, 1, "some text"); err != nil {
		t.Fatalf("Failed to index: %v", err)
	}

	// Same backend name, wider vectors: the stored generation is stale
	wide := NewIndex(local.NewEmbedder(8), "local", stores.Vectors, stores.Files)

	stale, err := wide.NeedsRebuild(ctx)
	if err != nil {
		t.Fatalf("Failed to check rebuild: %v", err)
	}
	if !stale {
		t.Fatal("Expected dimension change to require rebuild")
	}

	hits, err := wide.Search(ctx, "some text", 0, 10)
	if err != nil {
		t.Fatalf("Expected degraded search to succeed, got %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("Expected empty results from stale index, got %d", len(hits))
	}

	if err := wide.IndexText(ctx, 2, "more text"); !errors.Is(err, storage.ErrRebuildRequired) {
		t.Fatalf("Expected ErrRebuildRequired, got %v", err)
	}
}

func TestSearchTiesBreakByRecency(t *testing.T) {
	index, embedder, stores := newTestIndex(t)
	ctx := context.Background()

	// Every text embeds identically, so all scores tie
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	now := time.Now().UTC()
	var ids []core.ID
	for _, path := range []string{"/old.txt", "/new.txt", "/mid.txt"} {
		record, err := stores.Files.Upsert(ctx, core.NewFileRecord(path))
		if err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}
		ids = append(ids, record.Id)
	}
	if _, err := stores.Files.RecordAccess(ctx, ids[0], now.Add(-48*time.Hour)); err != nil {
		t.Fatalf("Failed to record access: %v", err)
	}
	if _, err := stores.Files.RecordAccess(ctx, ids[1], now); err != nil {
		t.Fatalf("Failed to record access: %v", err)
	}
	if _, err := stores.Files.RecordAccess(ctx, ids[2], now.Add(-time.Hour)); err != nil {
		t.Fatalf("Failed to record access: %v", err)
	}

	for _, id := range ids {
		if err := index.IndexText(ctx, id, "same text"); err != nil {
			t.Fatalf("Failed to index: %v", err)
		}
	}

	hits, err := index.Search(ctx, "same text", 0.9, 3)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("Expected 3 hits, got %d", len(hits))
	}
	// Most recently accessed first within the tied band
	if hits[0].FileId != ids[1] || hits[1].FileId != ids[2] || hits[2].FileId != ids[0] {
		t.Fatalf("Expected recency order, got %v", hits)
	}
}

func TestRemove(t *testing.T) {
	index, _, stores := newTestIndex(t)
	ctx := context.Background()

	if err := index.IndexText(ctx, 1, "some text"); err != nil {
		t.Fatalf("Failed to index: %v", err)
	}
	if err := index.Remove(ctx, 1); err != nil {
		t.Fatalf("Failed to remove: %v", err)
	}

	count, err := stores.Vectors.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected empty store, got %d", count)
	}
}
