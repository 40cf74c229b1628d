package temporal

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/shelf/core"
	storagebadger "github.com/poiesic/shelf/storage/badger"
)

func newTestEngine(t *testing.T) (*Engine, *storagebadger.Stores) {
	t.Helper()
	stores, err := storagebadger.NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	t.Cleanup(func() { stores.Close() })
	return NewEngine(stores.Files, stores.Events), stores
}

func TestQueryEventsJoinsRecords(t *testing.T) {
	engine, stores := newTestEngine(t)
	ctx := context.Background()

	record, err := stores.Files.Upsert(ctx, core.NewFileRecord("/notes.md"))
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	// Upsert already logged a discovery event
	now := time.Now().UTC()
	activity, err := engine.QueryEvents(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(activity) == 0 {
		t.Fatal("Expected discovery activity")
	}
	if activity[0].Record == nil || activity[0].Record.Id != record.Id {
		t.Fatalf("Expected joined record, got %+v", activity[0])
	}
	if activity[0].Event.Kind != core.EventDiscovered {
		t.Fatalf("Expected discovered event, got %s", activity[0].Event.Kind)
	}
}

func TestQueryEventsZeroWidthRange(t *testing.T) {
	engine, _ := newTestEngine(t)

	at := time.Now().UTC()
	activity, err := engine.QueryEvents(context.Background(), at, at)
	if err != nil {
		t.Fatalf("Expected zero-width range to succeed, got %v", err)
	}
	if len(activity) != 0 {
		t.Fatalf("Expected empty result, got %d", len(activity))
	}
}

func TestQueryPhraseToday(t *testing.T) {
	engine, stores := newTestEngine(t)
	ctx := context.Background()

	paths := []string{"/a.txt", "/b.txt", "/c.txt"}
	for _, path := range paths {
		if _, err := stores.Files.Upsert(ctx, core.NewFileRecord(path)); err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}
	}

	rng, records, err := engine.QueryPhrase(ctx, "today", time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to query phrase: %v", err)
	}
	if rng.Phrase != "today" {
		t.Fatalf("Expected today phrase, got %q", rng.Phrase)
	}
	if len(records) != 3 {
		t.Fatalf("Expected all 3 files indexed today, got %d", len(records))
	}
}

func TestQueryPhraseBeforeDayPartStarts(t *testing.T) {
	engine, stores := newTestEngine(t)
	ctx := context.Background()

	if _, err := stores.Files.Upsert(ctx, core.NewFileRecord("/a.txt")); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	// Every recognized phrase is a valid query, even before the day part
	// begins: the window is just empty
	morning := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	rng, records, err := engine.QueryPhrase(ctx, "this afternoon", morning)
	if err != nil {
		t.Fatalf("Expected empty result for morning query, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("Expected no records before the afternoon, got %d", len(records))
	}
	if !rng.Start.Equal(rng.End) {
		t.Fatalf("Expected empty window, got %v..%v", rng.Start, rng.End)
	}
}

func TestQueryPhraseSkipsRemoved(t *testing.T) {
	engine, stores := newTestEngine(t)
	ctx := context.Background()

	record, err := stores.Files.Upsert(ctx, core.NewFileRecord("/gone.txt"))
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if err := stores.Files.Remove(ctx, record.Id); err != nil {
		t.Fatalf("Failed to remove: %v", err)
	}

	_, records, err := engine.QueryPhrase(ctx, "today", time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to query phrase: %v", err)
	}
	for _, r := range records {
		if r.Id == record.Id {
			t.Fatal("Removed record surfaced in temporal query")
		}
	}
}

func TestActivitySummary(t *testing.T) {
	engine, stores := newTestEngine(t)
	ctx := context.Background()

	record, err := stores.Files.Upsert(ctx, core.NewFileRecord("/a.txt"))
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := stores.Files.RecordAccess(ctx, record.Id, time.Now().UTC()); err != nil {
			t.Fatalf("Failed to record access: %v", err)
		}
	}

	summary, err := engine.ActivitySummary(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to summarize: %v", err)
	}
	if summary.Counts[core.EventDiscovered] != 1 {
		t.Fatalf("Expected 1 discovery, got %d", summary.Counts[core.EventDiscovered])
	}
	if summary.Counts[core.EventAccessed] != 2 {
		t.Fatalf("Expected 2 accesses, got %d", summary.Counts[core.EventAccessed])
	}
	if summary.Total != 3 {
		t.Fatalf("Expected total 3, got %d", summary.Total)
	}
}
