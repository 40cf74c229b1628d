package storage

import (
	"testing"
	"time"

	"github.com/poiesic/shelf/core"
)

func TestFileRecordRoundTrip(t *testing.T) {
	// Nanosecond component on purpose: wall-clock timestamps from
	// time.Now() must survive storage without truncation.
	now := time.Date(2025, 6, 10, 14, 30, 0, 123456789, time.UTC)
	record := &core.FileRecord{
		Id:             42,
		Hash:           "deadbeef",
		Path:           "/home/sam/docs/plan.md",
		Name:           "plan.md",
		Extension:      ".md",
		Size:           2048,
		CreatedAt:      now.Add(-48 * time.Hour),
		ModifiedAt:     now.Add(-time.Hour),
		LastAccessedAt: now,
		AccessCount:    7,
		Excerpt:        "quarterly roadmap",
		Summary:        "planning notes",
		Tags:           []string{"work", "q3"},
		Project:        "roadmap",
		IsDuplicate:    true,
		DuplicateOf:    7,
		Status:         core.FileStatusLive,
		InsertedAt:     now.Add(-48 * time.Hour),
		UpdatedAt:      now,
	}

	got, err := UnmarshalFileRecord(MarshalFileRecord(record))
	if err != nil {
		t.Fatalf("Failed to round trip: %v", err)
	}
	if got.Id != record.Id || got.Path != record.Path || got.Hash != record.Hash {
		t.Fatalf("Identity fields changed: %+v", got)
	}
	if !got.ModifiedAt.Equal(record.ModifiedAt) || !got.LastAccessedAt.Equal(record.LastAccessedAt) {
		t.Fatalf("Timestamps changed: %+v", got)
	}
	if got.LastAccessedAt.Nanosecond() != 123456789 {
		t.Fatalf("Nanosecond precision lost: %v", got.LastAccessedAt)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "work" {
		t.Fatalf("Tags changed: %v", got.Tags)
	}
	if !got.IsDuplicate || got.DuplicateOf != 7 {
		t.Fatalf("Duplicate fields changed: %+v", got)
	}
}

func TestZeroTimeSurvivesRoundTrip(t *testing.T) {
	// A record that has never been accessed keeps its zero timestamp.
	record := &core.FileRecord{Id: 1, Path: "/x", Status: core.FileStatusLive}

	got, err := UnmarshalFileRecord(MarshalFileRecord(record))
	if err != nil {
		t.Fatalf("Failed to round trip: %v", err)
	}
	if !got.LastAccessedAt.IsZero() {
		t.Fatalf("Expected zero LastAccessedAt, got %v", got.LastAccessedAt)
	}
	if !got.CreatedAt.IsZero() {
		t.Fatalf("Expected zero CreatedAt, got %v", got.CreatedAt)
	}
}

func TestGraphEdgeRoundTrip(t *testing.T) {
	edge := &core.GraphEdge{
		Type:     core.EdgeTaggedWith,
		Source:   10,
		Target:   20,
		Strength: 0.75,
		Seq:      3,
		LastSeen: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}

	got, err := UnmarshalGraphEdge(MarshalGraphEdge(edge))
	if err != nil {
		t.Fatalf("Failed to round trip: %v", err)
	}
	if got.Type != edge.Type || got.Source != edge.Source || got.Target != edge.Target {
		t.Fatalf("Edge identity changed: %+v", got)
	}
	if got.Strength != 0.75 || got.Seq != 3 {
		t.Fatalf("Edge weight fields changed: %+v", got)
	}
}

func TestSmartFolderRoundTrip(t *testing.T) {
	spec := &core.SmartFolderSpec{
		Id:          99,
		Name:        "Recent PDFs",
		Description: "PDFs touched this week",
		Icon:        "doc",
		Filters: core.Filters{
			Extensions: []string{".pdf"},
			DateFrom:   time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
			MinSize:    1024,
			Contains:   "invoice",
		},
		UseCount: 5,
	}

	got, err := UnmarshalSmartFolder(MarshalSmartFolder(spec))
	if err != nil {
		t.Fatalf("Failed to round trip: %v", err)
	}
	if got.Name != spec.Name || got.UseCount != 5 {
		t.Fatalf("Spec changed: %+v", got)
	}
	if len(got.Filters.Extensions) != 1 || got.Filters.Contains != "invoice" {
		t.Fatalf("Filters changed: %+v", got.Filters)
	}
	if !got.Filters.DateFrom.Equal(spec.Filters.DateFrom) || !got.Filters.DateTo.IsZero() {
		t.Fatalf("Filter dates changed: %+v", got.Filters)
	}
}

func TestTruncatedDataFails(t *testing.T) {
	record := &core.FileRecord{Id: 1, Path: "/home/sam/docs/plan.md", Status: core.FileStatusLive}
	data := MarshalFileRecord(record)

	if _, err := UnmarshalFileRecord(data[:len(data)/2]); err == nil {
		t.Fatal("Expected truncated data to fail")
	}
}
