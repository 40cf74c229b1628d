package temporal

import (
	"testing"
	"time"
)

// A Wednesday morning, so week phrases have unambiguous boundaries.
var wednesday = time.Date(2025, 6, 11, 9, 30, 0, 0, time.UTC)

func TestParseToday(t *testing.T) {
	rng := ParsePhrase("files from today", wednesday)

	wantStart := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	if !rng.Start.Equal(wantStart) {
		t.Fatalf("Expected start at midnight, got %v", rng.Start)
	}
	if !rng.End.Equal(wednesday) {
		t.Fatalf("Expected end now, got %v", rng.End)
	}
}

func TestParseYesterdayCalendarBounds(t *testing.T) {
	// "yesterday" means the whole previous calendar day, not now-24h
	rng := ParsePhrase("yesterday", wednesday)

	wantStart := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 6, 10, 23, 59, 59, 0, time.UTC)
	if !rng.Start.Equal(wantStart) {
		t.Fatalf("Expected start %v, got %v", wantStart, rng.Start)
	}
	if !rng.End.Equal(wantEnd) {
		t.Fatalf("Expected end %v, got %v", wantEnd, rng.End)
	}
}

func TestParseLastNDaysIncludesToday(t *testing.T) {
	// "last 3 days" spans today and the two days before it
	rng := ParsePhrase("last 3 days", wednesday)

	wantStart := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	if !rng.Start.Equal(wantStart) {
		t.Fatalf("Expected start %v, got %v", wantStart, rng.Start)
	}
	if !rng.End.Equal(wednesday) {
		t.Fatalf("Expected end now, got %v", rng.End)
	}
}

func TestParseWeeks(t *testing.T) {
	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	rng := ParsePhrase("this week", wednesday)
	if !rng.Start.Equal(monday) {
		t.Fatalf("Expected week to start Monday, got %v", rng.Start)
	}

	rng = ParsePhrase("last week", wednesday)
	if !rng.Start.Equal(monday.AddDate(0, 0, -7)) {
		t.Fatalf("Expected previous Monday, got %v", rng.Start)
	}
	if !rng.End.Equal(monday.Add(-time.Second)) {
		t.Fatalf("Expected last week to end Sunday night, got %v", rng.End)
	}

	// A Sunday belongs to the week of the preceding Monday
	sunday := time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)
	rng = ParsePhrase("this week", sunday)
	if !rng.Start.Equal(monday) {
		t.Fatalf("Expected Sunday to fall in Monday's week, got %v", rng.Start)
	}
}

func TestParseMonths(t *testing.T) {
	rng := ParsePhrase("this month", wednesday)
	if !rng.Start.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Expected June 1st, got %v", rng.Start)
	}

	rng = ParsePhrase("last month", wednesday)
	if !rng.Start.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Expected May 1st, got %v", rng.Start)
	}
	if !rng.End.Equal(time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("Expected end of May, got %v", rng.End)
	}
}

func TestParseNDaysAgo(t *testing.T) {
	// "2 days ago" is that single calendar day
	rng := ParsePhrase("2 days ago", wednesday)

	if !rng.Start.Equal(time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Expected June 9th, got %v", rng.Start)
	}
	if !rng.End.Equal(time.Date(2025, 6, 9, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("Expected end of June 9th, got %v", rng.End)
	}
}

func TestParseNHoursAgo(t *testing.T) {
	rng := ParsePhrase("3 hours ago", wednesday)

	if !rng.Start.Equal(wednesday.Add(-3 * time.Hour)) {
		t.Fatalf("Expected 3 hours back, got %v", rng.Start)
	}
}

func TestParseDayParts(t *testing.T) {
	rng := ParsePhrase("this morning", wednesday)
	if !rng.Start.Equal(time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Unexpected morning start: %v", rng.Start)
	}

	evening := time.Date(2025, 6, 11, 21, 0, 0, 0, time.UTC)
	rng = ParsePhrase("tonight", evening)
	if !rng.Start.Equal(time.Date(2025, 6, 11, 17, 0, 0, 0, time.UTC)) {
		t.Fatalf("Unexpected evening start: %v", rng.Start)
	}
}

func TestParseDayPartsBeforeStart(t *testing.T) {
	// "this afternoon" asked in the morning is an empty window ending at
	// now, never an inverted range
	rng := ParsePhrase("this afternoon", wednesday)
	if rng.Start.After(rng.End) {
		t.Fatalf("Inverted range: %v > %v", rng.Start, rng.End)
	}
	if !rng.Start.Equal(wednesday) || !rng.End.Equal(wednesday) {
		t.Fatalf("Expected empty window at now, got %v..%v", rng.Start, rng.End)
	}

	rng = ParsePhrase("tonight", wednesday)
	if rng.Start.After(rng.End) {
		t.Fatalf("Inverted range: %v > %v", rng.Start, rng.End)
	}
}

func TestParseDefaultTrailing24h(t *testing.T) {
	rng := ParsePhrase("show me the stuff", wednesday)

	if rng.Phrase != "default" {
		t.Fatalf("Expected default phrase marker, got %q", rng.Phrase)
	}
	if !rng.Start.Equal(wednesday.Add(-24 * time.Hour)) {
		t.Fatalf("Expected trailing 24h, got %v", rng.Start)
	}
}
