package folders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/shelf/core"
	storagebadger "github.com/poiesic/shelf/storage/badger"
)

func newTestCompiler(t *testing.T) (*Compiler, *storagebadger.Stores) {
	t.Helper()
	stores, err := storagebadger.NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	t.Cleanup(func() { stores.Close() })
	return NewCompiler(stores.Folders, stores.Files), stores
}

func TestValidateFilters(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid extensions", `{"extensions": [".pdf", ".doc"]}`, false},
		{"valid combination", `{"project": "acme", "min_size": 1024, "contains": "invoice"}`, false},
		{"empty filters", `{}`, false},
		{"unknown key", `{"extension": [".pdf"]}`, true},
		{"type mismatch", `{"extensions": ".pdf"}`, true},
		{"negative size", `{"min_size": -5}`, true},
		{"inverted sizes", `{"min_size": 2048, "max_size": 1024}`, true},
		{"inverted dates", `{"date_from": "2025-06-10T00:00:00Z", "date_to": "2025-06-01T00:00:00Z"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateFilters([]byte(tt.raw))
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidFilter) {
					t.Fatalf("Expected ErrInvalidFilter, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("Expected valid filters, got %v", err)
			}
		})
	}
}

func TestExecuteConjunction(t *testing.T) {
	compiler, stores := newTestCompiler(t)
	ctx := context.Background()

	// pdf + acme, pdf only, acme only
	seed := []struct {
		path    string
		project string
	}{
		{"/docs/spec.pdf", "acme"},
		{"/docs/other.pdf", ""},
		{"/docs/notes.md", "acme"},
	}
	for _, s := range seed {
		record := core.NewFileRecord(s.path)
		record.Project = s.project
		if _, err := stores.Files.Upsert(ctx, record); err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}
	}

	spec, err := compiler.Create(ctx, "Acme PDFs", "",
		[]byte(`{"extensions": [".pdf"], "project": "acme"}`))
	if err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}

	// Both filters must hold: only the pdf in the acme project matches
	matched, err := compiler.Execute(ctx, spec.Id)
	if err != nil {
		t.Fatalf("Failed to execute: %v", err)
	}
	if len(matched) != 1 || matched[0].Path != "/docs/spec.pdf" {
		t.Fatalf("Expected only the acme pdf, got %v", matched)
	}
}

func TestExecuteEmptyFiltersMatchNothing(t *testing.T) {
	compiler, stores := newTestCompiler(t)
	ctx := context.Background()

	if _, err := stores.Files.Upsert(ctx, core.NewFileRecord("/a.txt")); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	spec, err := compiler.Create(ctx, "Empty", "", []byte(`{}`))
	if err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}

	matched, err := compiler.Execute(ctx, spec.Id)
	if err != nil {
		t.Fatalf("Failed to execute: %v", err)
	}
	if len(matched) != 0 {
		t.Fatalf("Expected empty result for empty filters, got %d", len(matched))
	}
}

func TestExecuteBumpsUseCount(t *testing.T) {
	compiler, stores := newTestCompiler(t)
	ctx := context.Background()

	spec, err := compiler.Create(ctx, "PDFs", "", []byte(`{"extensions": [".pdf"]}`))
	if err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := compiler.Execute(ctx, spec.Id); err != nil {
			t.Fatalf("Failed to execute: %v", err)
		}
	}

	stored, err := stores.Folders.Get(ctx, spec.Id)
	if err != nil {
		t.Fatalf("Failed to get folder: %v", err)
	}
	if stored.UseCount != 2 {
		t.Fatalf("Expected use count 2, got %d", stored.UseCount)
	}
}

func TestMatchesScreenshotsAndDuplicates(t *testing.T) {
	screenshot := core.NewFileRecord("/pics/Screenshot 2025-06-10.png")
	regular := core.NewFileRecord("/pics/holiday.png")
	duplicate := core.NewFileRecord("/docs/copy.txt")
	duplicate.IsDuplicate = true

	shots := &core.Filters{Screenshots: true}
	if !Matches(shots, screenshot) {
		t.Fatal("Expected screenshot to match")
	}
	if Matches(shots, regular) {
		t.Fatal("Expected regular image not to match")
	}

	dups := &core.Filters{Duplicates: true}
	if !Matches(dups, duplicate) {
		t.Fatal("Expected duplicate to match")
	}
	if Matches(dups, regular) {
		t.Fatal("Expected non-duplicate not to match")
	}
}

func TestMatchesDatesAndSizes(t *testing.T) {
	record := core.NewFileRecord("/docs/report.pdf")
	record.Size = 5000
	record.ModifiedAt = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	inRange := &core.Filters{
		DateFrom: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		MinSize:  1000,
		MaxSize:  10000,
	}
	if !Matches(inRange, record) {
		t.Fatal("Expected record inside all ranges to match")
	}

	tooOld := &core.Filters{DateFrom: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)}
	if Matches(tooOld, record) {
		t.Fatal("Expected record before date_from not to match")
	}

	tooSmall := &core.Filters{MinSize: 10000}
	if Matches(tooSmall, record) {
		t.Fatal("Expected record under min_size not to match")
	}
}

func TestInstallDefaults(t *testing.T) {
	compiler, stores := newTestCompiler(t)
	ctx := context.Background()

	if err := compiler.InstallDefaults(ctx); err != nil {
		t.Fatalf("Failed to install defaults: %v", err)
	}

	specs, err := compiler.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(specs) != 6 {
		t.Fatalf("Expected 6 default folders, got %d", len(specs))
	}

	// Reinstall preserves accumulated use counts
	pdfID := core.IDFromContent("PDFs")
	if _, err := stores.Folders.IncrementUse(ctx, pdfID); err != nil {
		t.Fatalf("Failed to increment: %v", err)
	}
	if err := compiler.InstallDefaults(ctx); err != nil {
		t.Fatalf("Failed to reinstall defaults: %v", err)
	}
	spec, err := stores.Folders.Get(ctx, pdfID)
	if err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if spec.UseCount != 1 {
		t.Fatalf("Expected preserved use count 1, got %d", spec.UseCount)
	}
}
