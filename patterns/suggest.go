package patterns

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

// Suggest derives proactive nudges from high-confidence learned patterns
// and live store signals. Suggestions are recomputed on every call and
// never persisted.
func (t *Tracker) Suggest(ctx context.Context, files storage.FileStore) ([]core.Suggestion, error) {
	var suggestions []core.Suggestion

	learned, err := t.Patterns(ctx, "", t.config.SuggestionThreshold)
	if err != nil {
		return nil, err
	}
	for _, pattern := range learned {
		suggestions = append(suggestions, suggestionFromPattern(pattern))
	}

	records, err := files.List(ctx)
	if err != nil {
		return nil, err
	}
	suggestions = append(suggestions, t.clutterSuggestions(records)...)
	suggestions = append(suggestions, t.staleSuggestions(records)...)
	suggestions = append(suggestions, duplicateSuggestion(records)...)

	return suggestions, nil
}

func suggestionFromPattern(pattern *core.Pattern) core.Suggestion {
	title := pattern.Key
	switch pattern.Type {
	case "search_term":
		title = fmt.Sprintf("You search %q often", pattern.Key)
	case "folder_use":
		title = fmt.Sprintf("You use the %q folder often", pattern.Key)
	}
	return core.Suggestion{
		Type:       "search_shortcut",
		Title:      title,
		Detail:     fmt.Sprintf("seen %d times", pattern.Frequency),
		Confidence: pattern.Confidence,
	}
}

// clutterSuggestions flags directories holding too many live files.
func (t *Tracker) clutterSuggestions(records []*core.FileRecord) []core.Suggestion {
	threshold := t.config.ClutterThreshold
	if threshold <= 0 {
		threshold = DefaultConfig().ClutterThreshold
	}

	perDir := make(map[string][]core.ID)
	for _, record := range records {
		dir := filepath.Dir(record.Path)
		perDir[dir] = append(perDir[dir], record.Id)
	}

	var suggestions []core.Suggestion
	for dir, ids := range perDir {
		if len(ids) < threshold {
			continue
		}
		suggestions = append(suggestions, core.Suggestion{
			Type:       "clutter",
			Title:      fmt.Sprintf("%s is getting crowded", dir),
			Detail:     fmt.Sprintf("%d files tracked there", len(ids)),
			Confidence: 0.8,
			FileIds:    ids,
		})
	}
	return suggestions
}

// staleSuggestions flags files untouched for longer than StaleAfter.
func (t *Tracker) staleSuggestions(records []*core.FileRecord) []core.Suggestion {
	staleAfter := t.config.StaleAfter
	if staleAfter <= 0 {
		staleAfter = DefaultConfig().StaleAfter
	}
	cutoff := time.Now().UTC().Add(-staleAfter)

	var staleIds []core.ID
	for _, record := range records {
		touched := record.ModifiedAt
		if record.LastAccessedAt.After(touched) {
			touched = record.LastAccessedAt
		}
		if !touched.IsZero() && touched.Before(cutoff) {
			staleIds = append(staleIds, record.Id)
		}
	}
	if len(staleIds) == 0 {
		return nil
	}
	return []core.Suggestion{{
		Type:       "cleanup",
		Title:      "Stale files could be archived",
		Detail:     fmt.Sprintf("%d files untouched for a while", len(staleIds)),
		Confidence: 0.7,
		FileIds:    staleIds,
	}}
}

// duplicateSuggestion flags marked duplicates ready for cleanup.
func duplicateSuggestion(records []*core.FileRecord) []core.Suggestion {
	var dupIds []core.ID
	for _, record := range records {
		if record.IsDuplicate {
			dupIds = append(dupIds, record.Id)
		}
	}
	if len(dupIds) == 0 {
		return nil
	}
	return []core.Suggestion{{
		Type:       "cleanup",
		Title:      "Duplicate files detected",
		Detail:     fmt.Sprintf("%d duplicates of existing files", len(dupIds)),
		Confidence: 0.9,
		FileIds:    dupIds,
	}}
}
