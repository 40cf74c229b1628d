// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package temporal

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

// Engine answers time-scoped questions by joining the event log with file
// records.
type Engine struct {
	files  storage.FileStore
	events storage.EventStore
	logger *slog.Logger
}

// NewEngine creates an Engine over the given stores.
func NewEngine(files storage.FileStore, events storage.EventStore) *Engine {
	return &Engine{
		files:  files,
		events: events,
		logger: slog.Default().With("component", "temporal"),
	}
}

// Activity is one event joined with the file it concerns. Record is nil
// for events whose file no longer resolves.
type Activity struct {
	Event  *core.Event
	Record *core.FileRecord
}

// QueryEvents returns activity in [start, end], newest first.
// A zero-width range returns an empty, non-error result.
func (e *Engine) QueryEvents(ctx context.Context, start, end time.Time, kinds ...core.EventKind) ([]Activity, error) {
	events, err := e.events.ByDateRange(ctx, start, end, kinds...)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return []Activity{}, nil
	}

	ids := make([]core.ID, 0, len(events))
	seen := make(map[core.ID]bool)
	for _, event := range events {
		if event.FileId != 0 && !seen[event.FileId] {
			seen[event.FileId] = true
			ids = append(ids, event.FileId)
		}
	}
	records, err := e.files.GetMany(ctx, ids...)
	if err != nil {
		return nil, err
	}
	byID := make(map[core.ID]*core.FileRecord, len(records))
	for _, record := range records {
		byID[record.Id] = record
	}

	activity := make([]Activity, len(events))
	for i, event := range events {
		activity[i] = Activity{Event: event, Record: byID[event.FileId]}
	}
	return activity, nil
}

// QueryPhrase resolves a natural-language phrase and returns the distinct
// live files touched in that range, newest activity first.
func (e *Engine) QueryPhrase(ctx context.Context, phrase string, now time.Time) (Range, []*core.FileRecord, error) {
	rng := ParsePhrase(phrase, now)
	e.logger.Debug("resolved temporal phrase",
		"phrase", rng.Phrase, "start", rng.Start, "end", rng.End)

	activity, err := e.QueryEvents(ctx, rng.Start, rng.End)
	if err != nil {
		return rng, nil, err
	}

	var records []*core.FileRecord
	seen := make(map[core.ID]bool)
	for _, a := range activity {
		if a.Record == nil || seen[a.Record.Id] {
			continue
		}
		if a.Record.Status != core.FileStatusLive {
			continue
		}
		seen[a.Record.Id] = true
		records = append(records, a.Record)
	}
	return rng, records, nil
}

// Summary is the per-kind activity breakdown over a trailing window.
type Summary struct {
	Start  time.Time
	End    time.Time
	Counts map[core.EventKind]int
	Total  int
}

// ActivitySummary counts events by kind over the trailing number of days.
func (e *Engine) ActivitySummary(ctx context.Context, days int) (*Summary, error) {
	if days <= 0 {
		days = 1
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	counts, err := e.events.CountByKind(ctx, start, end)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return &Summary{Start: start, End: end, Counts: counts, Total: total}, nil
}
