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


package patterns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

// Config tunes the pattern learner.
type Config struct {
	// Alpha is the EMA smoothing factor: higher values adapt faster.
	Alpha float32

	// SuggestionThreshold is the confidence a pattern needs before it
	// surfaces as a suggestion.
	SuggestionThreshold float32

	// PruneFloor is the confidence below which Prune discards a pattern.
	PruneFloor float32

	// ClutterThreshold is the file count at which a directory counts as
	// cluttered.
	ClutterThreshold int

	// StaleAfter is how long an untouched file can sit before the
	// cleanup suggestion includes it.
	StaleAfter time.Duration
}

// DefaultConfig returns the tuning used in production.
func DefaultConfig() Config {
	return Config{
		Alpha:               0.3,
		SuggestionThreshold: 0.7,
		PruneFloor:          0.1,
		ClutterThreshold:    30,
		StaleAfter:          90 * 24 * time.Hour,
	}
}

// Tracker learns behavioral patterns with exponentially-weighted confidence.
// New patterns start at 0.5; each observed signal in [0,1] pulls the
// confidence toward itself by Alpha. Confidence therefore approaches a
// repeated signal monotonically without ever overshooting it.
type Tracker struct {
	store  storage.PatternStore
	config Config
	logger *slog.Logger
}

// NewTracker creates a Tracker over the given store.
func NewTracker(store storage.PatternStore, config Config) *Tracker {
	if config.Alpha <= 0 || config.Alpha > 1 {
		config.Alpha = DefaultConfig().Alpha
	}
	return &Tracker{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "patterns"),
	}
}

// Observe records one signal for a (type, key) pattern and returns the
// updated pattern. The signal must be in [0, 1].
func (t *Tracker) Observe(ctx context.Context, patternType, key, value string, signal float32) (*core.Pattern, error) {
	if patternType == "" || key == "" {
		return nil, core.ErrEmptyPatternKey
	}
	if err := core.ValidateSignal(signal); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	id := core.PatternID(patternType, key)

	pattern, err := t.store.Get(ctx, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		pattern = &core.Pattern{
			Id:         id,
			Type:       patternType,
			Key:        key,
			Confidence: 0.5,
			InsertedAt: now,
		}
	case err != nil:
		return nil, fmt.Errorf("loading pattern %s/%s: %w", patternType, key, err)
	}

	pattern.Confidence += t.config.Alpha * (signal - pattern.Confidence)
	if pattern.Confidence < 0 {
		pattern.Confidence = 0
	}
	if pattern.Confidence > 1 {
		pattern.Confidence = 1
	}
	pattern.Frequency++
	pattern.LastUsed = now
	if value != "" {
		pattern.Value = value
	}

	if err := t.store.Put(ctx, pattern); err != nil {
		return nil, err
	}
	return pattern, nil
}

// Patterns returns learned patterns ordered by confidence then frequency,
// highest first. An empty patternType matches all types; minConfidence
// filters the floor.
func (t *Tracker) Patterns(ctx context.Context, patternType string, minConfidence float32) ([]*core.Pattern, error) {
	all, err := t.store.All(ctx)
	if err != nil {
		return nil, err
	}

	var filtered []*core.Pattern
	for _, pattern := range all {
		if patternType != "" && pattern.Type != patternType {
			continue
		}
		if pattern.Confidence < minConfidence {
			continue
		}
		filtered = append(filtered, pattern)
	}
	return filtered, nil
}

// Prune drops patterns whose confidence fell below the configured floor.
func (t *Tracker) Prune(ctx context.Context) (int, error) {
	pruned, err := t.store.Prune(ctx, t.config.PruneFloor)
	if err != nil {
		return 0, err
	}
	if pruned > 0 {
		t.logger.Info("pruned low-confidence patterns", "count", pruned)
	}
	return pruned, nil
}
