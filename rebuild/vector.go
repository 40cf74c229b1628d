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


package rebuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/poiesic/shelf/ai"
	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

// Config holds configuration for a vector rebuild.
type Config struct {
	// BatchSize is the number of files embedded per backend call
	BatchSize int

	// ReportInterval is how often to report progress (number of files)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// VectorRebuilder re-embeds every live file with the configured backend.
// The store is wiped and restamped with a bumped generation, so vectors
// from the old backend never mix with the new ones.
type VectorRebuilder struct {
	files    storage.FileStore
	vectors  storage.VectorStore
	embedder ai.Embedder
	backend  string
	config   *Config
	progress io.Writer
	coord    Coordinator
}

// NewVectorRebuilder creates a rebuilder.
// progress: where to write progress output (typically os.Stderr)
func NewVectorRebuilder(files storage.FileStore, vectors storage.VectorStore, embedder ai.Embedder, backend string, config *Config, progress io.Writer) *VectorRebuilder {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}
	return &VectorRebuilder{
		files:    files,
		vectors:  vectors,
		embedder: embedder,
		backend:  backend,
		config:   config,
		progress: progress,
	}
}

// Run executes the rebuild. A Run started while another is in flight
// supersedes it; the superseded run stops and reports ErrSuperseded.
func (r *VectorRebuilder) Run(ctx context.Context) error {
	ctx, cancel, token := r.coord.Begin(ctx)
	defer cancel()

	records, err := r.files.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	if len(records) == 0 {
		if err := r.vectors.DeleteAll(ctx); err != nil {
			return err
		}
		fmt.Fprintf(r.progress, "No live files to embed (0 files)\n")
		return nil
	}

	generation, err := r.nextGeneration(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.progress, "Re-embedding %d files (batch size: %d)\n",
		len(records), r.config.BatchSize)
	tracker := NewProgressTracker(r.progress, len(records), r.config.ReportInterval)

	stamped := false
	for start := 0; start < len(records); start += r.config.BatchSize {
		end := start + r.config.BatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		embeddings, err := r.embedBatch(ctx, batch)
		if err != nil {
			if r.superseded(token, err) {
				return ErrSuperseded
			}
			return err
		}

		// The first successful batch wipes the old generation. Embedding
		// failures before this point leave the previous index intact.
		if !stamped {
			if err := r.vectors.DeleteAll(ctx); err != nil {
				return err
			}
			meta := &core.VectorMeta{
				Backend:    r.backend,
				Dim:        len(embeddings[0]),
				Generation: generation,
			}
			if err := r.vectors.SetMeta(ctx, meta); err != nil {
				return err
			}
			stamped = true
		}

		now := time.Now().UTC()
		for i, record := range batch {
			entry := &core.VectorEntry{
				FileId:      record.Id,
				Vector:      embeddings[i],
				Norm:        vectorNorm(embeddings[i]),
				Dim:         len(embeddings[i]),
				GeneratedAt: now,
			}
			if err := r.vectors.Put(ctx, entry); err != nil {
				return err
			}
		}
		tracker.Increment(len(batch))

		if r.coord.Superseded(token) {
			return ErrSuperseded
		}
	}
	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Rebuild complete. Embedded %d files in %v (generation %d)\n",
		len(records), elapsed.Round(time.Second), generation)
	return nil
}

// embedBatch embeds the search text of a batch of records with retry.
func (r *VectorRebuilder) embedBatch(ctx context.Context, batch []*core.FileRecord) ([][]float32, error) {
	texts := make([]string, len(batch))
	for i, record := range batch {
		texts[i] = record.SearchText()
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = r.embedder.EmbedTexts(ctx, texts)
		return err
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w",
			r.config.MaxRetries, err)
	}
	if len(embeddings) != len(batch) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d",
			len(batch), len(embeddings))
	}
	return embeddings, nil
}

// nextGeneration reads the stored generation and returns its successor.
func (r *VectorRebuilder) nextGeneration(ctx context.Context) (uint64, error) {
	meta, err := r.vectors.Meta(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return meta.Generation + 1, nil
}

// superseded distinguishes a cancellation caused by a newer run from a
// caller-initiated one.
func (r *VectorRebuilder) superseded(token uint64, err error) bool {
	return errors.Is(err, context.Canceled) && r.coord.Superseded(token)
}

func vectorNorm(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}
