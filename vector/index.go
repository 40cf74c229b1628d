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


package vector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/poiesic/shelf/ai"
	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

// Index pairs an embedder with the persisted vector store. All vectors it
// holds come from one embedding generation; a backend or dimension change
// marks the whole index stale, and a stale index serves empty results
// rather than mixing incomparable vectors.
type Index struct {
	embedder ai.Embedder
	backend  string
	dim      int // 0 when the embedder's width is not known up front
	store    storage.VectorStore
	files    storage.FileStore
	logger   *slog.Logger
}

// NewIndex creates an index over the given store. The files store is used
// to break similarity ties by recency; it may be nil, in which case ties
// stay in file-ID order.
func NewIndex(embedder ai.Embedder, backend string, store storage.VectorStore, files storage.FileStore) *Index {
	x := &Index{
		embedder: embedder,
		backend:  backend,
		store:    store,
		files:    files,
		logger:   slog.Default().With("component", "vector-index"),
	}
	if d, ok := embedder.(interface{ Dim() int }); ok {
		x.dim = d.Dim()
	}
	return x
}

// IndexText embeds text and stores the vector for a file.
// The first vector stamps the store's generation metadata; later vectors
// must match it, and a mismatch returns ErrRebuildRequired.
func (x *Index) IndexText(ctx context.Context, fileID core.ID, text string) error {
	vec, err := x.embedder.EmbedText(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding file %d: %w", fileID, err)
	}
	if len(vec) == 0 {
		return nil
	}

	meta, err := x.store.Meta(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		meta = &core.VectorMeta{Backend: x.backend, Dim: len(vec), Generation: 1}
		if err := x.store.SetMeta(ctx, meta); err != nil {
			return err
		}
	case err != nil:
		return err
	case meta.Backend != x.backend || meta.Dim != len(vec):
		return fmt.Errorf("%w: stored generation %s/%d, embedder produces %s/%d",
			storage.ErrRebuildRequired, meta.Backend, meta.Dim, x.backend, len(vec))
	}

	return x.store.Put(ctx, &core.VectorEntry{
		FileId:      fileID,
		Vector:      vec,
		Norm:        norm(vec),
		Dim:         len(vec),
		GeneratedAt: time.Now().UTC(),
	})
}

// Remove drops the stored vector for a file.
func (x *Index) Remove(ctx context.Context, fileID core.ID) error {
	return x.store.Delete(ctx, fileID)
}

// Search embeds the query and returns the k most similar files.
// A stale index degrades to empty results instead of erroring, so fused
// search keeps working on its other modalities.
func (x *Index) Search(ctx context.Context, query string, minScore float32, k int) ([]storage.VectorHit, error) {
	meta, err := x.store.Meta(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		meta = nil // nothing indexed yet
	case err != nil:
		return nil, err
	case x.staleMeta(meta):
		x.logger.Warn("serving empty similarity results from stale index",
			"stored", meta.Backend, "dim", meta.Dim)
		return nil, nil
	}

	vec, err := x.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if meta != nil && len(vec) != meta.Dim {
		// The embedder's width drifted from the stored generation; scoring
		// mixed-dimension vectors would silently truncate.
		x.logger.Warn("query dimension does not match stored vectors",
			"query", len(vec), "stored", meta.Dim)
		return nil, nil
	}

	// Over-fetch so recency tie-breaking sees the whole tied band.
	fetch := k
	if fetch > 0 {
		fetch *= 2
	}
	hits, err := x.store.FindSimilar(ctx, vec, minScore, fetch)
	if err != nil {
		return nil, err
	}

	x.breakTiesByRecency(ctx, hits)
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// NeedsRebuild reports whether the stored generation no longer matches the
// configured embedder. Before the first indexed vector there is nothing to
// rebuild.
func (x *Index) NeedsRebuild(ctx context.Context) (bool, error) {
	meta, err := x.store.Meta(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return x.staleMeta(meta), nil
}

// staleMeta reports whether stored generation metadata no longer matches
// the configured embedder. The dimension check only applies when the
// embedder declares its width.
func (x *Index) staleMeta(meta *core.VectorMeta) bool {
	if meta.Backend != x.backend {
		return true
	}
	return x.dim > 0 && meta.Dim != x.dim
}

// Generation returns the current generation counter, zero before any index.
func (x *Index) Generation(ctx context.Context) (uint64, error) {
	meta, err := x.store.Meta(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return meta.Generation, nil
}

// breakTiesByRecency reorders equal-score runs so the most recently
// accessed file wins.
func (x *Index) breakTiesByRecency(ctx context.Context, hits []storage.VectorHit) {
	if x.files == nil || len(hits) < 2 {
		return
	}

	ids := make([]core.ID, len(hits))
	for i, hit := range hits {
		ids[i] = hit.FileId
	}
	records, err := x.files.GetMany(ctx, ids...)
	if err != nil {
		x.logger.Warn("tie-break lookup failed, keeping ID order", "err", err)
		return
	}
	accessed := make(map[core.ID]time.Time, len(records))
	for _, record := range records {
		accessed[record.Id] = record.LastAccessedAt
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return accessed[hits[i].FileId].After(accessed[hits[j].FileId])
	})
}

func norm(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}
