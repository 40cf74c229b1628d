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


package shelf

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/shelf/ai"
	"github.com/poiesic/shelf/ai/local"
	"github.com/poiesic/shelf/ai/openai"
	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/folders"
	"github.com/poiesic/shelf/graph"
	"github.com/poiesic/shelf/ingestion"
	"github.com/poiesic/shelf/patterns"
	"github.com/poiesic/shelf/rebuild"
	"github.com/poiesic/shelf/search"
	"github.com/poiesic/shelf/storage"
	"github.com/poiesic/shelf/storage/badger"
	"github.com/poiesic/shelf/temporal"
	"github.com/poiesic/shelf/vector"
)

// Database wires every subsystem over one Badger backend: metadata and
// events, the vector index, the relationship graph, pattern learning,
// smart folders, fused search with its cache, and the ingestion pipeline.
type Database struct {
	stores   *badger.Stores
	provider ai.Provider
	index    *vector.Index
	graph    *graph.Graph
	searcher *search.Searcher
	cached   *search.CachedSearcher
	pipeline *ingestion.Pipeline
	tracker  *patterns.Tracker
	compiler *folders.Compiler
	engine   *temporal.Engine

	vectorRebuilder *rebuild.VectorRebuilder
	graphRebuilder  *rebuild.GraphRebuilder

	logger *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig       *ai.Config
	localEmbedding bool
	patternConfig  patterns.Config
	progress       io.Writer
	inMemory       bool
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithLocalEmbedding forces the offline hash-based embedder instead of
// an external embedding service.
func WithLocalEmbedding() DatabaseOption {
	return func(o *databaseOptions) {
		o.localEmbedding = true
	}
}

// WithPatternConfig sets the pattern learning parameters.
func WithPatternConfig(config patterns.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.patternConfig = config
	}
}

// WithProgressWriter sets where rebuild progress is written.
// Default is to discard it.
func WithProgressWriter(w io.Writer) DatabaseOption {
	return func(o *databaseOptions) {
		o.progress = w
	}
}

// WithInMemoryStorage keeps everything in memory. Used by tests and the
// seeder; nothing survives Close.
func WithInMemoryStorage() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the database at filePath and wires all subsystems.
// When the configured embedding service is unusable the database falls
// back to the local embedder rather than failing to open.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:      ai.DefaultConfig(),
		patternConfig: patterns.DefaultConfig(),
		progress:      io.Discard,
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := slog.Default().With("component", "shelf")

	stores, err := badger.OpenStores(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	provider := newProvider(options, logger)

	index := vector.NewIndex(provider.Embedder(), provider.Backend(), stores.Vectors, stores.Files)
	g := graph.New(stores.Graph)

	searcher, err := search.NewSearcher(stores.Files,
		search.WithVectorIndex(index),
		search.WithGraph(g))
	if err != nil {
		stores.Close()
		return nil, err
	}
	cached, err := search.NewCachedSearcher(searcher)
	if err != nil {
		stores.Close()
		return nil, err
	}

	pipeline, err := ingestion.NewPipeline(stores.Files,
		ingestion.WithVectorIndex(index),
		ingestion.WithGraph(g),
		ingestion.WithMutationHook(cached.Invalidate))
	if err != nil {
		cached.Close()
		stores.Close()
		return nil, err
	}

	compiler := folders.NewCompiler(stores.Folders, stores.Files)
	if err := compiler.InstallDefaults(context.Background()); err != nil {
		logger.Warn("installing default smart folders failed", "err", err)
	}

	db := &Database{
		stores:   stores,
		provider: provider,
		index:    index,
		graph:    g,
		searcher: searcher,
		cached:   cached,
		pipeline: pipeline,
		tracker:  patterns.NewTracker(stores.Patterns, options.patternConfig),
		compiler: compiler,
		engine:   temporal.NewEngine(stores.Files, stores.Events),
		vectorRebuilder: rebuild.NewVectorRebuilder(stores.Files, stores.Vectors,
			provider.Embedder(), provider.Backend(), nil, options.progress),
		graphRebuilder: rebuild.NewGraphRebuilder(
			graph.NewRebuilder(g, stores.Files, stores.Events), options.progress),
		logger: logger,
	}
	return db, nil
}

// newProvider picks the embedding provider. An invalid external
// configuration degrades to the offline local embedder.
func newProvider(options *databaseOptions, logger *slog.Logger) ai.Provider {
	if options.localEmbedding {
		return local.NewProvider(options.aiConfig)
	}
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		logger.Warn("embedding service unavailable, using local embedder", "err", err)
		return local.NewProvider(options.aiConfig)
	}
	return provider
}

// Close releases the pipeline, cache, provider, and all stores.
func (db *Database) Close() error {
	db.pipeline.Release()
	db.cached.Close()
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing embedding provider", "err", err)
	}
	return db.stores.Close()
}

// IndexFile indexes one file and returns its record.
func (db *Database) IndexFile(ctx context.Context, path string) (*core.FileRecord, error) {
	return db.pipeline.IndexFile(ctx, path)
}

// IndexFolder indexes a directory tree.
// Returns how many files were indexed and skipped.
func (db *Database) IndexFolder(ctx context.Context, root string, recursive bool) (indexed, skipped int, err error) {
	return db.pipeline.IndexFolder(ctx, root, recursive)
}

// EnqueueFile submits a path for background indexing.
func (db *Database) EnqueueFile(path string) error {
	return db.pipeline.Enqueue(path)
}

// Search runs a fused query. Every query also feeds the search-term
// pattern tracker so frequent queries can surface as suggestions.
func (db *Database) Search(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	db.observeQuery(ctx, query)
	return db.searcher.Search(ctx, query, maxHits)
}

// SearchFiltered runs a fused query with post-filters.
func (db *Database) SearchFiltered(ctx context.Context, query string, maxHits int, filters *search.SearchFilters) ([]*core.SearchResult, error) {
	db.observeQuery(ctx, query)
	return db.searcher.SearchFiltered(ctx, query, maxHits, filters)
}

// CachedSearch runs a fused query through the TTL result cache.
// Any indexing write invalidates the cache.
func (db *Database) CachedSearch(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	db.observeQuery(ctx, query)
	return db.cached.Search(ctx, query, maxHits)
}

// TemporalQuery resolves a natural-language time phrase and returns the
// files with activity in the window.
func (db *Database) TemporalQuery(ctx context.Context, phrase string) (temporal.Range, []*core.FileRecord, error) {
	return db.engine.QueryPhrase(ctx, phrase, time.Now().UTC())
}

// ActivitySummary returns per-kind event counts over the trailing days.
func (db *Database) ActivitySummary(ctx context.Context, days int) (*temporal.Summary, error) {
	return db.engine.ActivitySummary(ctx, days)
}

// Related returns files connected to the given file through the graph,
// nearest first, up to depth hops away.
func (db *Database) Related(ctx context.Context, fileID core.ID, depth int) ([]*core.FileRecord, error) {
	record, err := db.stores.Files.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}

	neighbors, err := db.graph.Neighbors(ctx, core.NodeID(core.NodeFile, record.Path), depth)
	if err != nil {
		return nil, err
	}

	ids := make([]core.ID, 0, len(neighbors))
	for _, neighbor := range neighbors {
		if neighbor.Node.Kind == core.NodeFile && neighbor.Node.FileId != 0 &&
			neighbor.Node.FileId != fileID {
			ids = append(ids, neighbor.Node.FileId)
		}
	}
	if len(ids) == 0 {
		return []*core.FileRecord{}, nil
	}

	records, err := db.stores.Files.GetMany(ctx, ids...)
	if err != nil {
		return nil, err
	}
	live := records[:0]
	for _, r := range records {
		if r.Status == core.FileStatusLive {
			live = append(live, r)
		}
	}
	return live, nil
}

// RecordAccess registers a user access: event, access counter, and a
// folder-access pattern observation.
func (db *Database) RecordAccess(ctx context.Context, fileID core.ID) (*core.FileRecord, error) {
	record, err := db.stores.Files.RecordAccess(ctx, fileID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if _, err := db.tracker.Observe(ctx, "folder_access", filepath.Dir(record.Path), "", 1.0); err != nil {
		db.logger.Warn("pattern observation failed", "err", err)
	}
	db.cached.Invalidate()
	return record, nil
}

// ObservePattern feeds one behavioral observation to the tracker.
func (db *Database) ObservePattern(ctx context.Context, patternType, key, value string, signal float32) (*core.Pattern, error) {
	return db.tracker.Observe(ctx, patternType, key, value, signal)
}

// Suggestions returns organization suggestions from learned patterns and
// the current state of the index.
func (db *Database) Suggestions(ctx context.Context) ([]core.Suggestion, error) {
	return db.tracker.Suggest(ctx, db.stores.Files)
}

// CreateSmartFolder validates the filter spec and persists the folder.
func (db *Database) CreateSmartFolder(ctx context.Context, name, description string, rawFilters []byte) (*core.SmartFolderSpec, error) {
	return db.compiler.Create(ctx, name, description, rawFilters)
}

// ExecuteSmartFolder runs a stored folder against the live index.
func (db *Database) ExecuteSmartFolder(ctx context.Context, id core.ID) ([]*core.FileRecord, error) {
	return db.compiler.Execute(ctx, id)
}

// SmartFolders lists stored folders, most used first.
func (db *Database) SmartFolders(ctx context.Context) ([]*core.SmartFolderSpec, error) {
	return db.compiler.List(ctx)
}

// DeleteSmartFolder removes a stored folder.
func (db *Database) DeleteSmartFolder(ctx context.Context, id core.ID) error {
	return db.compiler.Delete(ctx, id)
}

// RebuildVectors re-embeds every live file with the current backend.
func (db *Database) RebuildVectors(ctx context.Context) error {
	if err := db.vectorRebuilder.Run(ctx); err != nil {
		return err
	}
	db.cached.Invalidate()
	return nil
}

// RebuildGraph recomputes the relationship graph from metadata and events.
func (db *Database) RebuildGraph(ctx context.Context) error {
	if err := db.graphRebuilder.Run(ctx); err != nil {
		return err
	}
	db.cached.Invalidate()
	return nil
}

// Files exposes the file store for callers needing direct metadata access.
func (db *Database) Files() storage.FileStore {
	return db.stores.Files
}

// Backend returns the active embedding backend identifier.
func (db *Database) Backend() string {
	return db.provider.Backend()
}

func (db *Database) observeQuery(ctx context.Context, query string) {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	if normalized == "" {
		return
	}
	if _, err := db.tracker.Observe(ctx, "search_term", normalized, "", 1.0); err != nil {
		db.logger.Warn("pattern observation failed", "err", err)
	}
}
