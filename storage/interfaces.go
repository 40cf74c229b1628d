package storage

import (
	"context"
	"time"

	"github.com/poiesic/shelf/core"
)

// Store provides common operations shared across all stores.
// Implementations must be thread-safe and support concurrent access.
// Each store serializes its own writes; reads may proceed concurrently
// with committed writes.
type Store interface {
	// Close closes the store and releases resources.
	Close() error
}

// TermHit is one keyword search match with its term-frequency relevance.
type TermHit struct {
	FileId core.ID
	Score  float32
}

// FileStore provides operations for managing file records.
type FileStore interface {
	Store

	// Upsert inserts or updates the record for its path.
	// New records get a sequence ID and InsertedAt; existing records keep
	// their ID and are updated in place. The keyword index is maintained
	// as a side effect. Returns the stored record.
	Upsert(ctx context.Context, record *core.FileRecord) (*core.FileRecord, error)

	// Update rewrites an existing record.
	// Returns ErrNotFound if the record doesn't exist.
	Update(ctx context.Context, record *core.FileRecord) (*core.FileRecord, error)

	// Get retrieves a single record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.FileRecord, error)

	// GetMany retrieves multiple records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetMany(ctx context.Context, ids ...core.ID) ([]*core.FileRecord, error)

	// GetByPath retrieves the record for a path.
	// Returns ErrNotFound if no record exists for the path.
	GetByPath(ctx context.Context, path string) (*core.FileRecord, error)

	// GetByHash retrieves all records sharing a content fingerprint.
	GetByHash(ctx context.Context, hash string) ([]*core.FileRecord, error)

	// List returns all live records.
	List(ctx context.Context) ([]*core.FileRecord, error)

	// Remove soft-removes a record by flipping its status.
	// Returns ErrNotFound if the record doesn't exist.
	Remove(ctx context.Context, id core.ID) error

	// Search runs a keyword query against the inverted index.
	// Matching is case-insensitive and ranked by term-frequency relevance.
	Search(ctx context.Context, query string, limit int) ([]TermHit, error)

	// MarkDuplicate marks a record as duplicate of a canonical record.
	// Idempotent and symmetric-safe: the canonical chain is followed so
	// repeated or reversed calls converge on a single canonical ancestor.
	MarkDuplicate(ctx context.Context, id, canonicalID core.ID) error

	// RecordAccess bumps the access counter and last-access timestamp.
	// Returns ErrNotFound if the record doesn't exist.
	RecordAccess(ctx context.Context, id core.ID, at time.Time) (*core.FileRecord, error)
}

// EventStore provides operations for the append-only event log.
type EventStore interface {
	Store

	// Append adds an event. Events get a sequence ID and are never mutated.
	Append(ctx context.Context, event *core.Event) (*core.Event, error)

	// ByDateRange returns events where start <= Timestamp <= end,
	// ordered by timestamp descending. Kinds, if non-empty, filters by
	// event kind. A zero-width range returns an empty, non-error result.
	ByDateRange(ctx context.Context, start, end time.Time, kinds ...core.EventKind) ([]*core.Event, error)

	// ByFile returns all events for a file, newest first.
	ByFile(ctx context.Context, fileID core.ID) ([]*core.Event, error)

	// CountByKind returns per-kind event counts in a range.
	CountByKind(ctx context.Context, start, end time.Time) (map[core.EventKind]int, error)
}

// VectorHit is one similarity search match.
type VectorHit struct {
	FileId core.ID
	Score  float32
}

// VectorStore provides operations for persisted embeddings.
type VectorStore interface {
	Store

	// Put stores or replaces the entry for its file.
	Put(ctx context.Context, entry *core.VectorEntry) error

	// Get retrieves the entry for a file.
	// Returns ErrNotFound if no entry exists.
	Get(ctx context.Context, fileID core.ID) (*core.VectorEntry, error)

	// Delete removes the entry for a file. Missing entries are not an error.
	Delete(ctx context.Context, fileID core.ID) error

	// DeleteAll wipes every entry, keeping the store usable for a rebuild.
	DeleteAll(ctx context.Context) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// FindSimilar returns entries by cosine similarity to the query
	// vector, highest first, up to limit results at or above minScore.
	FindSimilar(ctx context.Context, vector []float32, minScore float32, limit int) ([]VectorHit, error)

	// Meta returns the stored generation metadata.
	// Returns ErrNotFound before the first Put.
	Meta(ctx context.Context) (*core.VectorMeta, error)

	// SetMeta replaces the generation metadata.
	SetMeta(ctx context.Context, meta *core.VectorMeta) error
}

// GraphStore provides operations for persisted graph nodes and edges.
type GraphStore interface {
	Store

	// UpsertNode inserts or replaces a node keyed by its content ID.
	UpsertNode(ctx context.Context, node *core.GraphNode) error

	// GetNode retrieves a node by ID.
	// Returns ErrNotFound if the node doesn't exist.
	GetNode(ctx context.Context, id core.ID) (*core.GraphNode, error)

	// UpsertEdge idempotently upserts an edge keyed by (type, source,
	// target). When the edge already exists its strength becomes the
	// maximum of old and new, LastSeen updates, and the original
	// insertion sequence is preserved.
	UpsertEdge(ctx context.Context, edge *core.GraphEdge) (*core.GraphEdge, error)

	// EdgesFrom returns all edges leaving a node in insertion order.
	EdgesFrom(ctx context.Context, source core.ID) ([]*core.GraphEdge, error)

	// EdgesTo returns all edges entering a node in insertion order.
	EdgesTo(ctx context.Context, target core.ID) ([]*core.GraphEdge, error)

	// DeleteAll wipes all nodes and edges ahead of a rebuild.
	DeleteAll(ctx context.Context) error

	// NodeCount returns the number of stored nodes.
	NodeCount(ctx context.Context) (int, error)

	// EdgeCount returns the number of stored edges.
	EdgeCount(ctx context.Context) (int, error)
}

// PatternStore provides operations for learned patterns.
type PatternStore interface {
	Store

	// Put inserts or replaces a pattern keyed by its content ID.
	Put(ctx context.Context, pattern *core.Pattern) error

	// Get retrieves a pattern by ID.
	// Returns ErrNotFound if the pattern doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.Pattern, error)

	// All returns every stored pattern.
	All(ctx context.Context) ([]*core.Pattern, error)

	// Prune deletes patterns with confidence below floor.
	// Returns the number of patterns removed.
	Prune(ctx context.Context, floor float32) (int, error)
}

// FolderStore provides operations for persisted smart folder specs.
type FolderStore interface {
	Store

	// Put inserts or replaces a spec keyed by its content ID.
	Put(ctx context.Context, spec *core.SmartFolderSpec) error

	// Get retrieves a spec by ID.
	// Returns ErrNotFound if the spec doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.SmartFolderSpec, error)

	// List returns all specs ordered by use count descending, then name.
	List(ctx context.Context) ([]*core.SmartFolderSpec, error)

	// Delete removes a spec.
	// Returns ErrNotFound if the spec doesn't exist.
	Delete(ctx context.Context, id core.ID) error

	// IncrementUse bumps the use counter and returns the updated spec.
	IncrementUse(ctx context.Context, id core.ID) (*core.SmartFolderSpec, error)
}
