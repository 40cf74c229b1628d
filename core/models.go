package core

import (
	"encoding/binary"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// FileStatus tracks the lifecycle of a FileRecord.
// Records are never hard-deleted; removal flips the status.
type FileStatus int

const (
	// FileStatusLive marks a record that still exists on disk.
	FileStatusLive FileStatus = iota + 1
	// FileStatusRemoved marks a soft-removed record.
	FileStatusRemoved
)

// FileRecord is the canonical metadata entity for one tracked file.
// At most one live record exists per path. Records with colliding content
// hashes are marked duplicate-of the earliest-created record.
type FileRecord struct {
	Id             ID
	Hash           string // BLAKE2b content fingerprint, hex encoded
	Path           string
	Name           string
	Extension      string // lowercase, includes leading dot
	Size           int64
	CreatedAt      time.Time
	ModifiedAt     time.Time
	LastAccessedAt time.Time
	AccessCount    int
	Excerpt        string // leading slice of the file's text content
	Summary        string // generated extractive summary
	Tags           []string
	Project        string
	IsDuplicate    bool
	DuplicateOf    ID // canonical record when IsDuplicate is set
	Hidden         bool
	Status         FileStatus
	InsertedAt     time.Time
	UpdatedAt      time.Time
}

// IsScreenshot reports whether the record looks like a screen capture,
// based on the filename conventions of common capture tools.
func (f *FileRecord) IsScreenshot() bool {
	if f.Extension != ".png" && f.Extension != ".jpg" && f.Extension != ".jpeg" {
		return false
	}
	name := strings.ToLower(f.Name)
	return strings.HasPrefix(name, "screenshot") ||
		strings.HasPrefix(name, "screen shot") ||
		strings.HasPrefix(name, "cleanshot") ||
		strings.HasPrefix(name, "capture")
}

// SearchText returns the text fields the keyword index covers.
func (f *FileRecord) SearchText() string {
	parts := []string{f.Name, f.Excerpt, f.Summary, f.Project}
	parts = append(parts, f.Tags...)
	return strings.Join(parts, " ")
}

// NewFileRecord builds a record for a path with the filename fields derived.
func NewFileRecord(path string) *FileRecord {
	return &FileRecord{
		Path:      path,
		Name:      filepath.Base(path),
		Extension: strings.ToLower(filepath.Ext(path)),
		Status:    FileStatusLive,
	}
}

// EventKind identifies the type of a file lifecycle event.
type EventKind int

const (
	// EventDiscovered marks the first time a file was seen by the indexer.
	EventDiscovered EventKind = iota + 1
	// EventDownloaded marks a file that appeared in a download location.
	EventDownloaded
	// EventModified marks a content change detected on re-scan.
	EventModified
	// EventAccessed marks a recorded user access.
	EventAccessed
	// EventMoved marks a path change.
	EventMoved
	// EventTagged marks a tag or project assignment.
	EventTagged
)

// String returns the wire name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventDiscovered:
		return "discovered"
	case EventDownloaded:
		return "downloaded"
	case EventModified:
		return "modified"
	case EventAccessed:
		return "accessed"
	case EventMoved:
		return "moved"
	case EventTagged:
		return "tagged"
	default:
		return "unknown"
	}
}

// Event is an append-only timestamped fact about a file's lifecycle.
// Events are never mutated after insertion.
type Event struct {
	Id        ID
	FileId    ID
	Kind      EventKind
	Timestamp time.Time
	Detail    string
}

// VectorEntry is the embedding associated with one file's content.
// Entries are invalidated and regenerated when the content hash changes.
type VectorEntry struct {
	FileId      ID
	Vector      []float32
	Norm        float32
	Dim         int
	GeneratedAt time.Time
}

// VectorMeta describes the embedding generation the vector store holds.
// A backend or dimension change invalidates the whole store.
type VectorMeta struct {
	Backend    string
	Dim        int
	Generation uint64
}

// NodeKind identifies the type of a graph node.
type NodeKind int

const (
	// NodeFile is a node backed by a FileRecord.
	NodeFile NodeKind = iota + 1
	// NodeProject groups files under a project label.
	NodeProject
	// NodeTag groups files under a tag.
	NodeTag
)

// String returns the wire name of the node kind.
func (k NodeKind) String() string {
	switch k {
	case NodeFile:
		return "file"
	case NodeProject:
		return "project"
	case NodeTag:
		return "tag"
	default:
		return "unknown"
	}
}

// GraphNode is a typed vertex in the relationship graph.
// Node IDs are content-based: IDFromContent(kind + ":" + label).
type GraphNode struct {
	Id     ID
	Kind   NodeKind
	Label  string
	FileId ID // set for NodeFile only
}

// NodeID derives the deterministic graph node ID for a kind and label.
func NodeID(kind NodeKind, label string) ID {
	return IDFromContent(kind.String() + ":" + label)
}

// EdgeType identifies the relationship an edge models.
type EdgeType int

const (
	// EdgeBelongsTo links a file to its project.
	EdgeBelongsTo EdgeType = iota + 1
	// EdgeTaggedWith links a file to a tag.
	EdgeTaggedWith
	// EdgeRelatedTo links two files that share tags or content.
	EdgeRelatedTo
	// EdgeAccessedWith links two files accessed close together in time.
	EdgeAccessedWith
)

// String returns the wire name of the edge type.
func (t EdgeType) String() string {
	switch t {
	case EdgeBelongsTo:
		return "belongs_to"
	case EdgeTaggedWith:
		return "tagged_with"
	case EdgeRelatedTo:
		return "related_to"
	case EdgeAccessedWith:
		return "accessed_with"
	default:
		return "unknown"
	}
}

// GraphEdge is a typed, weighted relationship between two graph nodes.
// The (Type, Source, Target) triple is unique; repeated observation keeps
// the maximum strength. Seq preserves insertion order for deterministic
// traversal.
type GraphEdge struct {
	Type     EdgeType
	Source   ID
	Target   ID
	Strength float32 // in [0, 1]
	Seq      uint64
	LastSeen time.Time
}

// Pattern is a learned, confidence-scored behavioral signal.
// Confidence starts at 0.5 and follows an exponential moving average of
// observed signals.
type Pattern struct {
	Id         ID
	Type       string
	Key        string
	Value      string
	Confidence float32 // in [0, 1]
	Frequency  int
	LastUsed   time.Time
	InsertedAt time.Time
}

// PatternID derives the deterministic pattern ID for a type and key.
func PatternID(patternType, key string) ID {
	return IDFromContent(patternType + ":" + key)
}

// Filters is the closed set of smart folder predicates. All present
// filters combine conjunctively. The zero value matches nothing.
type Filters struct {
	Extensions   []string  `json:"extensions,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Project      string    `json:"project,omitempty"`
	DateFrom     time.Time `json:"date_from,omitzero"`
	DateTo       time.Time `json:"date_to,omitzero"`
	MinSize      int64     `json:"min_size,omitempty"`
	MaxSize      int64     `json:"max_size,omitempty"`
	Contains     string    `json:"contains,omitempty"`
	FolderPrefix string    `json:"folder_prefix,omitempty"`
	Screenshots  bool      `json:"screenshots,omitempty"`
	Duplicates   bool      `json:"duplicates,omitempty"`
}

// IsEmpty reports whether no filter is present.
func (f *Filters) IsEmpty() bool {
	return len(f.Extensions) == 0 && len(f.Tags) == 0 && f.Project == "" &&
		f.DateFrom.IsZero() && f.DateTo.IsZero() &&
		f.MinSize == 0 && f.MaxSize == 0 &&
		f.Contains == "" && f.FolderPrefix == "" &&
		!f.Screenshots && !f.Duplicates
}

// SmartFolderSpec is a named, persisted, re-executable filter query.
type SmartFolderSpec struct {
	Id          ID
	Name        string
	Description string
	Icon        string
	Filters     Filters
	UseCount    int
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// Suggestion is a proactive nudge derived from learned patterns and live
// store signals. Suggestions are recomputed on demand, never persisted.
type Suggestion struct {
	Type       string // e.g. "search_shortcut", "cleanup", "clutter"
	Title      string
	Detail     string
	Confidence float32
	FileIds    []ID
}

// SearchResult pairs a file record with a fused relevance score and the
// modalities that contributed to it.
type SearchResult struct {
	Record     *FileRecord
	Score      float32
	Modalities []string
}
