package ingestion

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/graph"
	"github.com/poiesic/shelf/storage"
	"github.com/poiesic/shelf/vector"
)

const (
	defaultQueueSize = 1024
	drainBatchSize   = 64
)

// Pipeline orchestrates the indexing of files on disk.
// Metadata writes happen synchronously; embedding and graph enrichment
// run on a worker pool so a slow backend never stalls indexing.
type Pipeline struct {
	files      storage.FileStore
	index      *vector.Index
	graph      *graph.Graph
	pool       *ants.Pool
	queue      chan string
	done       chan struct{}
	drained    sync.WaitGroup
	releaseOne sync.Once
	onMutation func()
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for async enrichment.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithQueueSize sets the background queue capacity.
// Default is 1024.
func WithQueueSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.queue = make(chan string, size)
		return nil
	}
}

// WithVectorIndex enables async embedding of indexed files.
func WithVectorIndex(index *vector.Index) Option {
	return func(p *Pipeline) error {
		p.index = index
		return nil
	}
}

// WithGraph enables async graph enrichment of indexed files.
func WithGraph(g *graph.Graph) Option {
	return func(p *Pipeline) error {
		p.graph = g
		return nil
	}
}

// WithMutationHook registers a callback invoked after every write that
// can change search results. Used to bump the query cache generation.
func WithMutationHook(hook func()) Option {
	return func(p *Pipeline) error {
		p.onMutation = hook
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline and starts its queue
// drainer. Release must be called when done.
func NewPipeline(files storage.FileStore, opts ...Option) (*Pipeline, error) {
	if files == nil {
		return nil, ErrFileStoreRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		files:  files,
		pool:   pool,
		queue:  make(chan string, defaultQueueSize),
		done:   make(chan struct{}),
		logger: slog.Default().With("component", "ingestion"),
	}
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.drained.Add(1)
	go p.drain()

	return p, nil
}

// IndexFile indexes a single file and returns its stored record.
// Unchanged files (same content hash, still live) are returned as-is.
func (p *Pipeline) IndexFile(ctx context.Context, path string) (*core.FileRecord, error) {
	record, _, err := p.indexOne(ctx, path)
	return record, err
}

// IndexFolder walks a directory tree and indexes every regular file.
// Hidden files and directories are skipped, as are files whose content
// hash is unchanged. Returns how many files were indexed and skipped.
func (p *Pipeline) IndexFolder(ctx context.Context, root string, recursive bool) (indexed, skipped int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if isHidden(d.Name()) || !recursive {
				return fs.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) || !d.Type().IsRegular() {
			skipped++
			return nil
		}

		_, changed, indexErr := p.indexOne(ctx, path)
		if indexErr != nil {
			p.logger.Warn("skipping file", "path", path, "err", indexErr)
			skipped++
			return nil
		}
		if changed {
			indexed++
		} else {
			skipped++
		}
		return nil
	})
	if err != nil {
		return indexed, skipped, err
	}

	p.logger.Info("folder indexed", "root", root, "indexed", indexed, "skipped", skipped)
	return indexed, skipped, nil
}

// Enqueue submits a path for background indexing without blocking.
// Returns ErrQueueFull when the queue is at capacity.
func (p *Pipeline) Enqueue(path string) error {
	select {
	case p.queue <- path:
		return nil
	default:
		return ErrQueueFull
	}
}

// Release stops the drainer and the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.releaseOne.Do(func() {
		close(p.done)
		p.drained.Wait()
		if p.pool != nil {
			p.pool.Release()
		}
	})
}

// indexOne stats, fingerprints, and upserts one file. The changed result
// is false when the stored record already covers this exact content.
func (p *Pipeline) indexOne(ctx context.Context, path string) (*core.FileRecord, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}
	if !info.Mode().IsRegular() {
		return nil, false, ErrNotRegularFile
	}

	hash, err := hashFile(path)
	if err != nil {
		return nil, false, err
	}

	existing, err := p.files.GetByPath(ctx, path)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}
	if existing != nil && existing.Hash == hash && existing.Status == core.FileStatusLive {
		return existing, false, nil
	}

	record := core.NewFileRecord(path)
	record.Hash = hash
	record.Size = info.Size()
	record.ModifiedAt = info.ModTime().UTC()
	if existing != nil {
		// User-assigned metadata survives content changes
		record.Tags = existing.Tags
		record.Project = existing.Project
		record.CreatedAt = existing.CreatedAt
	}
	if text, ok := extractText(path); ok {
		record.Excerpt = excerpt(text)
		record.Summary = summarize(text)
	}

	stored, err := p.files.Upsert(ctx, record)
	if err != nil {
		return nil, false, err
	}
	if err := p.markDuplicates(ctx, stored); err != nil {
		p.logger.Warn("duplicate detection failed", "path", path, "err", err)
	}

	p.pool.Submit(func() {
		p.enrich(context.Background(), stored)
	})

	p.mutated()
	return stored, true, nil
}

// markDuplicates flags records sharing the new record's content hash.
// The earliest-inserted record stays canonical.
func (p *Pipeline) markDuplicates(ctx context.Context, record *core.FileRecord) error {
	peers, err := p.files.GetByHash(ctx, record.Hash)
	if err != nil {
		return err
	}
	if len(peers) < 2 {
		return nil
	}

	canonical := peers[0]
	for _, peer := range peers[1:] {
		if peer.InsertedAt.Before(canonical.InsertedAt) ||
			(peer.InsertedAt.Equal(canonical.InsertedAt) && peer.Id < canonical.Id) {
			canonical = peer
		}
	}
	for _, peer := range peers {
		if peer.Id == canonical.Id || peer.IsDuplicate {
			continue
		}
		if err := p.files.MarkDuplicate(ctx, peer.Id, canonical.Id); err != nil {
			return err
		}
	}
	return nil
}

// enrich embeds the record and wires its graph relationships.
// Errors are logged; enrichment never fails the ingestion that queued it.
func (p *Pipeline) enrich(ctx context.Context, record *core.FileRecord) {
	if p.index != nil {
		if err := p.index.IndexText(ctx, record.Id, record.SearchText()); err != nil {
			p.logger.Warn("embedding failed", "path", record.Path, "err", err)
		} else {
			p.mutated()
		}
	}

	if p.graph != nil {
		if err := p.linkRecord(ctx, record); err != nil {
			p.logger.Warn("graph enrichment failed", "path", record.Path, "err", err)
		}
	}
}

// linkRecord upserts the record's file node and its project and tag edges.
func (p *Pipeline) linkRecord(ctx context.Context, record *core.FileRecord) error {
	fileNode, err := p.graph.EnsureNode(ctx, core.NodeFile, record.Path, record.Id)
	if err != nil {
		return err
	}

	if record.Project != "" {
		projectNode, err := p.graph.EnsureNode(ctx, core.NodeProject, record.Project, 0)
		if err != nil {
			return err
		}
		if err := p.graph.AddEdge(ctx, core.EdgeBelongsTo, fileNode, projectNode, 1.0); err != nil {
			return err
		}
	}
	for _, tag := range record.Tags {
		tagNode, err := p.graph.EnsureNode(ctx, core.NodeTag, tag, 0)
		if err != nil {
			return err
		}
		if err := p.graph.AddEdge(ctx, core.EdgeTaggedWith, fileNode, tagNode, 1.0); err != nil {
			return err
		}
	}
	return nil
}

// drain processes queued paths in bounded batches.
func (p *Pipeline) drain() {
	defer p.drained.Done()
	for {
		select {
		case <-p.done:
			return
		case path := <-p.queue:
			for _, target := range p.fillBatch([]string{path}) {
				if _, err := p.IndexFile(context.Background(), target); err != nil {
					p.logger.Warn("background index failed", "path", target, "err", err)
				}
			}
		}
	}
}

// fillBatch drains whatever is immediately available, up to the batch cap.
func (p *Pipeline) fillBatch(batch []string) []string {
	for len(batch) < drainBatchSize {
		select {
		case path := <-p.queue:
			batch = append(batch, path)
		default:
			return batch
		}
	}
	return batch
}

func (p *Pipeline) mutated() {
	if p.onMutation != nil {
		p.onMutation()
	}
}
