package graph

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

const (
	// coAccessWindow is how close two accesses must be to count as
	// "worked with together".
	coAccessWindow = 30 * time.Minute

	// coAccessIncrement is the strength contributed per observed
	// co-access, accumulated up to 1.0.
	coAccessIncrement = 0.1

	// relatedTagFanoutLimit skips related_to expansion for tags shared by
	// more than this many files. Such tags say little about any pair.
	relatedTagFanoutLimit = 50
)

// Rebuilder recomputes the whole graph from the metadata and event stores.
// Only one rebuild runs at a time: starting a new one cancels the in-flight
// rebuild, and the newest always wins.
type Rebuilder struct {
	graph  *Graph
	files  storage.FileStore
	events storage.EventStore

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewRebuilder creates a Rebuilder for the graph.
func NewRebuilder(graph *Graph, files storage.FileStore, events storage.EventStore) *Rebuilder {
	return &Rebuilder{graph: graph, files: files, events: events}
}

// Rebuild wipes and recomputes all nodes and edges from live file records
// and access history. A concurrent call cancels this one.
func (r *Rebuilder) Rebuild(ctx context.Context) (err error) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()
	defer cancel()

	start := time.Now()
	r.graph.logger.Info("rebuilding graph")

	records, err := r.files.List(ctx)
	if err != nil {
		return err
	}

	if err := r.graph.store.DeleteAll(ctx); err != nil {
		return err
	}

	fileNodes := make(map[core.ID]core.ID, len(records))
	tagFiles := make(map[string][]core.ID)

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		fileNode, err := r.graph.EnsureNode(ctx, core.NodeFile, record.Path, record.Id)
		if err != nil {
			return err
		}
		fileNodes[record.Id] = fileNode

		if record.Project != "" {
			projectNode, err := r.graph.EnsureNode(ctx, core.NodeProject, record.Project, 0)
			if err != nil {
				return err
			}
			if err := r.graph.AddEdge(ctx, core.EdgeBelongsTo, fileNode, projectNode, 1.0); err != nil {
				return err
			}
		}

		for _, tag := range record.Tags {
			tagNode, err := r.graph.EnsureNode(ctx, core.NodeTag, tag, 0)
			if err != nil {
				return err
			}
			if err := r.graph.AddEdge(ctx, core.EdgeTaggedWith, fileNode, tagNode, 1.0); err != nil {
				return err
			}
			tagFiles[tag] = append(tagFiles[tag], fileNode)
		}
	}

	if err := r.linkRelated(ctx, tagFiles); err != nil {
		return err
	}
	if err := r.linkCoAccessed(ctx, fileNodes); err != nil {
		return err
	}

	nodes, _ := r.graph.store.NodeCount(ctx)
	edges, _ := r.graph.store.EdgeCount(ctx)
	r.graph.logger.Info("graph rebuilt",
		"nodes", nodes, "edges", edges, "duration", time.Since(start))
	return nil
}

// linkRelated connects file pairs that share a tag. The strength grows with
// the number of shared tags since UpsertEdge keeps the maximum.
func (r *Rebuilder) linkRelated(ctx context.Context, tagFiles map[string][]core.ID) error {
	shared := make(map[[2]core.ID]int)
	for _, files := range tagFiles {
		if len(files) < 2 || len(files) > relatedTagFanoutLimit {
			continue
		}
		for i := 0; i < len(files); i++ {
			for j := i + 1; j < len(files); j++ {
				a, b := files[i], files[j]
				if b < a {
					a, b = b, a
				}
				shared[[2]core.ID{a, b}]++
			}
		}
	}

	// Deterministic upsert order keeps edge sequences stable across runs
	pairs := make([][2]core.ID, 0, len(shared))
	for pair := range shared {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		strength := float32(0.3) * float32(shared[pair])
		if strength > 1.0 {
			strength = 1.0
		}
		if err := r.graph.AddEdge(ctx, core.EdgeRelatedTo, pair[0], pair[1], strength); err != nil {
			return err
		}
	}
	return nil
}

// linkCoAccessed connects files accessed within coAccessWindow of each
// other, with strength accumulating per observation.
func (r *Rebuilder) linkCoAccessed(ctx context.Context, fileNodes map[core.ID]core.ID) error {
	end := time.Now().UTC()
	accesses, err := r.events.ByDateRange(ctx, end.AddDate(0, -3, 0), end, core.EventAccessed)
	if err != nil {
		return err
	}
	// Newest first from the store; chronological is easier to pair up
	sort.Slice(accesses, func(i, j int) bool {
		return accesses[i].Timestamp.Before(accesses[j].Timestamp)
	})

	counts := make(map[[2]core.ID]int)
	for i := 0; i < len(accesses); i++ {
		for j := i + 1; j < len(accesses); j++ {
			if accesses[j].Timestamp.Sub(accesses[i].Timestamp) > coAccessWindow {
				break
			}
			a, b := accesses[i].FileId, accesses[j].FileId
			if a == b {
				continue
			}
			if b < a {
				a, b = b, a
			}
			counts[[2]core.ID{a, b}]++
		}
	}

	pairs := make([][2]core.ID, 0, len(counts))
	for pair := range counts {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		srcNode, ok1 := fileNodes[pair[0]]
		dstNode, ok2 := fileNodes[pair[1]]
		if !ok1 || !ok2 {
			continue
		}
		strength := float32(coAccessIncrement) * float32(counts[pair])
		if strength > 1.0 {
			strength = 1.0
		}
		if err := r.graph.AddEdge(ctx, core.EdgeAccessedWith, srcNode, dstNode, strength); err != nil {
			return err
		}
	}
	return nil
}
