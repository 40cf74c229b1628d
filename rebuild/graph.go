package rebuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/shelf/graph"
)

// GraphRebuilder recomputes the relationship graph with the same
// supersede discipline as the vector rebuilder: the newest run wins.
type GraphRebuilder struct {
	rebuilder *graph.Rebuilder
	progress  io.Writer
	coord     Coordinator
}

// NewGraphRebuilder creates a rebuilder around the graph recompute.
// progress: where to write progress output (typically os.Stderr)
func NewGraphRebuilder(rebuilder *graph.Rebuilder, progress io.Writer) *GraphRebuilder {
	if progress == nil {
		progress = io.Discard
	}
	return &GraphRebuilder{rebuilder: rebuilder, progress: progress}
}

// Run executes the graph rebuild.
func (r *GraphRebuilder) Run(ctx context.Context) error {
	ctx, cancel, token := r.coord.Begin(ctx)
	defer cancel()

	start := time.Now()
	fmt.Fprintf(r.progress, "Rebuilding relationship graph\n")

	if err := r.rebuilder.Rebuild(ctx); err != nil {
		if errors.Is(err, context.Canceled) && r.coord.Superseded(token) {
			return ErrSuperseded
		}
		return err
	}

	fmt.Fprintf(r.progress, "Graph rebuilt in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}
