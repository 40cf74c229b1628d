package rebuild

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/poiesic/shelf/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatorSupersedesOlderRun(t *testing.T) {
	var coord Coordinator

	ctx1, cancel1, token1 := coord.Begin(context.Background())
	defer cancel1()
	assert.NoError(t, ctx1.Err())
	assert.False(t, coord.Superseded(token1))

	ctx2, cancel2, token2 := coord.Begin(context.Background())
	defer cancel2()

	assert.ErrorIs(t, ctx1.Err(), context.Canceled, "older run must be canceled")
	assert.True(t, coord.Superseded(token1))
	assert.NoError(t, ctx2.Err())
	assert.False(t, coord.Superseded(token2))
}

func TestGraphRebuilderRun(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	a := seedFiles(t, stores, "/docs/a.txt")[0]
	b := seedFiles(t, stores, "/docs/b.txt")[0]
	a.Tags = []string{"shared"}
	b.Tags = []string{"shared"}
	_, err := stores.Files.Update(ctx, a)
	require.NoError(t, err)
	_, err = stores.Files.Update(ctx, b)
	require.NoError(t, err)

	var progress bytes.Buffer
	rebuilder := NewGraphRebuilder(
		graph.NewRebuilder(graph.New(stores.Graph), stores.Files, stores.Events),
		&progress)
	require.NoError(t, rebuilder.Run(ctx))

	nodes, err := stores.Graph.NodeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, nodes, "two file nodes and one tag node")

	edges, err := stores.Graph.EdgeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, edges, "two tagged_with edges and one related_to edge")

	assert.True(t, strings.Contains(progress.String(), "Graph rebuilt"))
}
