package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

func addNode(t *testing.T, store storage.GraphStore, kind core.NodeKind, label string) core.ID {
	t.Helper()
	node := &core.GraphNode{Kind: kind, Label: label}
	if err := store.UpsertNode(context.Background(), node); err != nil {
		t.Fatalf("Failed to upsert node: %v", err)
	}
	return node.Id
}

func TestGraphNodeBasics(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()

	id := addNode(t, stores.Graph, core.NodeTag, "finance")
	if id == 0 {
		t.Fatal("Expected non-zero node ID")
	}
	if id != core.NodeID(core.NodeTag, "finance") {
		t.Fatal("Expected content-derived node ID")
	}

	node, err := stores.Graph.GetNode(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get node: %v", err)
	}
	if node.Label != "finance" {
		t.Fatalf("Expected 'finance', got '%s'", node.Label)
	}

	// Same kind and label always maps to the same node
	again := addNode(t, stores.Graph, core.NodeTag, "finance")
	if again != id {
		t.Fatalf("Expected same node ID, got %d and %d", id, again)
	}

	count, err := stores.Graph.NodeCount(ctx)
	if err != nil {
		t.Fatalf("Failed to count nodes: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 node, got %d", count)
	}
}

func TestGraphEdgeUpsertKeepsMaxStrength(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()

	src := addNode(t, stores.Graph, core.NodeFile, "a.txt")
	dst := addNode(t, stores.Graph, core.NodeTag, "work")

	first, err := stores.Graph.UpsertEdge(ctx, &core.GraphEdge{
		Type: core.EdgeTaggedWith, Source: src, Target: dst, Strength: 0.8,
	})
	if err != nil {
		t.Fatalf("Failed to upsert edge: %v", err)
	}
	if first.Seq == 0 {
		t.Fatal("Expected non-zero edge sequence")
	}

	// A weaker observation does not lower the strength
	second, err := stores.Graph.UpsertEdge(ctx, &core.GraphEdge{
		Type: core.EdgeTaggedWith, Source: src, Target: dst, Strength: 0.3,
	})
	if err != nil {
		t.Fatalf("Failed to upsert edge: %v", err)
	}
	if second.Strength != 0.8 {
		t.Fatalf("Expected strength 0.8, got %f", second.Strength)
	}
	if second.Seq != first.Seq {
		t.Fatalf("Expected original sequence %d, got %d", first.Seq, second.Seq)
	}

	// A stronger observation raises it
	third, err := stores.Graph.UpsertEdge(ctx, &core.GraphEdge{
		Type: core.EdgeTaggedWith, Source: src, Target: dst, Strength: 0.95,
	})
	if err != nil {
		t.Fatalf("Failed to upsert edge: %v", err)
	}
	if third.Strength != 0.95 {
		t.Fatalf("Expected strength 0.95, got %f", third.Strength)
	}

	count, err := stores.Graph.EdgeCount(ctx)
	if err != nil {
		t.Fatalf("Failed to count edges: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 edge after repeated upserts, got %d", count)
	}
}

func TestGraphEdgeRequiresEndpoints(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()

	src := addNode(t, stores.Graph, core.NodeFile, "a.txt")

	_, err = stores.Graph.UpsertEdge(ctx, &core.GraphEdge{
		Type: core.EdgeTaggedWith, Source: src, Target: 12345, Strength: 0.5,
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for missing endpoint, got %v", err)
	}

	_, err = stores.Graph.UpsertEdge(ctx, &core.GraphEdge{
		Type: core.EdgeTaggedWith, Source: src, Target: src, Strength: 0.5,
	})
	if err == nil {
		t.Fatal("Expected self-loop to be rejected")
	}
}

func TestGraphEdgesInInsertionOrder(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()

	src := addNode(t, stores.Graph, core.NodeProject, "acme")
	targets := []core.ID{
		addNode(t, stores.Graph, core.NodeFile, "z.txt"),
		addNode(t, stores.Graph, core.NodeFile, "m.txt"),
		addNode(t, stores.Graph, core.NodeFile, "a.txt"),
	}
	for _, target := range targets {
		_, err := stores.Graph.UpsertEdge(ctx, &core.GraphEdge{
			Type: core.EdgeRelatedTo, Source: src, Target: target, Strength: 0.5,
		})
		if err != nil {
			t.Fatalf("Failed to upsert edge: %v", err)
		}
	}

	edges, err := stores.Graph.EdgesFrom(ctx, src)
	if err != nil {
		t.Fatalf("Failed to list edges: %v", err)
	}
	if len(edges) != 3 {
		t.Fatalf("Expected 3 edges, got %d", len(edges))
	}
	// Insertion order, not key order
	for i, edge := range edges {
		if edge.Target != targets[i] {
			t.Fatalf("Expected target %d at position %d, got %d", targets[i], i, edge.Target)
		}
	}

	// The reverse index finds the same edge from the target side
	incoming, err := stores.Graph.EdgesTo(ctx, targets[0])
	if err != nil {
		t.Fatalf("Failed to list incoming edges: %v", err)
	}
	if len(incoming) != 1 || incoming[0].Source != src {
		t.Fatalf("Expected 1 incoming edge from %d, got %v", src, incoming)
	}
}

func TestGraphDeleteAll(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()

	src := addNode(t, stores.Graph, core.NodeFile, "a.txt")
	dst := addNode(t, stores.Graph, core.NodeTag, "work")
	if _, err := stores.Graph.UpsertEdge(ctx, &core.GraphEdge{
		Type: core.EdgeTaggedWith, Source: src, Target: dst, Strength: 0.5,
	}); err != nil {
		t.Fatalf("Failed to upsert edge: %v", err)
	}

	if err := stores.Graph.DeleteAll(ctx); err != nil {
		t.Fatalf("Failed to delete all: %v", err)
	}

	nodes, err := stores.Graph.NodeCount(ctx)
	if err != nil {
		t.Fatalf("Failed to count nodes: %v", err)
	}
	edges, err := stores.Graph.EdgeCount(ctx)
	if err != nil {
		t.Fatalf("Failed to count edges: %v", err)
	}
	if nodes != 0 || edges != 0 {
		t.Fatalf("Expected empty graph, got %d nodes and %d edges", nodes, edges)
	}
}
