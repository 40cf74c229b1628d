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


package graph

import (
	"context"
	"log/slog"

	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

// Graph layers traversal over the persisted GraphStore. Traversal treats
// edges as undirected: a tag connects to its files the same way files
// connect to their tag.
type Graph struct {
	store  storage.GraphStore
	logger *slog.Logger
}

// New creates a Graph over the given store.
func New(store storage.GraphStore) *Graph {
	return &Graph{
		store:  store,
		logger: slog.Default().With("component", "graph"),
	}
}

// EnsureNode upserts a node for the kind and label and returns its ID.
func (g *Graph) EnsureNode(ctx context.Context, kind core.NodeKind, label string, fileID core.ID) (core.ID, error) {
	node := &core.GraphNode{Kind: kind, Label: label, FileId: fileID}
	if err := g.store.UpsertNode(ctx, node); err != nil {
		return 0, err
	}
	return node.Id, nil
}

// AddEdge records a relationship between two existing nodes.
// Repeated observation is idempotent: strength keeps the maximum.
func (g *Graph) AddEdge(ctx context.Context, edgeType core.EdgeType, source, target core.ID, strength float32) error {
	_, err := g.store.UpsertEdge(ctx, &core.GraphEdge{
		Type:     edgeType,
		Source:   source,
		Target:   target,
		Strength: strength,
	})
	return err
}

// Neighbor is one node reached during traversal, with the depth at which
// it was first found and the edge that reached it.
type Neighbor struct {
	Node  *core.GraphNode
	Depth int
	Via   *core.GraphEdge
}

// Neighbors returns the subgraph reachable from start within maxDepth hops,
// breadth-first. The start node itself is not included. Traversal order is
// deterministic: edges visit in insertion order at every level.
func (g *Graph) Neighbors(ctx context.Context, start core.ID, maxDepth int) ([]Neighbor, error) {
	if maxDepth <= 0 {
		return nil, nil
	}
	if _, err := g.store.GetNode(ctx, start); err != nil {
		return nil, err
	}

	visited := map[core.ID]bool{start: true}
	frontier := []core.ID{start}
	var result []Neighbor

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []core.ID
		for _, id := range frontier {
			edges, err := g.adjacent(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, edge := range edges {
				peer := edge.Target
				if peer == id {
					peer = edge.Source
				}
				if visited[peer] {
					continue
				}
				visited[peer] = true

				node, err := g.store.GetNode(ctx, peer)
				if err != nil {
					return nil, err
				}
				result = append(result, Neighbor{Node: node, Depth: depth, Via: edge})
				next = append(next, peer)
			}
		}
		frontier = next
	}
	return result, nil
}

// FindPath returns the shortest path between two nodes by edge count, as a
// node ID sequence including both endpoints. Among equally short paths the
// first found in insertion-order traversal wins. Returns nil when no path
// exists within maxDepth.
func (g *Graph) FindPath(ctx context.Context, from, to core.ID, maxDepth int) ([]core.ID, error) {
	if _, err := g.store.GetNode(ctx, from); err != nil {
		return nil, err
	}
	if _, err := g.store.GetNode(ctx, to); err != nil {
		return nil, err
	}
	if from == to {
		return []core.ID{from}, nil
	}

	parent := map[core.ID]core.ID{from: from}
	frontier := []core.ID{from}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []core.ID
		for _, id := range frontier {
			edges, err := g.adjacent(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, edge := range edges {
				peer := edge.Target
				if peer == id {
					peer = edge.Source
				}
				if _, seen := parent[peer]; seen {
					continue
				}
				parent[peer] = id
				if peer == to {
					return buildPath(parent, from, to), nil
				}
				next = append(next, peer)
			}
		}
		frontier = next
	}
	return nil, nil
}

// adjacent returns all edges touching a node, outgoing then incoming, each
// in insertion order.
func (g *Graph) adjacent(ctx context.Context, id core.ID) ([]*core.GraphEdge, error) {
	out, err := g.store.EdgesFrom(ctx, id)
	if err != nil {
		return nil, err
	}
	in, err := g.store.EdgesTo(ctx, id)
	if err != nil {
		return nil, err
	}
	return append(out, in...), nil
}

func buildPath(parent map[core.ID]core.ID, from, to core.ID) []core.ID {
	var reversed []core.ID
	for id := to; id != from; id = parent[id] {
		reversed = append(reversed, id)
	}
	reversed = append(reversed, from)

	path := make([]core.ID, len(reversed))
	for i, id := range reversed {
		path[len(reversed)-1-i] = id
	}
	return path
}
