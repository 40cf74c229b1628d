package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

// GraphStore implements storage.GraphStore for BadgerDB.
// Edges are stored twice, keyed by source and by target, so traversal in
// either direction is a single prefix scan.
type GraphStore struct {
	backend *Backend
	edgeSeq *badger.Sequence
}

var _ storage.GraphStore = (*GraphStore)(nil)

// NewGraphStore creates a new GraphStore.
func NewGraphStore(backend *Backend) (storage.GraphStore, error) {
	edgeSeq, err := backend.GetSequence(graphEdgeSeq)
	if err != nil {
		return nil, err
	}

	return &GraphStore{
		backend: backend,
		edgeSeq: edgeSeq,
	}, nil
}

// Close releases the edge sequence.
func (s *GraphStore) Close() error {
	return s.edgeSeq.Release()
}

// UpsertNode inserts or replaces a node keyed by its content ID.
func (s *GraphStore) UpsertNode(ctx context.Context, node *core.GraphNode) error {
	if err := core.ValidateNodeKind(node.Kind); err != nil {
		return err
	}
	if node.Id == 0 {
		node.Id = core.NodeID(node.Kind, node.Label)
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeNodeKey(node.Id), storage.MarshalGraphNode(node)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetNode retrieves a node by ID.
func (s *GraphStore) GetNode(ctx context.Context, id core.ID) (*core.GraphNode, error) {
	var node *core.GraphNode
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeNodeKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			node, err = storage.UnmarshalGraphNode(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// UpsertEdge idempotently upserts an edge keyed by (type, source, target).
// Strength only ever grows: repeated observation keeps the maximum.
func (s *GraphStore) UpsertEdge(ctx context.Context, edge *core.GraphEdge) (*core.GraphEdge, error) {
	if err := core.ValidateEdge(edge); err != nil {
		return nil, err
	}
	if edge.LastSeen.IsZero() {
		edge.LastSeen = time.Now().UTC()
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		// Endpoints must exist before an edge can reference them.
		for _, id := range []core.ID{edge.Source, edge.Target} {
			if _, err := tx.Get(makeNodeKey(id)); err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			} else if err != nil {
				return err
			}
		}

		key := makeEdgeKey(edge.Source, edge.Type, edge.Target)
		item, err := tx.Get(key)
		switch {
		case err == badger.ErrKeyNotFound:
			seq, err := s.edgeSeq.Next()
			if err != nil {
				return err
			}
			if seq == 0 {
				seq, err = s.edgeSeq.Next()
				if err != nil {
					return err
				}
			}
			edge.Seq = seq
		case err != nil:
			return err
		default:
			var existing *core.GraphEdge
			err := item.Value(func(val []byte) error {
				var err error
				existing, err = storage.UnmarshalGraphEdge(val)
				return err
			})
			if err != nil {
				return err
			}
			edge.Seq = existing.Seq
			if existing.Strength > edge.Strength {
				edge.Strength = existing.Strength
			}
		}

		value := storage.MarshalGraphEdge(edge)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		if err := tx.Set(makeEdgeInKey(edge.Target, edge.Type, edge.Source), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return edge, nil
}

// EdgesFrom returns all edges leaving a node in insertion order.
func (s *GraphStore) EdgesFrom(ctx context.Context, source core.ID) ([]*core.GraphEdge, error) {
	return s.scanEdges(makePartialEdgeKey(source))
}

// EdgesTo returns all edges entering a node in insertion order.
func (s *GraphStore) EdgesTo(ctx context.Context, target core.ID) ([]*core.GraphEdge, error) {
	return s.scanEdges(makePartialEdgeInKey(target))
}

// DeleteAll wipes all nodes and edges ahead of a rebuild.
func (s *GraphStore) DeleteAll(ctx context.Context) error {
	for _, prefix := range []string{graphNodePrefix, graphEdgePrefix, graphEdgeInPrefix} {
		if err := s.backend.dropPrefix([]byte(prefix + ":")); err != nil {
			return err
		}
	}
	return nil
}

// NodeCount returns the number of stored nodes.
func (s *GraphStore) NodeCount(ctx context.Context) (int, error) {
	return s.backend.countPrefix([]byte(graphNodePrefix + ":"))
}

// EdgeCount returns the number of stored edges.
func (s *GraphStore) EdgeCount(ctx context.Context) (int, error) {
	return s.backend.countPrefix([]byte(graphEdgePrefix + ":"))
}

func (s *GraphStore) scanEdges(prefix []byte) ([]*core.GraphEdge, error) {
	var edges []*core.GraphEdge
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var edge *core.GraphEdge
			err := iter.Item().Value(func(val []byte) error {
				var err error
				edge, err = storage.UnmarshalGraphEdge(val)
				return err
			})
			if err != nil {
				return err
			}
			if edge != nil {
				edges = append(edges, edge)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Key order is (node, type, peer); traversal wants insertion order.
	slices.SortFunc(edges, func(a, b *core.GraphEdge) int {
		if a.Seq < b.Seq {
			return -1
		}
		if a.Seq > b.Seq {
			return 1
		}
		return 0
	})
	return edges, nil
}
