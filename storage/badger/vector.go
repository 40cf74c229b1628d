package badger

import (
	"context"
	"math"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

// VectorStore implements storage.VectorStore for BadgerDB.
type VectorStore struct {
	backend *Backend
}

var _ storage.VectorStore = (*VectorStore)(nil)

// NewVectorStore creates a new VectorStore.
func NewVectorStore(backend *Backend) storage.VectorStore {
	return &VectorStore{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (s *VectorStore) Close() error {
	return nil
}

// Put stores or replaces the entry for its file.
func (s *VectorStore) Put(ctx context.Context, entry *core.VectorEntry) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeVectorKey(entry.FileId), storage.MarshalVectorEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Get retrieves the entry for a file.
func (s *VectorStore) Get(ctx context.Context, fileID core.ID) (*core.VectorEntry, error) {
	var entry *core.VectorEntry
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorKey(fileID))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			entry, err = storage.UnmarshalVectorEntry(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes the entry for a file.
func (s *VectorStore) Delete(ctx context.Context, fileID core.ID) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeVectorKey(fileID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteAll wipes every entry ahead of a rebuild. Metadata stays so the
// rebuild can stamp a new generation over it.
func (s *VectorStore) DeleteAll(ctx context.Context) error {
	return s.backend.dropPrefix([]byte(vectorPrefix + ":"))
}

// Count returns the number of stored entries.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	return s.backend.countPrefix([]byte(vectorPrefix + ":"))
}

// FindSimilar returns entries by cosine similarity, highest first.
// A full scan is deliberate: the store is single-machine scale and a
// scan keeps the index structure trivial to keep consistent.
func (s *VectorStore) FindSimilar(ctx context.Context, vector []float32, minScore float32, limit int) ([]storage.VectorHit, error) {
	queryNorm := vectorNorm(vector)
	if queryNorm == 0 {
		return nil, nil
	}

	var hits []storage.VectorHit
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.VectorEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalVectorEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil || len(entry.Vector) == 0 || entry.Norm == 0 {
				continue
			}

			score := dotProduct(vector, entry.Vector) / (queryNorm * entry.Norm)
			if score >= minScore {
				hits = append(hits, storage.VectorHit{FileId: entry.FileId, Score: score})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].FileId < hits[j].FileId
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Meta returns the stored generation metadata.
func (s *VectorStore) Meta(ctx context.Context) (*core.VectorMeta, error) {
	var meta *core.VectorMeta
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(vectorMetaKey))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			meta, err = storage.UnmarshalVectorMeta(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// SetMeta replaces the generation metadata.
func (s *VectorStore) SetMeta(ctx context.Context, meta *core.VectorMeta) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(vectorMetaKey), storage.MarshalVectorMeta(meta)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// vectorNorm calculates the Euclidean norm of a vector.
func vectorNorm(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}
