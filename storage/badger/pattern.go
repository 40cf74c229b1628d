package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

// PatternStore implements storage.PatternStore for BadgerDB.
type PatternStore struct {
	backend *Backend
}

var _ storage.PatternStore = (*PatternStore)(nil)

// NewPatternStore creates a new PatternStore.
func NewPatternStore(backend *Backend) storage.PatternStore {
	return &PatternStore{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (s *PatternStore) Close() error {
	return nil
}

// Put stores or replaces a pattern keyed by its content ID.
func (s *PatternStore) Put(ctx context.Context, pattern *core.Pattern) error {
	if err := core.ValidatePattern(pattern); err != nil {
		return err
	}
	if pattern.Id == 0 {
		pattern.Id = core.PatternID(pattern.Type, pattern.Key)
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makePatternKey(pattern.Id), storage.MarshalPattern(pattern)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Get retrieves a pattern by ID.
func (s *PatternStore) Get(ctx context.Context, id core.ID) (*core.Pattern, error) {
	var pattern *core.Pattern
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makePatternKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			pattern, err = storage.UnmarshalPattern(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return pattern, nil
}

// All returns every pattern ordered by confidence, then frequency,
// highest first.
func (s *PatternStore) All(ctx context.Context) ([]*core.Pattern, error) {
	var patterns []*core.Pattern
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(patternPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var pattern *core.Pattern
			err := iter.Item().Value(func(val []byte) error {
				var err error
				pattern, err = storage.UnmarshalPattern(val)
				return err
			})
			if err != nil {
				return err
			}
			if pattern != nil {
				patterns = append(patterns, pattern)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(patterns, func(a, b *core.Pattern) int {
		if a.Confidence != b.Confidence {
			if a.Confidence > b.Confidence {
				return -1
			}
			return 1
		}
		return b.Frequency - a.Frequency
	})
	return patterns, nil
}

// Prune deletes patterns whose confidence has dropped below floor and
// returns how many were removed.
func (s *PatternStore) Prune(ctx context.Context, floor float32) (int, error) {
	patterns, err := s.All(ctx)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, pattern := range patterns {
		if pattern.Confidence >= floor {
			continue
		}
		err := s.backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Delete(makePatternKey(pattern.Id)); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}
