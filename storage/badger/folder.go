package badger

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

// FolderStore implements storage.FolderStore for BadgerDB.
type FolderStore struct {
	backend *Backend
}

var _ storage.FolderStore = (*FolderStore)(nil)

// NewFolderStore creates a new FolderStore.
func NewFolderStore(backend *Backend) storage.FolderStore {
	return &FolderStore{backend: backend}
}

// Close is a no-op; the shared backend owns the database handle.
func (s *FolderStore) Close() error {
	return nil
}

// Put stores or replaces a smart folder spec keyed by its name.
func (s *FolderStore) Put(ctx context.Context, spec *core.SmartFolderSpec) error {
	if spec.Name == "" {
		return core.ErrEmptyFolderName
	}
	if spec.Id == 0 {
		spec.Id = core.IDFromContent(spec.Name)
	}
	now := time.Now().UTC()
	if spec.InsertedAt.IsZero() {
		spec.InsertedAt = now
	}
	spec.UpdatedAt = now

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeFolderKey(spec.Id), storage.MarshalSmartFolder(spec)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Get retrieves a smart folder spec by ID.
func (s *FolderStore) Get(ctx context.Context, id core.ID) (*core.SmartFolderSpec, error) {
	var spec *core.SmartFolderSpec
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFolderKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			spec, err = storage.UnmarshalSmartFolder(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return spec, nil
}

// List returns all specs ordered by use count, most used first. Ties
// break on name so the order is stable.
func (s *FolderStore) List(ctx context.Context) ([]*core.SmartFolderSpec, error) {
	var specs []*core.SmartFolderSpec
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(folderPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var spec *core.SmartFolderSpec
			err := iter.Item().Value(func(val []byte) error {
				var err error
				spec, err = storage.UnmarshalSmartFolder(val)
				return err
			})
			if err != nil {
				return err
			}
			if spec != nil {
				specs = append(specs, spec)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(specs, func(a, b *core.SmartFolderSpec) int {
		if a.UseCount != b.UseCount {
			return b.UseCount - a.UseCount
		}
		return strings.Compare(a.Name, b.Name)
	})
	return specs, nil
}

// Delete removes a smart folder spec.
func (s *FolderStore) Delete(ctx context.Context, id core.ID) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := tx.Get(makeFolderKey(id)); err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		} else if err != nil {
			return err
		}
		if err := tx.Delete(makeFolderKey(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// IncrementUse bumps the use counter and returns the updated spec.
func (s *FolderStore) IncrementUse(ctx context.Context, id core.ID) (*core.SmartFolderSpec, error) {
	var spec *core.SmartFolderSpec
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFolderKey(id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		err = item.Value(func(val []byte) error {
			var err error
			spec, err = storage.UnmarshalSmartFolder(val)
			return err
		})
		if err != nil {
			return err
		}
		spec.UseCount++
		spec.UpdatedAt = time.Now().UTC()
		if err := tx.Set(makeFolderKey(id), storage.MarshalSmartFolder(spec)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return spec, nil
}
