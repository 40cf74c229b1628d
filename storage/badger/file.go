package badger

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

// FileStore implements storage.FileStore for BadgerDB.
// Mutations append lifecycle events to the event store after commit.
type FileStore struct {
	backend *Backend
	events  storage.EventStore
	idSeq   *badger.Sequence
}

var _ storage.FileStore = (*FileStore)(nil)

// NewFileStore creates a new FileStore. The event store receives one
// event per mutation; pass nil to disable event emission (tests only).
func NewFileStore(backend *Backend, events storage.EventStore) (storage.FileStore, error) {
	idSeq, err := backend.GetSequence(fileIDSeq)
	if err != nil {
		return nil, err
	}

	return &FileStore{
		backend: backend,
		events:  events,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (s *FileStore) Close() error {
	return s.idSeq.Release()
}

// Upsert inserts or updates the record for its path.
func (s *FileStore) Upsert(ctx context.Context, record *core.FileRecord) (*core.FileRecord, error) {
	if err := core.ValidateFileRecord(record); err != nil {
		return nil, err
	}

	var eventKind core.EventKind
	var eventDetail string

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := s.readByPath(tx, record.Path)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if existing == nil {
			nextID, err := s.nextID()
			if err != nil {
				return err
			}
			record.Id = core.ID(nextID)
			record.InsertedAt = now
			record.UpdatedAt = now
			if record.CreatedAt.IsZero() {
				record.CreatedAt = now
			}
			eventKind = core.EventDiscovered
			if strings.Contains(record.Path, "/Downloads/") {
				eventKind = core.EventDownloaded
			}
			eventDetail = record.Name
		} else {
			record.Id = existing.Id
			record.InsertedAt = existing.InsertedAt
			record.AccessCount = existing.AccessCount
			record.LastAccessedAt = existing.LastAccessedAt
			record.UpdatedAt = now
			if err := s.deleteTermIndex(tx, existing); err != nil {
				return err
			}
			if existing.Hash != record.Hash {
				if err := tx.Delete(makeHashKey(existing.Hash, existing.Id)); err != nil {
					return err
				}
				eventKind = core.EventModified
				eventDetail = "content changed"
			}
		}

		if err := s.writeRecord(tx, record); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	if eventKind != 0 {
		s.appendEvent(ctx, record.Id, eventKind, eventDetail)
	}
	return record, nil
}

// Update rewrites an existing record.
func (s *FileStore) Update(ctx context.Context, record *core.FileRecord) (*core.FileRecord, error) {
	if err := core.ValidateFileRecord(record); err != nil {
		return nil, err
	}

	var eventKind core.EventKind
	var eventDetail string

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		old, err := s.readRecord(tx, makeFileKey(record.Id))
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		record.InsertedAt = old.InsertedAt
		record.UpdatedAt = time.Now().UTC()

		if err := s.deleteTermIndex(tx, old); err != nil {
			return err
		}
		if old.Hash != record.Hash {
			if err := tx.Delete(makeHashKey(old.Hash, old.Id)); err != nil {
				return err
			}
		}
		if old.Path != record.Path {
			if err := tx.Delete(makePathKey(old.Path)); err != nil {
				return err
			}
			eventKind = core.EventMoved
			eventDetail = old.Path + " -> " + record.Path
		} else if !tagsEqual(old.Tags, record.Tags) || old.Project != record.Project {
			eventKind = core.EventTagged
			eventDetail = strings.Join(record.Tags, ",")
		}

		if err := s.writeRecord(tx, record); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	if eventKind != 0 {
		s.appendEvent(ctx, record.Id, eventKind, eventDetail)
	}
	return record, nil
}

// Get retrieves a single record by ID.
func (s *FileStore) Get(ctx context.Context, id core.ID) (*core.FileRecord, error) {
	var record *core.FileRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = s.readRecord(tx, makeFileKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

// GetMany retrieves multiple records, skipping missing IDs.
func (s *FileStore) GetMany(ctx context.Context, ids ...core.ID) ([]*core.FileRecord, error) {
	records := make([]*core.FileRecord, 0, len(ids))
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := s.readRecord(tx, makeFileKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				records = append(records, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetByPath retrieves the record for a path.
func (s *FileStore) GetByPath(ctx context.Context, path string) (*core.FileRecord, error) {
	var record *core.FileRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = s.readByPath(tx, path)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

// GetByHash retrieves all records sharing a content fingerprint.
func (s *FileStore) GetByHash(ctx context.Context, hash string) ([]*core.FileRecord, error) {
	var records []*core.FileRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialHashKey(hash)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}
			record, err := s.readRecord(tx, makeFileKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				records = append(records, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// List returns all live records.
func (s *FileStore) List(ctx context.Context) ([]*core.FileRecord, error) {
	var records []*core.FileRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(fileRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.FileRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalFileRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record != nil && record.Status == core.FileStatusLive {
				records = append(records, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Remove soft-removes a record by flipping its status.
func (s *FileStore) Remove(ctx context.Context, id core.ID) error {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		record, err := s.readRecord(tx, makeFileKey(id))
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		if record.Status == core.FileStatusRemoved {
			return nil
		}
		record.Status = core.FileStatusRemoved
		record.UpdatedAt = time.Now().UTC()

		// Removed files drop out of the keyword index immediately.
		if err := s.deleteTermIndex(tx, record); err != nil {
			return err
		}
		if err := tx.Set(makeFileKey(record.Id), storage.MarshalFileRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	s.appendEvent(ctx, id, core.EventMoved, "soft-removed")
	return nil
}

// Search runs a keyword query against the inverted index, ranked by
// summed term frequency.
func (s *FileStore) Search(ctx context.Context, query string, limit int) ([]storage.TermHit, error) {
	terms := core.Tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	scores := make(map[core.ID]float32)
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, term := range terms {
			opts := badger.DefaultIteratorOptions
			prefix := makePartialTermKey(term)
			opts.Prefix = prefix
			iter := tx.NewIterator(opts)

			for iter.Rewind(); iter.Valid(); iter.Next() {
				item := iter.Item()
				key := item.Key()
				id := idFromKeySuffix(key, len(prefix))
				var tf int
				err := item.Value(func(val []byte) error {
					var err error
					tf, err = unmarshalTermCount(val)
					return err
				})
				if err != nil {
					iter.Close()
					return err
				}
				scores[id] += float32(tf)
			}
			iter.Close()
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	hits := make([]storage.TermHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, storage.TermHit{FileId: id, Score: score})
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

// MarkDuplicate marks a record as duplicate of a canonical record.
// The canonical chain is resolved first so call order doesn't matter.
func (s *FileStore) MarkDuplicate(ctx context.Context, id, canonicalID core.ID) error {
	if id == canonicalID {
		return nil
	}

	var detail string
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		root, err := s.resolveCanonical(tx, canonicalID)
		if err != nil {
			return err
		}
		if root == id {
			// The "canonical" side already points at us; nothing to re-point.
			return nil
		}

		record, err := s.readRecord(tx, makeFileKey(id))
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		if record.IsDuplicate && record.DuplicateOf == root {
			return nil
		}

		record.IsDuplicate = true
		record.DuplicateOf = root
		record.UpdatedAt = time.Now().UTC()
		detail = "duplicate of " + strconv.FormatUint(uint64(root), 10)
		if err := tx.Set(makeFileKey(record.Id), storage.MarshalFileRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	if detail != "" {
		s.appendEvent(ctx, id, core.EventModified, detail)
	}
	return nil
}

// RecordAccess bumps the access counter and last-access timestamp.
func (s *FileStore) RecordAccess(ctx context.Context, id core.ID, at time.Time) (*core.FileRecord, error) {
	var record *core.FileRecord
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = s.readRecord(tx, makeFileKey(id))
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		record.AccessCount++
		record.LastAccessedAt = at.UTC()
		record.UpdatedAt = time.Now().UTC()
		if err := tx.Set(makeFileKey(record.Id), storage.MarshalFileRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	s.appendEvent(ctx, id, core.EventAccessed, "")
	return record, nil
}

// resolveCanonical follows the duplicate chain from id to its root.
// A cycle guard caps the walk; chains are short in practice.
func (s *FileStore) resolveCanonical(tx *badger.Txn, id core.ID) (core.ID, error) {
	seen := map[core.ID]bool{}
	current := id
	for !seen[current] {
		seen[current] = true
		record, err := s.readRecord(tx, makeFileKey(current))
		if err != nil {
			return 0, err
		}
		if record == nil {
			return 0, storage.ErrNotFound
		}
		if !record.IsDuplicate || record.DuplicateOf == 0 {
			return current, nil
		}
		current = record.DuplicateOf
	}
	return current, nil
}

// writeRecord stores the primary record plus its path, hash, and keyword
// index entries.
func (s *FileStore) writeRecord(tx *badger.Txn, record *core.FileRecord) error {
	if err := tx.Set(makeFileKey(record.Id), storage.MarshalFileRecord(record)); err != nil {
		return err
	}
	if err := tx.Set(makePathKey(record.Path), storage.MarshalID(record.Id)); err != nil {
		return err
	}
	if record.Hash != "" {
		if err := tx.Set(makeHashKey(record.Hash, record.Id), storage.MarshalID(record.Id)); err != nil {
			return err
		}
	}
	if record.Status == core.FileStatusLive && !record.Hidden {
		for term, count := range core.TermFrequencies(record.SearchText()) {
			if err := tx.Set(makeTermKey(term, record.Id), marshalTermCount(count)); err != nil {
				return err
			}
		}
	}
	return nil
}

// deleteTermIndex removes the keyword postings derived from a record.
func (s *FileStore) deleteTermIndex(tx *badger.Txn, record *core.FileRecord) error {
	for term := range core.TermFrequencies(record.SearchText()) {
		if err := tx.Delete(makeTermKey(term, record.Id)); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) readRecord(tx *badger.Txn, key []byte) (*core.FileRecord, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record *core.FileRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalFileRecord(val)
		return err
	})
	return record, err
}

func (s *FileStore) readByPath(tx *badger.Txn, path string) (*core.FileRecord, error) {
	item, err := tx.Get(makePathKey(path))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var id core.ID
	err = item.Value(func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.readRecord(tx, makeFileKey(id))
}

func (s *FileStore) nextID() (uint64, error) {
	nextID, err := s.idSeq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if nextID == 0 {
		nextID, err = s.idSeq.Next()
		if err != nil {
			return 0, err
		}
	}
	return nextID, nil
}

// appendEvent records a lifecycle event. Event emission is best effort;
// a failed append never fails the file mutation that caused it.
func (s *FileStore) appendEvent(ctx context.Context, fileID core.ID, kind core.EventKind, detail string) {
	if s.events == nil {
		return
	}
	_, err := s.events.Append(ctx, &core.Event{
		FileId:    fileID,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
		Detail:    detail,
	})
	if err != nil {
		s.backend.logger.Error("error appending file event", "fileID", fileID, "kind", kind.String(), "err", err)
	}
}

func tagsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
