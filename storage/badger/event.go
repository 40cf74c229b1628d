package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/shelf/core"
	"github.com/poiesic/shelf/storage"
)

// EventStore implements storage.EventStore for BadgerDB.
// The log is append-only; nothing here mutates or deletes events.
type EventStore struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.EventStore = (*EventStore)(nil)

// NewEventStore creates a new EventStore.
func NewEventStore(backend *Backend) (storage.EventStore, error) {
	idSeq, err := backend.GetSequence(eventIDSeq)
	if err != nil {
		return nil, err
	}

	return &EventStore{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (s *EventStore) Close() error {
	return s.idSeq.Release()
}

// Append adds an event with a sequence ID and index entries.
func (s *EventStore) Append(ctx context.Context, event *core.Event) (*core.Event, error) {
	if err := core.ValidateEventKind(event.Kind); err != nil {
		return nil, err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := s.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = s.idSeq.Next()
			if err != nil {
				return err
			}
		}
		event.Id = core.ID(nextID)

		if err := tx.Set(makeEventKey(event.Id), storage.MarshalEvent(event)); err != nil {
			return err
		}
		if err := tx.Set(makeEventDateKey(event.Timestamp, event.Id), storage.MarshalID(event.Id)); err != nil {
			return err
		}
		if event.FileId != 0 {
			if err := tx.Set(makeEventFileKey(event.FileId, event.Id), storage.MarshalID(event.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// ByDateRange returns events in [start, end], newest first.
func (s *EventStore) ByDateRange(ctx context.Context, start, end time.Time, kinds ...core.EventKind) ([]*core.Event, error) {
	if !end.After(start) {
		// Zero-width or inverted ranges are valid queries with no matches.
		if !end.Equal(start) {
			return nil, storage.ErrInvalidQuery
		}
		return []*core.Event{}, nil
	}

	var events []*core.Event
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(eventDatePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makePartialEventDateKey(start)
		// The end bound is inclusive: one microsecond past end is the cutoff.
		endKey := makePartialEventDateKey(end.Add(time.Microsecond))

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if compareKeys(key, endKey) >= 0 {
				break
			}
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}
			event, err := s.readEvent(tx, id)
			if err != nil {
				return err
			}
			if event != nil && matchesKinds(event.Kind, kinds) {
				events = append(events, event)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// The date index yields ascending timestamps; callers want newest first.
	slices.Reverse(events)
	return events, nil
}

// ByFile returns all events for a file, newest first.
func (s *EventStore) ByFile(ctx context.Context, fileID core.ID) ([]*core.Event, error) {
	var events []*core.Event
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialEventFileKey(fileID)
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
			event, err := s.readEvent(tx, id)
			if err != nil {
				return err
			}
			if event != nil {
				events = append(events, event)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(events, func(a, b *core.Event) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return events, nil
}

// CountByKind returns per-kind event counts in [start, end].
func (s *EventStore) CountByKind(ctx context.Context, start, end time.Time) (map[core.EventKind]int, error) {
	events, err := s.ByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	counts := make(map[core.EventKind]int)
	for _, event := range events {
		counts[event.Kind]++
	}
	return counts, nil
}

func (s *EventStore) readEvent(tx *badger.Txn, id core.ID) (*core.Event, error) {
	item, err := tx.Get(makeEventKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var event *core.Event
	err = item.Value(func(val []byte) error {
		var err error
		event, err = storage.UnmarshalEvent(val)
		return err
	})
	return event, err
}

func matchesKinds(kind core.EventKind, kinds []core.EventKind) bool {
	if len(kinds) == 0 {
		return true
	}
	return slices.Contains(kinds, kind)
}

// compareKeys orders keys the way BadgerDB iteration does.
func compareKeys(a, b []byte) int {
	return slices.Compare(a, b)
}
