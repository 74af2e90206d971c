// Package memory implements the record store in process memory.
//
// Nothing survives a restart; this backend exists for tests and for
// deployments that explicitly do not want persistence.
package memory

import (
	"context"
	"sync"

	"github.com/marmos91/funkostore/pkg/funko"
	"github.com/marmos91/funkostore/pkg/store"
)

// MemoryRecordStore implements store.RecordStore over nested maps.
//
// Thread safety: all operations hold a single read-write mutex. Unlike the
// filesystem backend this makes individual operations atomic, but the
// handler-level check-then-write sequence can still interleave across
// requests.
type MemoryRecordStore struct {
	mu    sync.RWMutex
	users map[string]map[int]funko.Funko
}

// NewMemoryRecordStore creates an empty in-memory record store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{
		users: make(map[string]map[int]funko.Funko),
	}
}

// LoadAll returns every record of the user's collection. Map iteration makes
// the order unspecified, matching the contract.
func (s *MemoryRecordStore) LoadAll(ctx context.Context, user string) ([]funko.Funko, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	collection := s.users[user]
	records := make([]funko.Funko, 0, len(collection))
	for _, f := range collection {
		records = append(records, f)
	}

	return records, nil
}

// Save stores a copy of the record, overwriting any record with the same ID.
func (s *MemoryRecordStore) Save(ctx context.Context, user string, f *funko.Funko) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	collection, ok := s.users[user]
	if !ok {
		collection = make(map[int]funko.Funko)
		s.users[user] = collection
	}

	collection[f.ID] = *f
	return nil
}

// Delete removes the record with the given ID, failing when it is absent.
func (s *MemoryRecordStore) Delete(ctx context.Context, user string, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	collection, ok := s.users[user]
	if !ok {
		return store.NotFound("record not found or could not be deleted", user)
	}

	if _, ok := collection[id]; !ok {
		return store.NotFound("record not found or could not be deleted", user)
	}

	delete(collection, id)
	return nil
}
