// Package badger implements the record store on BadgerDB.
//
// Collections share one database; records are namespaced by key prefix so a
// prefix scan enumerates exactly one user's records. Suitable when the
// deployment wants crash-safe persistence without a directory-per-user
// layout.
package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/funkostore/internal/logger"
	"github.com/marmos91/funkostore/pkg/funko"
	"github.com/marmos91/funkostore/pkg/store"
)

// BadgerRecordStore implements store.RecordStore over a BadgerDB database.
//
// Key schema: user/<user>/funko/<id> → JSON-encoded record. The decimal ID
// keeps keys human-readable for debugging; LoadAll never parses them back,
// the record payload carries its own ID.
//
// Thread safety: BadgerDB transactions provide per-operation isolation.
// As with every backend, the handler's existence check and the subsequent
// Save remain separate transactions.
type BadgerRecordStore struct {
	db *badger.DB
}

// BadgerRecordStoreConfig holds the options for opening the database.
type BadgerRecordStoreConfig struct {
	// Path is the directory holding the BadgerDB files.
	Path string

	// InMemory runs the database without touching disk. Used by tests.
	InMemory bool
}

// NewBadgerRecordStore opens (creating if needed) the database at the
// configured path. The caller owns the returned store and must Close it.
func NewBadgerRecordStore(ctx context.Context, cfg BadgerRecordStoreConfig) (*BadgerRecordStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerRecordStore{db: db}, nil
}

// Close releases the database handle.
func (s *BadgerRecordStore) Close() error {
	return s.db.Close()
}

func userPrefix(user string) []byte {
	return []byte("user/" + user + "/funko/")
}

func recordKey(user string, id int) []byte {
	return append(userPrefix(user), []byte(strconv.Itoa(id))...)
}

// LoadAll prefix-scans the user's namespace. An entry whose payload fails to
// decode is skipped, preserving the lenient-read contract.
func (s *BadgerRecordStore) LoadAll(ctx context.Context, user string) ([]funko.Funko, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]funko.Funko, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = userPrefix(user)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var f funko.Funko
				if err := json.Unmarshal(val, &f); err != nil {
					logger.Warn("Skipping corrupt record %q for user %q: %v",
						string(it.Item().Key()), user, err)
					return nil
				}
				records = append(records, f)
				return nil
			})
			if err != nil {
				logger.Warn("Skipping unreadable record %q for user %q: %v",
					string(it.Item().Key()), user, err)
			}
		}

		return nil
	})
	if err != nil {
		logger.Error("Failed to scan collection for user %q: %v", user, err)
		return nil, store.Unavailable("collection unreadable", user)
	}

	return records, nil
}

// Save writes the encoded record under its key, replacing any previous value.
func (s *BadgerRecordStore) Save(ctx context.Context, user string, f *funko.Funko) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(f)
	if err != nil {
		return store.IOError("failed to encode record", user)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(user, f.ID), data)
	})
	if err != nil {
		logger.Error("Failed to write record %d for user %q: %v", f.ID, user, err)
		return store.IOError("failed to write record", user)
	}

	return nil
}

// Delete removes the record's key. The read-before-delete makes absence fail
// the same way the filesystem backend fails on a missing file.
func (s *BadgerRecordStore) Delete(ctx context.Context, user string, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		key := recordKey(user, id)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		logger.Debug("Failed to remove record %d for user %q: %v", id, user, err)
		return store.NotFound("record not found or could not be deleted", user)
	}

	return nil
}
