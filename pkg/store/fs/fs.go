// Package fs implements the record store on the local filesystem.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/marmos91/funkostore/internal/logger"
	"github.com/marmos91/funkostore/pkg/funko"
	"github.com/marmos91/funkostore/pkg/store"
)

// recordExtension marks directory entries that hold a record. Anything else
// in a user's directory is ignored by LoadAll.
const recordExtension = ".json"

// FSRecordStore implements store.RecordStore using a directory of JSON files.
//
// Layout: <basePath>/<user>/<record-id>.json, one pretty-printed record per
// file. A user's directory is created lazily on first access and its contents
// are the authoritative listing; there is no index or manifest file.
//
// Thread safety:
// The store itself holds no mutable state; all operations go straight to the
// filesystem. Two concurrent Save calls for the same record can race at the
// OS level, exactly as two concurrent writers to the same file would. Callers
// needing stronger guarantees must serialize above this layer.
type FSRecordStore struct {
	basePath string
}

// NewFSRecordStore creates a filesystem-backed record store rooted at
// basePath, creating the root directory if it does not exist.
func NewFSRecordStore(ctx context.Context, basePath string) (*FSRecordStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	return &FSRecordStore{basePath: basePath}, nil
}

// ensureUserDir idempotently creates the user's directory and returns its
// absolute path. Failure means the collection is unreachable, not that it is
// empty.
func (s *FSRecordStore) ensureUserDir(ctx context.Context, user string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.basePath, user)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("Failed to create directory for user %q: %v", user, err)
		return "", store.Unavailable("collection directory unavailable", user)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", store.Unavailable("collection directory unavailable", user)
	}

	return abs, nil
}

// recordPath returns the file path holding the record with the given ID.
func (s *FSRecordStore) recordPath(dir string, id int) string {
	return filepath.Join(dir, strconv.Itoa(id)+recordExtension)
}

// LoadAll reads every record file in the user's directory concurrently.
//
// Each entry with the record extension is read and decoded in its own
// goroutine; a file that fails to read or decode is skipped so one corrupt
// record never hides the rest of the collection. Results are appended in
// completion order, so the returned slice has no stable ordering.
func (s *FSRecordStore) LoadAll(ctx context.Context, user string) ([]funko.Funko, error) {
	dir, err := s.ensureUserDir(ctx, user)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Error("Failed to list directory for user %q: %v", user, err)
		return nil, store.Unavailable("collection directory unreadable", user)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		records = make([]funko.Funko, 0, len(entries))
	)

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != recordExtension {
			continue
		}

		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				logger.Warn("Skipping unreadable record file %q for user %q: %v", name, user, err)
				return
			}

			var f funko.Funko
			if err := json.Unmarshal(data, &f); err != nil {
				logger.Warn("Skipping corrupt record file %q for user %q: %v", name, user, err)
				return
			}

			mu.Lock()
			records = append(records, f)
			mu.Unlock()
		}(entry.Name())
	}

	wg.Wait()
	return records, nil
}

// Save writes the record to <user>/<id>.json, truncating any existing file
// with the same name. Create and update are one and the same here; the
// request handler is the layer that distinguishes them.
func (s *FSRecordStore) Save(ctx context.Context, user string, f *funko.Funko) error {
	dir, err := s.ensureUserDir(ctx, user)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return store.IOError("failed to encode record", user)
	}

	if err := os.WriteFile(s.recordPath(dir, f.ID), data, 0644); err != nil {
		logger.Error("Failed to write record %d for user %q: %v", f.ID, user, err)
		return store.IOError("failed to write record", user)
	}

	return nil
}

// Delete removes <user>/<id>.json. A missing file and an OS-level removal
// error surface identically: callers only learn the record is not there
// anymore to delete.
func (s *FSRecordStore) Delete(ctx context.Context, user string, id int) error {
	dir, err := s.ensureUserDir(ctx, user)
	if err != nil {
		return err
	}

	if err := os.Remove(s.recordPath(dir, id)); err != nil {
		logger.Debug("Failed to remove record %d for user %q: %v", id, user, err)
		return store.NotFound("record not found or could not be deleted", user)
	}

	return nil
}
