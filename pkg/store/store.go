// Package store defines the record store contract shared by every backend.
//
// A RecordStore maps a (user, record-id) key space onto backend-specific
// storage. The filesystem backend in pkg/store/fs is the reference layout
// (one JSON file per record under the user's directory); memory, badger and
// s3 provide the same contract over other media.
package store

import (
	"context"

	"github.com/marmos91/funkostore/pkg/funko"
)

// RecordStore is the persistence contract used by the request handler.
//
// Implementations do not enforce ID uniqueness: Save is a full-replacement
// write keyed by the record's ID and serves both create and update. The
// handler performs the existence check that distinguishes the two.
//
// There is no cache layer anywhere: every call goes back to the backing
// medium, which is the single source of truth across requests.
type RecordStore interface {
	// LoadAll returns every decodable record of the user's collection.
	//
	// Reads are lenient: a record that fails to decode is skipped without
	// failing the listing. An empty collection yields an empty slice and a
	// nil error. LoadAll only fails when the collection itself cannot be
	// reached or enumerated.
	//
	// Result order is unspecified. Backends read entries concurrently and
	// append in completion order; callers must not depend on ordering.
	LoadAll(ctx context.Context, user string) ([]funko.Funko, error)

	// Save writes the record to the user's collection, overwriting any
	// existing record with the same ID.
	Save(ctx context.Context, user string, f *funko.Funko) error

	// Delete removes the record with the given ID. Absence of the record
	// and a backend-level removal failure both surface as an error; callers
	// cannot distinguish the two (see StoreError codes).
	Delete(ctx context.Context, user string, id int) error
}

// Closer is implemented by backends that hold external resources
// (badger database handles, S3 clients with background workers).
type Closer interface {
	Close() error
}
