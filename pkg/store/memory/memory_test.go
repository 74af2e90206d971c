package memory

import (
	"testing"

	"github.com/marmos91/funkostore/pkg/store"
	storetesting "github.com/marmos91/funkostore/pkg/store/testing"
)

// TestMemoryRecordStore runs the RecordStore conformance suite against the
// in-memory backend.
func TestMemoryRecordStore(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func(t *testing.T) store.RecordStore {
			return NewMemoryRecordStore()
		},
	}

	suite.Run(t)
}
