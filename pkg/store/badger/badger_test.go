package badger

import (
	"context"
	"testing"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/funkostore/pkg/funko"
	"github.com/marmos91/funkostore/pkg/store"
	storetesting "github.com/marmos91/funkostore/pkg/store/testing"
)

func newTestStore(t *testing.T) *BadgerRecordStore {
	t.Helper()
	s, err := NewBadgerRecordStore(context.Background(), BadgerRecordStoreConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

// TestBadgerRecordStore runs the RecordStore conformance suite against the
// BadgerDB backend.
func TestBadgerRecordStore(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func(t *testing.T) store.RecordStore {
			return newTestStore(t)
		},
	}

	suite.Run(t)
}

func TestBadgerRecordStore_LenientScan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	valid, err := funko.New(1, "Kratos", "", funko.TypePop, funko.GenreVideoGames,
		"God of War", 25, false, "", 18)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "alice", valid))

	// Plant a corrupt value directly under the user's prefix; the scan must
	// skip it without failing the listing.
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey("alice", 2), []byte("not json"))
	})
	require.NoError(t, err)

	records, err := s.LoadAll(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, *valid, records[0])
}

func TestBadgerRecordStore_PrefixDoesNotLeakAcrossUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// "ann" is a prefix of "anna"; key namespacing must still separate them.
	f1, err := funko.New(1, "Ann's", "", funko.TypePop, funko.GenreMusic, "", 0, false, "", 5)
	require.NoError(t, err)
	f2, err := funko.New(2, "Anna's", "", funko.TypePop, funko.GenreMusic, "", 0, false, "", 5)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "ann", f1))
	require.NoError(t, s.Save(ctx, "anna", f2))

	records, err := s.LoadAll(ctx, "ann")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ann's", records[0].Name)
}
