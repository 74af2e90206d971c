// Package testing provides a conformance test suite for RecordStore
// implementations. It exercises the interface contract, not implementation
// details, so every backend (fs, memory, badger, s3) runs the same checks.
package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/funkostore/pkg/funko"
	"github.com/marmos91/funkostore/pkg/store"
)

// StoreTestSuite runs the RecordStore contract tests against one backend.
//
// Usage:
//
//	func TestFSRecordStore(t *testing.T) {
//	    suite := &storetesting.StoreTestSuite{
//	        NewStore: func(t *testing.T) store.RecordStore { ... },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore creates a fresh store for each test, registering any cleanup
	// on t. Fresh instances keep the tests isolated.
	NewStore func(t *testing.T) store.RecordStore
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("EmptyCollection", suite.TestEmptyCollection)
	t.Run("RoundTrip", suite.TestRoundTrip)
	t.Run("SaveOverwrites", suite.TestSaveOverwrites)
	t.Run("DeleteThenLoad", suite.TestDeleteThenLoad)
	t.Run("DeleteAbsent", suite.TestDeleteAbsent)
	t.Run("UsersAreIsolated", suite.TestUsersAreIsolated)
}

func sampleFunko(t *testing.T, id int, name string, value float64) *funko.Funko {
	t.Helper()
	f, err := funko.New(id, name, "a figure", funko.TypePop, funko.GenreVideoGames,
		"Test Franchise", id*10, false, "", value)
	require.NoError(t, err)
	return f
}

// TestEmptyCollection verifies a never-written user lists as empty, not as
// an error (the collection is lazily created on first access).
func (suite *StoreTestSuite) TestEmptyCollection(t *testing.T) {
	s := suite.NewStore(t)

	records, err := s.LoadAll(context.Background(), "fresh-user")
	require.NoError(t, err)
	assert.Empty(t, records)

	// A second listing after the lazy creation behaves identically.
	records, err = s.LoadAll(context.Background(), "fresh-user")
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestRoundTrip verifies Save followed by LoadAll yields an equal record.
func (suite *StoreTestSuite) TestRoundTrip(t *testing.T) {
	s := suite.NewStore(t)
	ctx := context.Background()

	f := sampleFunko(t, 1, "Link", 40)
	require.NoError(t, s.Save(ctx, "alice", f))

	records, err := s.LoadAll(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, *f, records[0])
}

// TestSaveOverwrites verifies saving the same ID replaces the record in
// full rather than merging.
func (suite *StoreTestSuite) TestSaveOverwrites(t *testing.T) {
	s := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "alice", sampleFunko(t, 1, "Old Name", 10)))
	updated := sampleFunko(t, 1, "New Name", 99)
	require.NoError(t, s.Save(ctx, "alice", updated))

	records, err := s.LoadAll(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, *updated, records[0])
}

// TestDeleteThenLoad verifies a deleted record no longer appears.
func (suite *StoreTestSuite) TestDeleteThenLoad(t *testing.T) {
	s := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "alice", sampleFunko(t, 1, "Keep", 10)))
	require.NoError(t, s.Save(ctx, "alice", sampleFunko(t, 2, "Drop", 20)))

	require.NoError(t, s.Delete(ctx, "alice", 2))

	records, err := s.LoadAll(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].ID)
}

// TestDeleteAbsent verifies deleting a record that never existed fails with
// the not-found store error.
func (suite *StoreTestSuite) TestDeleteAbsent(t *testing.T) {
	s := suite.NewStore(t)

	err := s.Delete(context.Background(), "alice", 404)
	require.Error(t, err)

	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, store.ErrNotFound, storeErr.Code)
}

// TestUsersAreIsolated verifies two users with colliding IDs never see each
// other's records.
func (suite *StoreTestSuite) TestUsersAreIsolated(t *testing.T) {
	s := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "alice", sampleFunko(t, 1, "Alice's", 10)))
	require.NoError(t, s.Save(ctx, "bob", sampleFunko(t, 1, "Bob's", 20)))

	aliceRecords, err := s.LoadAll(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, aliceRecords, 1)
	assert.Equal(t, "Alice's", aliceRecords[0].Name)

	require.NoError(t, s.Delete(ctx, "alice", 1))

	bobRecords, err := s.LoadAll(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobRecords, 1)
	assert.Equal(t, "Bob's", bobRecords[0].Name)
}
