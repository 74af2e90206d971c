package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/funkostore/pkg/funko"
	"github.com/marmos91/funkostore/pkg/store"
	storetesting "github.com/marmos91/funkostore/pkg/store/testing"
)

func newTestStore(t *testing.T) *FSRecordStore {
	t.Helper()
	s, err := NewFSRecordStore(context.Background(), t.TempDir())
	require.NoError(t, err)
	return s
}

// TestFSRecordStore runs the RecordStore conformance suite against the
// filesystem backend.
func TestFSRecordStore(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func(t *testing.T) store.RecordStore {
			return newTestStore(t)
		},
	}

	suite.Run(t)
}

func TestFSRecordStore_Layout(t *testing.T) {
	base := t.TempDir()
	s, err := NewFSRecordStore(context.Background(), base)
	require.NoError(t, err)

	f, err := funko.New(42, "Mario", "", funko.TypePop, funko.GenreVideoGames,
		"Super Mario", 1, false, "", 15)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), "alice", f))

	// One pretty-printed JSON file per record, named after the record ID.
	data, err := os.ReadFile(filepath.Join(base, "alice", "42.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  ")

	var decoded funko.Funko
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *f, decoded)
}

func TestFSRecordStore_LenientListing(t *testing.T) {
	base := t.TempDir()
	s, err := NewFSRecordStore(context.Background(), base)
	require.NoError(t, err)
	ctx := context.Background()

	valid, err := funko.New(1, "Pikachu", "", funko.TypePop, funko.GenreAnime,
		"Pokemon", 353, false, "", 30)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "alice", valid))

	// A corrupt record file must not block the rest of the listing.
	require.NoError(t, os.WriteFile(filepath.Join(base, "alice", "2.json"),
		[]byte("this is not json"), 0644))

	records, err := s.LoadAll(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, *valid, records[0])
}

func TestFSRecordStore_IgnoresNonRecordFiles(t *testing.T) {
	base := t.TempDir()
	s, err := NewFSRecordStore(context.Background(), base)
	require.NoError(t, err)
	ctx := context.Background()

	valid, err := funko.New(1, "Yoda", "", funko.TypeVinylGold, funko.GenreMoviesTV,
		"Star Wars", 2, true, "", 50)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "alice", valid))

	dir := filepath.Join(base, "alice")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.json"), 0755))

	records, err := s.LoadAll(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestFSRecordStore_ConcurrentLoadOfManyRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const count = 50
	for i := 1; i <= count; i++ {
		f, err := funko.New(i, "Figure", "", funko.TypePop, funko.GenreSports,
			"F", i, false, "", float64(i))
		require.NoError(t, err)
		require.NoError(t, s.Save(ctx, "alice", f))
	}

	records, err := s.LoadAll(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, count)

	// Completion order is unspecified, but every ID must be accounted for.
	seen := make(map[int]bool, count)
	for _, f := range records {
		seen[f.ID] = true
	}
	assert.Len(t, seen, count)
}
