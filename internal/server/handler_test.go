package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/funkostore/internal/protocol/wire"
	"github.com/marmos91/funkostore/pkg/funko"
	"github.com/marmos91/funkostore/pkg/store/memory"
)

func newTestHandler() *Handler {
	return NewHandler(memory.NewMemoryRecordStore(), false)
}

func mustFunko(t *testing.T, id int, name string, value float64) *funko.Funko {
	t.Helper()
	f, err := funko.New(id, name, "", funko.TypePop, funko.GenreMoviesTV,
		"Test", id, false, "", value)
	require.NoError(t, err)
	return f
}

func TestHandler_Add(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		h := newTestHandler()

		res := h.Handle(context.Background(), &wire.Request{
			Type:  wire.RequestAdd,
			User:  "alice",
			Funko: mustFunko(t, 1, "Batman", 20),
		})

		assert.Equal(t, wire.RequestAdd, res.Type)
		assert.True(t, res.Success)
		assert.Nil(t, res.Funkos)
	})

	t.Run("MissingPayload", func(t *testing.T) {
		h := newTestHandler()

		res := h.Handle(context.Background(), &wire.Request{
			Type: wire.RequestAdd,
			User: "alice",
		})

		assert.False(t, res.Success)
		assert.Contains(t, res.Message, "funko payload")
	})

	t.Run("DuplicateIDKeepsFirstRecord", func(t *testing.T) {
		h := newTestHandler()
		ctx := context.Background()

		first := h.Handle(ctx, &wire.Request{
			Type: wire.RequestAdd, User: "alice", Funko: mustFunko(t, 1, "First", 20),
		})
		require.True(t, first.Success)

		second := h.Handle(ctx, &wire.Request{
			Type: wire.RequestAdd, User: "alice", Funko: mustFunko(t, 1, "Second", 99),
		})
		assert.False(t, second.Success)
		assert.Contains(t, second.Message, "already exists")

		list := h.Handle(ctx, &wire.Request{Type: wire.RequestList, User: "alice"})
		require.True(t, list.Success)
		require.Len(t, list.Funkos, 1)
		assert.Equal(t, "First", list.Funkos[0].Name)
	})

	t.Run("SameIDDifferentUsers", func(t *testing.T) {
		h := newTestHandler()
		ctx := context.Background()

		res := h.Handle(ctx, &wire.Request{
			Type: wire.RequestAdd, User: "alice", Funko: mustFunko(t, 1, "A", 20),
		})
		require.True(t, res.Success)

		res = h.Handle(ctx, &wire.Request{
			Type: wire.RequestAdd, User: "bob", Funko: mustFunko(t, 1, "B", 20),
		})
		assert.True(t, res.Success)
	})
}

func TestHandler_Update(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		h := newTestHandler()
		ctx := context.Background()
		id := 1

		require.True(t, h.Handle(ctx, &wire.Request{
			Type: wire.RequestAdd, User: "alice", Funko: mustFunko(t, 1, "Old", 20),
		}).Success)

		res := h.Handle(ctx, &wire.Request{
			Type: wire.RequestUpdate, User: "alice", ID: &id,
			Funko: mustFunko(t, 1, "New", 30),
		})
		require.True(t, res.Success)

		read := h.Handle(ctx, &wire.Request{Type: wire.RequestRead, User: "alice", ID: &id})
		require.True(t, read.Success)
		require.Len(t, read.Funkos, 1)
		assert.Equal(t, "New", read.Funkos[0].Name)
	})

	t.Run("MissingID", func(t *testing.T) {
		h := newTestHandler()

		res := h.Handle(context.Background(), &wire.Request{
			Type: wire.RequestUpdate, User: "alice", Funko: mustFunko(t, 1, "X", 20),
		})
		assert.False(t, res.Success)
		assert.Contains(t, res.Message, "id")
	})

	t.Run("NotFound", func(t *testing.T) {
		h := newTestHandler()
		id := 7

		res := h.Handle(context.Background(), &wire.Request{
			Type: wire.RequestUpdate, User: "alice", ID: &id,
			Funko: mustFunko(t, 7, "Ghost", 20),
		})
		assert.False(t, res.Success)
		assert.Contains(t, res.Message, "no funko")
	})
}

func TestHandler_Remove(t *testing.T) {
	t.Run("DeleteThenReadReportsNotFound", func(t *testing.T) {
		h := newTestHandler()
		ctx := context.Background()
		id := 1

		require.True(t, h.Handle(ctx, &wire.Request{
			Type: wire.RequestAdd, User: "alice", Funko: mustFunko(t, 1, "Gone", 20),
		}).Success)

		res := h.Handle(ctx, &wire.Request{Type: wire.RequestRemove, User: "alice", ID: &id})
		require.True(t, res.Success)

		read := h.Handle(ctx, &wire.Request{Type: wire.RequestRead, User: "alice", ID: &id})
		assert.False(t, read.Success)
	})

	t.Run("AbsentID", func(t *testing.T) {
		h := newTestHandler()
		id := 9

		res := h.Handle(context.Background(), &wire.Request{
			Type: wire.RequestRemove, User: "alice", ID: &id,
		})
		assert.False(t, res.Success)
		assert.Contains(t, res.Message, "not found or could not be deleted")
	})

	t.Run("MissingID", func(t *testing.T) {
		h := newTestHandler()

		res := h.Handle(context.Background(), &wire.Request{
			Type: wire.RequestRemove, User: "alice",
		})
		assert.False(t, res.Success)
	})
}

func TestHandler_List(t *testing.T) {
	t.Run("EmptyCollectionIsSuccess", func(t *testing.T) {
		h := newTestHandler()

		res := h.Handle(context.Background(), &wire.Request{
			Type: wire.RequestList, User: "nobody",
		})
		assert.True(t, res.Success)
		assert.Empty(t, res.Funkos)
	})

	t.Run("ReturnsAllRecords", func(t *testing.T) {
		h := newTestHandler()
		ctx := context.Background()

		for i := 1; i <= 3; i++ {
			require.True(t, h.Handle(ctx, &wire.Request{
				Type: wire.RequestAdd, User: "alice", Funko: mustFunko(t, i, "F", 10),
			}).Success)
		}

		res := h.Handle(ctx, &wire.Request{Type: wire.RequestList, User: "alice"})
		require.True(t, res.Success)
		assert.Len(t, res.Funkos, 3)
	})
}

func TestHandler_Read(t *testing.T) {
	t.Run("SingleElementList", func(t *testing.T) {
		h := newTestHandler()
		ctx := context.Background()
		id := 2

		require.True(t, h.Handle(ctx, &wire.Request{
			Type: wire.RequestAdd, User: "alice", Funko: mustFunko(t, 2, "Target", 20),
		}).Success)
		require.True(t, h.Handle(ctx, &wire.Request{
			Type: wire.RequestAdd, User: "alice", Funko: mustFunko(t, 3, "Other", 20),
		}).Success)

		res := h.Handle(ctx, &wire.Request{Type: wire.RequestRead, User: "alice", ID: &id})
		require.True(t, res.Success)
		require.Len(t, res.Funkos, 1)
		assert.Equal(t, "Target", res.Funkos[0].Name)
	})

	t.Run("MissingID", func(t *testing.T) {
		h := newTestHandler()

		res := h.Handle(context.Background(), &wire.Request{
			Type: wire.RequestRead, User: "alice",
		})
		assert.False(t, res.Success)
	})
}

func TestHandler_UnknownType(t *testing.T) {
	h := newTestHandler()

	res := h.Handle(context.Background(), &wire.Request{
		Type: "destroy", User: "alice",
	})
	assert.False(t, res.Success)
	assert.Equal(t, wire.RequestType("destroy"), res.Type)
}

func TestHandler_SerializedUsersConcurrentAdds(t *testing.T) {
	// With per-user serialization enabled, concurrent adds of the same ID
	// cannot both pass the existence check: exactly one wins.
	h := NewHandler(memory.NewMemoryRecordStore(), true)
	ctx := context.Background()

	const attempts = 16
	results := make(chan bool, attempts)
	racer := mustFunko(t, 1, "Racer", 5)

	for i := 0; i < attempts; i++ {
		go func() {
			res := h.Handle(ctx, &wire.Request{
				Type: wire.RequestAdd, User: "alice", Funko: racer,
			})
			results <- res.Success
		}()
	}

	successes := 0
	for i := 0; i < attempts; i++ {
		if <-results {
			successes++
		}
	}

	assert.Equal(t, 1, successes)
}
