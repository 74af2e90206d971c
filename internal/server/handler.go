package server

import (
	"context"
	"sync"

	"github.com/marmos91/funkostore/internal/logger"
	"github.com/marmos91/funkostore/internal/protocol/wire"
	"github.com/marmos91/funkostore/pkg/funko"
	"github.com/marmos91/funkostore/pkg/store"
)

// Handler maps one decoded request onto store operations and a response.
//
// Every request is a terminal transaction: no state survives between calls,
// and ID uniqueness for add is enforced here via a load-then-check, not by
// the store. Without per-user serialization two concurrent add/update
// requests for the same user can both pass their existence check and one
// write wins; that is the protocol's documented baseline behavior.
type Handler struct {
	store store.RecordStore

	// serializeUsers closes the check-then-write race by holding a per-user
	// mutex across add and update. Off by default to keep the baseline
	// behavior observable.
	serializeUsers bool
	userLocks      sync.Map
}

// NewHandler creates a request handler over the given store.
func NewHandler(s store.RecordStore, serializeUsers bool) *Handler {
	return &Handler{store: s, serializeUsers: serializeUsers}
}

// Handle processes one request and always produces a response; failures of
// any kind are folded into a failure response for that single request.
func (h *Handler) Handle(ctx context.Context, req *wire.Request) *wire.Response {
	switch req.Type {
	case wire.RequestAdd:
		return h.handleAdd(ctx, req)
	case wire.RequestUpdate:
		return h.handleUpdate(ctx, req)
	case wire.RequestRemove:
		return h.handleRemove(ctx, req)
	case wire.RequestList:
		return h.handleList(ctx, req)
	case wire.RequestRead:
		return h.handleRead(ctx, req)
	default:
		logger.Debug("Unknown request type %q from user %q", req.Type, req.User)
		return failure(req.Type, "unknown request type")
	}
}

func (h *Handler) handleAdd(ctx context.Context, req *wire.Request) *wire.Response {
	if req.Funko == nil {
		return failure(req.Type, "request is missing the funko payload")
	}

	if h.serializeUsers {
		unlock := h.lockUser(req.User)
		defer unlock()
	}

	records, err := h.store.LoadAll(ctx, req.User)
	if err != nil {
		logger.Error("add: failed to load collection for %q: %v", req.User, err)
		return failure(req.Type, "could not access the collection")
	}

	if findByID(records, req.Funko.ID) != nil {
		return failure(req.Type, "a funko with that id already exists")
	}

	if err := h.store.Save(ctx, req.User, req.Funko); err != nil {
		logger.Error("add: failed to save record %d for %q: %v", req.Funko.ID, req.User, err)
		return failure(req.Type, "could not store the funko")
	}

	return success(req.Type, "funko added to the collection", nil)
}

func (h *Handler) handleUpdate(ctx context.Context, req *wire.Request) *wire.Response {
	if req.Funko == nil {
		return failure(req.Type, "request is missing the funko payload")
	}
	if req.ID == nil {
		return failure(req.Type, "request is missing the funko id")
	}

	if h.serializeUsers {
		unlock := h.lockUser(req.User)
		defer unlock()
	}

	records, err := h.store.LoadAll(ctx, req.User)
	if err != nil {
		logger.Error("update: failed to load collection for %q: %v", req.User, err)
		return failure(req.Type, "could not access the collection")
	}

	if findByID(records, *req.ID) == nil {
		return failure(req.Type, "no funko with that id exists")
	}

	if err := h.store.Save(ctx, req.User, req.Funko); err != nil {
		logger.Error("update: failed to save record %d for %q: %v", req.Funko.ID, req.User, err)
		return failure(req.Type, "could not store the funko")
	}

	return success(req.Type, "funko updated", nil)
}

func (h *Handler) handleRemove(ctx context.Context, req *wire.Request) *wire.Response {
	if req.ID == nil {
		return failure(req.Type, "request is missing the funko id")
	}

	if err := h.store.Delete(ctx, req.User, *req.ID); err != nil {
		logger.Debug("remove: record %d for %q: %v", *req.ID, req.User, err)
		return failure(req.Type, "funko not found or could not be deleted")
	}

	return success(req.Type, "funko removed from the collection", nil)
}

func (h *Handler) handleList(ctx context.Context, req *wire.Request) *wire.Response {
	records, err := h.store.LoadAll(ctx, req.User)
	if err != nil {
		logger.Error("list: failed to load collection for %q: %v", req.User, err)
		return failure(req.Type, "could not access the collection")
	}

	// An empty collection is a successful listing, not an error.
	return success(req.Type, "collection listed", records)
}

func (h *Handler) handleRead(ctx context.Context, req *wire.Request) *wire.Response {
	if req.ID == nil {
		return failure(req.Type, "request is missing the funko id")
	}

	records, err := h.store.LoadAll(ctx, req.User)
	if err != nil {
		logger.Error("read: failed to load collection for %q: %v", req.User, err)
		return failure(req.Type, "could not access the collection")
	}

	match := findByID(records, *req.ID)
	if match == nil {
		return failure(req.Type, "no funko with that id exists")
	}

	return success(req.Type, "funko found", []funko.Funko{*match})
}

// lockUser acquires the mutex dedicated to one user's collection.
func (h *Handler) lockUser(user string) func() {
	v, _ := h.userLocks.LoadOrStore(user, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func findByID(records []funko.Funko, id int) *funko.Funko {
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}

func success(t wire.RequestType, message string, records []funko.Funko) *wire.Response {
	return &wire.Response{Type: t, Success: true, Message: message, Funkos: records}
}

func failure(t wire.RequestType, message string) *wire.Response {
	return &wire.Response{Type: t, Success: false, Message: message}
}
