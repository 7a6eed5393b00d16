package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/slotboard/slotboard/internal/model"
)

// ErrStoreUnavailable marks any persistence-layer failure. The engine
// propagates it unchanged and never retries; retry policy lives inside the
// store implementations.
var ErrStoreUnavailable = errors.New("slot store unavailable")

// ErrNotFound is returned by Update and Delete when the slot vanished
// between the caller's read and the write.
var ErrNotFound = errors.New("slot not found")

// StoreError wraps a backend failure so callers can match
// ErrStoreUnavailable without knowing the backend.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// SlotStore is the persistence contract the scheduling engine depends on.
// Any backend qualifies. GetByID returns (nil, nil) for a missing slot.
// BulkInsert must be atomic: either every draft is persisted or none are.
type SlotStore interface {
	GetAll(ctx context.Context) ([]model.Slot, error)
	GetByOwner(ctx context.Context, ownerID string) ([]model.Slot, error)
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	Insert(ctx context.Context, draft model.SlotDraft) (*model.Slot, error)
	BulkInsert(ctx context.Context, drafts []model.SlotDraft) ([]model.Slot, error)
	Update(ctx context.Context, id int64, patch model.SlotPatch) error
	Delete(ctx context.Context, id int64) error

	// DeleteByOwner removes one owner's slots of the given origin and
	// reports how many went away. DeleteByOrigin clears a whole origin
	// class; the seeding collaborator uses it to drop synthetic slots
	// wholesale.
	DeleteByOwner(ctx context.Context, ownerID string, origin model.SlotOrigin) (int64, error)
	DeleteByOrigin(ctx context.Context, origin model.SlotOrigin) (int64, error)
}
