package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotboard/slotboard/internal/model"
	"github.com/slotboard/slotboard/internal/repository"
	"github.com/slotboard/slotboard/internal/schedule"
)

var (
	ErrSlotNotFound = errors.New("slot not found")
	ErrNotSlotOwner = errors.New("slot does not belong to user")
)

// SlotService runs the expand → validate → persist pipeline for slot
// mutations. It holds no slot state between calls; every operation reads
// the owner's current slot set from the store.
type SlotService struct {
	store  repository.SlotStore
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSlotService(store repository.SlotStore, logger *zap.Logger) *SlotService {
	return &SlotService{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// ownerLock serializes validate-then-write for one owner. Different owners'
// slot sets are independent and proceed concurrently.
func (s *SlotService) ownerLock(ownerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[ownerID] = lock
	}
	return lock
}

// CreateSlots expands the draft through the recurrence rule, validates the
// whole batch against the owner's stored slots and against itself, and
// persists it atomically. Any conflict rejects the entire batch; nothing is
// written. Instances of a repeating rule share a freshly minted series ID.
func (s *SlotService) CreateSlots(ctx context.Context, draft model.SlotDraft, rule model.RecurrenceRule) ([]model.Slot, error) {
	if draft.OwnerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}
	if draft.Origin == "" {
		draft.Origin = model.SlotOriginUser
	}
	if err := schedule.ValidateDraft(draft); err != nil {
		return nil, err
	}

	drafts, err := schedule.Expand(draft, rule)
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, nil
	}
	// The base draft passed validation, but a later instance can still land
	// on a date where its wall time does not exist.
	for _, d := range drafts[1:] {
		if err := schedule.ValidateDraft(d); err != nil {
			return nil, err
		}
	}
	if rule.Frequency.Repeats() {
		seriesID := uuid.New()
		for i := range drafts {
			drafts[i].SeriesID = &seriesID
		}
	}

	candidates := make([]model.Slot, len(drafts))
	for i, d := range drafts {
		candidates[i] = d.Slot()
	}

	if conflicts, err := schedule.BatchConflicts(candidates); err != nil {
		return nil, err
	} else if len(conflicts) > 0 {
		return nil, &schedule.ConflictError{Conflicts: conflicts}
	}

	// Read, validate and write under the owner lock so no other mutation
	// of this owner's slots can interleave between validation and write.
	lock := s.ownerLock(draft.OwnerID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.store.GetByOwner(ctx, draft.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("read existing slots: %w", err)
	}
	conflicts, err := schedule.FindConflicts(candidates, existing, 0)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		s.logger.Info("Slot batch rejected",
			zap.String("owner_id", draft.OwnerID),
			zap.Int("candidates", len(candidates)),
			zap.Int("conflicts", len(conflicts)))
		return nil, &schedule.ConflictError{Conflicts: conflicts}
	}

	var created []model.Slot
	if len(drafts) == 1 {
		slot, err := s.store.Insert(ctx, drafts[0])
		if err != nil {
			return nil, fmt.Errorf("persist slot: %w", err)
		}
		created = []model.Slot{*slot}
	} else {
		created, err = s.store.BulkInsert(ctx, drafts)
		if err != nil {
			return nil, fmt.Errorf("persist slot batch: %w", err)
		}
	}

	s.logger.Info("Slots created",
		zap.String("owner_id", draft.OwnerID),
		zap.String("frequency", string(rule.Frequency)),
		zap.Int("count", len(created)))

	return created, nil
}

// UpdateSlot applies an owner edit in place. The slot keeps its ID; the
// patched shape is re-validated against the owner's other slots with the
// edited slot itself excluded.
func (s *SlotService) UpdateSlot(ctx context.Context, ownerID string, id int64, patch model.SlotPatch) (*model.Slot, error) {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	slot, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	if slot.OwnerID != ownerID {
		return nil, ErrNotSlotOwner
	}

	updated := *slot
	patch.Apply(&updated)
	if err := schedule.ValidateDraft(updated.Draft()); err != nil {
		return nil, err
	}

	existing, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("read existing slots: %w", err)
	}
	conflicts, err := schedule.FindConflicts([]model.Slot{updated}, existing, id)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &schedule.ConflictError{Conflicts: conflicts}
	}

	if err := s.store.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("update slot: %w", err)
	}

	s.logger.Info("Slot updated",
		zap.Int64("slot_id", id),
		zap.String("owner_id", ownerID))

	return &updated, nil
}

// DeleteSlot removes a single slot. Only its owner may delete it.
func (s *SlotService) DeleteSlot(ctx context.Context, ownerID string, id int64) error {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	slot, err := s.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return ErrSlotNotFound
	}
	if slot.OwnerID != ownerID {
		return ErrNotSlotOwner
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSlotNotFound
		}
		return fmt.Errorf("delete slot: %w", err)
	}

	s.logger.Info("Slot deleted",
		zap.Int64("slot_id", id),
		zap.String("owner_id", ownerID))

	return nil
}

// ClearOwnerSlots removes all of one owner's real slots. Synthetic demo
// slots are not theirs to clear and stay untouched.
func (s *SlotService) ClearOwnerSlots(ctx context.Context, ownerID string) (int64, error) {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	removed, err := s.store.DeleteByOwner(ctx, ownerID, model.SlotOriginUser)
	if err != nil {
		return 0, fmt.Errorf("clear owner slots: %w", err)
	}

	s.logger.Info("Owner slots cleared",
		zap.String("owner_id", ownerID),
		zap.Int64("removed", removed))

	return removed, nil
}

// GetSlot returns a single slot by ID.
func (s *SlotService) GetSlot(ctx context.Context, id int64) (*model.Slot, error) {
	slot, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	return slot, nil
}

// OwnerSchedule returns one owner's stored slots as entered.
func (s *SlotService) OwnerSchedule(ctx context.Context, ownerID string) ([]model.Slot, error) {
	return s.store.GetByOwner(ctx, ownerID)
}
