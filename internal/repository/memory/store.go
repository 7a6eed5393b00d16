// Package memory holds an in-memory SlotStore used by tests and by the
// storage-free demo mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/slotboard/slotboard/internal/model"
	"github.com/slotboard/slotboard/internal/repository"
)

// Store implements repository.SlotStore with a mutex-guarded map.
type Store struct {
	mu     sync.RWMutex
	slots  map[int64]model.Slot
	nextID int64
}

func New() *Store {
	return &Store{slots: make(map[int64]model.Slot)}
}

func sortSlots(slots []model.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if c := slots[i].Date.Compare(slots[j].Date); c != 0 {
			return c < 0
		}
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime < slots[j].StartTime
		}
		return slots[i].ID < slots[j].ID
	})
}

func (s *Store) GetAll(_ context.Context) ([]model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]model.Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		slots = append(slots, slot)
	}
	sortSlots(slots)
	return slots, nil
}

func (s *Store) GetByOwner(_ context.Context, ownerID string) ([]model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var slots []model.Slot
	for _, slot := range s.slots {
		if slot.OwnerID == ownerID {
			slots = append(slots, slot)
		}
	}
	sortSlots(slots)
	return slots, nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

// insertLocked assumes the write lock is held.
func (s *Store) insertLocked(draft model.SlotDraft) model.Slot {
	s.nextID++
	slot := draft.Slot()
	slot.ID = s.nextID
	slot.CreatedAt = time.Now().UTC()
	s.slots[slot.ID] = slot
	return slot
}

func (s *Store) Insert(_ context.Context, draft model.SlotDraft) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.insertLocked(draft)
	return &slot, nil
}

func (s *Store) BulkInsert(_ context.Context, drafts []model.SlotDraft) ([]model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots := make([]model.Slot, 0, len(drafts))
	for _, draft := range drafts {
		slots = append(slots, s.insertLocked(draft))
	}
	return slots, nil
}

func (s *Store) Update(_ context.Context, id int64, patch model.SlotPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return repository.ErrNotFound
	}
	patch.Apply(&slot)
	s.slots[id] = slot
	return nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.slots, id)
	return nil
}

func (s *Store) DeleteByOwner(_ context.Context, ownerID string, origin model.SlotOrigin) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, slot := range s.slots {
		if slot.OwnerID == ownerID && slot.Origin == origin {
			delete(s.slots, id)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) DeleteByOrigin(_ context.Context, origin model.SlotOrigin) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, slot := range s.slots {
		if slot.Origin == origin {
			delete(s.slots, id)
			removed++
		}
	}
	return removed, nil
}
