package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/slotboard/slotboard/internal/model"
	"github.com/slotboard/slotboard/internal/repository/memory"
	"github.com/slotboard/slotboard/internal/schedule"
)

func newTestService() (*SlotService, *memory.Store) {
	store := memory.New()
	return NewSlotService(store, zap.NewNop()), store
}

func userDraft(owner string, date model.Date, start, end model.TimeOfDay) model.SlotDraft {
	return model.SlotDraft{
		OwnerID:   owner,
		OwnerName: "Owner " + owner,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Timezone:  "UTC",
		Origin:    model.SlotOriginUser,
	}
}

func noRepeat() model.RecurrenceRule {
	return model.RecurrenceRule{Frequency: model.FrequencyNone}
}

func TestCreateSingleSlot(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	created, err := svc.CreateSlots(ctx, userDraft("u1", model.NewDate(2025, time.March, 1), model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)), noRepeat())
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.NotZero(t, created[0].ID)
	assert.Nil(t, created[0].SeriesID, "non-repeating slots get no series id")

	stored, err := store.GetByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestCreateRejectsBadShape(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateSlots(ctx, userDraft("u1", model.NewDate(2025, time.March, 1), model.NewTimeOfDay(10, 0), model.NewTimeOfDay(10, 0)), noRepeat())
	assert.ErrorIs(t, err, schedule.ErrInvalidSlotShape)
}

func TestCreateConflictRejected(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	date := model.NewDate(2025, time.March, 1)

	_, err := svc.CreateSlots(ctx, userDraft("u1", date, model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)), noRepeat())
	require.NoError(t, err)

	// Touching boundary is fine.
	_, err = svc.CreateSlots(ctx, userDraft("u1", date, model.NewTimeOfDay(10, 0), model.NewTimeOfDay(11, 0)), noRepeat())
	require.NoError(t, err)

	// Intersection is rejected with the conflicting slots attached.
	_, err = svc.CreateSlots(ctx, userDraft("u1", date, model.NewTimeOfDay(9, 30), model.NewTimeOfDay(10, 30)), noRepeat())
	var conflictErr *schedule.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Len(t, conflictErr.Conflicts, 2)

	stored, err := store.GetByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 2, "rejected slot must not be persisted")
}

// gatedStore parks GetByOwner callers until released, holding open the
// window between a mutation's read and its write.
type gatedStore struct {
	*memory.Store
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) GetByOwner(ctx context.Context, ownerID string) ([]model.Slot, error) {
	s.entered <- struct{}{}
	<-s.release
	return s.Store.GetByOwner(ctx, ownerID)
}

func TestCreateSerializesPerOwner(t *testing.T) {
	store := &gatedStore{
		Store:   memory.New(),
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	svc := NewSlotService(store, zap.NewNop())
	ctx := context.Background()
	date := model.NewDate(2025, time.March, 1)

	errCh := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.CreateSlots(ctx, userDraft("u1", date, model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)), noRepeat())
			errCh <- err
		}()
	}

	// One create is now inside its read-validate-write window.
	<-store.entered

	// The other must be parked on the owner lock, not reading alongside it;
	// a concurrent read here would let both creates validate against the
	// same empty slot set and both insert.
	select {
	case <-store.entered:
		t.Fatal("second create read the owner's slots before the first one's write")
	case <-time.After(50 * time.Millisecond):
	}
	close(store.release)

	var failures []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			failures = append(failures, err)
		}
	}
	require.Len(t, failures, 1, "exactly one of the competing creates may succeed")
	var conflictErr *schedule.ConflictError
	assert.ErrorAs(t, failures[0], &conflictErr)

	stored, err := store.Store.GetByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestCreateOtherOwnerDoesNotConflict(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	date := model.NewDate(2025, time.March, 1)

	_, err := svc.CreateSlots(ctx, userDraft("u1", date, model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)), noRepeat())
	require.NoError(t, err)

	_, err = svc.CreateSlots(ctx, userDraft("u2", date, model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)), noRepeat())
	assert.NoError(t, err, "different owners may overlap freely")
}

func TestCreateRecurringSeries(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	rule := model.RecurrenceRule{
		Frequency: model.FrequencyWeekly,
		Until:     model.NewDate(2025, time.March, 3),
	}
	created, err := svc.CreateSlots(ctx, userDraft("u1", model.NewDate(2025, time.February, 17), model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)), rule)
	require.NoError(t, err)
	require.Len(t, created, 3)

	require.NotNil(t, created[0].SeriesID)
	for _, s := range created[1:] {
		require.NotNil(t, s.SeriesID)
		assert.Equal(t, *created[0].SeriesID, *s.SeriesID, "series instances share one id")
	}

	stored, err := store.GetByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestCreateBatchAtomicity(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	// Existing slot collides with only the last instance of the series.
	_, err := svc.CreateSlots(ctx, userDraft("u1", model.NewDate(2025, time.March, 3), model.NewTimeOfDay(9, 30), model.NewTimeOfDay(10, 30)), noRepeat())
	require.NoError(t, err)

	rule := model.RecurrenceRule{
		Frequency: model.FrequencyWeekly,
		Until:     model.NewDate(2025, time.March, 3),
	}
	_, err = svc.CreateSlots(ctx, userDraft("u1", model.NewDate(2025, time.February, 17), model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)), rule)
	var conflictErr *schedule.ConflictError
	require.ErrorAs(t, err, &conflictErr)

	stored, err := store.GetByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored, 1, "no instance of a rejected series may be persisted")
}

func TestCreateSeriesRejectsSkippedWallTime(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	// A daily 02:30 series crossing 2025-03-09 in New York hits the
	// spring-forward gap on that date even though the base instance is fine.
	draft := userDraft("u1", model.NewDate(2025, time.March, 7), model.NewTimeOfDay(2, 30), model.NewTimeOfDay(3, 30))
	draft.Timezone = "America/New_York"
	rule := model.RecurrenceRule{
		Frequency: model.FrequencyDaily,
		Until:     model.NewDate(2025, time.March, 10),
	}

	_, err := svc.CreateSlots(ctx, draft, rule)
	assert.ErrorIs(t, err, schedule.ErrNonexistentLocalTime)

	stored, err := store.GetByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, stored, "no instance of the rejected series may be persisted")
}

func TestCreateMissingRecurrenceBound(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateSlots(ctx, userDraft("u1", model.NewDate(2025, time.March, 1), model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)),
		model.RecurrenceRule{Frequency: model.FrequencyMonthly})
	assert.ErrorIs(t, err, schedule.ErrMissingRecurrenceBound)
}

func TestUpdateSlot(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	date := model.NewDate(2025, time.March, 1)

	created, err := svc.CreateSlots(ctx, userDraft("u1", date, model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)), noRepeat())
	require.NoError(t, err)
	id := created[0].ID

	// Shifting a slot over its own old position is allowed.
	newStart := model.NewTimeOfDay(9, 30)
	newEnd := model.NewTimeOfDay(10, 30)
	updated, err := svc.UpdateSlot(ctx, "u1", id, model.SlotPatch{StartTime: &newStart, EndTime: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID, "edits never reassign the id")
	assert.Equal(t, newStart, updated.StartTime)

	got, err := svc.GetSlot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, newStart, got.StartTime)
	assert.Equal(t, newEnd, got.EndTime)
}

func TestUpdateSlotConflicts(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	date := model.NewDate(2025, time.March, 1)

	first, err := svc.CreateSlots(ctx, userDraft("u1", date, model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)), noRepeat())
	require.NoError(t, err)
	_, err = svc.CreateSlots(ctx, userDraft("u1", date, model.NewTimeOfDay(10, 0), model.NewTimeOfDay(11, 0)), noRepeat())
	require.NoError(t, err)

	// Stretching the first slot into the second is rejected.
	newEnd := model.NewTimeOfDay(10, 15)
	_, err = svc.UpdateSlot(ctx, "u1", first[0].ID, model.SlotPatch{EndTime: &newEnd})
	var conflictErr *schedule.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestUpdateSlotOwnership(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateSlots(ctx, userDraft("u1", model.NewDate(2025, time.March, 1), model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)), noRepeat())
	require.NoError(t, err)

	newEnd := model.NewTimeOfDay(10, 30)
	_, err = svc.UpdateSlot(ctx, "u2", created[0].ID, model.SlotPatch{EndTime: &newEnd})
	assert.ErrorIs(t, err, ErrNotSlotOwner)

	_, err = svc.UpdateSlot(ctx, "u1", 9999, model.SlotPatch{EndTime: &newEnd})
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestDeleteSlot(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateSlots(ctx, userDraft("u1", model.NewDate(2025, time.March, 1), model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)), noRepeat())
	require.NoError(t, err)
	id := created[0].ID

	assert.ErrorIs(t, svc.DeleteSlot(ctx, "u2", id), ErrNotSlotOwner)
	require.NoError(t, svc.DeleteSlot(ctx, "u1", id))
	assert.ErrorIs(t, svc.DeleteSlot(ctx, "u1", id), ErrSlotNotFound)
}

func TestClearOwnerSlotsKeepsSynthetic(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	date := model.NewDate(2025, time.March, 1)

	_, err := svc.CreateSlots(ctx, userDraft("u1", date, model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)), noRepeat())
	require.NoError(t, err)

	synthetic := userDraft("u1", date, model.NewTimeOfDay(13, 0), model.NewTimeOfDay(14, 0))
	synthetic.Origin = model.SlotOriginSynthetic
	_, err = store.Insert(ctx, synthetic)
	require.NoError(t, err)

	removed, err := svc.ClearOwnerSlots(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := store.GetByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, model.SlotOriginSynthetic, remaining[0].Origin)
}
