package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotboard/slotboard/internal/model"
	"github.com/slotboard/slotboard/internal/palette"
	"github.com/slotboard/slotboard/internal/schedule"
)

func TestCalendarViewMarksOwnSlots(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	date := model.NewDate(2025, time.June, 1)

	_, err := store.Insert(ctx, userDraft("u1", date, model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)))
	require.NoError(t, err)
	other := userDraft("u2", date, model.NewTimeOfDay(11, 0), model.NewTimeOfDay(12, 0))
	other.OwnerName = "Mira Chen"
	_, err = store.Insert(ctx, other)
	require.NoError(t, err)

	entries, err := svc.CalendarView(ctx, "u1", "UTC")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byOwner := make(map[string]CalendarEntry)
	for _, e := range entries {
		byOwner[e.OwnerID] = e
	}

	own := byOwner["u1"]
	assert.Equal(t, "Your Slot", own.Title)
	assert.True(t, own.Editable)
	assert.Equal(t, palette.OwnSlotColor, own.Color)

	theirs := byOwner["u2"]
	assert.Equal(t, "Available: Mira Chen", theirs.Title)
	assert.False(t, theirs.Editable)
	assert.Equal(t, palette.ColorFor("u2"), theirs.Color)
	assert.Equal(t, palette.BorderFor("u2"), theirs.BorderColor)
}

func TestCalendarViewSyntheticNeverEditable(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	draft := userDraft("u1", model.NewDate(2025, time.June, 1), model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0))
	draft.Origin = model.SlotOriginSynthetic
	_, err := store.Insert(ctx, draft)
	require.NoError(t, err)

	entries, err := svc.CalendarView(ctx, "u1", "UTC")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Editable, "viewer's own synthetic slot stays read-only")
	assert.Equal(t, "Your Slot", entries[0].Title)
}

func TestCalendarViewProjectsIntoDisplayZone(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	draft := userDraft("u1", model.NewDate(2025, time.June, 1), model.NewTimeOfDay(23, 0), model.NewTimeOfDay(23, 30))
	draft.Timezone = "America/New_York"
	_, err := store.Insert(ctx, draft)
	require.NoError(t, err)

	entries, err := svc.CalendarView(ctx, "", "Asia/Tokyo")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// 23:00 EDT on June 1 is 12:00 JST on June 2.
	e := entries[0]
	assert.Equal(t, model.NewDate(2025, time.June, 2), e.StartDate)
	assert.Equal(t, model.NewTimeOfDay(12, 0), e.StartTime)
	assert.Equal(t, "Asia/Tokyo", e.Timezone)
}

func TestCalendarViewUnknownZone(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := store.Insert(ctx, userDraft("u1", model.NewDate(2025, time.June, 1), model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0)))
	require.NoError(t, err)

	_, err = svc.CalendarView(ctx, "u1", "Mars/Olympus")
	var zoneErr *schedule.ZoneError
	assert.ErrorAs(t, err, &zoneErr)
}
