package service

import (
	"context"
	"fmt"

	"github.com/slotboard/slotboard/internal/model"
	"github.com/slotboard/slotboard/internal/palette"
	"github.com/slotboard/slotboard/internal/schedule"
)

// CalendarEntry is the plain-data feed handed to the rendering collaborator:
// a slot projected into the viewer's display timezone plus presentation
// hints. An entry whose end date differs from its start date crossed
// midnight during projection and spans two calendar dates.
type CalendarEntry struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	OwnerID     string           `json:"owner_id"`
	OwnerName   string           `json:"owner_name"`
	StartDate   model.Date       `json:"start_date"`
	EndDate     model.Date       `json:"end_date"`
	StartTime   model.TimeOfDay  `json:"start_time"`
	EndTime     model.TimeOfDay  `json:"end_time"`
	Timezone    string           `json:"timezone"`
	Origin      model.SlotOrigin `json:"origin"`
	Editable    bool             `json:"editable"`
	Color       string           `json:"color"`
	BorderColor string           `json:"border_color"`
}

// CalendarView projects every stored slot into displayZone for the given
// viewer. The viewer's own real slots are marked editable and use the
// own-slot color; everyone else's get a palette color derived from their
// owner ID.
func (s *SlotService) CalendarView(ctx context.Context, viewerID, displayZone string) ([]CalendarEntry, error) {
	slots, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read slots: %w", err)
	}

	entries := make([]CalendarEntry, 0, len(slots))
	for _, slot := range slots {
		proj, err := schedule.Project(slot, displayZone)
		if err != nil {
			return nil, err
		}

		own := viewerID != "" && slot.OwnerID == viewerID
		entry := CalendarEntry{
			ID:        slot.ID,
			OwnerID:   slot.OwnerID,
			OwnerName: slot.OwnerName,
			StartDate: proj.StartDate,
			EndDate:   proj.EndDate,
			StartTime: proj.StartTime,
			EndTime:   proj.EndTime,
			Timezone:  proj.Timezone,
			Origin:    slot.Origin,
			Editable:  own && slot.Origin == model.SlotOriginUser,
		}
		if own {
			entry.Title = "Your Slot"
			entry.Color = palette.OwnSlotColor
			entry.BorderColor = palette.OwnSlotBorder
		} else {
			entry.Title = "Available: " + slot.OwnerName
			entry.Color = palette.ColorFor(slot.OwnerID)
			entry.BorderColor = palette.BorderFor(slot.OwnerID)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
