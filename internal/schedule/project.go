package schedule

import (
	"time"

	"github.com/slotboard/slotboard/internal/model"
)

// Projection is the wall-clock representation of a slot's absolute start
// and end instants as observed in some timezone. EndDate can differ from
// StartDate when the projection crosses midnight.
type Projection struct {
	StartDate model.Date      `json:"start_date"`
	EndDate   model.Date      `json:"end_date"`
	StartTime model.TimeOfDay `json:"start_time"`
	EndTime   model.TimeOfDay `json:"end_time"`
	Timezone  string          `json:"timezone"`
}

// Project computes how a slot's interval reads on a clock in targetZone.
// Offsets come from the zone rules in effect at the slot's own instants,
// so daylight-saving shifts on the slot's date are honored. Projecting a
// slot into its stored zone returns its fields unchanged.
func Project(slot model.Slot, targetZone string) (Projection, error) {
	iv, err := slotInterval(slot)
	if err != nil {
		return Projection{}, err
	}
	loc, err := time.LoadLocation(targetZone)
	if err != nil {
		return Projection{}, &ZoneError{Zone: targetZone, Err: err}
	}

	start := iv.start.In(loc)
	end := iv.end.In(loc)
	return Projection{
		StartDate: model.DateOf(start),
		EndDate:   model.DateOf(end),
		StartTime: model.TimeOfDayOf(start),
		EndTime:   model.TimeOfDayOf(end),
		Timezone:  targetZone,
	}, nil
}
