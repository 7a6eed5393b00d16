package schedule

import (
	"time"

	"github.com/slotboard/slotboard/internal/model"
)

// ValidateDraft checks a draft's interval shape and that its timezone
// resolves. Overnight slots are rejected: the interval must stay within the
// slot's own date. Wall times skipped by a DST transition in the slot's
// zone are rejected too, so a stored slot always reads back as entered.
func ValidateDraft(d model.SlotDraft) error {
	if d.Date.IsZero() {
		return ErrInvalidSlotShape
	}
	if !d.StartTime.Valid() || !d.EndTime.Valid() || d.StartTime >= d.EndTime {
		return ErrInvalidSlotShape
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return &ZoneError{Zone: d.Timezone, Err: err}
	}
	if !wallTimeExists(loc, d.Date, d.StartTime) || !wallTimeExists(loc, d.Date, d.EndTime) {
		return ErrNonexistentLocalTime
	}
	return nil
}

// wallTimeExists reports whether the wall-clock time denotes a real instant
// in loc. time.Date normalizes times inside a spring-forward gap to the
// other side of the transition, so a round-trip mismatch means the clock
// never showed that time on that date.
func wallTimeExists(loc *time.Location, date model.Date, t model.TimeOfDay) bool {
	instant := time.Date(date.Year, date.Month, date.Day, t.Hour(), t.Minute(), 0, 0, loc)
	return model.DateOf(instant) == date && model.TimeOfDayOf(instant) == t
}

// interval is a slot's half-open span in absolute time.
type interval struct {
	start, end time.Time
}

func slotInterval(s model.Slot) (interval, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return interval{}, &ZoneError{Zone: s.Timezone, Err: err}
	}
	return interval{
		start: time.Date(s.Date.Year, s.Date.Month, s.Date.Day, s.StartTime.Hour(), s.StartTime.Minute(), 0, 0, loc),
		end:   time.Date(s.Date.Year, s.Date.Month, s.Date.Day, s.EndTime.Hour(), s.EndTime.Minute(), 0, 0, loc),
	}, nil
}

// overlaps applies half-open semantics: touching endpoints do not collide.
func (a interval) overlaps(b interval) bool {
	return a.start.Before(b.end) && b.start.Before(a.end)
}

// FindConflicts returns the members of existing that collide with any
// candidate. Collisions are computed on absolute instants, so slots of one
// owner stored in different timezones are still caught. Only real slots of
// the candidate's own owner participate; synthetic slots and other owners
// never conflict. excludeID skips one existing slot, for edit-in-place
// checks; zero excludes nothing.
func FindConflicts(candidates, existing []model.Slot, excludeID int64) ([]model.Slot, error) {
	var conflicts []model.Slot
	seen := make(map[int64]bool)

	for _, c := range candidates {
		if c.Origin != model.SlotOriginUser {
			continue
		}
		ci, err := slotInterval(c)
		if err != nil {
			return nil, err
		}
		for _, e := range existing {
			if e.ID != 0 && (e.ID == excludeID || seen[e.ID]) {
				continue
			}
			if e.Origin != model.SlotOriginUser || e.OwnerID != c.OwnerID {
				continue
			}
			ei, err := slotInterval(e)
			if err != nil {
				return nil, err
			}
			if ci.overlaps(ei) {
				seen[e.ID] = true
				conflicts = append(conflicts, e)
			}
		}
	}
	return conflicts, nil
}

// BatchConflicts reports the members of one candidate batch that collide
// with each other, before anything is persisted. A recurring series is
// accepted or rejected as a whole, so any pair inside the batch poisons it.
func BatchConflicts(candidates []model.Slot) ([]model.Slot, error) {
	intervals := make([]interval, len(candidates))
	for i, c := range candidates {
		iv, err := slotInterval(c)
		if err != nil {
			return nil, err
		}
		intervals[i] = iv
	}

	involved := make(map[int]bool)
	for i := range candidates {
		if candidates[i].Origin != model.SlotOriginUser {
			continue
		}
		for j := i + 1; j < len(candidates); j++ {
			if candidates[j].Origin != model.SlotOriginUser ||
				candidates[i].OwnerID != candidates[j].OwnerID {
				continue
			}
			if intervals[i].overlaps(intervals[j]) {
				involved[i] = true
				involved[j] = true
			}
		}
	}
	if len(involved) == 0 {
		return nil, nil
	}

	var conflicts []model.Slot
	for i := range candidates {
		if involved[i] {
			conflicts = append(conflicts, candidates[i])
		}
	}
	return conflicts, nil
}
