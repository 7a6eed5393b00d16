package schedule

import (
	"fmt"
	"time"

	"github.com/slotboard/slotboard/internal/model"
)

// maxExpansion caps a single expansion so a far-future until date cannot
// produce an unbounded series.
const maxExpansion = 1000

// Expand materializes the dated instances a recurrence rule produces from a
// base draft, carrying the base's times and timezone forward unchanged. A
// non-repeating rule yields exactly the base draft; otherwise dates advance
// from the base date by the rule's period while they stay within the
// inclusive until bound. Dates are strictly increasing and the base date
// appears at most once.
func Expand(base model.SlotDraft, rule model.RecurrenceRule) ([]model.SlotDraft, error) {
	if !rule.Frequency.Repeats() {
		return []model.SlotDraft{base}, nil
	}
	if rule.Until.IsZero() {
		return nil, ErrMissingRecurrenceBound
	}
	if _, err := model.ParseFrequency(string(rule.Frequency)); err != nil {
		return nil, err
	}

	var drafts []model.SlotDraft
	series := newSeries(base.Date, rule)
	for len(drafts) < maxExpansion {
		date, ok := series.next()
		if !ok {
			break
		}
		draft := base
		draft.Date = date
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// series lazily walks the dates of one recurrence. Positions are computed
// from the anchor rather than the previous emission, so a fresh series is
// always restartable and month/year steps do not drift after a clamp.
type series struct {
	anchor model.Date
	rule   model.RecurrenceRule
	step   int
}

func newSeries(anchor model.Date, rule model.RecurrenceRule) *series {
	return &series{anchor: anchor, rule: rule}
}

// next returns the following date of the series, or false once the date
// would pass the until bound.
func (s *series) next() (model.Date, bool) {
	date := s.dateAt(s.step)
	if date.After(s.rule.Until) {
		return model.Date{}, false
	}
	s.step++
	return date, true
}

func (s *series) dateAt(n int) model.Date {
	switch s.rule.Frequency {
	case model.FrequencyDaily:
		return s.anchor.AddDays(n)
	case model.FrequencyWeekly:
		return s.anchor.AddDays(7 * n)
	case model.FrequencyMonthly:
		return addMonthsClamped(s.anchor, n)
	case model.FrequencyYearly:
		return addYearsClamped(s.anchor, n)
	}
	panic(fmt.Sprintf("series with non-repeating frequency %q", s.rule.Frequency))
}

// addMonthsClamped advances n calendar months keeping the anchor's
// day-of-month, clamped to the last valid day of the target month. The
// anchor day is preserved for later steps, so Jan 31 yields Feb 28 (or 29)
// and then Mar 31 again.
func addMonthsClamped(anchor model.Date, n int) model.Date {
	monthIdx := int(anchor.Month) - 1 + n
	year := anchor.Year + monthIdx/12
	month := time.Month(monthIdx%12 + 1)
	day := anchor.Day
	if last := model.DaysInMonth(year, month); day > last {
		day = last
	}
	return model.NewDate(year, month, day)
}

// addYearsClamped advances n calendar years, clamping Feb 29 anchors to
// Feb 28 in non-leap years.
func addYearsClamped(anchor model.Date, n int) model.Date {
	year := anchor.Year + n
	day := anchor.Day
	if last := model.DaysInMonth(year, anchor.Month); day > last {
		day = last
	}
	return model.NewDate(year, anchor.Month, day)
}
