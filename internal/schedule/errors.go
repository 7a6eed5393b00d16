package schedule

import (
	"errors"
	"fmt"

	"github.com/slotboard/slotboard/internal/model"
)

var (
	// ErrInvalidSlotShape rejects slots whose start does not precede their
	// end, or whose times fall outside a single day.
	ErrInvalidSlotShape = errors.New("slot start must be before its end within one day")

	// ErrMissingRecurrenceBound rejects repeating rules without an until date.
	ErrMissingRecurrenceBound = errors.New("repeating rule requires an until date")

	// ErrNonexistentLocalTime rejects wall times a DST transition skipped in
	// the slot's timezone.
	ErrNonexistentLocalTime = errors.New("slot time does not exist in its timezone on that date")
)

// ConflictError rejects a slot batch wholesale and carries the slots it
// collided with, for diagnostic display.
type ConflictError struct {
	Conflicts []model.Slot
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot overlaps %d existing slot(s)", len(e.Conflicts))
}

// ZoneError reports a timezone identifier that could not be resolved.
// Callers must not fall back to a default zone.
type ZoneError struct {
	Zone string
	Err  error
}

func (e *ZoneError) Error() string {
	return fmt.Sprintf("resolve timezone %q: %v", e.Zone, e.Err)
}

func (e *ZoneError) Unwrap() error { return e.Err }
