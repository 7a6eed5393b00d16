package model

import (
	"time"

	"github.com/google/uuid"
)

type SlotOrigin string

const (
	SlotOriginUser      SlotOrigin = "user"
	SlotOriginSynthetic SlotOrigin = "synthetic"
)

// Slot is an owned, dated, half-open availability interval. Date and times
// are wall-clock values interpreted in Timezone; slots are stored in the
// zone they were entered in and projected into a display zone on read.
type Slot struct {
	ID        int64      `json:"id"`
	OwnerID   string     `json:"owner_id"`
	OwnerName string     `json:"owner_name"`
	Date      Date       `json:"date"`
	StartTime TimeOfDay  `json:"start_time"`
	EndTime   TimeOfDay  `json:"end_time"`
	Timezone  string     `json:"timezone"`
	Origin    SlotOrigin `json:"origin"`
	SeriesID  *uuid.UUID `json:"series_id,omitempty"` // shared by instances of one recurrence expansion
	CreatedAt time.Time  `json:"created_at"`
}

// Draft strips the store-assigned fields from a slot.
func (s Slot) Draft() SlotDraft {
	return SlotDraft{
		OwnerID:   s.OwnerID,
		OwnerName: s.OwnerName,
		Date:      s.Date,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Timezone:  s.Timezone,
		Origin:    s.Origin,
		SeriesID:  s.SeriesID,
	}
}

// SlotDraft is a slot before its first persistence, with no ID yet.
type SlotDraft struct {
	OwnerID   string     `json:"owner_id"`
	OwnerName string     `json:"owner_name"`
	Date      Date       `json:"date"`
	StartTime TimeOfDay  `json:"start_time"`
	EndTime   TimeOfDay  `json:"end_time"`
	Timezone  string     `json:"timezone"`
	Origin    SlotOrigin `json:"origin"`
	SeriesID  *uuid.UUID `json:"series_id,omitempty"`
}

// Slot lifts a draft into an unpersisted slot (ID zero).
func (d SlotDraft) Slot() Slot {
	return Slot{
		OwnerID:   d.OwnerID,
		OwnerName: d.OwnerName,
		Date:      d.Date,
		StartTime: d.StartTime,
		EndTime:   d.EndTime,
		Timezone:  d.Timezone,
		Origin:    d.Origin,
		SeriesID:  d.SeriesID,
	}
}

// SlotPatch carries an owner edit; nil fields are left unchanged.
type SlotPatch struct {
	Date      *Date      `json:"date,omitempty"`
	StartTime *TimeOfDay `json:"start_time,omitempty"`
	EndTime   *TimeOfDay `json:"end_time,omitempty"`
	Timezone  *string    `json:"timezone,omitempty"`
}

// Apply sets the patched fields on a slot in place. The slot's ID, owner
// and origin are never touched.
func (p SlotPatch) Apply(s *Slot) {
	if p.Date != nil {
		s.Date = *p.Date
	}
	if p.StartTime != nil {
		s.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		s.EndTime = *p.EndTime
	}
	if p.Timezone != nil {
		s.Timezone = *p.Timezone
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p SlotPatch) IsEmpty() bool {
	return p.Date == nil && p.StartTime == nil && p.EndTime == nil && p.Timezone == nil
}
