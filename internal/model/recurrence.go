package model

import "fmt"

type Frequency string

const (
	FrequencyNone    Frequency = "none"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// ParseFrequency validates a frequency name; the empty string means none.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case "", FrequencyNone:
		return FrequencyNone, nil
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return Frequency(s), nil
	default:
		return "", fmt.Errorf("unknown frequency %q", s)
	}
}

// Repeats reports whether the frequency produces more than the base instance.
func (f Frequency) Repeats() bool {
	return f != FrequencyNone && f != ""
}

// RecurrenceRule turns one base slot definition into a dated series. Until
// is inclusive and required whenever the frequency repeats.
type RecurrenceRule struct {
	Frequency Frequency `json:"frequency"`
	Until     Date      `json:"until"`
}
