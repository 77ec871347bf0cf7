package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Clock is a same-day wall-clock time stored as minutes since midnight.
type Clock int

// EndOfDay is 24:00, accepted only as the end of a slot.
const EndOfDay Clock = 24 * 60

var (
	ErrInvalidClock = errors.New("invalid time, expected HH:MM")
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrEmptySlot    = errors.New("start time must be before end time")
)

// ParseClock accepts H:MM or HH:MM in the range 00:00..24:00.
func ParseClock(raw string) (Clock, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 {
		return 0, ErrInvalidClock
	}

	hours, ok := parseDigits(h)
	if !ok {
		return 0, ErrInvalidClock
	}
	minutes, ok := parseDigits(m)
	if !ok {
		return 0, ErrInvalidClock
	}

	if minutes > 59 || hours > 24 || (hours == 24 && minutes != 0) {
		return 0, ErrInvalidClock
	}
	return Clock(hours*60 + minutes), nil
}

func parseDigits(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// String formats the clock as zero-padded HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseClock(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2) intersect.
// Back-to-back intervals (e1 == s2) do not overlap.
func Overlaps(s1, e1, s2, e2 Clock) bool {
	return s1 < e2 && s2 < e1
}

// ParseDate accepts a calendar day (YYYY-MM-DD) or an RFC 3339 timestamp
// and returns midnight UTC of that day.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Slot is a candidate or booked interval at a venue on a given day.
type Slot struct {
	VenueID string
	Date    time.Time
	Start   Clock
	End     Clock
}

// Validate rejects zero-length, inverted and cross-midnight intervals.
func (s Slot) Validate() error {
	if s.Start >= s.End || s.Start >= EndOfDay {
		return ErrEmptySlot
	}
	return nil
}

// DateKey is the persisted form of the slot day.
func (s Slot) DateKey() string {
	return s.Date.Format(DateLayout)
}

// Overlaps reports whether both slots share venue, day and some time.
func (s Slot) Overlaps(other Slot) bool {
	return s.VenueID == other.VenueID &&
		s.DateKey() == other.DateKey() &&
		Overlaps(s.Start, s.End, other.Start, other.End)
}
