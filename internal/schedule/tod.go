package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time without a date. Requisitions carry pickup and
// drop as times of day on a single calendar date; the store keeps them as
// HH:MM:SS strings and this type is the boundary between the two.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses HH:MM or HH:MM:SS. Parsing is strict: any leftover
// input is an error, so a corrupted stored value surfaces as a parse failure
// instead of silently reading as a different time.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: want HH:MM or HH:MM:SS", s)
	}

	var t TimeOfDay
	fields := []*int{&t.Hour, &t.Minute, &t.Second}
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
		}
		*fields[i] = v
	}

	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: out of range", s)
	}
	return t, nil
}

// String formats as HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// At combines the time of day with a calendar date, keeping the date's
// location.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, t.Second, 0, date.Location())
}

// Before reports whether t is earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.seconds() < other.seconds()
}

// Sub returns the duration between two times of day on the same date.
func (t TimeOfDay) Sub(other TimeOfDay) time.Duration {
	return time.Duration(t.seconds()-other.seconds()) * time.Second
}

// IsZero reports whether t is the zero value (midnight, i.e. unset).
func (t TimeOfDay) IsZero() bool {
	return t.Hour == 0 && t.Minute == 0 && t.Second == 0
}

func (t TimeOfDay) seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}
