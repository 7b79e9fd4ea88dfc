package schedule

import "time"

// Window is a concrete trip window on a single calendar date.
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps applies the half-open overlap rule: a window that ends exactly when
// another begins does not conflict.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// Booking is an already-approved trip as stored: a calendar date plus raw
// time-of-day strings. The strings are parsed here rather than upstream so a
// malformed stored value fails closed instead of crashing the availability
// query.
type Booking struct {
	Date       time.Time
	PickupTime string
	DropTime   string
}

// EffectiveStart clamps a same-day start instant that is already in the past
// to now. A trip that started earlier today is checked against its remaining
// window, not written off as entirely in the past. The end is never clamped.
func EffectiveStart(start, now time.Time) time.Time {
	if SameDay(start, now) && start.Before(now) {
		return now
	}
	return start
}

// Available reports whether a resource with the given existing bookings is
// free for the proposed window. A booking whose stored times cannot be parsed
// makes the resource unavailable: a false negative here is safer than a silent
// double booking.
func Available(proposed Window, now time.Time, existing []Booking) bool {
	effective := Window{Start: EffectiveStart(proposed.Start, now), End: proposed.End}

	for _, b := range existing {
		pickup, err := ParseTimeOfDay(b.PickupTime)
		if err != nil {
			return false
		}
		drop, err := ParseTimeOfDay(b.DropTime)
		if err != nil {
			return false
		}
		booked := Window{Start: pickup.At(b.Date), End: drop.At(b.Date)}
		if effective.Overlaps(booked) {
			return false
		}
	}
	return true
}
