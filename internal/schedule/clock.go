package schedule

import "time"

// DateOf truncates t to its calendar date (midnight in t's location).
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AddDays returns the date n days after t, preserving the wall clock.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}
