package testhelpers

import "time"

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DayPtr is Day returning a pointer, for optional model fields.
func DayPtr(year int, month time.Month, day int) *time.Time {
	d := Day(year, month, day)
	return &d
}
