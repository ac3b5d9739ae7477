package services

import "time"

// CivilDate drops clock and zone information, keeping only the calendar
// date of value as observed in its own location. Used where the rules
// compare dates regardless of origin timezone.
func CivilDate(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// LocalDate truncates value to a calendar date in location.
func LocalDate(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// WeekStart returns the Monday of the ISO week containing d.
func WeekStart(d time.Time) time.Time {
	date := CivilDate(d)
	offset := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -offset)
}

// SameDay reports whether two values share a calendar date.
func SameDay(a time.Time, b time.Time) bool {
	return CivilDate(a).Equal(CivilDate(b))
}
