package calendar

import (
	"fmt"
	"time"
)

// Year bounds accepted by the public surfaces. The Gregorian reform
// took effect in October 1582, so 1583 is the first full Gregorian year.
const (
	MinYear = 1583
	MaxYear = 9999
)

// ValidateYear reports whether year can be built.
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrYearOutOfRange, year, MinYear, MaxYear)
	}
	return nil
}

// date returns midnight UTC of the given day. Every date handled by the
// package is normalised this way so dates compare with ==.
func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate normalises t to midnight UTC of its calendar day.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return date(y, m, d)
}

// DayName returns the day of week name (Sunday, Monday, etc.)
func DayName(d time.Time) string {
	days := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	return days[d.Weekday()]
}

// FindSundayBetween finds the Sunday within a date range (inclusive).
// Returns nil if no Sunday exists in the range.
func FindSundayBetween(start, end time.Time) *time.Time {
	current := Truncate(start)
	end = Truncate(end)
	for !current.After(end) {
		if current.Weekday() == time.Sunday {
			return &current
		}
		current = current.AddDate(0, 0, 1)
	}

	return nil
}

// ParseDateString parses a date string in YYYY-MM-DD format
func ParseDateString(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// FormatDate formats a date as YYYY-MM-DD
func FormatDate(d time.Time) string {
	return d.Format("2006-01-02")
}
