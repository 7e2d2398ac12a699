// Package calendar builds the yearly calendar of the 1962 Roman Missal:
// one entry per civil day carrying the identifiers of the observances
// that fall on it.
package calendar

import (
	"time"
)

// Easter calculates the date of Easter Sunday for a given year
// using the computus algorithm for the Gregorian calendar.
//
// The algorithm is the anonymous Gregorian one (Meeus/Jones/Butcher)
// and is valid for all years in the Gregorian calendar.
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return date(year, time.Month(month), day)
}

// AshWednesday is 46 days before Easter.
func AshWednesday(year int) time.Time {
	return Easter(year).AddDate(0, 0, -46)
}

// Ascension is 39 days after Easter (always on a Thursday).
func Ascension(year int) time.Time {
	return Easter(year).AddDate(0, 0, 39)
}

// Pentecost is 49 days after Easter (7 weeks).
func Pentecost(year int) time.Time {
	return Easter(year).AddDate(0, 0, 49)
}

// Septuagesima calculates Septuagesima Sunday, the beginning of the
// pre-Lenten season. It is 63 days before Easter and opens the block of
// days that depends on Easter.
func Septuagesima(year int) time.Time {
	return Easter(year).AddDate(0, 0, -63)
}
