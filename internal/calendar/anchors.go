package calendar

import (
	"bytes"
	"fmt"
	"time"
)

// HolyFamily calculates the Sunday of the Holy Family, the first Sunday
// after Epiphany. January 6 itself is never a candidate: when Epiphany
// falls on a Sunday the feast moves a full week to January 13.
func HolyFamily(year int) time.Time {
	epiphany := date(year, time.January, 6)
	delta := int(time.Sunday-epiphany.Weekday()+7) % 7
	if delta == 0 {
		delta = 7
	}
	return epiphany.AddDate(0, 0, delta)
}

// AdventSunday calculates the first Sunday of Advent: November 27 if it
// is a Sunday, otherwise the Sunday following it.
func AdventSunday(year int) time.Time {
	nov27 := date(year, time.November, 27)
	delta := int(time.Sunday-nov27.Weekday()+7) % 7
	return nov27.AddDate(0, 0, delta)
}

// Pentecost24 calculates the 24th (always the last) Sunday after
// Pentecost, the Sunday before Advent.
//
// It replaces the 23rd Sunday when there are only 23 of them, follows the
// 23rd week directly when there are 24, and follows the Sundays moved from
// the Epiphany season when there are more.
func Pentecost24(year int) time.Time {
	return AdventSunday(year).AddDate(0, 0, -7)
}

// SaturdayBeforePentecost24 closes the gap that opens between the 23rd and
// 24th Sundays after Pentecost when Easter is early. The remaining Sundays
// after Epiphany are laid backwards from this day.
func SaturdayBeforePentecost24(year int) time.Time {
	return Pentecost24(year).AddDate(0, 0, -1)
}

// SeptemberEmberWednesday calculates the Ember Wednesday of September, the
// Wednesday after the third Sunday of the month (motu proprio Rubricarum
// instructum, 1960).
func SeptemberEmberWednesday(year int) time.Time {
	d := date(year, time.September, 1)
	for d.Month() == time.September {
		if d.Weekday() == time.Sunday && d.Day() >= 15 && d.Day() <= 21 {
			break
		}
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 3)
}

// HolyName calculates the feast of the Most Holy Name of Jesus. It is kept
// on the first Sunday of the year, but when that Sunday is January 1, 6 or
// 7 the feast is kept on January 2.
func HolyName(year int) time.Time {
	for day := 1; day <= 7; day++ {
		d := date(year, time.January, day)
		if d.Weekday() != time.Sunday {
			continue
		}
		if day == 1 || day == 6 || day == 7 {
			return date(year, time.January, 2)
		}
		return d
	}
	// Seven consecutive days always contain a Sunday.
	panic("calendar: no Sunday in the first week of January")
}

// ChristTheKing calculates the feast of Christ the King, the last Sunday
// of October.
func ChristTheKing(year int) time.Time {
	d := date(year, time.October, 31)
	for d.Weekday() != time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// OctaveOfChristmasSunday returns the Sunday within the Octave of
// Christmas, the Sunday between December 27 and 31. The second result is
// false in years without such a Sunday; that is an ordinary outcome and
// the corresponding block is simply not laid.
func OctaveOfChristmasSunday(year int) (time.Time, bool) {
	sunday := FindSundayBetween(date(year, time.December, 27), date(year, time.December, 31))
	if sunday == nil {
		return time.Time{}, false
	}
	return *sunday, true
}

// Anchors holds every movable date of one year.
type Anchors struct {
	Year                      int
	Easter                    time.Time
	Septuagesima              time.Time
	AshWednesday              time.Time
	Ascension                 time.Time
	Pentecost                 time.Time
	HolyFamily                time.Time
	HolyName                  time.Time
	SeptemberEmberWednesday   time.Time
	ChristTheKing             time.Time
	Pentecost24               time.Time
	SaturdayBeforePentecost24 time.Time
	AdventSunday              time.Time
	OctaveOfChristmasSunday   *time.Time // nil when the year has none
}

// NamedDate pairs an anchor with its name.
type NamedDate struct {
	Name string
	Date time.Time
}

// Dates lists the anchors in calendar order under their snake_case names.
// The octave Sunday is omitted when the year has none.
func (a Anchors) Dates() []NamedDate {
	out := []NamedDate{
		{"holy_name", a.HolyName},
		{"holy_family", a.HolyFamily},
		{"septuagesima", a.Septuagesima},
		{"ash_wednesday", a.AshWednesday},
		{"easter", a.Easter},
		{"ascension", a.Ascension},
		{"pentecost", a.Pentecost},
		{"september_ember_wednesday", a.SeptemberEmberWednesday},
		{"christ_the_king", a.ChristTheKing},
		{"saturday_before_pentecost_24", a.SaturdayBeforePentecost24},
		{"pentecost_24", a.Pentecost24},
		{"advent_sunday", a.AdventSunday},
	}
	if a.OctaveOfChristmasSunday != nil {
		out = append(out, NamedDate{"octave_of_christmas_sunday", *a.OctaveOfChristmasSunday})
	}
	return out
}

// MarshalJSON encodes the anchors as {"year": N, "<name>": "YYYY-MM-DD", ...}
// with "octave_of_christmas_sunday" null when absent.
func (a Anchors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{"year":%d`, a.Year)
	for _, d := range a.Dates() {
		fmt.Fprintf(&buf, `,%q:%q`, d.Name, FormatDate(d.Date))
	}
	if a.OctaveOfChristmasSunday == nil {
		buf.WriteString(`,"octave_of_christmas_sunday":null`)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ComputeAnchors calculates all movable dates for year.
func ComputeAnchors(year int) Anchors {
	a := Anchors{
		Year:                      year,
		Easter:                    Easter(year),
		Septuagesima:              Septuagesima(year),
		AshWednesday:              AshWednesday(year),
		Ascension:                 Ascension(year),
		Pentecost:                 Pentecost(year),
		HolyFamily:                HolyFamily(year),
		HolyName:                  HolyName(year),
		SeptemberEmberWednesday:   SeptemberEmberWednesday(year),
		ChristTheKing:             ChristTheKing(year),
		Pentecost24:               Pentecost24(year),
		SaturdayBeforePentecost24: SaturdayBeforePentecost24(year),
		AdventSunday:              AdventSunday(year),
	}
	if sunday, ok := OctaveOfChristmasSunday(year); ok {
		a.OctaveOfChristmasSunday = &sunday
	}
	return a
}
