package calendar

import (
	"encoding/json"
	"fmt"
	"time"
)

// LiturgicalYear is the finished, read-only calendar of one civil year:
// one Day per date from January 1 to December 31, in order.
type LiturgicalYear struct {
	year  int
	days  []Day
	index map[time.Time]int
}

func newLiturgicalYear(year int, days []Day) *LiturgicalYear {
	return &LiturgicalYear{
		year:  year,
		days:  days,
		index: indexDays(days),
	}
}

// Restore rebuilds a LiturgicalYear from previously built days, e.g. read
// back from storage. The days must cover the whole year in ascending order.
func Restore(year int, days []Day) (*LiturgicalYear, error) {
	expected := date(year, time.January, 1)
	out := make([]Day, 0, len(days))
	for _, d := range days {
		if expected.Year() != year {
			return nil, fmt.Errorf("%w: %s is past the end of %d", ErrInvalidYear, FormatDate(d.Date), year)
		}
		if !Truncate(d.Date).Equal(expected) {
			return nil, fmt.Errorf("%w: got %s, want %s", ErrInvalidYear, FormatDate(d.Date), FormatDate(expected))
		}
		c := d.clone()
		c.Date = expected
		out = append(out, c)
		expected = expected.AddDate(0, 0, 1)
	}
	if expected.Year() == year {
		return nil, fmt.Errorf("%w: %d ends at %s", ErrInvalidYear, year, FormatDate(expected.AddDate(0, 0, -1)))
	}
	return newLiturgicalYear(year, out), nil
}

// Year returns the civil year.
func (y *LiturgicalYear) Year() int {
	return y.year
}

// Len returns the number of days (365 or 366).
func (y *LiturgicalYear) Len() int {
	return len(y.days)
}

// Days returns a copy of every day in date order.
func (y *LiturgicalYear) Days() []Day {
	out := make([]Day, len(y.days))
	for i, d := range y.days {
		out[i] = d.clone()
	}
	return out
}

// Day returns the entry for date d.
func (y *LiturgicalYear) Day(d time.Time) (Day, bool) {
	i, ok := y.index[Truncate(d)]
	if !ok {
		return Day{}, false
	}
	return y.days[i].clone(), true
}

// FindByIdentifier returns the first day carrying the observance token.
// A token without precedence suffix matches any precedence.
func (y *LiturgicalYear) FindByIdentifier(token string) (Day, bool) {
	for _, d := range y.days {
		if d.Has(token) {
			return d.clone(), true
		}
	}
	return Day{}, false
}

// MarshalJSON encodes the year as {"year": N, "days": [...]}.
func (y *LiturgicalYear) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Year int   `json:"year"`
		Days []Day `json:"days"`
	}{
		Year: y.year,
		Days: y.days,
	})
}
