package calendar

import (
	"encoding/json"
	"fmt"
	"time"
)

// Day is one calendar date and the observances placed on it.
type Day struct {
	Date        time.Time
	Identifiers []Identifier
}

// Has reports whether the day carries an identifier matching token.
func (d Day) Has(token string) bool {
	q := ParseIdentifier(token)
	for _, id := range d.Identifiers {
		if id.Matches(q) {
			return true
		}
	}
	return false
}

// Tokens returns the identifiers in token form.
func (d Day) Tokens() []string {
	out := make([]string, len(d.Identifiers))
	for i, id := range d.Identifiers {
		out[i] = id.String()
	}
	return out
}

func (d Day) clone() Day {
	ids := make([]Identifier, len(d.Identifiers))
	copy(ids, d.Identifiers)
	return Day{Date: d.Date, Identifiers: ids}
}

type dayJSON struct {
	Date        string   `json:"date"`
	Weekday     string   `json:"weekday"`
	Identifiers []string `json:"identifiers"`
}

// MarshalJSON encodes the day with a plain YYYY-MM-DD date.
func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(dayJSON{
		Date:        FormatDate(d.Date),
		Weekday:     DayName(d.Date),
		Identifiers: d.Tokens(),
	})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (d *Day) UnmarshalJSON(data []byte) error {
	var raw dayJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDateString(raw.Date)
	if err != nil {
		return fmt.Errorf("parse day date: %w", err)
	}
	d.Date = parsed
	d.Identifiers = make([]Identifier, len(raw.Identifiers))
	for i, token := range raw.Identifiers {
		d.Identifiers[i] = ParseIdentifier(token)
	}
	return nil
}

// ledger is the mutable per-year collection of days the builder works on.
// Positions are looked up through a date index rather than by scanning.
type ledger struct {
	year    int
	entries []Day
	index   map[time.Time]int
}

// newLedger creates one empty entry for every date of year.
func newLedger(year int) *ledger {
	l := &ledger{year: year}
	for d := date(year, time.January, 1); d.Year() == year; d = d.AddDate(0, 0, 1) {
		l.entries = append(l.entries, Day{Date: d})
	}
	l.index = indexDays(l.entries)
	return l
}

func indexDays(days []Day) map[time.Time]int {
	index := make(map[time.Time]int, len(days))
	for i, d := range days {
		index[d.Date] = i
	}
	return index
}

// indexOf returns the position of d in the ledger.
func (l *ledger) indexOf(d time.Time) (int, error) {
	i, ok := l.index[Truncate(d)]
	if !ok {
		return 0, fmt.Errorf("%w: %s not in %d", ErrNotFound, FormatDate(d), l.year)
	}
	return i, nil
}

// at returns the entry at position i for in-place mutation.
func (l *ledger) at(i int) *Day {
	return &l.entries[i]
}

func (l *ledger) len() int {
	return len(l.entries)
}
