package calendar

import (
	"time"
)

// Tables supplies the rule tables the builder consumes: the ordered
// token lists of the movable blocks and the fixed-date tokens.
type Tables interface {
	// Block returns the tokens of the named block; "" marks a day the
	// block skips.
	Block(name string) ([]string, error)
	// FixedDays returns the fixed-date tokens whose MM_DD prefix matches
	// the given month and day.
	FixedDays(month time.Month, day int) []string
}

// mergeFixed appends the fixed-date identifiers of every day after the
// movable ones already placed there. Duplicate tokens for one date collapse
// to their first occurrence.
func (l *ledger) mergeFixed(tables Tables) {
	for i := range l.entries {
		entry := l.at(i)
		seen := make(map[string]bool)
		for _, token := range tables.FixedDays(entry.Date.Month(), entry.Date.Day()) {
			if token == "" || seen[token] {
				continue
			}
			seen[token] = true
			entry.Identifiers = append(entry.Identifiers, ParseIdentifier(token))
		}
	}
}
