package calendar

import (
	"fmt"
	"time"
)

// Names of the blocks a Tables implementation must provide.
const (
	BlockPostEpiphania      = "post_epiphania"
	BlockResurrectionis     = "resurrectionis"
	BlockPostPentecost24    = "hebd_post_pentecost_24"
	BlockAdventus           = "adventus"
	BlockHolyName           = "sanctissimi_nominis_jesu"
	BlockSeptemberEmberDays = "quattuor_temporum_septembris"
	BlockChristTheKing      = "jesu_christi_regis"
	BlockOctaveOfChristmas  = "dom_octavam_nativitatis"
)

// RequiredBlocks lists every block the builder lays down.
var RequiredBlocks = []string{
	BlockPostEpiphania,
	BlockResurrectionis,
	BlockPostPentecost24,
	BlockAdventus,
	BlockHolyName,
	BlockSeptemberEmberDays,
	BlockChristTheKing,
	BlockOctaveOfChristmas,
}

// insertOptions controls one block insertion.
type insertOptions struct {
	// stopDate, when set, forbids writing on the day after it.
	stopDate *time.Time
	// reverse lays the block backwards so that its last token lands on
	// the start date.
	reverse bool
	// keepExisting stops the insertion at the first day that already
	// carries an identifier.
	keepExisting bool
}

// insert lays block onto consecutive days starting at start.
//
// Empty tokens leave their day untouched. A written day has its
// identifiers replaced by the single token, so later insertions win over
// earlier ones. The walk ends at the ledger boundary.
func (l *ledger) insert(start time.Time, block []string, opts insertOptions) error {
	first, err := l.indexOf(start)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDateNotInYear, FormatDate(start))
	}

	tokens := block
	if opts.reverse {
		tokens = make([]string, len(block))
		for i, token := range block {
			tokens[len(block)-1-i] = token
		}
	}

	for i, token := range tokens {
		pos := first + i
		if opts.reverse {
			pos = first - i
		}
		if pos < 0 || pos >= l.len() {
			break
		}
		if token == "" {
			continue
		}
		entry := l.at(pos)
		if opts.keepExisting && len(entry.Identifiers) > 0 {
			break
		}
		if opts.stopDate != nil && pos > 0 && l.at(pos-1).Date.Equal(*opts.stopDate) {
			break
		}
		entry.Identifiers = []Identifier{ParseIdentifier(token)}
	}
	return nil
}

// Placement is one scheduled block insertion.
type Placement struct {
	Block        string
	Start        time.Time
	StopDate     *time.Time
	Reverse      bool
	KeepExisting bool
}

func (p Placement) options() insertOptions {
	return insertOptions{stopDate: p.StopDate, reverse: p.Reverse, keepExisting: p.KeepExisting}
}

// MovablePlan returns the block insertions for year in the order they must
// be applied. The order is part of the calendar's precedence law: later
// placements overwrite earlier ones unless KeepExisting is set.
func MovablePlan(year int) []Placement {
	adventStop := date(year, time.December, 23)
	plan := []Placement{
		{Block: BlockPostEpiphania, Start: HolyFamily(year)},
		{Block: BlockResurrectionis, Start: Septuagesima(year)},
		{Block: BlockPostEpiphania, Start: SaturdayBeforePentecost24(year), Reverse: true, KeepExisting: true},
		{Block: BlockPostPentecost24, Start: Pentecost24(year)},
		{Block: BlockAdventus, Start: AdventSunday(year), StopDate: &adventStop},
		{Block: BlockHolyName, Start: HolyName(year)},
		{Block: BlockSeptemberEmberDays, Start: SeptemberEmberWednesday(year)},
		{Block: BlockChristTheKing, Start: ChristTheKing(year)},
	}
	if sunday, ok := OctaveOfChristmasSunday(year); ok {
		plan = append(plan, Placement{Block: BlockOctaveOfChristmas, Start: sunday})
	}
	return plan
}
