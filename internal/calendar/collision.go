package calendar

// resolveCollisions drops the lowest ranked identifier from every day that
// carries more than two. Only one identifier is removed per day: a day that
// collected four or more keeps three.
//
//	[03_08_1:3 sab_quadragesima_4:2 03_08_2:4] -> [03_08_1:3 sab_quadragesima_4:2]
func (l *ledger) resolveCollisions() {
	for i := range l.entries {
		entry := l.at(i)
		if len(entry.Identifiers) <= 2 {
			continue
		}
		worst := worstRanked(entry.Identifiers)
		entry.Identifiers = append(entry.Identifiers[:worst:worst], entry.Identifiers[worst+1:]...)
	}
}

// worstRanked returns the index of the lowest ranked identifier. Among
// identifiers of equal rank the last one loses.
func worstRanked(ids []Identifier) int {
	worst := 0
	for i := 1; i < len(ids); i++ {
		if !ids[i].outranks(ids[worst]) {
			worst = i
		}
	}
	return worst
}
