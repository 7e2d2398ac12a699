package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTables is an in-memory Tables implementation for tests.
type fakeTables struct {
	blocks map[string][]string
	fixed  map[string][]string
}

func (f fakeTables) Block(name string) ([]string, error) {
	tokens, ok := f.blocks[name]
	if !ok {
		return nil, ErrNotFound
	}
	return tokens, nil
}

func (f fakeTables) FixedDays(month time.Month, day int) []string {
	return f.fixed[date(2000, month, day).Format("01_02")]
}

// tokensAt returns the tokens of the day at date s.
func tokensAt(t *testing.T, l *ledger, s string) []string {
	t.Helper()
	i, err := l.indexOf(d(s))
	require.NoError(t, err)
	return l.at(i).Tokens()
}

func seed(t *testing.T, l *ledger, s string, tokens ...string) {
	t.Helper()
	i, err := l.indexOf(d(s))
	require.NoError(t, err)
	for _, token := range tokens {
		l.at(i).Identifiers = append(l.at(i).Identifiers, ParseIdentifier(token))
	}
}

func TestNewLedger(t *testing.T) {
	tests := []struct {
		year int
		want int
	}{
		{2008, 366},
		{2009, 365},
		{1900, 365},
		{2000, 366},
	}

	for _, tt := range tests {
		l := newLedger(tt.year)
		require.Equal(t, tt.want, l.len(), "year %d", tt.year)
		assert.Equal(t, date(tt.year, time.January, 1), l.at(0).Date)
		assert.Equal(t, date(tt.year, time.December, 31), l.at(l.len()-1).Date)
		for i := 1; i < l.len(); i++ {
			if !l.at(i).Date.Equal(l.at(i-1).Date.AddDate(0, 0, 1)) {
				t.Fatalf("year %d: gap between %s and %s", tt.year, FormatDate(l.at(i-1).Date), FormatDate(l.at(i).Date))
			}
			if len(l.at(i).Identifiers) != 0 {
				t.Fatalf("year %d: new entry %s is not empty", tt.year, FormatDate(l.at(i).Date))
			}
		}
	}
}

func TestLedger_IndexOf(t *testing.T) {
	l := newLedger(2008)

	i, err := l.indexOf(d("2008-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	i, err = l.indexOf(d("2008-12-31"))
	require.NoError(t, err)
	assert.Equal(t, 365, i)

	// Time of day and location do not matter.
	i, err = l.indexOf(time.Date(2008, time.March, 1, 18, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 60, i)

	_, err = l.indexOf(d("2009-01-01"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsert_Forward(t *testing.T) {
	l := newLedger(2008)
	seed(t, l, "2008-01-14", "old:1")

	err := l.insert(d("2008-01-13"), []string{"a:2", "b:4", "c:4"}, insertOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a:2"}, tokensAt(t, l, "2008-01-13"))
	// Existing identifiers are replaced, not appended to.
	assert.Equal(t, []string{"b:4"}, tokensAt(t, l, "2008-01-14"))
	assert.Equal(t, []string{"c:4"}, tokensAt(t, l, "2008-01-15"))
	assert.Empty(t, tokensAt(t, l, "2008-01-16"))
	assert.Empty(t, tokensAt(t, l, "2008-01-12"))
}

func TestInsert_SkipsPlaceholders(t *testing.T) {
	l := newLedger(2008)
	seed(t, l, "2008-09-25", "kept:3")

	err := l.insert(d("2008-09-24"), []string{"wed:2", "", "fri:2", "sat:2"}, insertOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"wed:2"}, tokensAt(t, l, "2008-09-24"))
	assert.Equal(t, []string{"kept:3"}, tokensAt(t, l, "2008-09-25"))
	assert.Equal(t, []string{"fri:2"}, tokensAt(t, l, "2008-09-26"))
	assert.Equal(t, []string{"sat:2"}, tokensAt(t, l, "2008-09-27"))
}

func TestInsert_Reverse(t *testing.T) {
	l := newLedger(2008)

	err := l.insert(d("2008-11-22"), []string{"thu", "fri", "sat"}, insertOptions{reverse: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"thu"}, tokensAt(t, l, "2008-11-20"))
	assert.Equal(t, []string{"fri"}, tokensAt(t, l, "2008-11-21"))
	assert.Equal(t, []string{"sat"}, tokensAt(t, l, "2008-11-22"))
	assert.Empty(t, tokensAt(t, l, "2008-11-19"))
	assert.Empty(t, tokensAt(t, l, "2008-11-23"))
}

func TestInsert_KeepExistingStopsAtFirstOccupiedDay(t *testing.T) {
	l := newLedger(2008)
	seed(t, l, "2008-11-19", "occupied:4")
	seed(t, l, "2008-11-17", "beyond:4")

	block := []string{"mon", "tue", "wed", "thu", "fri", "sat"}
	err := l.insert(d("2008-11-22"), block, insertOptions{reverse: true, keepExisting: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"sat"}, tokensAt(t, l, "2008-11-22"))
	assert.Equal(t, []string{"fri"}, tokensAt(t, l, "2008-11-21"))
	assert.Equal(t, []string{"thu"}, tokensAt(t, l, "2008-11-20"))
	// The occupied day and everything beyond it are untouched.
	assert.Equal(t, []string{"occupied:4"}, tokensAt(t, l, "2008-11-19"))
	assert.Empty(t, tokensAt(t, l, "2008-11-18"))
	assert.Equal(t, []string{"beyond:4"}, tokensAt(t, l, "2008-11-17"))
}

func TestInsert_KeepExistingStopsImmediately(t *testing.T) {
	l := newLedger(2008)
	seed(t, l, "2008-11-22", "occupied:4")

	err := l.insert(d("2008-11-22"), []string{"fri", "sat"}, insertOptions{reverse: true, keepExisting: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"occupied:4"}, tokensAt(t, l, "2008-11-22"))
	assert.Empty(t, tokensAt(t, l, "2008-11-21"))
}

func TestInsert_StopDate(t *testing.T) {
	l := newLedger(2008)
	stop := d("2008-12-23")

	block := make([]string, 28)
	for i := range block {
		block[i] = "advent"
	}
	err := l.insert(d("2008-11-30"), block, insertOptions{stopDate: &stop})
	require.NoError(t, err)

	assert.Equal(t, []string{"advent"}, tokensAt(t, l, "2008-12-22"))
	assert.Equal(t, []string{"advent"}, tokensAt(t, l, "2008-12-23"))
	assert.Empty(t, tokensAt(t, l, "2008-12-24"))
	assert.Empty(t, tokensAt(t, l, "2008-12-27"))
}

func TestInsert_EndsAtLedgerBoundary(t *testing.T) {
	l := newLedger(2008)

	err := l.insert(d("2008-12-30"), []string{"a", "b", "c", "d"}, insertOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, tokensAt(t, l, "2008-12-30"))
	assert.Equal(t, []string{"b"}, tokensAt(t, l, "2008-12-31"))

	err = l.insert(d("2008-01-02"), []string{"x", "y", "z"}, insertOptions{reverse: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, tokensAt(t, l, "2008-01-01"))
	assert.Equal(t, []string{"z"}, tokensAt(t, l, "2008-01-02"))
	// Nothing wrapped around to the end of the year.
	assert.Equal(t, []string{"b"}, tokensAt(t, l, "2008-12-31"))
}

func TestInsert_DateNotInYear(t *testing.T) {
	l := newLedger(2008)

	err := l.insert(d("2009-01-01"), []string{"a"}, insertOptions{})
	assert.ErrorIs(t, err, ErrDateNotInYear)
}

func TestMergeFixed(t *testing.T) {
	l := newLedger(2008)
	seed(t, l, "2008-03-19", "f4_hebdomadae_sanctae:1")

	tables := fakeTables{fixed: map[string][]string{
		"03_19": {"03_19.joseph:1", "03_19.extra:4", "03_19.joseph:1"},
		"12_25": {"12_25.nativitas:1"},
	}}
	l.mergeFixed(tables)

	// Movable identifiers first, then fixed ones, duplicates collapsed.
	assert.Equal(t, []string{"f4_hebdomadae_sanctae:1", "03_19.joseph:1", "03_19.extra:4"}, tokensAt(t, l, "2008-03-19"))
	assert.Equal(t, []string{"12_25.nativitas:1"}, tokensAt(t, l, "2008-12-25"))
	assert.Empty(t, tokensAt(t, l, "2008-03-20"))
}
