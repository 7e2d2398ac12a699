package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/missal1962/internal/calendar"
	"github.com/zapponejosh/missal1962/internal/database"
	"github.com/zapponejosh/missal1962/internal/logger"
	"github.com/zapponejosh/missal1962/internal/rules"
)

// memStore is an in-memory Store that counts calls.
type memStore struct {
	mu      sync.Mutex
	years   map[int]memEntry
	gets    int
	saves   int
	finds   int
	getErr  error
	saveErr error
}

type memEntry struct {
	year        *calendar.LiturgicalYear
	fingerprint string
}

func newMemStore() *memStore {
	return &memStore{years: make(map[int]memEntry)}
}

func (m *memStore) GetYear(_ context.Context, year int, fingerprint string) (*calendar.LiturgicalYear, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	e, ok := m.years[year]
	if !ok || e.fingerprint != fingerprint {
		return nil, database.ErrNotFound
	}
	return e.year, nil
}

func (m *memStore) SaveYear(_ context.Context, y *calendar.LiturgicalYear, rules database.RulesVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.years[y.Year()] = memEntry{year: y, fingerprint: rules.Fingerprint}
	return nil
}

func (m *memStore) FindDayByIdentifier(_ context.Context, year int, fingerprint, token string) (calendar.Day, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	if m.getErr != nil {
		return calendar.Day{}, m.getErr
	}
	e, ok := m.years[year]
	if !ok || e.fingerprint != fingerprint {
		return calendar.Day{}, database.ErrNotFound
	}
	day, ok := e.year.FindByIdentifier(token)
	if !ok {
		return calendar.Day{}, database.ErrNotFound
	}
	return day, nil
}

func (m *memStore) DeleteYear(_ context.Context, year int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.years[year]; !ok {
		return database.ErrNotFound
	}
	delete(m.years, year)
	return nil
}

func (m *memStore) ListYears(_ context.Context) ([]database.YearSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.YearSummary
	for year, e := range m.years {
		out = append(out, database.YearSummary{
			Year:             year,
			DayCount:         e.year.Len(),
			RulesFingerprint: e.fingerprint,
		})
	}
	return out, nil
}

func newCalendars(t *testing.T, store Store) *Calendars {
	t.Helper()
	tables, err := rules.Default()
	require.NoError(t, err)
	return New(store, tables, logger.Discard())
}

// customTables returns the 1962 tables with Easter Sunday renamed.
func customTables(t *testing.T) *rules.Rules {
	t.Helper()
	data, err := os.ReadFile("../rules/missal1962.yaml")
	require.NoError(t, err)
	data = bytes.Replace(data, []byte(`"dom_resurrectionis:1"`), []byte(`"dom_resurrectionis_custom:1"`), 1)
	tables, err := rules.Parse(data, "custom.yaml")
	require.NoError(t, err)
	return tables
}

func TestYear_BuildsAndCaches(t *testing.T) {
	store := newMemStore()
	c := newCalendars(t, store)
	ctx := context.Background()

	first, err := c.Year(ctx, 2008)
	require.NoError(t, err)
	assert.Equal(t, 366, first.Len())
	assert.Equal(t, 1, store.saves)

	second, err := c.Year(ctx, 2008)
	require.NoError(t, err)
	assert.Same(t, first, second, "second call served from the store")
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, 2, store.gets)
}

func TestYear_RebuildsWhenRulesChange(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	_, err := newCalendars(t, store).Year(ctx, 2008)
	require.NoError(t, err)
	require.Equal(t, 1, store.saves)

	custom := customTables(t)
	c := New(store, custom, logger.Discard())
	y, err := c.Year(ctx, 2008)
	require.NoError(t, err)
	assert.Equal(t, 2, store.saves, "year cached from other tables is rebuilt")

	easter, ok := y.Day(time.Date(2008, time.March, 23, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, []string{"dom_resurrectionis_custom:1"}, easter.Tokens())

	years, err := c.CachedYears(ctx)
	require.NoError(t, err)
	require.Len(t, years, 1)
	assert.Equal(t, custom.Fingerprint(), years[0].RulesFingerprint)

	again, err := c.Year(ctx, 2008)
	require.NoError(t, err)
	assert.Same(t, y, again)
	assert.Equal(t, 2, store.saves)
}

func TestYear_WithoutStore(t *testing.T) {
	c := newCalendars(t, nil)
	assert.False(t, c.Cached())
	assert.Equal(t, rules.DefaultSource, c.RulesSource())

	y, err := c.Year(context.Background(), 2022)
	require.NoError(t, err)
	assert.Equal(t, 365, y.Len())
}

func TestYear_OutOfRange(t *testing.T) {
	c := newCalendars(t, newMemStore())

	_, err := c.Year(context.Background(), 1500)
	assert.ErrorIs(t, err, calendar.ErrYearOutOfRange)

	_, err = c.Anchors(10000)
	assert.ErrorIs(t, err, calendar.ErrYearOutOfRange)
}

func TestYear_StoreFailuresDoNotFailRequests(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("disk on fire")
	store.saveErr = errors.New("disk still on fire")
	c := newCalendars(t, store)

	y, err := c.Year(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, 366, y.Len())
	assert.Equal(t, 1, store.saves)
}

func TestYear_ConcurrentCallersShareResult(t *testing.T) {
	c := newCalendars(t, newMemStore())

	var wg sync.WaitGroup
	results := make([]*calendar.LiturgicalYear, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			y, err := c.Year(context.Background(), 2025)
			assert.NoError(t, err)
			results[i] = y
		}(i)
	}
	wg.Wait()

	for _, y := range results {
		require.NotNil(t, y)
		assert.Equal(t, results[0].Days(), y.Days())
	}
}

func TestDay(t *testing.T) {
	c := newCalendars(t, nil)

	day, err := c.Day(context.Background(), time.Date(2008, time.March, 23, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{"dom_resurrectionis:1"}, day.Tokens())
}

func TestAnchors(t *testing.T) {
	c := newCalendars(t, nil)

	a, err := c.Anchors(2008)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2008, time.March, 23, 0, 0, 0, 0, time.UTC), a.Easter)
}

func TestFindObservance(t *testing.T) {
	c := newCalendars(t, newMemStore())
	ctx := context.Background()

	day, err := c.FindObservance(ctx, 2008, "dom_adventus_1")
	require.NoError(t, err)
	assert.Equal(t, "2008-11-30", calendar.FormatDate(day.Date))

	_, err = c.FindObservance(ctx, 2038, "dom_post_pentecost_23")
	assert.ErrorIs(t, err, calendar.ErrNotFound)

	_, err = c.FindObservance(ctx, 1400, "dom_adventus_1")
	assert.ErrorIs(t, err, calendar.ErrYearOutOfRange)
}

func TestFindObservance_ServedFromStore(t *testing.T) {
	store := newMemStore()
	c := newCalendars(t, store)
	ctx := context.Background()

	_, err := c.Year(ctx, 2008)
	require.NoError(t, err)
	gets := store.gets

	day, err := c.FindObservance(ctx, 2008, "dom_resurrectionis:1")
	require.NoError(t, err)
	assert.Equal(t, "2008-03-23", calendar.FormatDate(day.Date))
	assert.Equal(t, 1, store.finds)
	assert.Equal(t, gets, store.gets, "year not loaded")
}

func TestFindObservance_StoreFailureFallsBack(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("disk on fire")
	c := newCalendars(t, store)

	day, err := c.FindObservance(context.Background(), 2008, "dom_adventus_1")
	require.NoError(t, err)
	assert.Equal(t, "2008-11-30", calendar.FormatDate(day.Date))
	assert.Equal(t, 1, store.finds)
}

func TestPurge(t *testing.T) {
	store := newMemStore()
	c := newCalendars(t, store)
	ctx := context.Background()

	_, err := c.Year(ctx, 2008)
	require.NoError(t, err)

	years, err := c.CachedYears(ctx)
	require.NoError(t, err)
	require.Len(t, years, 1)

	require.NoError(t, c.Purge(ctx, 2008))
	assert.ErrorIs(t, c.Purge(ctx, 2008), database.ErrNotFound)
	assert.ErrorIs(t, c.Purge(ctx, 1000), calendar.ErrYearOutOfRange)
}

func TestPurge_WithoutStore(t *testing.T) {
	c := newCalendars(t, nil)

	assert.ErrorIs(t, c.Purge(context.Background(), 2008), ErrNotCached)
	_, err := c.CachedYears(context.Background())
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestCalendars_WithDatabase(t *testing.T) {
	db, err := database.Open(database.DefaultConfig(":memory:"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Migrate(context.Background())
	require.NoError(t, err)

	c := newCalendars(t, db)
	ctx := context.Background()

	built, err := c.Year(ctx, 2038)
	require.NoError(t, err)

	cached, err := db.GetYear(ctx, 2038, c.tables.Fingerprint())
	require.NoError(t, err)
	assert.Equal(t, built.Days(), cached.Days())

	again, err := c.Year(ctx, 2038)
	require.NoError(t, err)
	assert.Equal(t, built.Days(), again.Days())

	day, err := c.FindObservance(ctx, 2038, "dom_adventus_1")
	require.NoError(t, err)
	assert.Equal(t, "2038-11-28", calendar.FormatDate(day.Date))

	// Other tables miss the cache and overwrite the stored year.
	custom := New(db, customTables(t), logger.Discard())
	rebuilt, err := custom.Year(ctx, 2038)
	require.NoError(t, err)
	assert.NotEqual(t, built.Days(), rebuilt.Days())

	_, err = db.GetYear(ctx, 2038, c.tables.Fingerprint())
	assert.ErrorIs(t, err, database.ErrNotFound)
	cached, err = db.GetYear(ctx, 2038, custom.tables.Fingerprint())
	require.NoError(t, err)
	assert.Equal(t, rebuilt.Days(), cached.Days())
}
