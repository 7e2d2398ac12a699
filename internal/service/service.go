// Package service serves liturgical years to the API and CLI, building each
// year once and keeping it in the database cache when one is configured.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zapponejosh/missal1962/internal/calendar"
	"github.com/zapponejosh/missal1962/internal/database"
)

// ErrNotCached is returned by operations that need the cache when the
// service runs without one.
var ErrNotCached = errors.New("year cache disabled")

// Store persists built years. *database.DB implements it.
type Store interface {
	GetYear(ctx context.Context, year int, fingerprint string) (*calendar.LiturgicalYear, error)
	SaveYear(ctx context.Context, y *calendar.LiturgicalYear, rules database.RulesVersion) error
	FindDayByIdentifier(ctx context.Context, year int, fingerprint, token string) (calendar.Day, error)
	DeleteYear(ctx context.Context, year int) error
	ListYears(ctx context.Context) ([]database.YearSummary, error)
}

// Tables is a calendar.Tables that can name where it was loaded from and
// fingerprint its content. *rules.Rules implements it.
type Tables interface {
	calendar.Tables
	Source() string
	Fingerprint() string
}

// Calendars builds and caches liturgical years. It is safe for concurrent
// use; concurrent requests for the same uncached year share one build.
type Calendars struct {
	store  Store
	tables Tables
	logger *slog.Logger
	group  singleflight.Group
}

// New creates a Calendars. store may be nil to build every year on demand.
func New(store Store, tables Tables, logger *slog.Logger) *Calendars {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calendars{
		store:  store,
		tables: tables,
		logger: logger,
	}
}

// Cached reports whether built years are persisted.
func (c *Calendars) Cached() bool {
	return c.store != nil
}

// RulesSource names the rule tables years are built from.
func (c *Calendars) RulesSource() string {
	return c.tables.Source()
}

// version identifies the tables in the cache.
func (c *Calendars) version() database.RulesVersion {
	return database.RulesVersion{
		Source:      c.tables.Source(),
		Fingerprint: c.tables.Fingerprint(),
	}
}

// Year returns the liturgical year, from the cache when present. A year
// cached from different rule tables is rebuilt and replaced.
func (c *Calendars) Year(ctx context.Context, year int) (*calendar.LiturgicalYear, error) {
	if err := calendar.ValidateYear(year); err != nil {
		return nil, err
	}

	if c.store != nil {
		y, err := c.store.GetYear(ctx, year, c.tables.Fingerprint())
		if err == nil {
			c.logger.DebugContext(ctx, "year served from cache", slog.Int("year", year))
			return y, nil
		}
		if !database.IsNotFound(err) {
			// A broken cache entry is rebuilt rather than failing the request.
			c.logger.WarnContext(ctx, "read cached year",
				slog.Int("year", year),
				slog.Any("error", err),
			)
		}
	}

	v, err, _ := c.group.Do(strconv.Itoa(year), func() (any, error) {
		return c.build(ctx, year)
	})
	if err != nil {
		return nil, err
	}
	return v.(*calendar.LiturgicalYear), nil
}

// build runs the builder and stores the result.
func (c *Calendars) build(ctx context.Context, year int) (*calendar.LiturgicalYear, error) {
	start := time.Now()
	y, err := calendar.Build(year, c.tables)
	if err != nil {
		return nil, err
	}
	c.logger.InfoContext(ctx, "year built",
		slog.Int("year", year),
		slog.Int("days", y.Len()),
		slog.Duration("duration", time.Since(start)),
	)

	if c.store != nil {
		if err := c.store.SaveYear(ctx, y, c.version()); err != nil {
			// The year is still usable; it will be built again next time.
			c.logger.WarnContext(ctx, "cache year",
				slog.Int("year", year),
				slog.Any("error", err),
			)
		}
	}
	return y, nil
}

// Day returns one day of a year.
func (c *Calendars) Day(ctx context.Context, date time.Time) (calendar.Day, error) {
	y, err := c.Year(ctx, date.Year())
	if err != nil {
		return calendar.Day{}, err
	}
	day, ok := y.Day(date)
	if !ok {
		return calendar.Day{}, fmt.Errorf("%s: %w", calendar.FormatDate(date), calendar.ErrNotFound)
	}
	return day, nil
}

// Anchors returns the movable anchor dates of year.
func (c *Calendars) Anchors(year int) (calendar.Anchors, error) {
	if err := calendar.ValidateYear(year); err != nil {
		return calendar.Anchors{}, err
	}
	return calendar.ComputeAnchors(year), nil
}

// FindObservance returns the first day of year carrying the observance
// token, looked up in the cache when the year is stored there. The error
// wraps calendar.ErrNotFound when no day carries it.
func (c *Calendars) FindObservance(ctx context.Context, year int, token string) (calendar.Day, error) {
	if err := calendar.ValidateYear(year); err != nil {
		return calendar.Day{}, err
	}

	if c.store != nil {
		day, err := c.store.FindDayByIdentifier(ctx, year, c.tables.Fingerprint(), token)
		if err == nil {
			c.logger.DebugContext(ctx, "observance served from cache",
				slog.Int("year", year),
				slog.String("token", token),
			)
			return day, nil
		}
		if !database.IsNotFound(err) {
			c.logger.WarnContext(ctx, "find cached observance",
				slog.Int("year", year),
				slog.String("token", token),
				slog.Any("error", err),
			)
		}
	}

	y, err := c.Year(ctx, year)
	if err != nil {
		return calendar.Day{}, err
	}
	day, ok := y.FindByIdentifier(token)
	if !ok {
		return calendar.Day{}, fmt.Errorf("%s in %d: %w", token, year, calendar.ErrNotFound)
	}
	return day, nil
}

// CachedYears lists the years held in the cache.
func (c *Calendars) CachedYears(ctx context.Context) ([]database.YearSummary, error) {
	if c.store == nil {
		return nil, ErrNotCached
	}
	return c.store.ListYears(ctx)
}

// Purge drops a year from the cache. The error wraps database.ErrNotFound
// when the year was not cached.
func (c *Calendars) Purge(ctx context.Context, year int) error {
	if err := calendar.ValidateYear(year); err != nil {
		return err
	}
	if c.store == nil {
		return ErrNotCached
	}
	return c.store.DeleteYear(ctx, year)
}
