package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapponejosh/missal1962/internal/calendar"
)

// =============================================================================
// Year Cache Queries
// =============================================================================

// SaveYear stores a built year, replacing any previous copy of it.
// rules records which rule tables produced it.
func (db *DB) SaveYear(ctx context.Context, y *calendar.LiturgicalYear, rules RulesVersion) error {
	err := db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM day_observances WHERE year = ?`, y.Year()); err != nil {
			return fmt.Errorf("clear observances: %w", err)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO liturgical_years (year, day_count, rules_source, rules_fingerprint, built_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(year) DO UPDATE SET
				day_count = excluded.day_count,
				rules_source = excluded.rules_source,
				rules_fingerprint = excluded.rules_fingerprint,
				built_at = excluded.built_at
		`, y.Year(), y.Len(), rules.Source, rules.Fingerprint, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("upsert year: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO day_observances (year, date, position, name, precedence)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare observance insert: %w", err)
		}
		defer stmt.Close()

		for _, day := range y.Days() {
			date := calendar.FormatDate(day.Date)
			for pos, id := range day.Identifiers {
				var precedence sql.NullInt64
				if id.Precedence != nil {
					precedence = sql.NullInt64{Int64: int64(*id.Precedence), Valid: true}
				}
				if _, err := stmt.ExecContext(ctx, y.Year(), date, pos, id.Name, precedence); err != nil {
					return fmt.Errorf("insert observance %s on %s: %w", id, date, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save year %d: %w", y.Year(), err)
	}

	db.logger.Debug("year cached",
		slog.Int("year", y.Year()),
		slog.String("rules", rules.Source),
		slog.String("fingerprint", rules.Fingerprint),
	)
	return nil
}

// GetYear loads a year cached from the rule tables with the given
// fingerprint.
// Returns ErrNotFound if the year has not been stored, or was stored from
// other tables.
func (db *DB) GetYear(ctx context.Context, year int, fingerprint string) (*calendar.LiturgicalYear, error) {
	var dayCount int
	err := db.QueryRowContext(ctx,
		`SELECT day_count FROM liturgical_years WHERE year = ? AND rules_fingerprint = ?`,
		year, fingerprint,
	).Scan(&dayCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("year %d: %w", year, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get year %d: %w", year, err)
	}

	days := make([]calendar.Day, 0, dayCount)
	index := make(map[string]int, dayCount)
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < dayCount; i++ {
		d := start.AddDate(0, 0, i)
		index[calendar.FormatDate(d)] = i
		days = append(days, calendar.Day{Date: d, Identifiers: []calendar.Identifier{}})
	}

	rows, err := db.QueryContext(ctx, `
		SELECT date, name, precedence
		FROM day_observances
		WHERE year = ?
		ORDER BY date, position
	`, year)
	if err != nil {
		return nil, fmt.Errorf("query observances of %d: %w", year, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			date string
			id   calendar.Identifier
		)
		if err := scanObservance(rows, &date, &id); err != nil {
			return nil, err
		}
		i, ok := index[date]
		if !ok {
			return nil, fmt.Errorf("observance %s on %s outside year %d", id, date, year)
		}
		days[i].Identifiers = append(days[i].Identifiers, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observances of %d: %w", year, err)
	}

	y, err := calendar.Restore(year, days)
	if err != nil {
		return nil, fmt.Errorf("restore year %d: %w", year, err)
	}
	return y, nil
}

// FindDayByIdentifier returns the first day of a cached year carrying the
// observance token, with all of that day's identifiers. A token without a
// precedence suffix matches any precedence. Only years cached from the rule
// tables with the given fingerprint are searched.
// Returns ErrNotFound if no such stored day carries it.
func (db *DB) FindDayByIdentifier(ctx context.Context, year int, fingerprint, token string) (calendar.Day, error) {
	q := calendar.ParseIdentifier(token)

	var precedence sql.NullInt64
	if q.Precedence != nil {
		precedence = sql.NullInt64{Int64: int64(*q.Precedence), Valid: true}
	}

	var date string
	err := db.QueryRowContext(ctx, `
		SELECT o.date
		FROM day_observances o
		JOIN liturgical_years y ON y.year = o.year
		WHERE o.year = ? AND y.rules_fingerprint = ?
			AND o.name = ? AND (? IS NULL OR o.precedence = ?)
		ORDER BY o.date
		LIMIT 1
	`, year, fingerprint, q.Name, precedence, precedence).Scan(&date)
	if errors.Is(err, sql.ErrNoRows) {
		return calendar.Day{}, fmt.Errorf("%s in %d: %w", token, year, ErrNotFound)
	}
	if err != nil {
		return calendar.Day{}, fmt.Errorf("find %s in %d: %w", token, year, err)
	}

	parsed, err := calendar.ParseDateString(date)
	if err != nil {
		return calendar.Day{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	day := calendar.Day{Date: parsed, Identifiers: []calendar.Identifier{}}

	rows, err := db.QueryContext(ctx, `
		SELECT date, name, precedence
		FROM day_observances
		WHERE year = ? AND date = ?
		ORDER BY position
	`, year, date)
	if err != nil {
		return calendar.Day{}, fmt.Errorf("query observances on %s: %w", date, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id calendar.Identifier
		if err := scanObservance(rows, &date, &id); err != nil {
			return calendar.Day{}, err
		}
		day.Identifiers = append(day.Identifiers, id)
	}
	if err := rows.Err(); err != nil {
		return calendar.Day{}, fmt.Errorf("iterate observances on %s: %w", date, err)
	}

	return day, nil
}

// DeleteYear removes a cached year.
// Returns ErrNotFound if the year was not stored.
func (db *DB) DeleteYear(ctx context.Context, year int) error {
	var affected int64
	err := db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM day_observances WHERE year = ?`, year); err != nil {
			return fmt.Errorf("delete observances: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM liturgical_years WHERE year = ?`, year)
		if err != nil {
			return fmt.Errorf("delete year: %w", err)
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete year %d: %w", year, err)
	}
	if affected == 0 {
		return fmt.Errorf("year %d: %w", year, ErrNotFound)
	}

	db.logger.Info("cached year deleted", slog.Int("year", year))
	return nil
}

// ListYears returns a summary of every cached year, oldest first.
func (db *DB) ListYears(ctx context.Context) ([]YearSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT year, day_count, rules_source, rules_fingerprint, built_at
		FROM liturgical_years
		ORDER BY year
	`)
	if err != nil {
		return nil, fmt.Errorf("query years: %w", err)
	}
	defer rows.Close()

	var years []YearSummary
	for rows.Next() {
		var (
			s       YearSummary
			builtAt sql.NullString
		)
		if err := rows.Scan(&s.Year, &s.DayCount, &s.RulesSource, &s.RulesFingerprint, &builtAt); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		s.BuiltAt = parseTimestamp(builtAt)
		years = append(years, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate years: %w", err)
	}

	return years, nil
}

// scanObservance reads one (date, name, precedence) row.
func scanObservance(rows *sql.Rows, date *string, id *calendar.Identifier) error {
	var (
		name       string
		precedence sql.NullInt64
	)
	if err := rows.Scan(date, &name, &precedence); err != nil {
		return fmt.Errorf("scan observance: %w", err)
	}
	*id = calendar.Identifier{Name: name}
	if precedence.Valid {
		p := int(precedence.Int64)
		id.Precedence = &p
	}
	return nil
}
