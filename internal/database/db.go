// Package database caches built liturgical years in SQLite so a year is
// computed once and then served from storage.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// =============================================================================
// Database Connection
// =============================================================================

// DB wraps the standard sql.DB with the year cache queries.
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// Config holds database configuration options.
type Config struct {
	Path            string        // Path to SQLite database file, or ":memory:"
	MaxOpenConns    int           // Maximum open connections (default: 1 for SQLite)
	MaxIdleConns    int           // Maximum idle connections (default: 1)
	ConnMaxLifetime time.Duration // Connection max lifetime (default: 1 hour)
}

// DefaultConfig returns the pool settings for the year cache.
//
//   - MaxOpenConns=1: SQLite only allows one writer at a time. SaveYear holds
//     a write transaction for a whole year of rows, and a second connection
//     would see "database is locked". An in-memory database also exists per
//     connection, so a single connection keeps every query on the same one.
//   - WAL mode (set in DSN): readers of cached years proceed while a year is
//     being saved.
//   - Busy timeout (set in DSN): waits up to 5s if the database is locked,
//     e.g. while cmd/precompute fills the file the API is serving.
func DefaultConfig(path string) Config {
	return Config{
		Path:            path,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}
}

// dsn builds the go-sqlite3 connection string for cfg.
//
// _journal_mode=WAL: concurrent readers during SaveYear
// _foreign_keys=ON: day_observances rows follow their year on delete
// _busy_timeout=5000: wait up to 5s if the database is locked
func (cfg Config) dsn() string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000", cfg.Path)
}

// Open creates a new database connection with SQLite-optimized settings.
//
// The caller is responsible for calling Close() when done. Migrate must run
// before the cache is used.
func Open(cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Ensure the directory exists
	if cfg.Path != ":memory:" {
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("year cache opened",
		slog.String("path", cfg.Path),
		slog.Int("max_open_conns", cfg.MaxOpenConns),
	)

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.logger.Info("closing year cache")
	return db.DB.Close()
}

// Health reports whether the cache can serve years: the connection answers
// and every migration has been applied.
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if version < len(migrationsSQL) {
		return fmt.Errorf("%w: at version %d, want %d", ErrSchemaOutdated, version, len(migrationsSQL))
	}

	var years int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM liturgical_years").Scan(&years); err != nil {
		return fmt.Errorf("database query failed: %w", err)
	}

	return nil
}

// =============================================================================
// Migrations
// =============================================================================

// SchemaVersion returns the highest applied migration, or 0 for a database
// that has never been migrated.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		// schema_migrations is created by the first Migrate.
		var exists int
		if qerr := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'`,
		).Scan(&exists); qerr == nil && exists == 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// Migrate applies pending forward-only migrations recorded in
// schema_migrations and returns how many ran. All of them run in one
// transaction, so a failure leaves the schema where it was.
func (db *DB) Migrate(ctx context.Context) (int, error) {
	db.logger.Info("running database migrations")

	count := 0
	err := db.WithTx(ctx, func(tx *Tx) error {
		// Ensure schema_migrations table exists
		_, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version INTEGER PRIMARY KEY,
				applied_at TEXT NOT NULL DEFAULT (datetime('now'))
			)
		`)
		if err != nil {
			return fmt.Errorf("create schema_migrations table: %w", err)
		}

		applied, err := appliedVersions(ctx, tx)
		if err != nil {
			return err
		}

		for version := 1; version <= len(migrationsSQL); version++ {
			if applied[version] {
				db.logger.Debug("migration already applied", slog.Int("version", version))
				continue
			}

			content, ok := migrationsSQL[version]
			if !ok {
				return fmt.Errorf("migration %d not found", version)
			}

			db.logger.Info("applying migration", slog.Int("version", version))
			if _, err := tx.ExecContext(ctx, content); err != nil {
				return fmt.Errorf("execute migration %d: %w", version, err)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version) VALUES (?)", version,
			); err != nil {
				return fmt.Errorf("record migration %d: %w", version, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.logger.Info("migrations complete",
		slog.Int("applied", count),
		slog.Int("total", len(migrationsSQL)),
	)

	return count, nil
}

// appliedVersions reads schema_migrations inside tx.
func appliedVersions(ctx context.Context, tx *Tx) (map[int]bool, error) {
	rows, err := tx.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migration versions: %w", err)
	}
	return applied, nil
}

// =============================================================================
// Transaction Helpers
// =============================================================================

// Tx represents a database transaction with helper methods.
type Tx struct {
	*sql.Tx
}

// BeginTx starts a new transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx}, nil
}

// WithTx executes a function within a transaction.
// If the function returns an error, the transaction is rolled back.
// Otherwise, it's committed.
//
// Example:
//
//	err := db.WithTx(ctx, func(tx *database.Tx) error {
//	    _, err := tx.ExecContext(ctx, `DELETE FROM day_observances WHERE year = ?`, 2008)
//	    return err
//	})
func (db *DB) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrNotFound is returned when a year or observance is not cached, or was
	// cached from other rule tables.
	ErrNotFound = errors.New("record not found")

	// ErrSchemaOutdated is returned by Health before Migrate has brought the
	// schema up to date.
	ErrSchemaOutdated = errors.New("database schema outdated")
)

// IsNotFound checks if an error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
