// Command precompute builds a range of liturgical years and stores them in
// the SQLite year cache used by the API.
//
// Usage:
//
//	go run ./cmd/precompute -from 1900 -to 2100 -db data/missal.db
//
// This tool:
// 1. Loads the rule tables (embedded, or -rules)
// 2. Creates/opens the SQLite database and runs migrations
// 3. Builds every year in the range in parallel
// 4. Saves each year, replacing any cached copy
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zapponejosh/missal1962/internal/calendar"
	"github.com/zapponejosh/missal1962/internal/database"
	"github.com/zapponejosh/missal1962/internal/logger"
	"github.com/zapponejosh/missal1962/internal/rules"
)

func main() {
	// Parse command line flags
	from := flag.Int("from", 1900, "First year to build")
	to := flag.Int("to", 2100, "Last year to build")
	dbPath := flag.String("db", "data/missal.db", "Path to SQLite database")
	rulesPath := flag.String("rules", "", "YAML rule tables (default: embedded 1962 tables)")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logLevel := "info"
	if *verbose {
		logLevel = "debug"
	}
	log := logger.New(os.Stdout, logLevel, "text")

	if err := run(*from, *to, *dbPath, *rulesPath, log); err != nil {
		log.Error("precompute failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("precompute complete")
}

func run(from, to int, dbPath, rulesPath string, log *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	if err := calendar.ValidateYear(from); err != nil {
		return fmt.Errorf("-from: %w", err)
	}
	if err := calendar.ValidateYear(to); err != nil {
		return fmt.Errorf("-to: %w", err)
	}
	if from > to {
		return fmt.Errorf("-from %d is after -to %d", from, to)
	}

	// =========================================================================
	// Step 1: Load rule tables
	// =========================================================================
	tables, err := rules.LoadOrDefault(rulesPath)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	log.Info("rule tables loaded",
		slog.String("source", tables.Source()),
		slog.String("fingerprint", tables.Fingerprint()),
	)
	version := database.RulesVersion{Source: tables.Source(), Fingerprint: tables.Fingerprint()}

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	log.Info("opening database", slog.String("path", dbPath))

	db, err := database.Open(database.DefaultConfig(dbPath), log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("migrations complete", slog.Int("applied", migrated))

	// =========================================================================
	// Step 3: Build years
	// =========================================================================
	years := make([]*calendar.LiturgicalYear, to-from+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range years {
		year := from + i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			y, err := calendar.Build(year, tables)
			if err != nil {
				return fmt.Errorf("build %d: %w", year, err)
			}
			years[i] = y
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("years built", slog.Int("count", len(years)))

	// =========================================================================
	// Step 4: Save years
	// =========================================================================
	var stats PrecomputeStats
	for i, y := range years {
		if err := db.SaveYear(ctx, y, version); err != nil {
			return fmt.Errorf("save %d: %w", y.Year(), err)
		}
		stats.Years++
		stats.Days += y.Len()
		for _, day := range y.Days() {
			stats.Observances += len(day.Identifiers)
			if len(day.Identifiers) == 0 {
				stats.EmptyDays++
			}
		}

		// Progress logging every 50 years
		if (i+1)%50 == 0 {
			log.Debug("save progress",
				slog.Int("year", y.Year()),
				slog.Int("saved", i+1),
				slog.Int("total", len(years)),
			)
		}
	}

	cached, err := db.ListYears(ctx)
	if err != nil {
		return fmt.Errorf("list years: %w", err)
	}

	elapsed := time.Since(startTime)

	log.Info("precompute verified",
		slog.Int("cached_years", len(cached)),
		slog.Int("days", stats.Days),
		slog.Int("observances", stats.Observances),
		slog.Duration("elapsed", elapsed),
	)

	// Print summary
	fmt.Println()
	fmt.Println("=== Precompute Summary ===")
	fmt.Printf("Years saved:         %d (%d-%d)\n", stats.Years, from, to)
	fmt.Printf("Days:                %d\n", stats.Days)
	fmt.Printf("Observances:         %d\n", stats.Observances)
	fmt.Printf("Days w/o observance: %d\n", stats.EmptyDays)
	fmt.Printf("Years in cache:      %d\n", len(cached))
	fmt.Printf("Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}

// PrecomputeStats tracks what was written to the cache.
type PrecomputeStats struct {
	Years       int
	Days        int
	Observances int
	EmptyDays   int
}
