// Package main is the entry point for the Missal 1962 calendar API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zapponejosh/missal1962/internal/api"
	"github.com/zapponejosh/missal1962/internal/config"
	"github.com/zapponejosh/missal1962/internal/database"
	"github.com/zapponejosh/missal1962/internal/logger"
	"github.com/zapponejosh/missal1962/internal/rules"
	"github.com/zapponejosh/missal1962/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	log.Info("starting missal API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
		slog.Bool("cache", cfg.CacheEnabled),
	)

	tables, err := rules.LoadOrDefault(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	log.Info("rule tables loaded",
		slog.String("source", tables.Source()),
		slog.Int("fixed_days", tables.FixedDayCount()),
	)

	var (
		store  service.Store
		health api.HealthChecker
	)
	if cfg.CacheEnabled {
		db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), log)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		_, err = db.Migrate(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		store, health = db, db
	}

	calendars := service.New(store, tables, log)
	handlers := api.NewHandlers(calendars, health, cfg, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("missal API listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("missal API stopped")
	return nil
}
