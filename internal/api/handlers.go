package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/missal1962/internal/calendar"
	"github.com/zapponejosh/missal1962/internal/config"
	"github.com/zapponejosh/missal1962/internal/database"
	"github.com/zapponejosh/missal1962/internal/logger"
	"github.com/zapponejosh/missal1962/internal/service"
)

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	calendars *service.Calendars
	health    HealthChecker
	cfg       *config.Config
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandlers creates a new Handlers instance. health may be nil when no
// database is in use.
func NewHandlers(calendars *service.Calendars, health HealthChecker, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		calendars: calendars,
		health:    health,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.health != nil {
		if err := h.health.Health(ctx); err != nil {
			h.logger.Warn("health check failed", slog.Any("error", err))
			WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
			return
		}
	}

	WriteSuccess(w, map[string]any{
		"status": "healthy",
		"cache":  h.calendars.Cached(),
		"rules":  h.calendars.RulesSource(),
	})
}

// ListYears handles GET /api/v1/years
func (h *Handlers) ListYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.calendars.CachedYears(r.Context())
	if errors.Is(err, service.ErrNotCached) {
		WriteSuccess(w, map[string]any{"cached": false, "years": []database.YearSummary{}})
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if years == nil {
		years = []database.YearSummary{}
	}

	WriteSuccess(w, map[string]any{"cached": true, "years": years})
}

// GetYear handles GET /api/v1/years/{year}
func (h *Handlers) GetYear(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	y, err := h.calendars.Year(r.Context(), year)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, y)
}

// GetAnchors handles GET /api/v1/years/{year}/anchors
func (h *Handlers) GetAnchors(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	anchors, err := h.calendars.Anchors(year)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, anchors)
}

// GetDay handles GET /api/v1/years/{year}/days/{YYYY-MM-DD}
func (h *Handlers) GetDay(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	dateStr := chi.URLParam(r, "date")
	date, err := calendar.ParseDateString(dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", dateStr))
		return
	}
	if date.Year() != year {
		WriteBadRequest(w, fmt.Sprintf("Date %s is not in %d", dateStr, year))
		return
	}

	day, err := h.calendars.Day(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, day)
}

// GetObservance handles GET /api/v1/years/{year}/observances/{identifier}
func (h *Handlers) GetObservance(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	token := chi.URLParam(r, "identifier")
	if token == "" {
		WriteBadRequest(w, "Identifier is required")
		return
	}

	day, err := h.calendars.FindObservance(r.Context(), year, token)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, day)
}

// GetCalendarICS handles GET /api/v1/years/{year}/calendar.ics
func (h *Handlers) GetCalendarICS(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	y, err := h.calendars.Year(r.Context(), year)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=missal1962_%d.ics", year))
	if err := WriteICS(w, y, h.now()); err != nil {
		logger.Error(r.Context(), "write calendar export", err, slog.Int("year", year))
	}
}

// DeleteYear handles DELETE /api/v1/years/{year}
func (h *Handlers) DeleteYear(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	if err := h.calendars.Purge(r.Context(), year); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, map[string]int{"deleted": year})
}

// parseYear reads the {year} URL parameter, writing a 400 when invalid.
func parseYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	yearStr := chi.URLParam(r, "year")
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid year: %s", yearStr))
		return 0, false
	}
	return year, true
}

// writeServiceError maps service and engine errors to responses.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, calendar.ErrYearOutOfRange):
		WriteError(w, http.StatusBadRequest, err.Error(), "YEAR_OUT_OF_RANGE")
	case errors.Is(err, calendar.ErrNotFound), database.IsNotFound(err):
		WriteNotFound(w, err.Error())
	case errors.Is(err, service.ErrNotCached):
		WriteError(w, http.StatusConflict, "Year cache is disabled", "CACHE_DISABLED")
	default:
		logger.Error(r.Context(), "request failed", err, slog.String("path", r.URL.Path))
		WriteInternalError(w, "Failed to build calendar")
	}
}
