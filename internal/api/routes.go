package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/missal1962/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET    /health
//	GET    /api/v1/years                                  cached years
//	GET    /api/v1/years/{year}                           full calendar
//	GET    /api/v1/years/{year}/anchors                   movable anchor dates
//	GET    /api/v1/years/{year}/days/{date}               one day
//	GET    /api/v1/years/{year}/observances/{identifier}  first day carrying it
//	GET    /api/v1/years/{year}/calendar.ics              iCalendar export
//	DELETE /api/v1/years/{year}                           purge cache (API key)
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)

	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1/years", func(r chi.Router) {
		r.Get("/", handlers.ListYears)

		r.Route("/{year}", func(r chi.Router) {
			r.Get("/", handlers.GetYear)
			r.Get("/anchors", handlers.GetAnchors)
			r.Get("/days/{date}", handlers.GetDay)
			r.Get("/observances/{identifier}", handlers.GetObservance)
			r.Get("/calendar.ics", handlers.GetCalendarICS)

			r.With(AuthMiddleware(cfg, logger)).Delete("/", handlers.DeleteYear)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	return r
}
