package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

func NewRouter(apiHandler *APIHandler, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(hlog.NewHandler(log))
	r.Use(hlog.RequestIDHandler("requestId", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Handle("/metrics", promhttp.Handler())

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", apiHandler.HealthHandler)

		r.Group(func(r chi.Router) {
			if apiHandler.jwtSecret != "" {
				r.Use(apiHandler.JWTAuthMiddleware)
			}

			r.Post("/conversations", apiHandler.CreateConversationHandler)
			r.Route("/conversations/{conversationID}", func(r chi.Router) {
				r.Get("/messages", apiHandler.ListMessagesHandler)
				r.Post("/process-query", apiHandler.ProcessQueryHandler)
				r.Get("/trip-plans", apiHandler.ListTripPlansHandler)
				r.Get("/trip-plans/calendar.ics", apiHandler.TripPlanCalendarHandler)
			})

			r.Get("/tools", apiHandler.ListToolsHandler)
			r.Get("/trip-agent/sample", apiHandler.SampleTripPlanHandler)
		})
	})

	return r
}
