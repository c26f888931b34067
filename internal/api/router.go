// Package api provides the HTTP API for WorldWideWaves.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/drwave-www/worldwidewaves/internal/api/handler"
	"github.com/drwave-www/worldwidewaves/internal/api/middleware"
	"github.com/drwave-www/worldwidewaves/internal/events"
	"github.com/drwave-www/worldwidewaves/internal/observation"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Events      *events.Service
	Clock       observation.Clock
	Intervals   observation.Intervals
}

// NewRouter creates the chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "worldwidewaves-api"
	}

	// Global middleware, order matters.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime)
	eventsHandler := handler.NewEventsHandler(cfg.Events, cfg.Clock, cfg.Intervals)
	streamHandler := handler.NewStreamHandler(cfg.Events, cfg.Logger)

	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		r.Route("/events", func(r chi.Router) {
			r.With(standardRateLimit, middleware.ContentTypeJSON).Get("/", eventsHandler.ListEvents)

			r.Route("/{eventId}", func(r chi.Router) {
				r.With(standardRateLimit, middleware.ContentTypeJSON).Get("/", eventsHandler.GetEvent)
				r.With(standardRateLimit, middleware.ContentTypeJSON).Get("/status", eventsHandler.GetStatus)

				// Polygon computation runs the split kernel per request.
				r.With(expensiveRateLimit, middleware.ContentTypeJSON).Get("/polygons", eventsHandler.GetPolygons)

				// The websocket upgrade must not pass through the JSON
				// content-type middleware.
				r.Get("/stream", streamHandler.Stream)
			})
		})
	})

	return r
}
