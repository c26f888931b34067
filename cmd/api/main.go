// Package main provides the entrypoint for the WorldWideWaves API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/drwave-www/worldwidewaves/internal/api"
	"github.com/drwave-www/worldwidewaves/internal/api/middleware"
	"github.com/drwave-www/worldwidewaves/internal/config"
	"github.com/drwave-www/worldwidewaves/internal/events"
	"github.com/drwave-www/worldwidewaves/internal/geojson"
	"github.com/drwave-www/worldwidewaves/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("loading configuration")
	}
	serviceName := cfg.ServiceName + "-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Msg("starting WorldWideWaves API")

	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	catalog, err := events.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("loading event catalog")
	}
	log.Info().Int("events", len(catalog.Events)).Msg("event catalog loaded")

	svc, err := newEventService(catalog, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("building event service")
	}
	defer svc.StopAll()

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Events:      svc,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// newEventService wires the catalog, the area provider and the cache.
func newEventService(catalog events.Catalog, cfg config.Config, log zerolog.Logger) (*events.Service, error) {
	var provider events.GeoJsonProvider
	switch {
	case cfg.GeoJSONDir != "":
		byID := indexFiles(catalog)
		provider = &events.DirProvider{Dir: cfg.GeoJSONDir, FileFor: byID}
		log.Info().Str("dir", cfg.GeoJSONDir).Msg("serving event areas from directory")
	case cfg.GeoJSONBaseURL != "":
		provider = events.NewHTTPProvider(events.HTTPProviderConfig{
			BaseURL: cfg.GeoJSONBaseURL,
			URLFor:  indexURLs(catalog),
			Timeout: cfg.FetchTimeout,
			Logger:  log,
		})
		log.Info().Str("base_url", cfg.GeoJSONBaseURL).Msg("serving event areas over HTTP")
	default:
		provider = &events.DirProvider{Dir: "."}
		log.Warn().Msg("no area source configured, falling back to working directory")
	}

	cache, err := geojson.NewCache(cfg.AreaCacheSize)
	if err != nil {
		return nil, err
	}
	validator, err := geojson.NewValidator()
	if err != nil {
		return nil, err
	}

	return events.NewService(events.ServiceConfig{
		Catalog:   catalog,
		Provider:  provider,
		Cache:     cache,
		Validator: validator,
		Logger:    log,
	})
}

func indexFiles(catalog events.Catalog) func(string) string {
	byID := make(map[string]string, len(catalog.Events))
	for _, d := range catalog.Events {
		if d.GeoJSONFile != "" {
			byID[d.ID] = d.GeoJSONFile
		}
	}
	return func(eventID string) string { return byID[eventID] }
}

func indexURLs(catalog events.Catalog) func(string) string {
	byID := make(map[string]string, len(catalog.Events))
	for _, d := range catalog.Events {
		if d.GeoJSONURL != "" {
			byID[d.ID] = d.GeoJSONURL
		}
	}
	return func(eventID string) string { return byID[eventID] }
}
