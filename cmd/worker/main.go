// Package main provides the entrypoint for the WorldWideWaves
// observation worker. The worker runs one observer per catalog event,
// keeps areas fresh and publishes status transitions.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/drwave-www/worldwidewaves/internal/config"
	"github.com/drwave-www/worldwidewaves/internal/events"
	"github.com/drwave-www/worldwidewaves/internal/geojson"
	"github.com/drwave-www/worldwidewaves/internal/telemetry"
	"github.com/drwave-www/worldwidewaves/internal/worker"
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
	serviceName := cfg.ServiceName + "-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Msg("starting WorldWideWaves worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	catalog, err := events.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("loading event catalog")
	}

	svc, err := newEventService(catalog, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("building event service")
	}

	obsMetrics, err := telemetry.NewObservationMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observation metrics")
	}

	var publisher *worker.Publisher
	if cfg.PubSubProject != "" && cfg.PubSubTopic != "" {
		publisher, err = worker.NewPublisher(ctx, worker.PublisherConfig{
			ProjectID: cfg.PubSubProject,
			TopicID:   cfg.PubSubTopic,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create transition publisher")
		}
		defer func() {
			if closeErr := publisher.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("closing publisher")
			}
		}()
		log.Info().Str("topic", cfg.PubSubTopic).Msg("transition publisher enabled")
	}

	runner := worker.NewRunner(worker.RunnerConfig{
		Service:   svc,
		Logger:    log,
		Metrics:   obsMetrics,
		Publisher: publisher,
	})

	// Health endpoint for the container platform.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"OK","version":"` + Version + `"}`))
	})
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	runnerDone := make(chan error, 1)
	go func() {
		runnerDone <- runner.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("shutting down worker")
		cancel()
		if err := <-runnerDone; err != nil {
			log.Error().Err(err).Msg("runner error")
		}
	case err := <-runnerDone:
		if err != nil {
			log.Error().Err(err).Msg("runner failed")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// newEventService wires the catalog, the area provider and the cache.
func newEventService(catalog events.Catalog, cfg config.Config, log zerolog.Logger) (*events.Service, error) {
	var provider events.GeoJsonProvider
	switch {
	case cfg.GeoJSONDir != "":
		byID := make(map[string]string, len(catalog.Events))
		for _, d := range catalog.Events {
			if d.GeoJSONFile != "" {
				byID[d.ID] = d.GeoJSONFile
			}
		}
		provider = &events.DirProvider{
			Dir:     cfg.GeoJSONDir,
			FileFor: func(eventID string) string { return byID[eventID] },
		}
	case cfg.GeoJSONBaseURL != "":
		byID := make(map[string]string, len(catalog.Events))
		for _, d := range catalog.Events {
			if d.GeoJSONURL != "" {
				byID[d.ID] = d.GeoJSONURL
			}
		}
		provider = events.NewHTTPProvider(events.HTTPProviderConfig{
			BaseURL: cfg.GeoJSONBaseURL,
			URLFor:  func(eventID string) string { return byID[eventID] },
			Timeout: cfg.FetchTimeout,
			Logger:  log,
		})
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
