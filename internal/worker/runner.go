package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/drwave-www/worldwidewaves/internal/events"
	"github.com/drwave-www/worldwidewaves/internal/observation"
	"github.com/drwave-www/worldwidewaves/internal/telemetry"
)

// RunnerConfig holds the collaborators of the observation runner.
type RunnerConfig struct {
	Service *events.Service
	Logger  zerolog.Logger

	// Metrics and Publisher are optional.
	Metrics   *telemetry.ObservationMetrics
	Publisher *Publisher

	// RefreshInterval is how often event areas are re-fetched. Zero
	// uses the default of 15 minutes; negative disables refresh.
	RefreshInterval time.Duration
}

// Runner observes every catalog event until the context is cancelled.
type Runner struct {
	svc       *events.Service
	logger    zerolog.Logger
	metrics   *telemetry.ObservationMetrics
	publisher *Publisher
	refresh   time.Duration
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	refresh := cfg.RefreshInterval
	if refresh == 0 {
		refresh = 15 * time.Minute
	}
	return &Runner{
		svc:       cfg.Service,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		publisher: cfg.Publisher,
		refresh:   refresh,
	}
}

// Run starts one observer goroutine per event plus the refresh loop
// and blocks until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	defs := r.svc.Events()
	r.logger.Info().Int("events", len(defs)).Msg("observation runner starting")

	g, ctx := errgroup.WithContext(ctx)
	for _, def := range defs {
		def := def
		g.Go(func() error {
			return r.observe(ctx, def)
		})
	}
	if r.refresh > 0 {
		g.Go(func() error {
			r.refreshLoop(ctx)
			return nil
		})
	}

	err := g.Wait()
	r.svc.StopAll()
	r.logger.Info().Msg("observation runner stopped")
	return err
}

// observe follows one event's state stream, forwarding status
// transitions to metrics and the publisher.
func (r *Runner) observe(ctx context.Context, def events.Definition) error {
	obs, err := r.svc.Observer(ctx, def.ID)
	if err != nil {
		return err
	}

	states, cancel := obs.Subscribe()
	defer cancel()

	obs.Start(ctx)
	if r.metrics != nil {
		r.metrics.ObserverStarted(def.ID)
		defer r.metrics.ObserverStopped(def.ID)
	}

	prev := observation.StatusUndefined
	first := true
	for {
		select {
		case <-ctx.Done():
			return nil
		case state, ok := <-states:
			if !ok {
				return nil
			}
			if first {
				prev = state.Status
				first = false
				continue
			}
			if state.Status == prev {
				continue
			}
			r.handleTransition(ctx, def.ID, prev, state)
			prev = state.Status
		}
	}
}

func (r *Runner) handleTransition(ctx context.Context, eventID string, from observation.Status, state observation.State) {
	r.logger.Info().
		Str("event_id", eventID).
		Str("from", from.String()).
		Str("to", state.Status.String()).
		Float64("progression", state.Progression).
		Msg("observed status transition")

	if r.metrics != nil {
		r.metrics.RecordTransition(eventID, from.String(), state.Status.String())
	}
	if r.publisher != nil {
		msg := TransitionMessage{
			EventID:     eventID,
			From:        from.String(),
			To:          state.Status.String(),
			Progression: state.Progression,
			At:          time.Now(),
		}
		if err := r.publisher.PublishTransition(ctx, msg); err != nil {
			r.logger.Warn().Str("event_id", eventID).Err(err).Msg("publishing transition failed")
		}
	}
}

// refreshLoop periodically drops cached areas and re-resolves them so
// updated GeoJSON documents are picked up without a restart.
func (r *Runner) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(r.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, def := range r.svc.Events() {
				r.svc.Invalidate(def.ID)
				if _, err := r.svc.Area(ctx, def.ID); err != nil {
					r.logger.Warn().Str("event_id", def.ID).Err(err).Msg("area refresh failed")
					continue
				}
				r.logger.Debug().Str("event_id", def.ID).Msg("area refreshed")
			}
		}
	}
}
