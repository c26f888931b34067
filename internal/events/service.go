package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/drwave-www/worldwidewaves/internal/geojson"
	"github.com/drwave-www/worldwidewaves/internal/observation"
	"github.com/drwave-www/worldwidewaves/internal/wave"
)

// ServiceConfig holds the collaborators for the event service.
type ServiceConfig struct {
	Catalog   Catalog
	Provider  GeoJsonProvider
	Cache     *geojson.Cache
	Validator *geojson.Validator
	Clock     observation.Clock
	Positions observation.PositionSource
	Intervals observation.Intervals
	Logger    zerolog.Logger
}

// Service resolves event areas through the cache, builds wave models
// and owns the per-event observers.
type Service struct {
	provider  GeoJsonProvider
	cache     *geojson.Cache
	validator *geojson.Validator
	clock     observation.Clock
	positions observation.PositionSource
	intervals observation.Intervals
	logger    zerolog.Logger

	defs  map[string]Definition
	order []string

	mu        sync.Mutex
	observers map[string]*observation.Observer
}

// NewService creates the event service from a validated catalog.
func NewService(cfg ServiceConfig) (*Service, error) {
	cache := cfg.Cache
	if cache == nil {
		var err error
		cache, err = geojson.NewCache(0)
		if err != nil {
			return nil, err
		}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = observation.SystemClock{}
	}

	s := &Service{
		provider:  cfg.Provider,
		cache:     cache,
		validator: cfg.Validator,
		clock:     clock,
		positions: cfg.Positions,
		intervals: cfg.Intervals,
		logger:    cfg.Logger,
		defs:      make(map[string]Definition, len(cfg.Catalog.Events)),
		observers: make(map[string]*observation.Observer),
	}
	for _, d := range cfg.Catalog.Events {
		s.defs[d.ID] = d
		s.order = append(s.order, d.ID)
	}
	return s, nil
}

// Events returns the catalog entries in configuration order.
func (s *Service) Events() []Definition {
	out := make([]Definition, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.defs[id])
	}
	return out
}

// Definition returns the catalog entry for the event id.
func (s *Service) Definition(eventID string) (Definition, bool) {
	d, ok := s.defs[eventID]
	return d, ok
}

// Area resolves the event's parsed area, fetching and parsing the raw
// document on a cache miss. A strict-validation failure is logged but
// does not block the lenient parse.
func (s *Service) Area(ctx context.Context, eventID string) (*geojson.Area, error) {
	def, ok := s.defs[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, eventID)
	}

	opts := geojson.ParseOptions{BBoxOverride: def.BBox}
	return s.cache.GetOrParse(eventID, opts, func() ([]byte, error) {
		raw, err := s.provider.Get(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if s.validator != nil {
			if verr := s.validator.Validate(raw); verr != nil {
				s.logger.Warn().
					Str("event_id", eventID).
					Err(verr).
					Msg("geojson document failed strict validation")
			}
		}
		return raw, nil
	})
}

// Invalidate drops the cached area for the event, forcing a re-fetch
// on next access. Called after the underlying document is re-downloaded.
func (s *Service) Invalidate(eventID string) {
	s.cache.Invalidate(eventID)
}

// Model builds the wave model for the event over its resolved area.
func (s *Service) Model(ctx context.Context, eventID string) (wave.Model, error) {
	def, ok := s.defs[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, eventID)
	}
	area, err := s.Area(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return wave.New(def.WaveEvent(), area), nil
}

// Observer returns the event's observer, creating it on first use. The
// model is built with whatever geometry is available; an unavailable
// area produces an observer reporting UNDEFINED rather than an error.
func (s *Service) Observer(ctx context.Context, eventID string) (*observation.Observer, error) {
	def, ok := s.defs[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, eventID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if obs, ok := s.observers[eventID]; ok {
		return obs, nil
	}

	var model wave.Model
	area, err := s.Area(ctx, eventID)
	if err != nil {
		s.logger.Warn().Str("event_id", eventID).Err(err).Msg("area unavailable, observing as undefined")
	} else {
		model = wave.New(def.WaveEvent(), area)
	}

	obs := observation.NewObserver(observation.Config{
		Event:     def.WaveEvent(),
		Model:     model,
		Clock:     s.clock,
		Positions: s.positions,
		Logger:    s.logger,
		Intervals: s.intervals,
	})
	s.observers[eventID] = obs
	return obs, nil
}

// StartObservation starts (or resumes) observing the event. Starting
// twice is a no-op.
func (s *Service) StartObservation(ctx context.Context, eventID string) error {
	obs, err := s.Observer(ctx, eventID)
	if err != nil {
		return err
	}
	obs.Start(ctx)
	return nil
}

// StopObservation stops observing the event, waiting for the in-flight
// tick. Stopping an event that was never started is safe.
func (s *Service) StopObservation(eventID string) {
	s.mu.Lock()
	obs := s.observers[eventID]
	s.mu.Unlock()
	if obs != nil {
		obs.Stop()
	}
}

// StopAll stops every running observer.
func (s *Service) StopAll() {
	s.mu.Lock()
	all := make([]*observation.Observer, 0, len(s.observers))
	for _, obs := range s.observers {
		all = append(all, obs)
	}
	s.mu.Unlock()

	for _, obs := range all {
		obs.Stop()
	}
}
