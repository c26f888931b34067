package observation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/drwave-www/worldwidewaves/internal/wave"
	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

// PositionSource supplies the latest known observer position. The
// source owns freshness: the observer reads whatever it reports and
// does not timestamp or expire positions.
type PositionSource interface {
	Latest() (geo.Position, bool)
}

// PositionFunc adapts a function to the PositionSource interface.
type PositionFunc func() (geo.Position, bool)

// Latest calls the wrapped function.
func (f PositionFunc) Latest() (geo.Position, bool) { return f() }

// Config holds the collaborators of one event observation.
type Config struct {
	Event     wave.Event
	Model     wave.Model
	Clock     Clock
	Positions PositionSource
	Logger    zerolog.Logger
	Intervals Intervals
}

// Observer samples one event's wave model on an adaptive schedule and
// publishes state snapshots to subscribers. The scheduler goroutine is
// the only writer of the state.
type Observer struct {
	event     wave.Event
	model     wave.Model
	clock     Clock
	positions PositionSource
	logger    zerolog.Logger
	intervals Intervals

	mu      sync.Mutex
	state   State
	subs    map[int]chan State
	nextSub int
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewObserver creates an observer for the event. The model may be nil
// when geometry is unavailable; the observer then reports UNDEFINED.
func NewObserver(cfg Config) *Observer {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return &Observer{
		event:     cfg.Event,
		model:     cfg.Model,
		clock:     clock,
		positions: cfg.Positions,
		logger:    cfg.Logger.With().Str("event_id", cfg.Event.ID).Logger(),
		intervals: cfg.Intervals.withDefaults(),
		state:     initialState(),
		subs:      make(map[int]chan State),
	}
}

// State returns the latest sampled snapshot.
func (o *Observer) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Subscribe registers for state snapshots. The channel has latest-value
// semantics: when the subscriber lags, the stale snapshot is replaced
// rather than queued, and the scheduler never blocks. The returned
// cancel function must be called to release the subscription.
func (o *Observer) Subscribe() (<-chan State, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextSub
	o.nextSub++
	ch := make(chan State, 1)
	// Seed with the current snapshot so late subscribers see state
	// immediately.
	ch <- o.state
	o.subs[id] = ch

	cancel := func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if sub, ok := o.subs[id]; ok {
			delete(o.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Start launches the scheduler goroutine. Calling Start on a running
// observer is a no-op.
func (o *Observer) Start(ctx context.Context) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.running = true
	o.cancel = cancel
	o.done = make(chan struct{})
	done := o.done
	o.mu.Unlock()

	o.logger.Info().Time("start", o.event.Start).Msg("observation started")

	go func() {
		defer close(done)
		o.run(runCtx)
	}()
}

// Stop cancels the scheduler and waits for the in-flight tick to
// finish. Safe to call repeatedly and before Start.
func (o *Observer) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	cancel := o.cancel
	done := o.done
	o.running = false
	o.cancel = nil
	o.mu.Unlock()

	cancel()
	<-done
	o.logger.Info().Msg("observation stopped")
}

func (o *Observer) run(ctx context.Context) {
	for {
		o.tick()

		state := o.State()
		untilStart := o.event.Start.Sub(o.clock.Now())
		interval := o.intervals.Next(state, untilStart)
		if interval == 0 {
			o.logger.Debug().Msg("observation terminal, polling stopped")
			return
		}
		if err := o.clock.Sleep(ctx, interval); err != nil {
			return
		}
	}
}

// tick samples the model once. A panic inside one sample is logged and
// the loop continues at the next scheduled interval.
func (o *Observer) tick() {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Interface("panic", r).Msg("observation tick failed")
		}
	}()

	next := o.sample(o.clock.Now())
	o.publish(next)
}

// sample computes the full snapshot at the given instant.
func (o *Observer) sample(now time.Time) State {
	var pos *geo.Position
	if o.positions != nil {
		if p, ok := o.positions.Latest(); ok {
			pos = &p
		}
	}
	return Sample(o.model, o.event, now, pos, o.intervals)
}

// Sample computes one state snapshot from the model, the clock instant
// and the latest known observer position (nil when unavailable). It is
// the pure core of the scheduler, shared with on-demand status queries.
func Sample(model wave.Model, event wave.Event, now time.Time, pos *geo.Position, iv Intervals) State {
	iv = iv.withDefaults()
	state := initialState()
	if model == nil {
		return state
	}

	state.Progression = model.Progression(now)
	state.Status = deriveStatus(event, now, state.Progression, iv)

	if pos == nil {
		return state
	}

	state.InArea = model.PositionWithin(*pos)
	if !state.InArea {
		return state
	}

	state.UserHit = model.HitAt(*pos, now)
	state.TimeBeforeHit = model.TimeBeforeHit(*pos, now)
	state.HitTime = model.HitDateTime(*pos)
	state.PositionRatio = model.PositionRatio(*pos, now)

	if state.TimeBeforeHit != wave.Infinite && state.TimeBeforeHit > 0 {
		state.Warming = state.TimeBeforeHit <= iv.WarmingWindow
		state.WarmingFinal = state.TimeBeforeHit <= iv.FinalWindow
	}
	return state
}

// deriveStatus maps the clock and progression onto the lifecycle phase.
func deriveStatus(event wave.Event, now time.Time, progression float64, iv Intervals) Status {
	untilStart := event.Start.Sub(now)
	switch {
	case progression >= 100:
		return StatusDone
	case untilStart <= 0:
		return StatusRunning
	case untilStart <= iv.SoonThreshold:
		return StatusSoon
	default:
		return StatusWaiting
	}
}

// publish stores the snapshot and notifies subscribers, but only when
// a value actually changed.
func (o *Observer) publish(next State) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if next.Equal(o.state) {
		return
	}
	prev := o.state
	o.state = next

	if next.Status != prev.Status {
		o.logger.Info().
			Str("from", prev.Status.String()).
			Str("to", next.Status.String()).
			Float64("progression", next.Progression).
			Msg("event status changed")
	}

	for _, ch := range o.subs {
		select {
		case ch <- next:
		default:
			// Replace the stale snapshot without blocking.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- next:
			default:
			}
		}
	}
}
