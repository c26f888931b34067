package observation

import (
	"time"

	"github.com/drwave-www/worldwidewaves/internal/wave"
)

// Intervals holds the adaptive sampling policy. Polling hourly while an
// event is a day away and at 50ms inside the final second keeps the
// trigger within tens of milliseconds without burning battery during
// the long wait.
type Intervals struct {
	// FarThreshold is the time-to-start above which Far sampling is
	// used. Default: 65 minutes.
	FarThreshold time.Duration

	// ApproachThreshold is the time-to-start above which Approach
	// sampling is used. Default: 5 minutes.
	ApproachThreshold time.Duration

	// SoonThreshold is the time-to-start below which the event counts
	// as imminent and the status switches to SOON. Default: 35 seconds.
	SoonThreshold time.Duration

	// FinalWindow is the time-before-hit below which Final sampling is
	// used. Default: 1 second.
	FinalWindow time.Duration

	// WarmingWindow is the time-before-hit below which the warming
	// flag is raised for downstream choreography. Default: 35 seconds.
	WarmingWindow time.Duration

	Far      time.Duration // default: 1 hour
	Approach time.Duration // default: 1 minute
	Near     time.Duration // default: 5 seconds
	Imminent time.Duration // default: 500 milliseconds
	Final    time.Duration // default: 50 milliseconds
}

// DefaultIntervals returns the default adaptive sampling policy.
func DefaultIntervals() Intervals {
	return Intervals{
		FarThreshold:      65 * time.Minute,
		ApproachThreshold: 5 * time.Minute,
		SoonThreshold:     35 * time.Second,
		FinalWindow:       1 * time.Second,
		WarmingWindow:     35 * time.Second,
		Far:               time.Hour,
		Approach:          time.Minute,
		Near:              5 * time.Second,
		Imminent:          500 * time.Millisecond,
		Final:             50 * time.Millisecond,
	}
}

// withDefaults fills zero fields from DefaultIntervals.
func (iv Intervals) withDefaults() Intervals {
	def := DefaultIntervals()
	if iv.FarThreshold == 0 {
		iv.FarThreshold = def.FarThreshold
	}
	if iv.ApproachThreshold == 0 {
		iv.ApproachThreshold = def.ApproachThreshold
	}
	if iv.SoonThreshold == 0 {
		iv.SoonThreshold = def.SoonThreshold
	}
	if iv.FinalWindow == 0 {
		iv.FinalWindow = def.FinalWindow
	}
	if iv.WarmingWindow == 0 {
		iv.WarmingWindow = def.WarmingWindow
	}
	if iv.Far == 0 {
		iv.Far = def.Far
	}
	if iv.Approach == 0 {
		iv.Approach = def.Approach
	}
	if iv.Near == 0 {
		iv.Near = def.Near
	}
	if iv.Imminent == 0 {
		iv.Imminent = def.Imminent
	}
	if iv.Final == 0 {
		iv.Final = def.Final
	}
	return iv
}

// Next picks the sampling interval for the given snapshot. A zero
// return means the observation is terminal and polling should stop.
func (iv Intervals) Next(state State, untilStart time.Duration) time.Duration {
	if state.Status == StatusDone {
		return 0
	}

	// The final second before a predicted hit needs the tightest
	// sampling to keep the trigger synchronized.
	if state.TimeBeforeHit != wave.Infinite &&
		state.TimeBeforeHit > 0 && state.TimeBeforeHit <= iv.FinalWindow {
		return iv.Final
	}

	if state.Status == StatusRunning || untilStart <= iv.SoonThreshold {
		return iv.Imminent
	}
	if untilStart <= iv.ApproachThreshold {
		return iv.Near
	}
	if untilStart <= iv.FarThreshold {
		return iv.Approach
	}
	return iv.Far
}
