package observation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/drwave-www/worldwidewaves/internal/wave"
)

// Status is the lifecycle phase of an observed event. Transitions are
// driven purely by comparing the clock against the event timeline,
// never by external commands.
type Status int

const (
	// StatusUndefined means the event's geometry or configuration is
	// not usable yet.
	StatusUndefined Status = iota
	// StatusWaiting means the event start is still far away.
	StatusWaiting
	// StatusSoon means the event starts within the soon window.
	StatusSoon
	// StatusRunning means the wave is currently sweeping the area.
	StatusRunning
	// StatusDone means the wave has crossed the whole area.
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "WAITING"
	case StatusSoon:
		return "SOON"
	case StatusRunning:
		return "RUNNING"
	case StatusDone:
		return "DONE"
	default:
		return "UNDEFINED"
	}
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "UNDEFINED":
		*s = StatusUndefined
	case "WAITING":
		*s = StatusWaiting
	case "SOON":
		*s = StatusSoon
	case "RUNNING":
		*s = StatusRunning
	case "DONE":
		*s = StatusDone
	default:
		return fmt.Errorf("unknown status %q", name)
	}
	return nil
}

// State is one sampled snapshot of an observed event. It is written
// only by the event's scheduler goroutine and published read-only to
// subscribers.
type State struct {
	Status      Status  `json:"status"`
	Progression float64 `json:"progression"`

	// InArea reports whether the last known observer position lies
	// inside the event area.
	InArea bool `json:"user_is_in_area"`

	// UserHit reports whether the front has passed the observer's
	// current position.
	UserHit bool `json:"user_has_been_hit"`

	// TimeBeforeHit is the remaining time until the front reaches the
	// observer, negative once passed, wave.Infinite when it never will.
	TimeBeforeHit time.Duration `json:"time_before_hit"`

	// HitTime is the predicted hit instant, wave.DistantFuture when
	// the observer will never be hit.
	HitTime time.Time `json:"hit_datetime"`

	// PositionRatio is the sweep progress normalized to the observer's
	// location along the sweep axis, in [0, 1].
	PositionRatio float64 `json:"user_position_ratio"`

	// Warming is set during the pre-hit staging window so downstream
	// choreography can cue up.
	Warming bool `json:"warming"`

	// WarmingFinal is set within the last second before the predicted
	// hit.
	WarmingFinal bool `json:"warming_final"`
}

// Equal reports whether two snapshots carry the same values. Updates
// are published only when this is false.
func (s State) Equal(o State) bool {
	return s.Status == o.Status &&
		s.Progression == o.Progression &&
		s.InArea == o.InArea &&
		s.UserHit == o.UserHit &&
		s.TimeBeforeHit == o.TimeBeforeHit &&
		s.HitTime.Equal(o.HitTime) &&
		s.PositionRatio == o.PositionRatio &&
		s.Warming == o.Warming &&
		s.WarmingFinal == o.WarmingFinal
}

// initialState is the snapshot before the first sample.
func initialState() State {
	return State{
		Status:        StatusUndefined,
		TimeBeforeHit: wave.Infinite,
		HitTime:       wave.DistantFuture,
	}
}
