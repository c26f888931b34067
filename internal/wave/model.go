package wave

import (
	"math"
	"time"

	"github.com/drwave-www/worldwidewaves/internal/geojson"
	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

// Infinite is the sentinel duration meaning "this position will never
// be hit".
const Infinite time.Duration = math.MaxInt64

// DistantFuture is the sentinel instant paired with Infinite.
var DistantFuture = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// Model is the public contract shared by every wave variant.
type Model interface {
	// Variant identifies the progression model in use.
	Variant() Variant

	// Progression returns the percentage of the area crossed at the
	// given instant, in [0, 100], monotonically non-decreasing in time.
	Progression(now time.Time) float64

	// WavePolygons returns the already swept and not yet swept
	// sub-polygons at the given instant. With no usable geometry it
	// fails closed: the full area is reported as unswept.
	WavePolygons(now time.Time) (swept, unswept []geo.Ring)

	// PositionWithin reports whether the position lies inside the
	// event area (bounding box fast rejection, then ray casting).
	PositionWithin(p geo.Position) bool

	// HitAt reports whether the wave front has passed the position at
	// the given instant.
	HitAt(p geo.Position, now time.Time) bool

	// TimeBeforeHit returns the remaining time until the front reaches
	// the position, negative once passed, or Infinite when the position
	// will never be hit.
	TimeBeforeHit(p geo.Position, now time.Time) time.Duration

	// HitDateTime returns the instant the front reaches the position,
	// or DistantFuture when it never will.
	HitDateTime(p geo.Position) time.Time

	// PositionRatio returns the sweep progress normalized against the
	// position's own location along the sweep axis: 0 means the sweep
	// just started, 1 means the front has just reached the position.
	PositionRatio(p geo.Position, now time.Time) float64
}

// New builds the model for the event's variant over the parsed area.
func New(event Event, area *geojson.Area) Model {
	switch event.Variant {
	case VariantDeep:
		return newDeep(event, area)
	case VariantSplit:
		return newSplit(event, area)
	default:
		return newLinear(event, area)
	}
}

// base carries what every variant shares: the event and its area.
type base struct {
	event Event
	area  *geojson.Area
}

func (b *base) PositionWithin(p geo.Position) bool {
	return b.area.Contains(p)
}

// axisOf maps a position onto the area's unwrapped sweep axis.
func (b *base) axisOf(p geo.Position) float64 {
	return b.area.BBox.UnwrapLng(p.Lng)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
