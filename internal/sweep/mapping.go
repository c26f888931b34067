// Package sweep maps wall-clock time to a wave front coordinate on the
// sweep axis and back, holding true ground speed constant across
// latitudes. A degree of longitude covers 111.32 km × cos(latitude) on
// the ground, so a constant degrees-per-second front would run faster
// away from the equator for the same configured km/h.
package sweep

import (
	"math"
	"time"

	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

// KmPerDegreeLng is the ground length of one degree of longitude at the
// equator, in kilometers.
const KmPerDegreeLng = 111.32

// minCosLat keeps the speed conversion finite for areas at extreme
// latitudes; corresponds to roughly 89.9 degrees.
const minCosLat = 1e-3

// Direction is the orientation of a linear sweep along the longitude axis.
type Direction int

const (
	// WestToEast sweeps from the western edge of the area eastward.
	WestToEast Direction = iota
	// EastToWest sweeps from the eastern edge westward.
	EastToWest
)

func (d Direction) String() string {
	if d == EastToWest {
		return "east_to_west"
	}
	return "west_to_east"
}

// Mapping converts elapsed time at a constant ground speed into a sweep
// axis coordinate, anchored to the representative latitude band of the
// event's bounding box. It is a pure value: all trig is computed once at
// construction and never mutated, so a Mapping is safe to share.
//
// The earth-curvature compensation uses a single representative latitude
// (the bounding box midline) rather than integrating cos(latitude) along
// the front. For city-scale areas the latitude extent is narrow enough
// to treat as locally uniform; per-position hit times re-anchor to the
// position's own latitude.
type Mapping struct {
	start     time.Time
	speedKmh  float64
	bbox      geo.BoundingBox
	direction Direction
	cosRefLat float64
}

// NewMapping builds a Mapping for the given event parameters.
func NewMapping(start time.Time, speedKmh float64, bbox geo.BoundingBox, direction Direction) Mapping {
	cosRef := math.Cos(bbox.CenterLat() * math.Pi / 180)
	if cosRef < minCosLat {
		cosRef = minCosLat
	}
	return Mapping{
		start:     start,
		speedKmh:  speedKmh,
		bbox:      bbox,
		direction: direction,
		cosRefLat: cosRef,
	}
}

// Start returns the wave start instant.
func (m Mapping) Start() time.Time { return m.start }

// Direction returns the sweep orientation.
func (m Mapping) Direction() Direction { return m.direction }

// DegreesPerHour returns the front's angular speed at the representative
// latitude.
func (m Mapping) DegreesPerHour() float64 {
	return m.speedKmh / (KmPerDegreeLng * m.cosRefLat)
}

// CoordinateAt returns the front position on the unwrapped longitude
// axis at the given instant. Before the start the front sits on its
// starting edge. With zero speed the front never advances.
func (m Mapping) CoordinateAt(now time.Time) float64 {
	elapsed := now.Sub(m.start)
	if elapsed < 0 || m.speedKmh <= 0 {
		elapsed = 0
	}
	travelled := m.DegreesPerHour() * elapsed.Hours()
	if m.direction == EastToWest {
		return m.bbox.EastAxis() - travelled
	}
	return m.bbox.WestAxis() + travelled
}

// AxisDistance returns the distance in degrees from the starting edge
// to the given axis coordinate, measured along the travel direction.
// Negative values mean the coordinate lies behind the starting edge.
func (m Mapping) AxisDistance(axis float64) float64 {
	if m.direction == EastToWest {
		return m.bbox.EastAxis() - axis
	}
	return axis - m.bbox.WestAxis()
}

// TimeToCoordinate returns the duration after the wave start at which
// the front reaches the given axis coordinate, converting degrees to
// ground distance at the supplied latitude. The second return value is
// false when the front can never reach the coordinate (zero speed, or
// the coordinate lies behind the starting edge).
func (m Mapping) TimeToCoordinate(axis, lat float64) (time.Duration, bool) {
	if m.speedKmh <= 0 {
		return 0, false
	}
	deg := m.AxisDistance(axis)
	if deg < 0 {
		return 0, false
	}
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < minCosLat {
		cosLat = minCosLat
	}
	km := deg * KmPerDegreeLng * cosLat
	hours := km / m.speedKmh
	return time.Duration(hours * float64(time.Hour)), true
}

// FullTraversal returns the time needed to cross the whole bounding box
// at the representative latitude. The second return value is false for
// zero-speed or zero-extent events.
func (m Mapping) FullTraversal() (time.Duration, bool) {
	width := m.bbox.WidthAxis()
	if m.speedKmh <= 0 || width <= 0 {
		return 0, false
	}
	km := width * KmPerDegreeLng * m.cosRefLat
	hours := km / m.speedKmh
	return time.Duration(hours * float64(time.Hour)), true
}

// Progression returns the swept fraction of the bounding box extent at
// the given instant, clamped to [0, 1]. Zero-speed events pin at 0 and
// zero-extent events pin at 1 once started.
func (m Mapping) Progression(now time.Time) float64 {
	width := m.bbox.WidthAxis()
	if width <= 0 {
		if m.speedKmh > 0 && !now.Before(m.start) {
			return 1
		}
		return 0
	}
	frac := m.AxisDistance(m.CoordinateAt(now)) / width
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}
