package wave

import (
	"time"

	"github.com/drwave-www/worldwidewaves/internal/geojson"
	"github.com/drwave-www/worldwidewaves/internal/split"
	"github.com/drwave-www/worldwidewaves/internal/sweep"
	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

// splitWave runs two simultaneous linear fronts converging from the
// area's western and eastern edges. A position counts as hit as soon as
// either front has passed it.
type splitWave struct {
	base
	west sweep.Mapping // west edge, travelling east
	east sweep.Mapping // east edge, travelling west
}

func newSplit(event Event, area *geojson.Area) *splitWave {
	return &splitWave{
		base: base{event: event, area: area},
		west: sweep.NewMapping(event.Start, event.SpeedKmh, area.BBox, sweep.WestToEast),
		east: sweep.NewMapping(event.Start, event.SpeedKmh, area.BBox, sweep.EastToWest),
	}
}

func (s *splitWave) Variant() Variant { return VariantSplit }

func (s *splitWave) Progression(now time.Time) float64 {
	if s.area.Empty() {
		return 0
	}
	// Both fronts contribute coverage until they meet in the middle.
	return clamp01(s.west.Progression(now)+s.east.Progression(now)) * 100
}

func (s *splitWave) WavePolygons(now time.Time) (swept, unswept []geo.Ring) {
	if s.area.Empty() {
		return nil, s.area.Polygons
	}
	cw := s.west.CoordinateAt(now)
	ce := s.east.CoordinateAt(now)
	if ce <= cw {
		// The fronts have met: the whole area is swept.
		return s.area.Polygons, nil
	}

	// One kernel invocation per front: first cut away the west front's
	// swept part, then cut the remainder at the east front.
	westCut := split.Cut(s.area.Polygons, cw)
	swept = cutRings(westCut.Left)

	eastCut := split.Cut(cutRings(westCut.Right), ce)
	swept = append(swept, cutRings(eastCut.Right)...)
	return swept, cutRings(eastCut.Left)
}

func (s *splitWave) HitAt(p geo.Position, now time.Time) bool {
	if !s.PositionWithin(p) {
		return false
	}
	axis := s.axisOf(p)
	return axis <= s.west.CoordinateAt(now) || axis >= s.east.CoordinateAt(now)
}

// HitDateTime is the earlier of the two fronts' crossing times.
func (s *splitWave) HitDateTime(p geo.Position) time.Time {
	if !s.PositionWithin(p) {
		return DistantFuture
	}
	axis := s.axisOf(p)
	lat := p.Lat

	best := DistantFuture
	if d, ok := s.west.TimeToCoordinate(axis, lat); ok {
		best = s.event.Start.Add(d)
	}
	if d, ok := s.east.TimeToCoordinate(axis, lat); ok {
		if t := s.event.Start.Add(d); t.Before(best) {
			best = t
		}
	}
	return best
}

func (s *splitWave) TimeBeforeHit(p geo.Position, now time.Time) time.Duration {
	hit := s.HitDateTime(p)
	if hit.Equal(DistantFuture) {
		return Infinite
	}
	return hit.Sub(now)
}

func (s *splitWave) PositionRatio(p geo.Position, now time.Time) float64 {
	if !s.PositionWithin(p) {
		return 0
	}
	axis := s.axisOf(p)
	return clamp01(maxFloat(
		frontRatio(s.west, axis, now),
		frontRatio(s.east, axis, now),
	))
}

func frontRatio(m sweep.Mapping, axis float64, now time.Time) float64 {
	target := m.AxisDistance(axis)
	if target <= geo.Epsilon {
		if now.Before(m.Start()) {
			return 0
		}
		return 1
	}
	return m.AxisDistance(m.CoordinateAt(now)) / target
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
