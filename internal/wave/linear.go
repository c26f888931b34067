package wave

import (
	"time"

	"github.com/drwave-www/worldwidewaves/internal/geojson"
	"github.com/drwave-www/worldwidewaves/internal/split"
	"github.com/drwave-www/worldwidewaves/internal/sweep"
	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

// linear sweeps a single straight front along the longitude axis.
type linear struct {
	base
	mapping sweep.Mapping
}

func newLinear(event Event, area *geojson.Area) *linear {
	return &linear{
		base:    base{event: event, area: area},
		mapping: sweep.NewMapping(event.Start, event.SpeedKmh, area.BBox, event.Direction),
	}
}

func (l *linear) Variant() Variant { return VariantLinear }

func (l *linear) Progression(now time.Time) float64 {
	if l.area.Empty() {
		return 0
	}
	return l.mapping.Progression(now) * 100
}

func (l *linear) WavePolygons(now time.Time) (swept, unswept []geo.Ring) {
	if l.area.Empty() {
		return nil, l.area.Polygons
	}
	res := split.Cut(l.area.Polygons, l.mapping.CoordinateAt(now))
	if l.event.Direction == sweep.EastToWest {
		return cutRings(res.Right), cutRings(res.Left)
	}
	return cutRings(res.Left), cutRings(res.Right)
}

func (l *linear) HitAt(p geo.Position, now time.Time) bool {
	if !l.PositionWithin(p) {
		return false
	}
	front := l.mapping.CoordinateAt(now)
	if l.event.Direction == sweep.EastToWest {
		return l.axisOf(p) >= front
	}
	return l.axisOf(p) <= front
}

func (l *linear) HitDateTime(p geo.Position) time.Time {
	if !l.PositionWithin(p) {
		return DistantFuture
	}
	d, ok := l.mapping.TimeToCoordinate(l.axisOf(p), p.Lat)
	if !ok {
		return DistantFuture
	}
	return l.event.Start.Add(d)
}

func (l *linear) TimeBeforeHit(p geo.Position, now time.Time) time.Duration {
	hit := l.HitDateTime(p)
	if hit.Equal(DistantFuture) {
		return Infinite
	}
	return hit.Sub(now)
}

func (l *linear) PositionRatio(p geo.Position, now time.Time) float64 {
	if !l.PositionWithin(p) {
		return 0
	}
	target := l.mapping.AxisDistance(l.axisOf(p))
	if target <= geo.Epsilon {
		// Position sits on the starting edge: hit the moment the wave
		// starts.
		if now.Before(l.event.Start) {
			return 0
		}
		return 1
	}
	covered := l.mapping.AxisDistance(l.mapping.CoordinateAt(now))
	return clamp01(covered / target)
}

// cutRings strips the cut metadata, keeping the fragment rings.
func cutRings(polys []split.CutPolygon) []geo.Ring {
	if len(polys) == 0 {
		return nil
	}
	rings := make([]geo.Ring, len(polys))
	for i, p := range polys {
		rings[i] = p.Ring
	}
	return rings
}
