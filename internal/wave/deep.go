package wave

import (
	"math"
	"time"

	"github.com/drwave-www/worldwidewaves/internal/geojson"
	"github.com/drwave-www/worldwidewaves/internal/sweep"
	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

// circleSegments is the resolution of the swept-region ring rendered
// for deep waves.
const circleSegments = 64

// deep sweeps radially outward from an origin point. Its sweep axis is
// ground distance from the origin rather than longitude.
type deep struct {
	base
	origin geo.Position
	// maxKm is the distance from the origin to the farthest ring
	// vertex, i.e. the full extent of the sweep axis.
	maxKm float64
}

func newDeep(event Event, area *geojson.Area) *deep {
	origin := geo.Position{Lat: area.BBox.CenterLat(), Lng: (area.BBox.WestAxis() + area.BBox.EastAxis()) / 2}
	if event.Origin != nil {
		origin = *event.Origin
	}
	maxKm := 0.0
	for _, ring := range area.Polygons {
		for _, p := range ring {
			if d := geo.DistanceKm(origin, p); d > maxKm {
				maxKm = d
			}
		}
	}
	return &deep{
		base:   base{event: event, area: area},
		origin: origin,
		maxKm:  maxKm,
	}
}

func (d *deep) Variant() Variant { return VariantDeep }

// frontKm returns the radius of the front at the given instant.
func (d *deep) frontKm(now time.Time) float64 {
	elapsed := now.Sub(d.event.Start)
	if elapsed < 0 || d.event.SpeedKmh <= 0 {
		return 0
	}
	return d.event.SpeedKmh * elapsed.Hours()
}

func (d *deep) Progression(now time.Time) float64 {
	if d.area.Empty() {
		return 0
	}
	if d.maxKm <= 0 {
		// Point-sized area: fully crossed the instant the wave starts.
		if d.event.SpeedKmh > 0 && !now.Before(d.event.Start) {
			return 100
		}
		return 0
	}
	return clamp01(d.frontKm(now)/d.maxKm) * 100
}

// WavePolygons approximates the swept region with a circle ring around
// the origin; the full area is always reported as unswept so renderers
// can overlay the two. Radial polygon clipping is out of reach of the
// longitude-cut kernel.
func (d *deep) WavePolygons(now time.Time) (swept, unswept []geo.Ring) {
	if d.area.Empty() {
		return nil, d.area.Polygons
	}
	front := d.frontKm(now)
	if front <= 0 {
		return nil, d.area.Polygons
	}
	return []geo.Ring{d.circleRing(front)}, d.area.Polygons
}

// circleRing builds the front circle at the given radius, adjusting the
// longitude radius for the origin's latitude.
func (d *deep) circleRing(radiusKm float64) geo.Ring {
	cosLat := math.Cos(d.origin.Lat * math.Pi / 180)
	if cosLat < 1e-3 {
		cosLat = 1e-3
	}
	latDeg := radiusKm / sweep.KmPerDegreeLng
	lngDeg := radiusKm / (sweep.KmPerDegreeLng * cosLat)

	ring := make(geo.Ring, circleSegments)
	for i := 0; i < circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		ring[i] = geo.Position{
			Lat: d.origin.Lat + latDeg*math.Sin(a),
			Lng: d.origin.Lng + lngDeg*math.Cos(a),
		}
	}
	return ring
}

func (d *deep) HitAt(p geo.Position, now time.Time) bool {
	if !d.PositionWithin(p) {
		return false
	}
	return geo.DistanceKm(d.origin, p) <= d.frontKm(now)
}

func (d *deep) HitDateTime(p geo.Position) time.Time {
	if !d.PositionWithin(p) || d.event.SpeedKmh <= 0 {
		return DistantFuture
	}
	hours := geo.DistanceKm(d.origin, p) / d.event.SpeedKmh
	return d.event.Start.Add(time.Duration(hours * float64(time.Hour)))
}

func (d *deep) TimeBeforeHit(p geo.Position, now time.Time) time.Duration {
	hit := d.HitDateTime(p)
	if hit.Equal(DistantFuture) {
		return Infinite
	}
	return hit.Sub(now)
}

func (d *deep) PositionRatio(p geo.Position, now time.Time) float64 {
	if !d.PositionWithin(p) {
		return 0
	}
	dist := geo.DistanceKm(d.origin, p)
	if dist <= 1e-9 {
		if now.Before(d.event.Start) {
			return 0
		}
		return 1
	}
	return clamp01(d.frontKm(now) / dist)
}
