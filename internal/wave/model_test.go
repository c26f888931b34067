package wave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drwave-www/worldwidewaves/internal/geojson"
	"github.com/drwave-www/worldwidewaves/internal/sweep"
	"github.com/drwave-www/worldwidewaves/internal/wave"
	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

var start = time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC)

// equatorArea is a 2-degree-wide square on the equator. At 111.32 km/h
// a linear front needs exactly two hours to cross it.
func equatorArea(t *testing.T) *geojson.Area {
	t.Helper()
	doc := `{
	  "type": "Polygon",
	  "coordinates": [[[0, -1], [2, -1], [2, 1], [0, 1], [0, -1]]]
	}`
	area, err := geojson.Parse([]byte(doc))
	require.NoError(t, err)
	return area
}

func linearEvent() wave.Event {
	return wave.Event{
		ID:        "test",
		Name:      "Test Wave",
		Start:     start,
		SpeedKmh:  111.32,
		Direction: sweep.WestToEast,
		Variant:   wave.VariantLinear,
	}
}

func TestVariant_Valid(t *testing.T) {
	assert.True(t, wave.VariantLinear.Valid())
	assert.True(t, wave.VariantDeep.Valid())
	assert.True(t, wave.VariantSplit.Valid())
	assert.False(t, wave.Variant("tidal").Valid())
}

func TestNew_SelectsVariant(t *testing.T) {
	area := equatorArea(t)

	ev := linearEvent()
	assert.Equal(t, wave.VariantLinear, wave.New(ev, area).Variant())

	ev.Variant = wave.VariantDeep
	assert.Equal(t, wave.VariantDeep, wave.New(ev, area).Variant())

	ev.Variant = wave.VariantSplit
	assert.Equal(t, wave.VariantSplit, wave.New(ev, area).Variant())

	// Unknown variants fall back to linear.
	ev.Variant = "tidal"
	assert.Equal(t, wave.VariantLinear, wave.New(ev, area).Variant())
}

func TestLinear_Progression(t *testing.T) {
	m := wave.New(linearEvent(), equatorArea(t))

	assert.InDelta(t, 0, m.Progression(start.Add(-time.Hour)), 1e-9)
	assert.InDelta(t, 50, m.Progression(start.Add(time.Hour)), 1e-3)
	assert.InDelta(t, 100, m.Progression(start.Add(5*time.Hour)), 1e-9)
}

func TestLinear_HitAt(t *testing.T) {
	m := wave.New(linearEvent(), equatorArea(t))
	inside := geo.Position{Lat: 0, Lng: 1}
	outside := geo.Position{Lat: 0, Lng: 50}

	assert.False(t, m.HitAt(inside, start))
	assert.True(t, m.HitAt(inside, start.Add(90*time.Minute)))
	// Outside positions are never hit, whatever the time.
	assert.False(t, m.HitAt(outside, start.Add(100*time.Hour)))
}

func TestLinear_HitDateTime(t *testing.T) {
	m := wave.New(linearEvent(), equatorArea(t))

	hit := m.HitDateTime(geo.Position{Lat: 0, Lng: 1})
	assert.WithinDuration(t, start.Add(time.Hour), hit, time.Second)

	assert.Equal(t, wave.DistantFuture, m.HitDateTime(geo.Position{Lat: 0, Lng: 50}))
}

func TestLinear_TimeBeforeHit(t *testing.T) {
	m := wave.New(linearEvent(), equatorArea(t))
	p := geo.Position{Lat: 0, Lng: 1}

	d := m.TimeBeforeHit(p, start)
	assert.InDelta(t, time.Hour.Seconds(), d.Seconds(), 1)

	// Negative once the front has passed.
	assert.Less(t, m.TimeBeforeHit(p, start.Add(2*time.Hour)), time.Duration(0))

	assert.Equal(t, wave.Infinite, m.TimeBeforeHit(geo.Position{Lat: 0, Lng: 50}, start))
}

func TestLinear_PositionRatio(t *testing.T) {
	m := wave.New(linearEvent(), equatorArea(t))
	p := geo.Position{Lat: 0, Lng: 1}

	assert.InDelta(t, 0, m.PositionRatio(p, start), 1e-9)
	assert.InDelta(t, 0.5, m.PositionRatio(p, start.Add(30*time.Minute)), 1e-3)
	assert.InDelta(t, 1, m.PositionRatio(p, start.Add(time.Hour)), 1e-3)
	// Clamped once the front has passed.
	assert.InDelta(t, 1, m.PositionRatio(p, start.Add(3*time.Hour)), 1e-9)

	// On the starting edge: hit the instant the wave starts.
	edge := geo.Position{Lat: 0, Lng: 0}
	assert.InDelta(t, 0, m.PositionRatio(edge, start.Add(-time.Minute)), 1e-9)
	assert.InDelta(t, 1, m.PositionRatio(edge, start), 1e-9)
}

func TestLinear_WavePolygons(t *testing.T) {
	m := wave.New(linearEvent(), equatorArea(t))
	area := equatorArea(t)

	swept, unswept := m.WavePolygons(start)
	assert.Empty(t, ringArea(swept))
	assert.InDelta(t, ringArea(area.Polygons), ringArea(unswept), 1e-9)

	swept, unswept = m.WavePolygons(start.Add(time.Hour))
	assert.InDelta(t, ringArea(area.Polygons)/2, ringArea(swept), 1e-3)
	assert.InDelta(t, ringArea(area.Polygons)/2, ringArea(unswept), 1e-3)

	swept, unswept = m.WavePolygons(start.Add(5 * time.Hour))
	assert.InDelta(t, ringArea(area.Polygons), ringArea(swept), 1e-9)
	assert.Empty(t, unswept)
}

func TestLinear_EastToWest(t *testing.T) {
	ev := linearEvent()
	ev.Direction = sweep.EastToWest
	m := wave.New(ev, equatorArea(t))

	// The eastern half is swept first.
	assert.True(t, m.HitAt(geo.Position{Lat: 0, Lng: 1.5}, start.Add(time.Hour)))
	assert.False(t, m.HitAt(geo.Position{Lat: 0, Lng: 0.5}, start.Add(time.Hour)))

	hit := m.HitDateTime(geo.Position{Lat: 0, Lng: 1})
	assert.WithinDuration(t, start.Add(time.Hour), hit, time.Second)
}

func TestDeep_RadialSweep(t *testing.T) {
	ev := linearEvent()
	ev.Variant = wave.VariantDeep
	origin := geo.Position{Lat: 0, Lng: 1}
	ev.Origin = &origin
	m := wave.New(ev, equatorArea(t))

	p := geo.Position{Lat: 0, Lng: 1.5}
	dist := geo.DistanceKm(origin, p)

	hit := m.HitDateTime(p)
	want := start.Add(time.Duration(dist / 111.32 * float64(time.Hour)))
	assert.WithinDuration(t, want, hit, time.Second)

	assert.False(t, m.HitAt(p, start))
	assert.True(t, m.HitAt(p, hit.Add(time.Minute)))

	// The origin itself is hit immediately.
	assert.True(t, m.HitAt(origin, start))

	assert.InDelta(t, 0, m.Progression(start), 1e-9)
	assert.InDelta(t, 100, m.Progression(start.Add(24*time.Hour)), 1e-9)
}

func TestDeep_DefaultOriginIsBoxCenter(t *testing.T) {
	ev := linearEvent()
	ev.Variant = wave.VariantDeep
	m := wave.New(ev, equatorArea(t))

	// The box center is hit the instant the wave starts.
	assert.True(t, m.HitAt(geo.Position{Lat: 0, Lng: 1}, start))
	assert.False(t, m.HitAt(geo.Position{Lat: 0, Lng: 0.1}, start))
}

func TestDeep_WavePolygons(t *testing.T) {
	ev := linearEvent()
	ev.Variant = wave.VariantDeep
	m := wave.New(ev, equatorArea(t))

	swept, unswept := m.WavePolygons(start)
	assert.Empty(t, swept)
	assert.NotEmpty(t, unswept)

	swept, unswept = m.WavePolygons(start.Add(time.Hour))
	require.Len(t, swept, 1)
	// The full area stays listed as unswept under the front circle.
	assert.NotEmpty(t, unswept)
}

func TestSplit_ConvergingFronts(t *testing.T) {
	ev := linearEvent()
	ev.Variant = wave.VariantSplit
	m := wave.New(ev, equatorArea(t))

	// Both edges are swept before the middle.
	quarter := start.Add(30 * time.Minute)
	assert.True(t, m.HitAt(geo.Position{Lat: 0, Lng: 0.25}, quarter))
	assert.True(t, m.HitAt(geo.Position{Lat: 0, Lng: 1.75}, quarter))
	assert.False(t, m.HitAt(geo.Position{Lat: 0, Lng: 1}, quarter))

	// The meeting point in the middle is hit last, after one hour.
	hit := m.HitDateTime(geo.Position{Lat: 0, Lng: 1})
	assert.WithinDuration(t, start.Add(time.Hour), hit, time.Second)

	// A point at a quarter of the width is reached by the west front
	// first.
	hit = m.HitDateTime(geo.Position{Lat: 0, Lng: 0.5})
	assert.WithinDuration(t, start.Add(30*time.Minute), hit, time.Second)
}

func TestSplit_Progression(t *testing.T) {
	ev := linearEvent()
	ev.Variant = wave.VariantSplit
	m := wave.New(ev, equatorArea(t))

	assert.InDelta(t, 0, m.Progression(start), 1e-9)
	// Two fronts cover the area twice as fast as one.
	assert.InDelta(t, 50, m.Progression(start.Add(30*time.Minute)), 1e-3)
	assert.InDelta(t, 100, m.Progression(start.Add(2*time.Hour)), 1e-9)
}

func TestSplit_WavePolygons(t *testing.T) {
	ev := linearEvent()
	ev.Variant = wave.VariantSplit
	m := wave.New(ev, equatorArea(t))
	total := ringArea(equatorArea(t).Polygons)

	swept, unswept := m.WavePolygons(start.Add(30 * time.Minute))
	assert.InDelta(t, total/2, ringArea(swept), 1e-3)
	assert.InDelta(t, total/2, ringArea(unswept), 1e-3)
	// Two swept stripes, one per front.
	assert.Len(t, swept, 2)

	// After the fronts meet the whole area is swept.
	swept, unswept = m.WavePolygons(start.Add(3 * time.Hour))
	assert.InDelta(t, total, ringArea(swept), 1e-9)
	assert.Empty(t, unswept)
}

func TestModel_EmptyArea(t *testing.T) {
	empty, err := geojson.Parse([]byte(`{"type": "FeatureCollection", "features": []}`))
	require.NoError(t, err)

	for _, variant := range []wave.Variant{wave.VariantLinear, wave.VariantDeep, wave.VariantSplit} {
		ev := linearEvent()
		ev.Variant = variant
		m := wave.New(ev, empty)

		assert.InDelta(t, 0, m.Progression(start.Add(time.Hour)), 1e-9, string(variant))
		swept, unswept := m.WavePolygons(start.Add(time.Hour))
		assert.Empty(t, swept, string(variant))
		assert.Empty(t, unswept, string(variant))
	}
}

func ringArea(rings []geo.Ring) float64 {
	sum := 0.0
	for _, r := range rings {
		sum += r.Area()
	}
	return sum
}
