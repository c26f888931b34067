package geojson_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drwave-www/worldwidewaves/internal/geojson"
	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

const squarePolygon = `{
  "type": "Polygon",
  "coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]
}`

func TestParse_Polygon(t *testing.T) {
	area, err := geojson.Parse([]byte(squarePolygon))
	require.NoError(t, err)
	require.False(t, area.Empty())
	require.Len(t, area.Polygons, 1)

	// GeoJSON ordering is [lng, lat].
	assert.Equal(t, geo.Position{Lat: 0, Lng: 0}, area.Polygons[0][0])
	assert.Equal(t, geo.Position{Lat: 0, Lng: 10}, area.Polygons[0][1])

	assert.Equal(t, geo.Position{Lat: 0, Lng: 0}, area.BBox.SouthWest)
	assert.Equal(t, geo.Position{Lat: 10, Lng: 10}, area.BBox.NorthEast)

	assert.True(t, area.Contains(geo.Position{Lat: 5, Lng: 5}))
	assert.False(t, area.Contains(geo.Position{Lat: 5, Lng: 15}))
}

func TestParse_MultiPolygonAndFeatures(t *testing.T) {
	multi := `{
	  "type": "MultiPolygon",
	  "coordinates": [
	    [[[0, 0], [2, 0], [2, 2], [0, 2], [0, 0]]],
	    [[[5, 5], [7, 5], [7, 7], [5, 7], [5, 5]]]
	  ]
	}`
	area, err := geojson.Parse([]byte(multi))
	require.NoError(t, err)
	assert.Len(t, area.Polygons, 2)

	feature := `{"type": "Feature", "properties": {"name": "x"}, "geometry": ` + squarePolygon + `}`
	area, err = geojson.Parse([]byte(feature))
	require.NoError(t, err)
	assert.Len(t, area.Polygons, 1)

	collection := `{"type": "FeatureCollection", "features": [` + feature + `,` + feature + `]}`
	area, err = geojson.Parse([]byte(collection))
	require.NoError(t, err)
	assert.Len(t, area.Polygons, 2)
}

func TestParse_HolesIgnored(t *testing.T) {
	withHole := `{
	  "type": "Polygon",
	  "coordinates": [
	    [[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]],
	    [[4, 4], [6, 4], [6, 6], [4, 6], [4, 4]]
	  ]
	}`
	area, err := geojson.Parse([]byte(withHole))
	require.NoError(t, err)
	require.Len(t, area.Polygons, 1)
	// The hole is not part of the model: its interior still counts as
	// inside.
	assert.True(t, area.Contains(geo.Position{Lat: 5, Lng: 5}))
}

func TestParse_LenientOnBadGeometry(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unsupported type", `{"type": "LineString", "coordinates": [[0, 0], [1, 1]]}`},
		{"bad arity", `{"type": "Polygon", "coordinates": [[[0], [1, 1], [2, 2], [0]]]}`},
		{"non-numeric", `{"type": "Polygon", "coordinates": [[["a", 0], [1, 1], [2, 2]]]}`},
		{"out of range", `{"type": "Polygon", "coordinates": [[[0, 95], [1, 1], [2, 2]]]}`},
		{"too few vertices", `{"type": "Polygon", "coordinates": [[[0, 0], [1, 1], [0, 0]]]}`},
		{"no coordinates", `{"type": "Polygon"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			area, err := geojson.Parse([]byte(tt.doc))
			require.NoError(t, err)
			assert.True(t, area.Empty())
			// Without geometry the box falls back to the whole world.
			assert.Equal(t, geojson.WorldBBox(), area.BBox)
		})
	}
}

func TestParse_InvalidDocument(t *testing.T) {
	_, err := geojson.Parse([]byte("{not json"))
	assert.ErrorIs(t, err, geojson.ErrInvalidDocument)
}

func TestParse_BBoxResolutionOrder(t *testing.T) {
	withBBox := `{
	  "type": "Polygon",
	  "bbox": [-1, -1, 11, 11],
	  "coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]
	}`

	// Embedded bbox wins over computed extrema.
	area, err := geojson.Parse([]byte(withBBox))
	require.NoError(t, err)
	assert.Equal(t, geo.Position{Lat: -1, Lng: -1}, area.BBox.SouthWest)
	assert.Equal(t, geo.Position{Lat: 11, Lng: 11}, area.BBox.NorthEast)

	// A configuration override wins over the embedded bbox.
	area, err = geojson.ParseWithOptions([]byte(withBBox), geojson.ParseOptions{
		BBoxOverride: "2, 2, 8, 8",
	})
	require.NoError(t, err)
	assert.Equal(t, geo.Position{Lat: 2, Lng: 2}, area.BBox.SouthWest)
	assert.Equal(t, geo.Position{Lat: 8, Lng: 8}, area.BBox.NorthEast)

	// A malformed override is a hard error, not a silent fallback.
	_, err = geojson.ParseWithOptions([]byte(withBBox), geojson.ParseOptions{
		BBoxOverride: "2, 2, 8",
	})
	assert.ErrorIs(t, err, geojson.ErrInvalidBBox)
}

func TestParseBBoxOverride(t *testing.T) {
	bbox, err := geojson.ParseBBoxOverride("-20.5, 177, -15, -178")
	require.NoError(t, err)
	assert.Equal(t, geo.Position{Lat: -20.5, Lng: 177}, bbox.SouthWest)
	assert.Equal(t, geo.Position{Lat: -15, Lng: -178}, bbox.NorthEast)
	assert.True(t, bbox.CrossesAntimeridian())

	_, err = geojson.ParseBBoxOverride("a, b, c, d")
	assert.ErrorIs(t, err, geojson.ErrInvalidBBox)
}

func TestParse_AntimeridianUnwrap(t *testing.T) {
	// A Fiji-style area with raw longitudes on both sides of 180.
	fiji := `{
	  "type": "Polygon",
	  "coordinates": [[[177, -20], [-178, -20], [-178, -15], [177, -15], [177, -20]]]
	}`
	area, err := geojson.Parse([]byte(fiji))
	require.NoError(t, err)
	require.Len(t, area.Polygons, 1)

	// Ring longitudes are unwrapped onto a continuous axis.
	for _, p := range area.Polygons[0] {
		assert.GreaterOrEqual(t, p.Lng, 177.0)
		assert.LessOrEqual(t, p.Lng, 182.0)
	}

	// The box stays in wrapped representation.
	assert.True(t, area.BBox.CrossesAntimeridian())
	assert.InDelta(t, 177, area.BBox.SouthWest.Lng, 1e-9)
	assert.InDelta(t, -178, area.BBox.NorthEast.Lng, 1e-9)

	// Containment works on both sides of the wrap.
	assert.True(t, area.Contains(geo.Position{Lat: -18, Lng: 179}))
	assert.True(t, area.Contains(geo.Position{Lat: -18, Lng: -179}))
	assert.False(t, area.Contains(geo.Position{Lat: -18, Lng: 0}))
}

func TestCache_GetOrParse(t *testing.T) {
	cache, err := geojson.NewCache(4)
	require.NoError(t, err)

	calls := 0
	fetch := func() ([]byte, error) {
		calls++
		return []byte(squarePolygon), nil
	}

	area1, err := cache.GetOrParse("paris", geojson.ParseOptions{}, fetch)
	require.NoError(t, err)
	area2, err := cache.GetOrParse("paris", geojson.ParseOptions{}, fetch)
	require.NoError(t, err)

	assert.Same(t, area1, area2)
	assert.Equal(t, 1, calls)

	cache.Invalidate("paris")
	_, err = cache.GetOrParse("paris", geojson.ParseOptions{}, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCache_FetchErrorNotCached(t *testing.T) {
	cache, err := geojson.NewCache(0)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = cache.GetOrParse("x", geojson.ParseOptions{}, func() ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	_, ok := cache.Get("x")
	assert.False(t, ok)
}

func TestValidator(t *testing.T) {
	v, err := geojson.NewValidator()
	require.NoError(t, err)

	assert.NoError(t, v.Validate([]byte(squarePolygon)))

	// Three-vertex rings parse leniently but fail strict validation.
	short := `{"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [0, 1]]]}`
	assert.ErrorIs(t, v.Validate([]byte(short)), geojson.ErrInvalidDocument)

	assert.ErrorIs(t, v.Validate([]byte(`{"type": "Point", "coordinates": [0, 0]}`)), geojson.ErrInvalidDocument)
}
