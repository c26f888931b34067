// Package geojson converts raw GeoJSON documents into normalized
// polygon rings and a bounding box for the wave engine. Parsing is
// deliberately lenient: malformed rings are skipped, unsupported
// geometry types yield an empty polygon list, and only an unreadable
// document is reported as an error.
package geojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

// Parse errors.
var (
	ErrInvalidDocument = errors.New("invalid geojson document")
	ErrInvalidBBox     = errors.New("invalid bounding box")
)

// Area is the normalized form of an event's geometry: outer rings with
// longitudes unwrapped onto a continuous sweep axis, plus the resolved
// bounding box.
type Area struct {
	// Polygons are the outer rings, in unwrapped axis space.
	Polygons []geo.Ring

	// BBox is the resolved bounding box. For areas straddling the
	// antimeridian SouthWest.Lng > NorthEast.Lng.
	BBox geo.BoundingBox
}

// Empty reports whether the area carries no usable geometry.
func (a *Area) Empty() bool {
	return a == nil || len(a.Polygons) == 0
}

// Contains reports whether the position lies inside any of the area's
// rings, with a bounding box fast rejection first.
func (a *Area) Contains(p geo.Position) bool {
	if a.Empty() || !a.BBox.Contains(p) {
		return false
	}
	axis := geo.Position{Lat: p.Lat, Lng: a.BBox.UnwrapLng(p.Lng)}
	for _, ring := range a.Polygons {
		if ring.Contains(axis) {
			return true
		}
	}
	return false
}

// ParseOptions adjust area parsing.
type ParseOptions struct {
	// BBoxOverride, when non-empty, takes precedence over any bbox in
	// the document. Format: "swLat, swLng, neLat, neLng".
	BBoxOverride string
}

// Parse converts a raw GeoJSON document (Polygon, MultiPolygon or
// FeatureCollection of polygon features) into an Area.
func Parse(raw []byte) (*Area, error) {
	return ParseWithOptions(raw, ParseOptions{})
}

// ParseWithOptions is Parse with an explicit options set.
//
// Bounding box resolution order: configuration override, embedded
// `bbox` member, computed coordinate extrema, world default.
func ParseWithOptions(raw []byte, opts ParseOptions) (*Area, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	rings := extractRings(&doc)
	rings, bboxFromRings := normalize(rings)

	area := &Area{Polygons: rings}

	switch {
	case opts.BBoxOverride != "":
		bbox, err := ParseBBoxOverride(opts.BBoxOverride)
		if err != nil {
			return nil, err
		}
		area.BBox = bbox
	case len(doc.BBox) >= 4:
		area.BBox = geo.BoundingBox{
			SouthWest: geo.Position{Lat: doc.BBox[1], Lng: doc.BBox[0]},
			NorthEast: geo.Position{Lat: doc.BBox[3], Lng: doc.BBox[2]},
		}
	case len(rings) > 0:
		area.BBox = bboxFromRings
	default:
		area.BBox = WorldBBox()
	}

	return area, nil
}

// ParseBBoxOverride parses the configuration bbox format: four comma
// separated decimals "swLat, swLng, neLat, neLng".
func ParseBBoxOverride(s string) (geo.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geo.BoundingBox{}, fmt.Errorf("%w: want 4 values, got %d", ErrInvalidBBox, len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) {
			return geo.BoundingBox{}, fmt.Errorf("%w: %q", ErrInvalidBBox, p)
		}
		vals[i] = v
	}
	return geo.BoundingBox{
		SouthWest: geo.Position{Lat: vals[0], Lng: vals[1]},
		NorthEast: geo.Position{Lat: vals[2], Lng: vals[3]},
	}, nil
}

// WorldBBox is the fallback extent when no geometry is available.
func WorldBBox() geo.BoundingBox {
	return geo.BoundingBox{
		SouthWest: geo.Position{Lat: -90, Lng: -180},
		NorthEast: geo.Position{Lat: 90, Lng: 180},
	}
}

// document is the lenient GeoJSON envelope. Coordinates stay raw so a
// malformed ring can be skipped without aborting the parse.
type document struct {
	Type        string          `json:"type"`
	BBox        []float64       `json:"bbox"`
	Coordinates json.RawMessage `json:"coordinates"`
	Geometry    *document       `json:"geometry"`
	Features    []document      `json:"features"`
}

func extractRings(doc *document) []geo.Ring {
	if doc == nil {
		return nil
	}
	switch doc.Type {
	case "Polygon":
		return polygonOuterRing(doc.Coordinates)
	case "MultiPolygon":
		var polys []json.RawMessage
		if err := json.Unmarshal(doc.Coordinates, &polys); err != nil {
			return nil
		}
		var rings []geo.Ring
		for _, p := range polys {
			rings = append(rings, polygonOuterRing(p)...)
		}
		return rings
	case "Feature":
		return extractRings(doc.Geometry)
	case "FeatureCollection":
		var rings []geo.Ring
		for i := range doc.Features {
			rings = append(rings, extractRings(&doc.Features[i])...)
		}
		return rings
	default:
		// LineString, Point and friends carry no area.
		return nil
	}
}

// polygonOuterRing decodes a Polygon coordinate array and returns its
// outer ring. Interior rings (holes) are not part of the wave model.
func polygonOuterRing(raw json.RawMessage) []geo.Ring {
	var ringArrays []json.RawMessage
	if err := json.Unmarshal(raw, &ringArrays); err != nil || len(ringArrays) == 0 {
		return nil
	}
	ring, ok := decodeRing(ringArrays[0])
	if !ok {
		return nil
	}
	return []geo.Ring{ring}
}

// decodeRing converts one coordinate array into a Ring, rejecting the
// whole ring on wrong arity, non-numeric or non-finite coordinates.
func decodeRing(raw json.RawMessage) (geo.Ring, bool) {
	var coords [][]float64
	if err := json.Unmarshal(raw, &coords); err != nil {
		return nil, false
	}
	ring := make(geo.Ring, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			return nil, false
		}
		// GeoJSON ordering is [lng, lat].
		pos, err := geo.NewPosition(c[1], c[0])
		if err != nil {
			return nil, false
		}
		ring = append(ring, pos)
	}
	ring = ring.Open()
	if !ring.Valid() {
		return nil, false
	}
	return ring, true
}

// normalize unwraps ring longitudes onto a continuous axis when the
// naive extent suggests the area straddles the antimeridian, and
// computes the extrema bounding box.
func normalize(rings []geo.Ring) ([]geo.Ring, geo.BoundingBox) {
	if len(rings) == 0 {
		return rings, geo.BoundingBox{}
	}

	minLng, maxLng := math.MaxFloat64, -math.MaxFloat64
	for _, ring := range rings {
		for _, p := range ring {
			if p.Lng < minLng {
				minLng = p.Lng
			}
			if p.Lng > maxLng {
				maxLng = p.Lng
			}
		}
	}

	// An extent wider than a hemisphere means the raw longitudes wrap
	// across 180; shift the western hemisphere points up by a turn.
	if maxLng-minLng > 180 {
		for i, ring := range rings {
			out := make(geo.Ring, len(ring))
			for j, p := range ring {
				if p.Lng < 0 {
					p.Lng += 360
				}
				out[j] = p
			}
			rings[i] = out
		}
	}

	var bbox geo.BoundingBox
	for i, ring := range rings {
		if i == 0 {
			bbox = ring.BoundingBox()
		} else {
			bbox = bbox.Union(ring.BoundingBox())
		}
	}
	// Re-wrap the box corners into [-180, 180] so the antimeridian
	// crossing stays representable as SouthWest.Lng > NorthEast.Lng.
	if bbox.SouthWest.Lng > 180 {
		bbox.SouthWest.Lng -= 360
	}
	if bbox.NorthEast.Lng > 180 {
		bbox.NorthEast.Lng -= 360
	}
	return rings, bbox
}
