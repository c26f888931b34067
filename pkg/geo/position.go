// Package geo provides geographic value types used by the wave engine:
// positions, polygon rings and bounding boxes. All types are plain values
// with no retained mutable state, safe to share across goroutines.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon is the coordinate tolerance used for equality checks and for
// classifying vertices against a cut line. Roughly 0.1mm on the ground.
const Epsilon = 1e-9

// ErrInvalidPosition is returned when a coordinate pair is outside the
// valid WGS84 range or not a finite number.
var ErrInvalidPosition = errors.New("invalid position")

// Position is a geographic point in degrees (WGS84).
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewPosition validates and returns a Position. Latitude must be within
// [-90, 90], longitude within [-180, 180], and both must be finite.
// Invalid geometry corrupts every downstream split, so this fails fast.
func NewPosition(lat, lng float64) (Position, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return Position{}, fmt.Errorf("%w: non-finite coordinates (%v, %v)", ErrInvalidPosition, lat, lng)
	}
	if lat < -90 || lat > 90 {
		return Position{}, fmt.Errorf("%w: latitude %v out of range", ErrInvalidPosition, lat)
	}
	if lng < -180 || lng > 180 {
		return Position{}, fmt.Errorf("%w: longitude %v out of range", ErrInvalidPosition, lng)
	}
	return Position{Lat: lat, Lng: lng}, nil
}

// Valid reports whether the position carries finite, in-range coordinates.
func (p Position) Valid() bool {
	_, err := NewPosition(p.Lat, p.Lng)
	return err == nil
}

// Equal reports coordinate equality within Epsilon. Used for cache keys
// and for re-stitching rings after a cut.
func (p Position) Equal(o Position) bool {
	return math.Abs(p.Lat-o.Lat) <= Epsilon && math.Abs(p.Lng-o.Lng) <= Epsilon
}

func (p Position) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lng)
}

// WrapLng maps an unwrapped axis longitude back into [-180, 180].
func WrapLng(lng float64) float64 {
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}
