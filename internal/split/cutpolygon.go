// Package split partitions polygon rings at a sweep axis coordinate
// into the already swept ("left") and not yet swept ("right") sides.
// The kernel is a pure function over its inputs: no state survives a
// call beyond the monotonically increasing cut operation id.
package split

import (
	"sync/atomic"

	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

// Side identifies which half of a cut a fragment belongs to.
type Side int

const (
	// Left is the half with axis coordinates below the cut value,
	// i.e. already swept for a west-to-east front.
	Left Side = iota
	// Right is the half with axis coordinates above the cut value.
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// CutPosition is a position interpolated on the cut line during a split,
// tagged with the edge endpoints it was interpolated between so rings
// can be re-stitched after cutting. It is created and owned by one Cut
// call; callers that retain it must copy what they need.
type CutPosition struct {
	geo.Position

	// Before and After are the original edge endpoints surrounding the
	// interpolation. For a cut falling exactly on an original vertex
	// they are that vertex's ring neighbors.
	Before geo.Position
	After  geo.Position
}

// CutPolygon is one closed fragment produced by a cut, tagged with the
// identifier of the cut operation that produced it.
type CutPolygon struct {
	CutID int64
	Side  Side
	Ring  geo.Ring
}

// CreateNew returns a fresh empty fragment of the same kind, preserving
// the cut id so idempotent recreation groups with the original result.
func (p CutPolygon) CreateNew() CutPolygon {
	return CutPolygon{CutID: p.CutID, Side: p.Side}
}

// Result holds both sides of a cut. The union of Left and Right,
// overlapping only on the shared cut-line vertices, reconstructs the
// input area.
type Result struct {
	Axis  float64
	CutID int64
	Left  []CutPolygon
	Right []CutPolygon
	Cuts  []CutPosition
}

var cutCounter atomic.Int64

func nextCutID() int64 {
	return cutCounter.Add(1)
}
