// Package wave models the progression of a wave event across its
// geographic area: how much of the area has been crossed, whether a
// given observer position has been hit, and exactly when it will be.
package wave

import (
	"time"

	"github.com/drwave-www/worldwidewaves/internal/sweep"
	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

// Variant selects the wave progression model.
type Variant string

const (
	// VariantLinear sweeps a single straight front across the area.
	VariantLinear Variant = "linear"
	// VariantDeep sweeps radially outward from an origin point.
	VariantDeep Variant = "deep"
	// VariantSplit runs two converging linear fronts, one from each
	// edge of the area.
	VariantSplit Variant = "split"
)

// Valid reports whether the variant is one of the known kinds.
func (v Variant) Valid() bool {
	switch v {
	case VariantLinear, VariantDeep, VariantSplit:
		return true
	}
	return false
}

// Event is the immutable configuration of a wave event. The model reads
// it and never mutates it.
type Event struct {
	ID       string
	Name     string
	Start    time.Time
	SpeedKmh float64

	// Direction orients linear sweeps; ignored by the deep variant.
	Direction sweep.Direction

	Variant Variant

	// Origin is the center of a deep wave. When nil the bounding box
	// center is used.
	Origin *geo.Position
}
