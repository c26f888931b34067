package geo

// BoundingBox is the axis-aligned extent of an area, expressed as its
// southwest and northeast corners. A box straddling the antimeridian is
// represented with SouthWest.Lng > NorthEast.Lng.
type BoundingBox struct {
	SouthWest Position `json:"sw"`
	NorthEast Position `json:"ne"`
}

// Zero reports whether the box is the zero value.
func (b BoundingBox) Zero() bool {
	return b.SouthWest == (Position{}) && b.NorthEast == (Position{})
}

// CrossesAntimeridian reports whether the box wraps across longitude 180.
func (b BoundingBox) CrossesAntimeridian() bool {
	return b.SouthWest.Lng > b.NorthEast.Lng
}

// WestAxis returns the western edge of the box on the unwrapped
// longitude axis.
func (b BoundingBox) WestAxis() float64 {
	return b.SouthWest.Lng
}

// EastAxis returns the eastern edge of the box on the unwrapped
// longitude axis: when the box crosses the antimeridian the eastern
// edge is shifted by a full turn so that east > west always holds.
func (b BoundingBox) EastAxis() float64 {
	if b.CrossesAntimeridian() {
		return b.NorthEast.Lng + 360
	}
	return b.NorthEast.Lng
}

// UnwrapLng maps a longitude onto the box's continuous axis, shifting
// by 360 when the box crosses the antimeridian and the longitude sits
// on the eastern half of the wrap.
func (b BoundingBox) UnwrapLng(lng float64) float64 {
	if b.CrossesAntimeridian() && lng < b.SouthWest.Lng-Epsilon {
		return lng + 360
	}
	return lng
}

// WidthAxis returns the box extent along the unwrapped longitude axis
// in degrees.
func (b BoundingBox) WidthAxis() float64 {
	return b.EastAxis() - b.WestAxis()
}

// CenterLat returns the latitude midline of the box, used as the
// representative latitude band for sweep speed conversion.
func (b BoundingBox) CenterLat() float64 {
	return (b.SouthWest.Lat + b.NorthEast.Lat) / 2
}

// Contains reports whether the position lies within the box, handling
// the antimeridian wrap.
func (b BoundingBox) Contains(p Position) bool {
	if p.Lat < b.SouthWest.Lat-Epsilon || p.Lat > b.NorthEast.Lat+Epsilon {
		return false
	}
	axis := b.UnwrapLng(p.Lng)
	return axis >= b.WestAxis()-Epsilon && axis <= b.EastAxis()+Epsilon
}

// Union expands the box to cover another box.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	if b.Zero() {
		return o
	}
	if o.Zero() {
		return b
	}
	out := b
	if o.SouthWest.Lat < out.SouthWest.Lat {
		out.SouthWest.Lat = o.SouthWest.Lat
	}
	if o.NorthEast.Lat > out.NorthEast.Lat {
		out.NorthEast.Lat = o.NorthEast.Lat
	}
	if o.SouthWest.Lng < out.SouthWest.Lng {
		out.SouthWest.Lng = o.SouthWest.Lng
	}
	if o.NorthEast.Lng > out.NorthEast.Lng {
		out.NorthEast.Lng = o.NorthEast.Lng
	}
	return out
}
