package geo

// Ring is an ordered sequence of positions forming an implicitly closed
// loop: the edge from the last vertex back to the first is part of the
// boundary whether or not the first vertex is repeated at the end.
type Ring []Position

// Valid reports whether the ring has at least three distinct vertices.
func (r Ring) Valid() bool {
	distinct := 0
	seen := make([]Position, 0, len(r))
outer:
	for _, p := range r.Open() {
		for _, s := range seen {
			if p.Equal(s) {
				continue outer
			}
		}
		seen = append(seen, p)
		distinct++
		if distinct >= 3 {
			return true
		}
	}
	return false
}

// Closed reports whether the first vertex is repeated at the end.
func (r Ring) Closed() bool {
	return len(r) >= 2 && r[0].Equal(r[len(r)-1])
}

// Open returns the ring without a repeated closing vertex.
func (r Ring) Open() Ring {
	if r.Closed() {
		return r[:len(r)-1]
	}
	return r
}

// Close returns the ring with the first vertex repeated at the end.
func (r Ring) Close() Ring {
	if len(r) == 0 || r.Closed() {
		return r
	}
	out := make(Ring, len(r)+1)
	copy(out, r)
	out[len(r)] = r[0]
	return out
}

// Sub extracts the vertices from index i to index j inclusive, walking
// forward and wrapping past the end of the ring when j < i.
func (r Ring) Sub(i, j int) Ring {
	open := r.Open()
	n := len(open)
	if n == 0 {
		return nil
	}
	i = ((i % n) + n) % n
	j = ((j % n) + n) % n
	out := make(Ring, 0, n)
	for {
		out = append(out, open[i])
		if i == j {
			return out
		}
		i = (i + 1) % n
	}
}

// Insert returns a copy of the ring with p inserted before index i.
func (r Ring) Insert(i int, p Position) Ring {
	if i < 0 {
		i = 0
	}
	if i > len(r) {
		i = len(r)
	}
	out := make(Ring, 0, len(r)+1)
	out = append(out, r[:i]...)
	out = append(out, p)
	out = append(out, r[i:]...)
	return out
}

// Concat joins two open vertex sequences into one ring.
func (r Ring) Concat(o Ring) Ring {
	out := make(Ring, 0, len(r)+len(o))
	out = append(out, r.Open()...)
	out = append(out, o.Open()...)
	return out
}

// BoundingBox computes the coordinate extrema of the ring. The result
// does not attempt antimeridian detection; callers operating near the
// antimeridian should unwrap longitudes first.
func (r Ring) BoundingBox() BoundingBox {
	open := r.Open()
	if len(open) == 0 {
		return BoundingBox{}
	}
	sw := open[0]
	ne := open[0]
	for _, p := range open[1:] {
		if p.Lat < sw.Lat {
			sw.Lat = p.Lat
		}
		if p.Lat > ne.Lat {
			ne.Lat = p.Lat
		}
		if p.Lng < sw.Lng {
			sw.Lng = p.Lng
		}
		if p.Lng > ne.Lng {
			ne.Lng = p.Lng
		}
	}
	return BoundingBox{SouthWest: sw, NorthEast: ne}
}

// Contains reports whether the position lies inside the ring using the
// even-odd ray casting rule. Vertices exactly on the boundary count as
// inside often enough for hit detection; exact boundary semantics are
// not guaranteed at floating point precision.
func (r Ring) Contains(p Position) bool {
	open := r.Open()
	n := len(open)
	if n < 3 {
		return false
	}
	inside := false
	x := p.Lng
	y := p.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := open[i].Lng, open[i].Lat
		xj, yj := open[j].Lng, open[j].Lat
		intersect := ((yi > y) != (yj > y)) && (x < (xj-xi)*(y-yi)/(yj-yi)+xi)
		if intersect {
			inside = !inside
		}
	}
	return inside
}

// Area returns the planar enclosed area of the ring in square degrees
// (shoelace formula, absolute value). Used by tests to verify that a
// split preserves total area; not a ground-distance measure.
func (r Ring) Area() float64 {
	open := r.Open()
	n := len(open)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += open[i].Lng*open[j].Lat - open[j].Lng*open[i].Lat
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}
