package split

import (
	"math"
	"sort"

	"github.com/drwave-www/worldwidewaves/pkg/geo"
)

// Cut partitions the given rings at the axis coordinate. Ring
// longitudes are expected on the unwrapped sweep axis (monotonic across
// the antimeridian). Self-intersecting and concave rings are accepted
// without repair: correctness depends only on sequential edge
// interpolation, not convexity.
func Cut(rings []geo.Ring, axis float64) Result {
	res := Result{Axis: axis, CutID: nextCutID()}
	for _, ring := range rings {
		left, right, cuts := cutRing(ring, axis, res.CutID)
		res.Left = append(res.Left, left...)
		res.Right = append(res.Right, right...)
		res.Cuts = append(res.Cuts, cuts...)
	}
	return res
}

// classify places an axis value relative to the cut line.
func classify(v, cut float64) int {
	switch {
	case v < cut-geo.Epsilon:
		return -1
	case v > cut+geo.Epsilon:
		return 1
	default:
		return 0
	}
}

func sideOf(cls int) Side {
	if cls > 0 {
		return Right
	}
	return Left
}

// vertex is a ring position with its side classification.
type vertex struct {
	pos geo.Position
	cls int
}

// crossing is a point where the ring boundary passes from one side of
// the cut line to the other. A crossing over a collinear run carries
// distinct side-facing endpoints; a point crossing carries one position
// for both sides.
type crossing struct {
	leftPt  geo.Position
	rightPt geo.Position
	lat     float64
}

func (x crossing) facing(s Side) geo.Position {
	if s == Right {
		return x.rightPt
	}
	return x.leftPt
}

// chain is a boundary piece entirely on one side of the cut, running
// from one crossing to the next.
type chain struct {
	side   Side
	verts  []geo.Position
	startX int
	endX   int
	used   bool
}

func cutRing(ring geo.Ring, cut float64, cutID int64) (left, right []CutPolygon, cuts []CutPosition) {
	verts, cuts := augment(ring, cut)
	if len(verts) == 0 {
		return nil, nil, nil
	}

	// Rotate so the walk starts on a strict-side vertex; a ring lying
	// entirely on the cut line encloses nothing and is dropped.
	start := -1
	for i, v := range verts {
		if v.cls != 0 {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, nil, nil
	}
	rotated := append(append([]vertex(nil), verts[start:]...), verts[:start]...)

	crossings, chains := collectChains(rotated)

	if len(crossings) == 0 {
		// Never crosses the cut line: a single result entirely on the
		// containing side.
		frag := CutPolygon{CutID: cutID, Side: chains[0].side, Ring: dedupe(chains[0].verts)}
		if len(frag.Ring) < 3 {
			return nil, nil, nil
		}
		if frag.Side == Left {
			return []CutPolygon{frag}, nil, cuts
		}
		return nil, []CutPolygon{frag}, cuts
	}

	partner := pairCrossings(crossings)
	left = stitch(chains, crossings, partner, Left, cutID)
	right = stitch(chains, crossings, partner, Right, cutID)
	return left, right, cuts
}

// augment opens the ring, drops duplicate vertices, and inserts an
// interpolated CutPosition into every edge that strictly crosses the
// cut line, so that afterwards no edge spans both sides.
func augment(ring geo.Ring, cut float64) ([]vertex, []CutPosition) {
	open := dedupe(ring.Open())
	if len(open) < 3 {
		return nil, nil
	}

	var verts []vertex
	var cuts []CutPosition
	n := len(open)
	for i := 0; i < n; i++ {
		a := open[i]
		b := open[(i+1)%n]
		ca := classify(a.Lng, cut)
		cb := classify(b.Lng, cut)
		verts = append(verts, vertex{pos: a, cls: ca})
		if ca*cb == -1 {
			// Linear interpolation along the edge at the cut axis value.
			t := (cut - a.Lng) / (b.Lng - a.Lng)
			cp := CutPosition{
				Position: geo.Position{Lat: a.Lat + t*(b.Lat-a.Lat), Lng: cut},
				Before:   a,
				After:    b,
			}
			cuts = append(cuts, cp)
			verts = append(verts, vertex{pos: cp.Position, cls: 0})
		}
	}
	return verts, cuts
}

// collectChains walks the augmented ring (starting on a strict vertex)
// and cuts it into per-side chains separated by crossings. Collinear
// runs on the cut line that enter and leave on the same side are
// tangential: their endpoints stay with that side and their interior
// points are dropped. Runs that change side become crossings.
func collectChains(rotated []vertex) ([]crossing, []chain) {
	var crossings []crossing
	var chains []chain

	cur := chain{side: sideOf(rotated[0].cls), startX: -1}
	i := 0
	n := len(rotated)
	for i < n {
		v := rotated[i]
		if v.cls != 0 {
			cur.verts = append(cur.verts, v.pos)
			i++
			continue
		}

		// Collect the whole collinear run.
		j := i
		for j < n && rotated[j].cls == 0 {
			j++
		}
		first := rotated[i].pos
		last := rotated[j-1].pos
		// The vertex after the run; the walk started strict, so the
		// wrap target is always strict.
		nextCls := rotated[j%n].cls
		nextSide := sideOf(nextCls)

		if nextSide == cur.side {
			// Tangential touch: keep the run endpoints on this side.
			cur.verts = append(cur.verts, first)
			if !last.Equal(first) {
				cur.verts = append(cur.verts, last)
			}
		} else {
			x := crossing{lat: (first.Lat + last.Lat) / 2}
			if cur.side == Left {
				x.leftPt, x.rightPt = first, last
			} else {
				x.leftPt, x.rightPt = last, first
			}
			cur.verts = append(cur.verts, x.facing(cur.side))
			cur.endX = len(crossings)
			chains = append(chains, cur)

			cur = chain{side: nextSide, startX: len(crossings)}
			cur.verts = append(cur.verts, x.facing(nextSide))
			crossings = append(crossings, x)
		}
		i = j
	}

	// Close the circular walk: the trailing piece continues into the
	// first chain (wrap-around case).
	if len(chains) == 0 {
		chains = append(chains, cur)
	} else {
		chains[0].verts = append(cur.verts, chains[0].verts...)
		chains[0].startX = cur.startX
		chains[0].side = cur.side
	}
	return crossings, chains
}

// pairCrossings pairs crossings into cut-line intervals interior to the
// polygon. Along the cut line the boundary crossings of a simple ring
// alternate between entering and leaving the enclosed region, so after
// sorting by latitude consecutive crossings bound interior intervals.
func pairCrossings(crossings []crossing) []int {
	order := make([]int, len(crossings))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return crossings[order[a]].lat < crossings[order[b]].lat
	})

	partner := make([]int, len(crossings))
	for i := range partner {
		partner[i] = -1
	}
	for i := 0; i+1 < len(order); i += 2 {
		partner[order[i]] = order[i+1]
		partner[order[i+1]] = order[i]
	}
	return partner
}

// stitch assembles the side's chains into disjoint closed fragments.
// From a chain's end crossing the fragment boundary continues along the
// cut line to the paired crossing, then follows the chain starting
// there, until the walk returns to where it began.
func stitch(chains []chain, crossings []crossing, partner []int, side Side, cutID int64) []CutPolygon {
	startOf := make(map[int]int)
	for i := range chains {
		if chains[i].side == side && chains[i].startX >= 0 {
			startOf[chains[i].startX] = i
		}
	}

	var out []CutPolygon
	for i := range chains {
		if chains[i].side != side || chains[i].used {
			continue
		}
		frag := make(geo.Ring, 0, len(chains[i].verts))
		cur := i
		for {
			chains[cur].used = true
			frag = append(frag, chains[cur].verts...)

			end := chains[cur].endX
			if end < 0 || partner[end] < 0 {
				break
			}
			p := partner[end]
			if p == chains[i].startX {
				break
			}
			nxt, ok := startOf[p]
			if !ok || chains[nxt].used {
				// Self-intersecting input can break the alternation
				// assumption; fall back to the nearest unused start on
				// this side so the walk always terminates.
				nxt = nearestUnusedStart(chains, side, crossings[p].lat)
				if nxt == -1 {
					break
				}
			}
			cur = nxt
		}

		frag = dedupe(frag)
		if len(frag) >= 3 {
			out = append(out, CutPolygon{CutID: cutID, Side: side, Ring: frag})
		}
	}
	return out
}

func nearestUnusedStart(chains []chain, side Side, lat float64) int {
	best := -1
	bestDist := math.MaxFloat64
	for i := range chains {
		if chains[i].side != side || chains[i].used || len(chains[i].verts) == 0 {
			continue
		}
		d := math.Abs(chains[i].verts[0].Lat - lat)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// dedupe removes consecutive duplicate vertices, including a repeated
// closing vertex.
func dedupe(ring geo.Ring) geo.Ring {
	if len(ring) == 0 {
		return ring
	}
	out := make(geo.Ring, 0, len(ring))
	for _, p := range ring {
		if len(out) > 0 && out[len(out)-1].Equal(p) {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 1 && out[0].Equal(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}
