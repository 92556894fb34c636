package cellunion

import (
	"slices"

	"github.com/golang/geo/s1"

	"github.com/hupe1980/geocell/cellid"
)

// Union returns the normalized union of all the given unions.
func Union(cus ...CellUnion) CellUnion {
	var n int
	for _, cu := range cus {
		n += len(cu)
	}
	out := make(CellUnion, 0, n)
	for _, cu := range cus {
		out = append(out, cu...)
	}
	out.Normalize()
	return out
}

// Union returns the union of cu and o.
func (cu CellUnion) Union(o CellUnion) CellUnion { return Union(cu, o) }

// Intersection returns the cells covered by both cu and o. Both inputs must
// be valid; the result is normalized.
//
// The merge skips runs of either input with binary search, so two unions
// whose cells are far apart intersect in logarithmic time.
func (cu CellUnion) Intersection(o CellUnion) CellUnion {
	var out CellUnion
	x, y := cu, o
	i, j := 0, 0
	for i < len(x) && j < len(y) {
		imin, jmin := x[i].RangeMin(), y[j].RangeMin()
		switch {
		case imin > jmin:
			// Either y[j] contains x[i] or they are disjoint.
			if x[i] <= y[j].RangeMax() {
				out = append(out, x[i])
				i++
			} else {
				// Advance j to the first cell possibly contained by x[i];
				// the cell before it may still contain x[i].
				j = j + 1 + y[j+1:].search(imin)
				if x[i] <= y[j-1].RangeMax() {
					j--
				}
			}
		case jmin > imin:
			if y[j] <= x[i].RangeMax() {
				out = append(out, y[j])
				j++
			} else {
				i = i + 1 + x[i+1:].search(jmin)
				if y[j] <= x[i-1].RangeMax() {
					i--
				}
			}
		default:
			// Same RangeMin: one contains the other; keep the smaller.
			if x[i] < y[j] {
				out = append(out, x[i])
				i++
			} else {
				out = append(out, y[j])
				j++
			}
		}
	}
	out.Normalize()
	return out
}

// IntersectionWithCellID returns the part of cu covered by id.
func (cu CellUnion) IntersectionWithCellID(id cellid.CellID) CellUnion {
	var out CellUnion
	if cu.ContainsCellID(id) {
		return CellUnion{id}
	}
	idmax := id.RangeMax()
	for i := cu.search(id.RangeMin()); i < len(cu) && cu[i] <= idmax; i++ {
		out = append(out, cu[i])
	}
	return out
}

// Difference returns the cells of cu not covered by o. Cells partially
// overlapping o are subdivided until every piece is either fully outside
// (kept) or fully inside (dropped).
func (cu CellUnion) Difference(o CellUnion) CellUnion {
	var out CellUnion
	for _, id := range cu {
		out = differenceInternal(id, o, out)
	}
	out.Normalize()
	return out
}

func differenceInternal(id cellid.CellID, o CellUnion, out CellUnion) CellUnion {
	if !o.IntersectsCellID(id) {
		return append(out, id)
	}
	if o.ContainsCellID(id) {
		return out
	}
	for _, child := range id.Children() {
		out = differenceInternal(child, o, out)
	}
	return out
}

// ExpandAtLevel expands the union so that it contains all cells at the given
// level that touch it. Cells finer than level are first replaced by their
// ancestor at level; every resulting cell then adds its neighbors at level.
func (cu CellUnion) ExpandAtLevel(level int) CellUnion {
	var out CellUnion
	levelLsb := cellid.FromFace(0).ChildBeginAtLevel(level).Lsb()
	for i := len(cu) - 1; i >= 0; i-- {
		id := cu[i]
		if id.Lsb() < levelLsb {
			id = id.Parent(level)
			// Skip cells already covered by this expansion.
			for i > 0 && id.Contains(cu[i-1]) {
				i--
			}
		}
		out = append(out, id)
		out = id.AppendAllNeighbors(level, out)
	}
	out.Normalize()
	return out
}

// ExpandByRadius expands the union by at least minRadius, using cells no more
// than maxLevelDiff levels coarser than the finest cell of the union. The
// output has roughly 4*(1+2^maxLevelDiff) times as many cells as the input.
func (cu CellUnion) ExpandByRadius(minRadius s1.Angle, maxLevelDiff int) CellUnion {
	minLevel := cellid.MaxLevel
	for _, id := range cu {
		minLevel = min(minLevel, id.Level())
	}
	// The finest level whose cells are at least minRadius wide.
	radiusLevel := cellid.MinWidth.MaxLevel(minRadius.Radians())
	out := cu
	if radiusLevel == 0 && minRadius.Radians() > cellid.MinWidth.Value(0) {
		// Wider than a face; expanding twice is the simplest fix.
		out = out.ExpandAtLevel(0)
	}
	return out.ExpandAtLevel(min(minLevel+maxLevelDiff, radiusLevel))
}

// Clone returns a copy of the union.
func (cu CellUnion) Clone() CellUnion { return slices.Clone(cu) }
