// Package cellunion implements CellUnion, a region represented as a sorted
// collection of non-overlapping cells.
//
// A union built with New is normalized: sorted, free of cells contained by
// other cells, and free of groups of four siblings (which are replaced by
// their parent). FromVerbatim and FromNormalized skip that work and trust the
// caller. All set operations return normalized unions.
package cellunion

import (
	"slices"

	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/region"
)

// CellUnion is a collection of cells. Most methods require it to be valid
// (sorted, non-overlapping); New returns a normalized union.
type CellUnion []cellid.CellID

var _ region.Region = CellUnion(nil)

// New returns the normalized union of ids. The input slice is not modified.
func New(ids ...cellid.CellID) CellUnion {
	cu := CellUnion(slices.Clone(ids))
	cu.Normalize()
	return cu
}

// FromVerbatim wraps ids without sorting or normalizing them. The caller
// guarantees they are valid when set operations are used. Contains on a
// valid but non-normalized union does not treat four siblings as containing
// their parent.
func FromVerbatim(ids []cellid.CellID) CellUnion { return CellUnion(ids) }

// FromNormalized wraps ids that the caller guarantees to be normalized.
func FromNormalized(ids []cellid.CellID) CellUnion { return CellUnion(ids) }

// FromMinMax returns the minimal union covering the leaf cells in the closed
// range [min, max]. Both must be leaf cells with min <= max.
func FromMinMax(minID, maxID cellid.CellID) CellUnion {
	return FromBeginEnd(minID, maxID.Next())
}

// FromBeginEnd returns the minimal union covering the leaf cells in the
// half-open range [begin, end). Both must be leaf cells (end may be
// cellid.End(MaxLevel)) with begin <= end.
func FromBeginEnd(begin, end cellid.CellID) CellUnion {
	if !begin.IsLeaf() || !end.IsLeaf() || begin > end {
		panic("cellunion: FromBeginEnd requires leaf cells with begin <= end")
	}
	var cu CellUnion
	for id := begin.MaximumTile(end); id != end; id = id.Next().MaximumTile(end) {
		cu = append(cu, id)
	}
	// Already normalized by construction.
	return cu
}

// WholeSphere returns the union of the six face cells.
func WholeSphere() CellUnion {
	cu := make(CellUnion, cellid.NumFaces)
	for f := range cu {
		cu[f] = cellid.FromFace(f)
	}
	return cu
}

// Normalize sorts the union, removes cells contained by other cells and
// replaces every group of four siblings by their parent, repeatedly. It
// reports whether any cell was removed or merged.
func (cu *CellUnion) Normalize() bool {
	ids := *cu
	slices.Sort(ids)
	out := 0
	for _, id := range ids {
		// Skip a cell contained by the previous one.
		if out > 0 && ids[out-1].Contains(id) {
			continue
		}
		// Discard previous cells contained by this one.
		for out > 0 && id.Contains(ids[out-1]) {
			out--
		}
		// Collapse complete sibling groups; this can cascade upwards.
		for out >= 3 && areSiblings(ids[out-3], ids[out-2], ids[out-1], id) {
			id = id.ImmediateParent()
			out -= 3
		}
		ids[out] = id
		out++
	}
	changed := out != len(ids)
	clear(ids[out:])
	*cu = ids[:out]
	return changed
}

// areSiblings reports whether a, b, c, d are exactly the four children of
// one parent (in sorted order).
func areSiblings(a, b, c, d cellid.CellID) bool {
	// Necessary condition, cheap: the four children XOR to zero.
	if a^b^c != d {
		return false
	}
	// Exact test: all four agree outside the two child position bits, and
	// d is not a face (faces have no parent).
	mask := d.Lsb() << 1
	mask = ^(mask + mask<<1)
	dm := uint64(d) & mask
	return uint64(a)&mask == dm &&
		uint64(b)&mask == dm &&
		uint64(c)&mask == dm &&
		!d.IsFace()
}

// Denormalize replaces each cell whose level is below minLevel, or whose
// level is not minLevel plus a multiple of levelMod, by its descendants at
// the next acceptable level.
func (cu CellUnion) Denormalize(minLevel, levelMod int) CellUnion {
	out := make(CellUnion, 0, len(cu))
	for _, id := range cu {
		level := id.Level()
		newLevel := max(minLevel, level)
		if levelMod > 1 {
			// Round up so that (newLevel - minLevel) is a multiple of
			// levelMod. MaxLevel is a multiple of 1, 2 and 3.
			newLevel += (cellid.MaxLevel - (newLevel - minLevel)) % levelMod
			newLevel = min(cellid.MaxLevel, newLevel)
		}
		if newLevel == level {
			out = append(out, id)
			continue
		}
		end := id.ChildEndAtLevel(newLevel)
		for c := id.ChildBeginAtLevel(newLevel); c != end; c = c.Next() {
			out = append(out, c)
		}
	}
	return out
}

// IsValid reports whether the cells are valid, sorted and non-overlapping.
func (cu CellUnion) IsValid() bool {
	for i, id := range cu {
		if !id.IsValid() {
			return false
		}
		if i > 0 && cu[i-1].RangeMax() >= id.RangeMin() {
			return false
		}
	}
	return true
}

// IsNormalized reports whether the union is valid and contains no group of
// four siblings.
func (cu CellUnion) IsNormalized() bool {
	for i, id := range cu {
		if !id.IsValid() {
			return false
		}
		if i > 0 && cu[i-1].RangeMax() >= id.RangeMin() {
			return false
		}
		if i >= 3 && areSiblings(cu[i-3], cu[i-2], cu[i-1], id) {
			return false
		}
	}
	return true
}

// Equal reports whether both unions hold the same cells in the same order.
func (cu CellUnion) Equal(o CellUnion) bool { return slices.Equal(cu, o) }

// LeafCellsCovered returns the number of leaf cells covered by the union.
// The union must be normalized for the count to be exact.
func (cu CellUnion) LeafCellsCovered() int64 {
	var n int64
	for _, id := range cu {
		n += 1 << uint((cellid.MaxLevel-id.Level())<<1)
	}
	return n
}

// search returns the index of the first cell >= id.
func (cu CellUnion) search(id cellid.CellID) int {
	i, _ := slices.BinarySearch(cu, id)
	return i
}

// ContainsCellID reports whether id is contained by some cell of the union.
// This is exact for normalized unions.
func (cu CellUnion) ContainsCellID(id cellid.CellID) bool {
	if !id.IsValid() {
		return false
	}
	// A cell contains id iff it is one of the two neighbors of id's
	// insertion point.
	i := cu.search(id)
	if i < len(cu) && cu[i].RangeMin() <= id {
		return true
	}
	return i > 0 && cu[i-1].RangeMax() >= id
}

// IntersectsCellID reports whether id intersects some cell of the union.
func (cu CellUnion) IntersectsCellID(id cellid.CellID) bool {
	if !id.IsValid() {
		return false
	}
	i := cu.search(id)
	if i < len(cu) && cu[i].RangeMin() <= id.RangeMax() {
		return true
	}
	return i > 0 && cu[i-1].RangeMax() >= id.RangeMin()
}

// Contains reports whether every cell of o is contained by cu.
func (cu CellUnion) Contains(o CellUnion) bool {
	for _, id := range o {
		if !cu.ContainsCellID(id) {
			return false
		}
	}
	return true
}

// Intersects reports whether cu and o share any leaf cell.
func (cu CellUnion) Intersects(o CellUnion) bool {
	for _, id := range o {
		if cu.IntersectsCellID(id) {
			return true
		}
	}
	return false
}

// ContainsPoint reports whether the union contains p.
func (cu CellUnion) ContainsPoint(p cellid.Point) bool {
	return cu.ContainsCellID(cellid.FromPoint(p))
}

// ContainsCell implements region.Region.
func (cu CellUnion) ContainsCell(c region.Cell) bool { return cu.ContainsCellID(c.ID()) }

// IntersectsCell implements region.Region.
func (cu CellUnion) IntersectsCell(c region.Cell) bool { return cu.IntersectsCellID(c.ID()) }

// CellUnionBound implements region.Region. It returns the cells themselves.
func (cu CellUnion) CellUnionBound() []cellid.CellID { return slices.Clone(cu) }
