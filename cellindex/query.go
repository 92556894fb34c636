package cellindex

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/cellunion"
)

// VisitIntersectingCells calls visit for every pair whose cell intersects
// target, which must be valid. Each pair is visited once. It stops and
// returns false as soon as visit returns false.
func (x *CellIndex) VisitIntersectingCells(target cellunion.CellUnion, visit func(id cellid.CellID, label Label) bool) bool {
	x.mustBeBuilt()
	if len(target) == 0 {
		return true
	}
	contents := x.Contents()
	ranges := x.Ranges()
	for i := 0; i < len(target); {
		t := target[i]
		if ranges.LimitID() <= t.RangeMin() {
			ranges.Seek(t.RangeMin())
		}
		for ; ranges.StartID() <= t.RangeMax(); ranges.Next() {
			for contents.StartUnion(ranges); !contents.Done(); contents.Next() {
				if !visit(contents.CellID(), contents.Label()) {
					return false
				}
			}
		}
		// Target cells that end before the current range were covered by
		// ranges already visited; skip them with a binary search.
		i++
		if i < len(target) && target[i].RangeMax() < ranges.StartID() {
			j, _ := slices.BinarySearch(target[i+1:], ranges.StartID())
			i += 1 + j
			if target[i-1].RangeMax() >= ranges.StartID() {
				i--
			}
		}
	}
	return true
}

// IntersectingLabelSet returns the labels of all pairs whose cell
// intersects target.
func (x *CellIndex) IntersectingLabelSet(target cellunion.CellUnion) *roaring.Bitmap {
	labels := roaring.New()
	x.VisitIntersectingCells(target, func(_ cellid.CellID, label Label) bool {
		labels.Add(uint32(label))
		return true
	})
	return labels
}

// IntersectingLabels returns the distinct labels of all pairs whose cell
// intersects target, in increasing order.
func (x *CellIndex) IntersectingLabels(target cellunion.CellUnion) []Label {
	set := x.IntersectingLabelSet(target)
	out := make([]Label, 0, set.GetCardinality())
	it := set.Iterator()
	for it.HasNext() {
		out = append(out, Label(it.Next()))
	}
	return out
}
