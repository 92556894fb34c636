package cellindex

import (
	"sort"

	"github.com/hupe1980/geocell/cellid"
)

// RangeIterator walks the leaf-cell ranges of a built index. A range spans
// [StartID, LimitID) and has a contents pointer to the cells covering it.
// The last range node is a sentinel, so Done is true when positioned there.
type RangeIterator struct {
	nodes []rangeNode
	pos   int
}

// Ranges returns an iterator over the ranges of a built index, positioned
// at the first range.
func (x *CellIndex) Ranges() *RangeIterator {
	x.mustBeBuilt()
	return &RangeIterator{nodes: x.rangeNodes}
}

// Begin positions the iterator at the first range.
func (it *RangeIterator) Begin() { it.pos = 0 }

// Finish positions the iterator past the last range.
func (it *RangeIterator) Finish() { it.pos = len(it.nodes) - 1 }

// Done reports whether the iterator is past the last range.
func (it *RangeIterator) Done() bool { return it.pos >= len(it.nodes)-1 }

// Next advances to the next range.
func (it *RangeIterator) Next() { it.pos++ }

// Prev moves to the previous range, returning false when already at the
// first one.
func (it *RangeIterator) Prev() bool {
	if it.pos == 0 {
		return false
	}
	it.pos--
	return true
}

// Advance moves n ranges forward if that does not pass the end.
func (it *RangeIterator) Advance(n int) bool {
	if n >= len(it.nodes)-1-it.pos {
		return false
	}
	it.pos += n
	return true
}

// Seek positions the iterator at the range containing target, which must be
// at least Begin(MaxLevel).
func (it *RangeIterator) Seek(target cellid.CellID) {
	it.pos = sort.Search(len(it.nodes), func(i int) bool { return it.nodes[i].start > target }) - 1
	it.pos = max(it.pos, 0)
}

// StartID returns the first leaf cell of the current range.
func (it *RangeIterator) StartID() cellid.CellID { return it.nodes[it.pos].start }

// LimitID returns the leaf cell just past the current range.
func (it *RangeIterator) LimitID() cellid.CellID { return it.nodes[it.pos+1].start }

// IsEmpty reports whether no cell covers the current range.
func (it *RangeIterator) IsEmpty() bool { return it.nodes[it.pos].contents < 0 }

// Contents returns the cell tree index of the innermost covering cell, or
// -1.
func (it *RangeIterator) Contents() int32 { return it.nodes[it.pos].contents }

// NonEmptyRangeIterator is a RangeIterator that skips empty ranges.
type NonEmptyRangeIterator struct {
	RangeIterator
}

// NonEmptyRanges returns an iterator over the non-empty ranges of a built
// index, positioned at the first one.
func (x *CellIndex) NonEmptyRanges() *NonEmptyRangeIterator {
	it := &NonEmptyRangeIterator{RangeIterator: *x.Ranges()}
	it.Begin()
	return it
}

func (it *NonEmptyRangeIterator) skipEmpty() {
	for !it.Done() && it.IsEmpty() {
		it.RangeIterator.Next()
	}
}

// Begin positions the iterator at the first non-empty range.
func (it *NonEmptyRangeIterator) Begin() {
	it.RangeIterator.Begin()
	it.skipEmpty()
}

// Next advances to the next non-empty range.
func (it *NonEmptyRangeIterator) Next() {
	it.RangeIterator.Next()
	it.skipEmpty()
}

// Prev moves to the previous non-empty range. When there is none, the
// iterator is left at its original position and Prev returns false.
func (it *NonEmptyRangeIterator) Prev() bool {
	for it.RangeIterator.Prev() {
		if !it.IsEmpty() {
			return true
		}
	}
	it.skipEmpty()
	return false
}

// Seek positions the iterator at the first non-empty range at or after the
// range containing target.
func (it *NonEmptyRangeIterator) Seek(target cellid.CellID) {
	it.RangeIterator.Seek(target)
	it.skipEmpty()
}

// ContentsIterator reports the cells covering a range by following parent
// links from the range's contents.
//
// Across consecutive StartUnion calls with non-decreasing start ids, every
// (cell, label) pair is reported at most once: cell tree indexes are in
// preorder, so once a chain reaches an index already fully reported, the
// rest of it was reported too. Call Clear to report everything again.
type ContentsIterator struct {
	nodes      []cellNode
	node       cellNode
	prevStart  cellid.CellID
	cutoff     int32
	nextCutoff int32
}

// Contents returns a ContentsIterator for a built index. It is done until
// StartUnion is called.
func (x *CellIndex) Contents() *ContentsIterator {
	x.mustBeBuilt()
	it := &ContentsIterator{nodes: x.cellTree}
	it.Clear()
	return it
}

// Clear forgets which pairs were already reported.
func (it *ContentsIterator) Clear() {
	it.prevStart = cellid.None()
	it.cutoff = -1
	it.nextCutoff = -1
	it.setDone()
}

func (it *ContentsIterator) setDone() { it.node.id = cellid.None() }

// StartUnion positions the iterator at the innermost cell covering the
// current range of r, skipping pairs reported since the last Clear.
func (it *ContentsIterator) StartUnion(r *RangeIterator) {
	if r.StartID() < it.prevStart {
		// Out of order; duplicates can no longer be suppressed.
		it.cutoff = -1
	}
	it.prevStart = r.StartID()
	contents := r.Contents()
	if contents <= it.cutoff {
		it.setDone()
	} else {
		it.node = it.nodes[contents]
	}
	it.nextCutoff = contents
}

// Done reports whether all pairs of the current range were reported.
func (it *ContentsIterator) Done() bool { return it.node.id == cellid.None() }

// Next moves to the next enclosing cell.
func (it *ContentsIterator) Next() {
	if it.node.parent <= it.cutoff {
		it.cutoff = it.nextCutoff
		it.setDone()
		return
	}
	it.node = it.nodes[it.node.parent]
}

// CellID returns the current cell.
func (it *ContentsIterator) CellID() cellid.CellID { return it.node.id }

// Label returns the current label.
func (it *ContentsIterator) Label() Label { return it.node.label }
