// Package cellindex stores a static collection of (cell, label) pairs and
// answers which pairs intersect a query cell union.
//
// The index is built in bulk. Add collects pairs, Build sorts them into a
// sequence of leaf-cell ranges, each pointing at the innermost pair that
// covers it, and a cell tree whose parent links lead from a pair to the
// pairs that contain it. Queries walk the ranges overlapping the target and
// follow parent chains, reporting every pair at most once per walk.
//
// A built index is immutable and safe for concurrent readers. Add and Build
// are single-writer and must not run concurrently with queries.
package cellindex

import (
	"fmt"
	"iter"
	"slices"

	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/cellunion"
)

// Label identifies the region a cell came from. Labels are non-negative.
type Label = int32

// cellNode is an entry of the cell tree. After Build, nodes are in preorder,
// so a parent always has a smaller index than its children.
type cellNode struct {
	id     cellid.CellID
	label  Label
	parent int32 // -1 for none
}

// rangeNode starts a run of leaf cells ending at the next node's start. The
// contents field is the index of the innermost covering cell tree node, or
// -1 when the range is empty.
type rangeNode struct {
	start    cellid.CellID
	contents int32
}

// CellIndex maps cells to labels.
type CellIndex struct {
	cellTree   []cellNode
	rangeNodes []rangeNode
	built      bool
}

// New returns an empty index.
func New() *CellIndex { return &CellIndex{} }

// Add adds a (cell, label) pair. Duplicate pairs are kept. Add panics after
// Build, on an invalid cell id, or on a negative label.
func (x *CellIndex) Add(id cellid.CellID, label Label) {
	if x.built {
		panic("cellindex: Add after Build")
	}
	if !id.IsValid() {
		panic(fmt.Sprintf("cellindex: invalid cell id %v", id))
	}
	if label < 0 {
		panic(fmt.Sprintf("cellindex: negative label %d", label))
	}
	x.cellTree = append(x.cellTree, cellNode{id: id, label: label, parent: -1})
}

// AddCellUnion adds every cell of cu under label.
func (x *CellIndex) AddCellUnion(cu cellunion.CellUnion, label Label) {
	for _, id := range cu {
		x.Add(id, label)
	}
}

// NumCells returns the number of pairs added.
func (x *CellIndex) NumCells() int { return len(x.cellTree) }

// NumRanges returns the number of leaf-cell ranges of a built index.
func (x *CellIndex) NumRanges() int { return len(x.rangeNodes) }

// IsBuilt reports whether Build has been called since the last Clear.
func (x *CellIndex) IsBuilt() bool { return x.built }

// Clear removes all pairs so the index can be filled and built again.
func (x *CellIndex) Clear() {
	x.cellTree = x.cellTree[:0]
	x.rangeNodes = x.rangeNodes[:0]
	x.built = false
}

// delta is a stack event of the build sweep: a push of (id, label) at the
// start of its range, a pop (id == Sentinel) past its end, or a marker
// (id == None) that only forces a range boundary.
type delta struct {
	start cellid.CellID
	id    cellid.CellID
	label Label
}

// compareDeltas orders by start, then by id descending, then by label.
// At one position pops come first, then pushes from large to small cells,
// then markers.
func compareDeltas(a, b delta) int {
	switch {
	case a.start != b.start:
		if a.start < b.start {
			return -1
		}
		return 1
	case a.id != b.id:
		if a.id > b.id {
			return -1
		}
		return 1
	default:
		return int(a.label) - int(b.label)
	}
}

// Build constructs the index. It may be called once; call Clear to rebuild.
func (x *CellIndex) Build() {
	if x.built {
		panic("cellindex: Build called twice")
	}
	deltas := make([]delta, 0, 2*len(x.cellTree)+2)
	for _, node := range x.cellTree {
		deltas = append(deltas,
			delta{start: node.id.RangeMin(), id: node.id, label: node.label},
			delta{start: node.id.RangeMax().Next(), id: cellid.Sentinel(), label: -1},
		)
	}
	// Markers guarantee range nodes at both ends of the leaf space.
	deltas = append(deltas,
		delta{start: cellid.Begin(cellid.MaxLevel), id: cellid.None(), label: -1},
		delta{start: cellid.End(cellid.MaxLevel), id: cellid.None(), label: -1},
	)
	slices.SortFunc(deltas, compareDeltas)

	x.cellTree = x.cellTree[:0]
	x.rangeNodes = slices.Grow(x.rangeNodes[:0], len(deltas))
	contents := int32(-1)
	for i := 0; i < len(deltas); {
		start := deltas[i].start
		for ; i < len(deltas) && deltas[i].start == start; i++ {
			d := deltas[i]
			switch {
			case d.label >= 0:
				x.cellTree = append(x.cellTree, cellNode{id: d.id, label: d.label, parent: contents})
				contents = int32(len(x.cellTree) - 1)
			case d.id == cellid.Sentinel():
				contents = x.cellTree[contents].parent
			}
		}
		x.rangeNodes = append(x.rangeNodes, rangeNode{start: start, contents: contents})
	}
	x.built = true
}

func (x *CellIndex) mustBeBuilt() {
	if !x.built {
		panic("cellindex: index not built")
	}
}

// CellIterator visits every (cell, label) pair in cell tree order.
type CellIterator struct {
	nodes []cellNode
	pos   int
}

// Cells returns an iterator positioned at the first pair. The index must be
// built.
func (x *CellIndex) Cells() *CellIterator {
	x.mustBeBuilt()
	return &CellIterator{nodes: x.cellTree}
}

// Done reports whether the iterator is exhausted.
func (it *CellIterator) Done() bool { return it.pos >= len(it.nodes) }

// Next advances to the next pair.
func (it *CellIterator) Next() { it.pos++ }

// CellID returns the current cell.
func (it *CellIterator) CellID() cellid.CellID { return it.nodes[it.pos].id }

// Label returns the current label.
func (it *CellIterator) Label() Label { return it.nodes[it.pos].label }

// All returns every (cell, label) pair of a built index.
func (x *CellIndex) All() iter.Seq2[cellid.CellID, Label] {
	x.mustBeBuilt()
	return func(yield func(cellid.CellID, Label) bool) {
		for _, n := range x.cellTree {
			if !yield(n.id, n.label) {
				return
			}
		}
	}
}
