// Package region defines the Region capability consumed by the covering and
// indexing algorithms, plus the geometric regions used to drive them: Cell
// and Cap.
//
// A Region answers two predicates about cells:
//
//   - IntersectsCell may return false positives but never false negatives.
//   - ContainsCell may return false negatives but never false positives.
//
// and provides CellUnionBound, a cheap (usually at most six cells) covering
// used to seed searches.
package region

import "github.com/hupe1980/geocell/cellid"

// Region is a set of points on the sphere that can be approximated by cells.
//
// Implementations must be pure: the coverer calls the predicates many times
// per search and assumes answers never change during a call.
type Region interface {
	// ContainsCell reports whether the region fully contains the cell. A true
	// result must be exact.
	ContainsCell(c Cell) bool

	// IntersectsCell reports whether the region may intersect the cell. A
	// false result must be exact.
	IntersectsCell(c Cell) bool

	// CellUnionBound returns a small set of cells whose union covers the
	// region. The cells need not be sorted or normalized.
	CellUnionBound() []cellid.CellID
}

// Compile time checks.
var (
	_ Region = Cell{}
	_ Region = Cap{}
)
