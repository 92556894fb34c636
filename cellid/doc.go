// Package cellid implements the 64-bit hierarchical cell address space over
// the unit sphere.
//
// The sphere is projected onto the six faces of a cube. Each face is the root
// of a quadtree of depth 30 whose cells are numbered along a Hilbert curve, so
// that every cell at every level has a unique 64-bit id:
//
//	id = face<<61 | position
//
// The lowest set bit of the position (always at an even bit index) marks the
// level of the cell. A cell covers the closed interval [RangeMin, RangeMax] of
// leaf cell ids, and containment or intersection between two cells reduces to
// comparing those intervals.
//
// # Invariants
//
//   - None() (0) and Sentinel() (all ones) are never valid cells.
//   - Ordering of ids is total and compatible with containment: a cell's
//     descendants are exactly the ids within its range.
//   - Navigation methods (Parent, Child, ChildBegin, ...) panic when their
//     preconditions are violated; callers must check IsValid on untrusted ids.
//
// # Formats
//
// The canonical binary form is the 64-bit value (see Encode / Decode). The
// textual interchange form is the token (see ToToken / FromToken), an
// order-preserving hex string. String() produces the human-readable
// "face/children" debug form, e.g. "2/100123".
package cellid
