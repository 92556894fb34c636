package cellid

import (
	"fmt"
	"math/bits"
)

const (
	// FaceBits is the number of bits used to encode the face.
	FaceBits = 3
	// NumFaces is the number of cube faces.
	NumFaces = 6
	// MaxLevel is the level of leaf cells.
	MaxLevel = 30
	// PosBits is the number of bits used to encode a position on a face.
	PosBits = 2*MaxLevel + 1
	// MaxSize is the number of leaf cells along one edge of a face.
	MaxSize = 1 << MaxLevel

	wrapOffset = uint64(NumFaces) << PosBits
)

// CellID uniquely identifies a cell in the hierarchical decomposition.
type CellID uint64

// None returns the invalid cell id 0.
func None() CellID { return 0 }

// Sentinel returns an invalid cell id greater than every valid cell id.
func Sentinel() CellID { return ^CellID(0) }

// FromFace returns the cell covering the given face.
func FromFace(face int) CellID {
	if face < 0 || face >= NumFaces {
		panic(fmt.Sprintf("cellid: invalid face %d", face))
	}
	return CellID(uint64(face)<<PosBits + lsbForLevel(0))
}

// FromFacePosLevel returns the cell at the given level that contains the
// Hilbert curve position pos on the given face. Only the high 2*level bits of
// pos are significant.
func FromFacePosLevel(face int, pos uint64, level int) CellID {
	if face < 0 || face >= NumFaces {
		panic(fmt.Sprintf("cellid: invalid face %d", face))
	}
	checkLevel(level)
	return CellID(uint64(face)<<PosBits + (pos | 1)).Parent(level)
}

// Begin returns the first cell in Hilbert order at the given level.
func Begin(level int) CellID { return FromFace(0).ChildBeginAtLevel(level) }

// End returns the cell one past the last cell at the given level. It is not a
// valid cell and is only meant to terminate iteration.
func End(level int) CellID { return FromFace(5).ChildEndAtLevel(level) }

func lsbForLevel(level int) uint64 { return 1 << uint(2*(MaxLevel-level)) }

func checkLevel(level int) {
	if level < 0 || level > MaxLevel {
		panic(fmt.Sprintf("cellid: level %d out of range [0,%d]", level, MaxLevel))
	}
}

// Face returns the cube face of the cell.
func (ci CellID) Face() int { return int(uint64(ci) >> PosBits) }

// Pos returns the Hilbert curve position of the cell on its face.
func (ci CellID) Pos() uint64 { return uint64(ci) & (^uint64(0) >> FaceBits) }

// Level returns the subdivision level of the cell, 0 for faces and MaxLevel
// for leaf cells.
func (ci CellID) Level() int {
	return MaxLevel - bits.TrailingZeros64(uint64(ci))>>1
}

// IsValid reports whether ci represents a real cell.
func (ci CellID) IsValid() bool {
	return ci.Face() < NumFaces && ci.lsb()&0x1555555555555555 != 0
}

// IsLeaf reports whether ci is a leaf cell.
func (ci CellID) IsLeaf() bool { return uint64(ci)&1 != 0 }

// IsFace reports whether ci is a top-level face cell.
func (ci CellID) IsFace() bool { return uint64(ci)&(lsbForLevel(0)-1) == 0 }

// Lsb returns the lowest set bit of the id, the level marker.
func (ci CellID) Lsb() uint64 { return ci.lsb() }

func (ci CellID) lsb() uint64 { return uint64(ci) & -uint64(ci) }

// RangeMin returns the smallest leaf cell contained by ci.
func (ci CellID) RangeMin() CellID { return CellID(uint64(ci) - (ci.lsb() - 1)) }

// RangeMax returns the largest leaf cell contained by ci.
func (ci CellID) RangeMax() CellID { return CellID(uint64(ci) + (ci.lsb() - 1)) }

// Contains reports whether ci contains oci.
func (ci CellID) Contains(oci CellID) bool {
	return uint64(ci.RangeMin()) <= uint64(oci) && uint64(oci) <= uint64(ci.RangeMax())
}

// Intersects reports whether ci and oci share any leaf cell.
func (ci CellID) Intersects(oci CellID) bool {
	return uint64(oci.RangeMin()) <= uint64(ci.RangeMax()) && uint64(oci.RangeMax()) >= uint64(ci.RangeMin())
}

// Parent returns the ancestor of ci at the given level, which must not be
// finer than ci's own level.
func (ci CellID) Parent(level int) CellID {
	if level < 0 || level > ci.Level() {
		panic(fmt.Sprintf("cellid: parent level %d invalid for cell at level %d", level, ci.Level()))
	}
	lsb := lsbForLevel(level)
	return CellID((uint64(ci) & -lsb) | lsb)
}

// ImmediateParent returns the parent one level up. ci must not be a face.
func (ci CellID) ImmediateParent() CellID {
	if ci.IsFace() {
		panic("cellid: face cell has no parent")
	}
	lsb := ci.lsb() << 2
	return CellID((uint64(ci) & -lsb) | lsb)
}

// Child returns child k (0..3) of ci in Hilbert order. ci must not be a leaf.
func (ci CellID) Child(k int) CellID {
	if ci.IsLeaf() {
		panic("cellid: leaf cell has no children")
	}
	if k < 0 || k > 3 {
		panic(fmt.Sprintf("cellid: invalid child position %d", k))
	}
	lsb := ci.lsb() >> 2
	return CellID(uint64(ci) + uint64(2*k+1-4)*lsb)
}

// Children returns the four children of ci.
func (ci CellID) Children() [4]CellID {
	var ch [4]CellID
	c := ci.ChildBegin()
	for k := range ch {
		ch[k] = c
		c = c.Next()
	}
	return ch
}

// ChildPosition returns the position (0..3) of ci's ancestor at the given
// level within its parent. level must be in [1, ci.Level()].
func (ci CellID) ChildPosition(level int) int {
	if level < 1 || level > ci.Level() {
		panic(fmt.Sprintf("cellid: child position level %d invalid", level))
	}
	return int(uint64(ci)>>uint(2*(MaxLevel-level)+1)) & 3
}

// ChildBegin returns the first child of ci. ci must not be a leaf.
func (ci CellID) ChildBegin() CellID {
	if ci.IsLeaf() {
		panic("cellid: leaf cell has no children")
	}
	lsb := ci.lsb()
	return CellID(uint64(ci) - lsb + lsb>>2)
}

// ChildEnd returns the cell one past the last child of ci.
func (ci CellID) ChildEnd() CellID {
	if ci.IsLeaf() {
		panic("cellid: leaf cell has no children")
	}
	lsb := ci.lsb()
	return CellID(uint64(ci) + lsb + lsb>>2)
}

// ChildBeginAtLevel returns the first descendant of ci at the given level.
func (ci CellID) ChildBeginAtLevel(level int) CellID {
	if level < ci.Level() || level > MaxLevel {
		panic(fmt.Sprintf("cellid: descendant level %d invalid for cell at level %d", level, ci.Level()))
	}
	return CellID(uint64(ci) - ci.lsb() + lsbForLevel(level))
}

// ChildEndAtLevel returns the cell one past the last descendant of ci at the
// given level.
func (ci CellID) ChildEndAtLevel(level int) CellID {
	if level < ci.Level() || level > MaxLevel {
		panic(fmt.Sprintf("cellid: descendant level %d invalid for cell at level %d", level, ci.Level()))
	}
	return CellID(uint64(ci) + ci.lsb() + lsbForLevel(level))
}

// Next returns the next cell at the same level along the Hilbert curve. It
// does not wrap from face 5 to face 0.
func (ci CellID) Next() CellID { return CellID(uint64(ci) + ci.lsb()<<1) }

// Prev returns the previous cell at the same level along the Hilbert curve.
// It does not wrap from face 0 to face 5.
func (ci CellID) Prev() CellID { return CellID(uint64(ci) - ci.lsb()<<1) }

// NextWrap is like Next but wraps from the last face to the first.
func (ci CellID) NextWrap() CellID {
	n := ci.Next()
	if uint64(n) < wrapOffset {
		return n
	}
	return CellID(uint64(n) - wrapOffset)
}

// PrevWrap is like Prev but wraps from the first face to the last.
func (ci CellID) PrevWrap() CellID {
	p := ci.Prev()
	if uint64(p) < wrapOffset {
		return p
	}
	return CellID(uint64(p) + wrapOffset)
}

// Advance moves ci by steps cells at its level, clamping at Begin and End of
// that level.
func (ci CellID) Advance(steps int64) CellID {
	if steps == 0 {
		return ci
	}
	stepShift := uint(2*(MaxLevel-ci.Level()) + 1)
	if steps < 0 {
		minSteps := -int64(uint64(ci) >> stepShift)
		if steps < minSteps {
			steps = minSteps
		}
	} else {
		maxSteps := int64((wrapOffset + ci.lsb() - uint64(ci)) >> stepShift)
		if steps > maxSteps {
			steps = maxSteps
		}
	}
	return CellID(uint64(ci) + uint64(steps)<<stepShift)
}

// AdvanceWrap moves ci by steps cells at its level, wrapping around the
// curve.
func (ci CellID) AdvanceWrap(steps int64) CellID {
	if steps == 0 {
		return ci
	}
	stepShift := uint(2*(MaxLevel-ci.Level()) + 1)
	if steps < 0 {
		if minSteps := -int64(uint64(ci) >> stepShift); steps < minSteps {
			stepWrap := int64(wrapOffset >> stepShift)
			steps %= stepWrap
			if steps < minSteps {
				steps += stepWrap
			}
		}
	} else {
		if maxSteps := int64((wrapOffset - uint64(ci)) >> stepShift); steps > maxSteps {
			stepWrap := int64(wrapOffset >> stepShift)
			steps %= stepWrap
			if steps > maxSteps {
				steps -= stepWrap
			}
		}
	}
	return CellID(uint64(ci) + uint64(steps)<<stepShift)
}

// DistanceFromBegin returns the number of steps from Begin(ci.Level()) to ci.
func (ci CellID) DistanceFromBegin() int64 {
	return int64(uint64(ci) >> uint(2*(MaxLevel-ci.Level())+1))
}

// CommonAncestorLevel returns the level of the deepest cell containing both
// ci and oci, or -1 when they lie on different faces.
func (ci CellID) CommonAncestorLevel(oci CellID) int {
	x := uint64(ci ^ oci)
	x = max(x, ci.lsb(), oci.lsb())
	// MSB position maps {0}->30, {1,2}->29, ... {59,60}->0, {61,62,63}->-1.
	msb := 63 - bits.LeadingZeros64(x)
	return max(60-msb, -1) >> 1
}

// MaximumTile returns the largest cell with the same RangeMin as ci whose
// RangeMax is less than limit.RangeMin, or limit itself when ci already
// starts at or beyond limit.
func (ci CellID) MaximumTile(limit CellID) CellID {
	id := ci
	start := id.RangeMin()
	if start >= limit.RangeMin() {
		return limit
	}
	if id.RangeMax() >= limit {
		// Too large; shrink. Terminates at a leaf at the latest since
		// start < limit.RangeMin.
		for {
			id = id.Child(0)
			if id.RangeMax() < limit {
				return id
			}
		}
	}
	for !id.IsFace() {
		parent := id.ImmediateParent()
		if parent.RangeMin() != start || parent.RangeMax() >= limit {
			break
		}
		id = parent
	}
	return id
}
