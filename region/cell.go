package region

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"

	"github.com/hupe1980/geocell/cellid"
)

// dblEpsilon is the machine epsilon for float64.
const dblEpsilon = 2.220446049250313e-16

// Cell is the geometric form of a CellID: a quadrilateral on the sphere
// bounded by four great-circle edges.
type Cell struct {
	id             cellid.CellID
	face           int8
	level          int8
	u0, u1, v0, v1 float64
}

// CellFromCellID returns the geometric cell for id, which must be valid.
func CellFromCellID(id cellid.CellID) Cell {
	u0, u1, v0, v1 := id.BoundUV()
	return Cell{
		id:    id,
		face:  int8(id.Face()),
		level: int8(id.Level()),
		u0:    u0,
		u1:    u1,
		v0:    v0,
		v1:    v1,
	}
}

// CellFromPoint returns the leaf cell containing p.
func CellFromPoint(p cellid.Point) Cell { return CellFromCellID(cellid.FromPoint(p)) }

// ID returns the cell id.
func (c Cell) ID() cellid.CellID { return c.id }

// Face returns the cube face of the cell.
func (c Cell) Face() int { return int(c.face) }

// Level returns the level of the cell.
func (c Cell) Level() int { return int(c.level) }

// IsLeaf reports whether c is a leaf cell.
func (c Cell) IsLeaf() bool { return c.level == cellid.MaxLevel }

// BoundUV returns the (u,v) rectangle of the cell.
func (c Cell) BoundUV() (u0, u1, v0, v1 float64) { return c.u0, c.u1, c.v0, c.v1 }

// VertexRaw returns vertex k (0..3, counter-clockwise starting at the
// lower-left corner) without normalization.
func (c Cell) VertexRaw(k int) r3.Vector {
	switch k & 3 {
	case 0:
		return cellid.FaceUVToXYZ(int(c.face), c.u0, c.v0)
	case 1:
		return cellid.FaceUVToXYZ(int(c.face), c.u1, c.v0)
	case 2:
		return cellid.FaceUVToXYZ(int(c.face), c.u1, c.v1)
	default:
		return cellid.FaceUVToXYZ(int(c.face), c.u0, c.v1)
	}
}

// Vertex returns vertex k as a unit point.
func (c Cell) Vertex(k int) cellid.Point { return cellid.Point{Vector: c.VertexRaw(k).Normalize()} }

// EdgeRaw returns the inward-facing normal of edge k, which joins vertex k
// and vertex k+1. It is not unit length.
func (c Cell) EdgeRaw(k int) r3.Vector {
	switch k & 3 {
	case 0:
		return cellid.VNorm(int(c.face), c.v0) // bottom
	case 1:
		return cellid.UNorm(int(c.face), c.u1) // right
	case 2:
		return cellid.VNorm(int(c.face), c.v1).Mul(-1) // top
	default:
		return cellid.UNorm(int(c.face), c.u0).Mul(-1) // left
	}
}

// Edge returns the unit inward normal of edge k.
func (c Cell) Edge(k int) cellid.Point { return cellid.Point{Vector: c.EdgeRaw(k).Normalize()} }

// Center returns the center of the cell.
func (c Cell) Center() cellid.Point { return c.id.Point() }

// ContainsPoint reports whether p lies within the cell. Points on a shared
// boundary belong to every adjacent cell.
func (c Cell) ContainsPoint(p cellid.Point) bool {
	u, v, ok := cellid.FaceXYZToUV(int(c.face), p)
	if !ok {
		return false
	}
	return u >= c.u0-dblEpsilon && u <= c.u1+dblEpsilon &&
		v >= c.v0-dblEpsilon && v <= c.v1+dblEpsilon
}

// Subdivide returns the four children of c. c must not be a leaf.
func (c Cell) Subdivide() [4]Cell {
	var out [4]Cell
	for k, id := range c.id.Children() {
		out[k] = CellFromCellID(id)
	}
	return out
}

// CapBound returns a cap that contains the cell.
func (c Cell) CapBound() Cap {
	u := 0.5 * (c.u0 + c.u1)
	v := 0.5 * (c.v0 + c.v1)
	center := cellid.FaceUVToPoint(int(c.face), u, v)
	var radius s1.Angle
	for k := 0; k < 4; k++ {
		radius = max(radius, center.Distance(c.Vertex(k)))
	}
	// Pad for rounding in the vertex normalization.
	return CapFromCenterAngle(center, radius+s1.Angle(4*dblEpsilon))
}

// ExactArea returns the area of the cell in steradians.
func (c Cell) ExactArea() float64 {
	v0, v1, v2, v3 := c.Vertex(0), c.Vertex(1), c.Vertex(2), c.Vertex(3)
	return triangleArea(v0, v1, v2) + triangleArea(v0, v2, v3)
}

// triangleArea uses the formula of Van Oosterom and Strackee.
func triangleArea(a, b, c cellid.Point) float64 {
	num := math.Abs(a.Dot(b.Cross(c.Vector)))
	den := 1 + a.Dot(b.Vector) + b.Dot(c.Vector) + c.Dot(a.Vector)
	return 2 * math.Atan2(num, den)
}

// ContainsCell reports whether oc is a descendant of (or equal to) c.
func (c Cell) ContainsCell(oc Cell) bool { return c.id.Contains(oc.id) }

// IntersectsCell reports whether c and oc share any leaf cell.
func (c Cell) IntersectsCell(oc Cell) bool { return c.id.Intersects(oc.id) }

// CellUnionBound returns the cell itself.
func (c Cell) CellUnionBound() []cellid.CellID { return []cellid.CellID{c.id} }
