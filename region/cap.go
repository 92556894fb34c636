package region

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"

	"github.com/hupe1980/geocell/cellid"
)

const (
	emptyRadius = s1.Angle(-1)
	fullRadius  = s1.Angle(math.Pi)
	rightAngle  = s1.Angle(math.Pi / 2)
)

// Cap is a spherical cap: all points within an angular radius of a center.
// A negative radius denotes the empty cap; a radius of Pi the full sphere.
type Cap struct {
	center cellid.Point
	radius s1.Angle
}

// CapFromPoint returns the cap containing only p.
func CapFromPoint(p cellid.Point) Cap { return Cap{center: p} }

// CapFromCenterAngle returns the cap with the given center and radius. Radii
// above Pi are clamped.
func CapFromCenterAngle(center cellid.Point, radius s1.Angle) Cap {
	return Cap{center: center, radius: min(radius, fullRadius)}
}

// CapFromCenterArea returns the cap with the given center and surface area in
// steradians.
func CapFromCenterArea(center cellid.Point, area float64) Cap {
	cos := math.Max(-1, math.Min(1, 1-area/(2*math.Pi)))
	return Cap{center: center, radius: s1.Angle(math.Acos(cos))}
}

// EmptyCap returns the cap that contains no points.
func EmptyCap() Cap { return Cap{center: cellid.PointFromCoords(1, 0, 0), radius: emptyRadius} }

// FullCap returns the cap that contains the whole sphere.
func FullCap() Cap { return Cap{center: cellid.PointFromCoords(1, 0, 0), radius: fullRadius} }

// Center returns the cap center.
func (c Cap) Center() cellid.Point { return c.center }

// Radius returns the angular radius.
func (c Cap) Radius() s1.Angle { return c.radius }

// IsEmpty reports whether the cap contains no points.
func (c Cap) IsEmpty() bool { return c.radius < 0 }

// IsFull reports whether the cap contains the whole sphere.
func (c Cap) IsFull() bool { return c.radius >= fullRadius }

// Area returns the surface area in steradians.
func (c Cap) Area() float64 {
	if c.IsEmpty() {
		return 0
	}
	return 2 * math.Pi * (1 - math.Cos(c.radius.Radians()))
}

// Complement returns the cap covering the points not in c. The boundary is
// shared, so the complement is not exact for very small caps.
func (c Cap) Complement() Cap {
	if c.IsFull() {
		return EmptyCap()
	}
	if c.IsEmpty() {
		return FullCap()
	}
	return Cap{center: cellid.Point{Vector: c.center.Mul(-1)}, radius: fullRadius - c.radius}
}

// ContainsPoint reports whether p lies within the cap.
func (c Cap) ContainsPoint(p cellid.Point) bool {
	if c.IsEmpty() {
		return false
	}
	return c.center.Distance(p) <= c.radius
}

// AddPoint returns the smallest cap with the same center containing c and p.
func (c Cap) AddPoint(p cellid.Point) Cap {
	if c.IsEmpty() {
		return CapFromPoint(p)
	}
	return CapFromCenterAngle(c.center, max(c.radius, c.center.Distance(p)))
}

// ContainsCell reports whether the cell lies entirely within the cap.
func (c Cap) ContainsCell(cell Cell) bool {
	var vertices [4]cellid.Point
	for k := range vertices {
		vertices[k] = cell.Vertex(k)
		if !c.ContainsPoint(vertices[k]) {
			return false
		}
	}
	// All vertices are inside; the cell is contained unless the complement
	// reaches into its interior.
	return !c.Complement().intersectsInterior(cell, vertices)
}

// IntersectsCell reports whether the cap may intersect the cell.
func (c Cap) IntersectsCell(cell Cell) bool {
	var vertices [4]cellid.Point
	for k := range vertices {
		vertices[k] = cell.Vertex(k)
		if c.ContainsPoint(vertices[k]) {
			return true
		}
	}
	return c.intersectsInterior(cell, vertices)
}

// intersectsInterior reports whether the cap intersects any point of the
// cell other than its vertices, which the caller has already tested.
func (c Cap) intersectsInterior(cell Cell, vertices [4]cellid.Point) bool {
	// For a hemisphere or larger both the cell and the complement of the cap
	// are convex, so with no vertex inside nothing else is either.
	if c.radius >= rightAngle || c.IsEmpty() {
		return false
	}
	if cell.ContainsPoint(c.center) {
		return true
	}
	// Only an edge interior can now meet the cap.
	sin := math.Sin(c.radius.Radians())
	sin2 := sin * sin
	for k := 0; k < 4; k++ {
		edge := cell.EdgeRaw(k)
		dot := c.center.Dot(edge)
		if dot > 0 {
			// The center is on the interior side of this edge; if the cap
			// crosses it, it also crosses the opposite edge.
			continue
		}
		if dot*dot > sin2*edge.Norm2() {
			return false // entirely on the exterior side of this edge
		}
		// The great circle of the edge crosses the cap; check whether the
		// closest point lies between the edge endpoints.
		dir := edge.Cross(c.center.Vector)
		if dir.Dot(vertices[k].Vector) < 0 && dir.Dot(vertices[(k+1)&3].Vector) > 0 {
			return true
		}
	}
	return false
}

// CellUnionBound returns up to six cells covering the cap.
func (c Cap) CellUnionBound() []cellid.CellID {
	if c.IsEmpty() {
		return nil
	}
	level := cellid.MinWidth.MaxLevel(c.radius.Radians()) - 1
	if level < 0 {
		// More than three face cells are needed.
		out := make([]cellid.CellID, cellid.NumFaces)
		for f := range out {
			out[f] = cellid.FromFace(f)
		}
		return out
	}
	// The cells at this level sharing the vertex closest to the center.
	return cellid.FromPoint(c.center).VertexNeighbors(level)
}

func (c Cap) String() string {
	return fmt.Sprintf("[Center=%v, Radius=%f]", c.center.Vector, c.radius.Degrees())
}
