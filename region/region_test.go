package region_test

import (
	"math"
	"testing"

	"github.com/golang/geo/s1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/region"
	"github.com/hupe1980/geocell/testutil"
)

func TestCellBasics(t *testing.T) {
	rng := testutil.NewRNG(1)
	for range 100 {
		id := rng.CellID(rng.Intn(cellid.MaxLevel))
		c := region.CellFromCellID(id)
		assert.Equal(t, id, c.ID())
		assert.Equal(t, id.Face(), c.Face())
		assert.Equal(t, id.Level(), c.Level())
		assert.False(t, c.IsLeaf())

		assert.True(t, c.ContainsPoint(c.Center()))
		for k := range 4 {
			assert.True(t, c.ContainsPoint(c.Vertex(k)), "vertex %d", k)
			// Edge normals point inward: the center is on the positive side.
			assert.Positive(t, c.EdgeRaw(k).Dot(c.Center().Vector))
			assert.InDelta(t, 1, c.Edge(k).Norm(), 1e-15)
			// Edge k joins vertices k and k+1.
			assert.InDelta(t, 0, c.EdgeRaw(k).Dot(c.VertexRaw(k)), 1e-14)
			assert.InDelta(t, 0, c.EdgeRaw(k).Dot(c.VertexRaw(k+1)), 1e-14)
		}

		for k, child := range c.Subdivide() {
			assert.Equal(t, id.Child(k), child.ID())
			assert.True(t, c.ContainsCell(child))
			assert.True(t, c.IntersectsCell(child))
			assert.False(t, child.ContainsCell(c))
		}
		assert.Equal(t, []cellid.CellID{id}, c.CellUnionBound())
	}
}

func TestCellArea(t *testing.T) {
	var total float64
	for face := range cellid.NumFaces {
		total += region.CellFromCellID(cellid.FromFace(face)).ExactArea()
	}
	assert.InDelta(t, 4*math.Pi, total, 1e-12)

	c := region.CellFromCellID(cellid.MustFromString("2/0123"))
	var sum float64
	for _, child := range c.Subdivide() {
		sum += child.ExactArea()
	}
	assert.InDelta(t, c.ExactArea(), sum, 1e-15)
	assert.LessOrEqual(t, c.ExactArea(), cellid.MaxArea.Value(4)*(1+1e-12))
	assert.GreaterOrEqual(t, c.ExactArea(), cellid.MinArea.Value(4)*(1-1e-12))
}

func TestCellCapBound(t *testing.T) {
	rng := testutil.NewRNG(2)
	for range 100 {
		c := region.CellFromCellID(rng.RandomLevelCellID())
		bound := c.CapBound()
		for k := range 4 {
			assert.True(t, bound.ContainsPoint(c.Vertex(k)))
		}
		assert.True(t, bound.ContainsPoint(c.Center()))
	}
}

func TestCapBasics(t *testing.T) {
	assert.True(t, region.EmptyCap().IsEmpty())
	assert.True(t, region.FullCap().IsFull())
	assert.Zero(t, region.EmptyCap().Area())
	assert.InDelta(t, 4*math.Pi, region.FullCap().Area(), 1e-15)
	assert.True(t, region.EmptyCap().Complement().IsFull())
	assert.True(t, region.FullCap().Complement().IsEmpty())

	p := cellid.PointFromCoords(0, 0, 1)
	hemi := region.CapFromCenterAngle(p, math.Pi/2)
	assert.InDelta(t, 2*math.Pi, hemi.Area(), 1e-14)
	assert.True(t, hemi.ContainsPoint(cellid.PointFromCoords(1, 0, 0)))
	assert.False(t, hemi.ContainsPoint(cellid.PointFromCoords(0, 0, -1)))

	area := 1e-3
	c := region.CapFromCenterArea(p, area)
	assert.InDelta(t, area, c.Area(), 1e-12)

	pt := region.CapFromPoint(p)
	assert.False(t, pt.IsEmpty())
	assert.True(t, pt.ContainsPoint(p))
	q := cellid.PointFromCoords(0, 1, 1)
	grown := pt.AddPoint(q)
	assert.True(t, grown.ContainsPoint(q))
	assert.InDelta(t, math.Pi/4, grown.Radius().Radians(), 1e-15)

	assert.Equal(t, s1.Angle(math.Pi), region.CapFromCenterAngle(p, 10).Radius())
	assert.NotEmpty(t, hemi.String())
}

func TestCapCellPredicates(t *testing.T) {
	t.Run("face caps", func(t *testing.T) {
		// A tiny cap at the center of face 0 intersects only that face.
		c := region.CapFromCenterAngle(cellid.PointFromCoords(1, 0, 0), 1e-6)
		for face := range cellid.NumFaces {
			cell := region.CellFromCellID(cellid.FromFace(face))
			assert.Equal(t, face == 0, c.IntersectsCell(cell), "face %d", face)
			assert.False(t, c.ContainsCell(cell))
		}

		full := region.FullCap()
		for face := range cellid.NumFaces {
			cell := region.CellFromCellID(cellid.FromFace(face))
			assert.True(t, full.ContainsCell(cell))
			assert.True(t, full.IntersectsCell(cell))
			assert.False(t, region.EmptyCap().IntersectsCell(cell))
		}
	})

	t.Run("edge crossing without vertices", func(t *testing.T) {
		// A cap centered just outside the middle of a cell edge covers no
		// vertex and not the cell center, yet crosses the edge.
		cell := region.CellFromCellID(cellid.MustFromString("0/0"))
		mid := cellid.Point{Vector: cell.Vertex(0).Add(cell.Vertex(1).Vector).Normalize()}
		outside := cellid.Point{Vector: mid.Sub(cell.Center().Vector).Mul(0.01).Add(mid.Vector).Normalize()}
		c := region.CapFromCenterAngle(outside, 0.05)
		for k := range 4 {
			require.False(t, c.ContainsPoint(cell.Vertex(k)))
		}
		assert.True(t, c.IntersectsCell(cell))
		assert.False(t, c.ContainsCell(cell))
	})

	t.Run("consistent with sampling", func(t *testing.T) {
		rng := testutil.NewRNG(3)
		for range 200 {
			c := rng.Cap(1e-8, 0.1)
			id := cellid.FromPoint(rng.Point()).Parent(2 + rng.Intn(12))
			cell := region.CellFromCellID(id)

			if c.ContainsCell(cell) {
				assert.True(t, c.IntersectsCell(cell))
				for k := range 4 {
					assert.True(t, c.ContainsPoint(cell.Vertex(k)))
				}
				assert.True(t, c.ContainsPoint(cell.Center()))
			}
			// The cell containing the cap center always intersects.
			centerCell := region.CellFromCellID(cellid.FromPoint(c.Center()).Parent(id.Level()))
			assert.True(t, c.IntersectsCell(centerCell))
			// A cell far from the cap never intersects.
			if cell.Center().Distance(c.Center()) > c.Radius()+s1.Angle(cellid.MaxDiag.Value(id.Level())) {
				assert.False(t, c.IntersectsCell(cell))
			}
		}
	})

	t.Run("large cap contains small cells", func(t *testing.T) {
		rng := testutil.NewRNG(4)
		for range 50 {
			c := rng.CapAngle(0.5)
			id := cellid.FromPoint(c.Center()).Parent(10)
			assert.True(t, c.ContainsCell(region.CellFromCellID(id)))
		}
	})
}

func TestCapCellUnionBound(t *testing.T) {
	rng := testutil.NewRNG(5)
	for range 200 {
		c := rng.Cap(1e-12, 4*math.Pi)
		bound := c.CellUnionBound()
		require.NotEmpty(t, bound)
		require.LessOrEqual(t, len(bound), cellid.NumFaces)

		// Sample points inside the cap; each must lie in a bound cell.
		for range 10 {
			d := rng.Point()
			axis := d.Cross(c.Center().Vector).Normalize()
			angle := c.Radius().Radians() * rng.Float64()
			// Rotate the center towards d by angle.
			v := c.Center().Mul(math.Cos(angle)).Add(axis.Cross(c.Center().Vector).Mul(math.Sin(angle)))
			p := cellid.Point{Vector: v.Normalize()}
			if !c.ContainsPoint(p) {
				continue
			}
			leaf := cellid.FromPoint(p)
			found := false
			for _, id := range bound {
				if id.Contains(leaf) {
					found = true
					break
				}
			}
			assert.True(t, found)
		}
	}

	assert.Empty(t, region.EmptyCap().CellUnionBound())
	assert.Len(t, region.FullCap().CellUnionBound(), cellid.NumFaces)
}
