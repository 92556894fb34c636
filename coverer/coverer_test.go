package coverer_test

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/cellunion"
	"github.com/hupe1980/geocell/coverer"
	"github.com/hupe1980/geocell/region"
	"github.com/hupe1980/geocell/testutil"
)

// pointInCap returns a random point at most the cap radius from its center.
func pointInCap(rng *testutil.RNG, c region.Cap) cellid.Point {
	center := c.Center()
	axis := rng.Point().Cross(center.Vector).Normalize()
	angle := c.Radius().Radians() * rng.Float64()
	v := center.Mul(math.Cos(angle)).Add(axis.Cross(center.Vector).Mul(math.Sin(angle)))
	return cellid.Point{Vector: v.Normalize()}
}

func randomOptions(rng *testutil.RNG) coverer.Options {
	minLevel := rng.Intn(cellid.MaxLevel + 1)
	return coverer.Options{
		MinLevel: minLevel,
		MaxLevel: minLevel + rng.Intn(cellid.MaxLevel-minLevel+1),
		MaxCells: 1 + rng.SkewedInt(6),
		LevelMod: 1 + rng.Intn(3),
	}
}

func TestOptions(t *testing.T) {
	c := coverer.New()
	assert.Equal(t, coverer.DefaultOptions(), c.Options())
	assert.Equal(t, 8, c.Options().MaxCells)

	c.SetOptions(coverer.WithMinLevel(-4), coverer.WithMaxLevel(99), coverer.WithLevelMod(7))
	assert.Equal(t, 0, c.Options().MinLevel)
	assert.Equal(t, cellid.MaxLevel, c.Options().MaxLevel)
	assert.Equal(t, 3, c.Options().LevelMod)

	c.SetOptions(coverer.WithLevelMod(0), coverer.WithFixedLevel(12))
	assert.Equal(t, 1, c.Options().LevelMod)
	assert.Equal(t, 12, c.Options().MinLevel)
	assert.Equal(t, 12, c.Options().MaxLevel)

	o := coverer.Options{MaxCells: 8, MinLevel: 1, MaxLevel: 30, LevelMod: 3}
	assert.Equal(t, 28, o.TrueMaxLevel())
	o.LevelMod = 1
	assert.Equal(t, 30, o.TrueMaxLevel())

	assert.Panics(t, func() {
		coverer.New(coverer.WithMinLevel(10), coverer.WithMaxLevel(5)).Covering(region.FullCap())
	})
}

func TestCoveringPointCap(t *testing.T) {
	rng := testutil.NewRNG(1)
	c := coverer.New(coverer.WithMaxCells(1))
	for range 50 {
		p := rng.Point()
		cov := c.Covering(region.CapFromPoint(p))
		require.Len(t, cov, 1)
		assert.True(t, cov[0].IsLeaf())
		assert.True(t, cov[0].Contains(cellid.FromPoint(p)))
	}
}

func TestCoveringEmptyAndFull(t *testing.T) {
	c := coverer.New()
	assert.Empty(t, c.Covering(region.EmptyCap()))
	assert.Empty(t, c.InteriorCovering(region.EmptyCap()))

	full := c.Covering(region.FullCap())
	assert.Equal(t, cellunion.WholeSphere(), full)
	assert.Equal(t, cellunion.WholeSphere(), c.InteriorCovering(region.FullCap()))
}

func TestCoveringCaps(t *testing.T) {
	rng := testutil.NewRNG(2)
	for i := range 300 {
		o := randomOptions(rng)
		c := coverer.New(coverer.WithOptions(o))
		// Keep the area small enough that MinLevel does not force a huge
		// number of cells.
		maxArea := min(4*math.Pi, float64(3*o.MaxCells+1)*cellid.AvgArea.Value(o.MinLevel))
		capRegion := rng.Cap(0.1*cellid.AvgArea.Value(cellid.MaxLevel), maxArea)

		covering := c.CellIDs(capRegion)
		require.True(t, c.IsCanonical(covering), "iteration %d: %v", i, covering)
		require.NotEmpty(t, covering)
		cu := cellunion.New(covering...)

		interior := c.InteriorCellIDs(capRegion)
		require.True(t, c.IsCanonical(interior), "iteration %d", i)
		for _, id := range interior {
			assert.True(t, capRegion.ContainsCell(region.CellFromCellID(id)))
		}
		// The interior is always inside the covering.
		assert.True(t, cu.Contains(cellunion.New(interior...)))

		for range 10 {
			p := pointInCap(rng, capRegion)
			if capRegion.ContainsPoint(p) {
				assert.True(t, cu.ContainsPoint(p), "iteration %d", i)
			}
		}
	}
}

func TestCoveringRespectsBudget(t *testing.T) {
	rng := testutil.NewRNG(3)
	for range 100 {
		maxCells := 4 + rng.Intn(20)
		c := coverer.New(coverer.WithMaxCells(maxCells))
		cov := c.CellIDs(rng.Cap(1e-8, 1))
		// Without MinLevel the budget is only exceeded by cells on
		// different faces, of which there are at most six.
		assert.LessOrEqual(t, len(cov), max(maxCells, cellid.NumFaces))

		st := c.Stats()
		assert.Equal(t, len(cov), st.Cells)
		assert.Positive(t, st.CandidatesCreated)
	}
}

func TestCoveringCellUnion(t *testing.T) {
	rng := testutil.NewRNG(4)
	for range 50 {
		cu := cellunion.New(rng.CellIDs(1+rng.Intn(30), 3, 20)...)

		loose := coverer.New(coverer.WithMaxCells(8)).Covering(cu)
		assert.True(t, loose.Contains(cu))

		// With an unlimited budget the union covers itself exactly.
		exact := coverer.New(coverer.WithMaxCells(1 << 20))
		assert.Equal(t, cu, exact.Covering(cu))
		assert.Equal(t, cu, exact.InteriorCovering(cu))
	}
}

func TestFastCovering(t *testing.T) {
	rng := testutil.NewRNG(5)
	c := coverer.New(coverer.WithMaxCells(6))
	for range 100 {
		capRegion := rng.Cap(1e-10, 1)
		fast := c.FastCellIDs(capRegion)
		assert.True(t, c.IsCanonical(fast))
		cu := cellunion.New(fast...)
		for range 5 {
			p := pointInCap(rng, capRegion)
			if capRegion.ContainsPoint(p) {
				assert.True(t, cu.ContainsPoint(p))
			}
		}
	}
}

func TestCanonicalizeCovering(t *testing.T) {
	t.Run("merges to budget", func(t *testing.T) {
		rng := testutil.NewRNG(6)
		for range 100 {
			o := randomOptions(rng)
			c := coverer.New(coverer.WithOptions(o))
			input := rng.CellIDs(1+rng.Intn(40), o.MinLevel, cellid.MaxLevel)
			orig := append([]cellid.CellID(nil), input...)

			out := c.CanonicalizeCovering(input)
			assert.Equal(t, orig, input, "input is not modified")
			assert.True(t, c.IsCanonical(out))
			// The result still covers every input cell.
			cu := cellunion.FromVerbatim(out)
			for _, id := range input {
				assert.True(t, cu.ContainsCellID(id))
			}
		}
	})

	t.Run("large excess", func(t *testing.T) {
		c := coverer.New(coverer.WithMaxCells(4))
		parent := cellid.MustFromString("3/0123")
		var input []cellid.CellID
		end := parent.ChildEndAtLevel(10)
		for id := parent.ChildBeginAtLevel(10); id != end; id = id.Next() {
			if id.ChildPosition(10) != 3 {
				input = append(input, id)
			}
		}
		out := c.CanonicalizeCovering(input)
		assert.True(t, c.IsCanonical(out))
		assert.LessOrEqual(t, len(out), 4)
		assert.True(t, cellunion.New(out...).Contains(cellunion.New(input...)))
	})

	t.Run("is canonical rejects", func(t *testing.T) {
		c := coverer.New(coverer.WithMinLevel(2), coverer.WithMaxLevel(10), coverer.WithLevelMod(2), coverer.WithMaxCells(3))
		id := cellid.MustFromString("1/0123")
		assert.True(t, c.IsCanonical([]cellid.CellID{id}))
		assert.False(t, c.IsCanonical([]cellid.CellID{cellid.None()}))
		assert.False(t, c.IsCanonical([]cellid.CellID{id.Parent(1)}), "below min level")
		assert.False(t, c.IsCanonical([]cellid.CellID{id.Parent(3)}), "off the level grid")
		assert.False(t, c.IsCanonical([]cellid.CellID{id.ChildBeginAtLevel(12)}), "above max level")
		assert.False(t, c.IsCanonical([]cellid.CellID{id.ChildBeginAtLevel(6).Next(), id.ChildBeginAtLevel(6)}), "unsorted")
		assert.False(t, c.IsCanonical([]cellid.CellID{id, id.ChildBeginAtLevel(6)}), "overlapping")

		// A complete group of 16 grandchildren should have been merged.
		var group []cellid.CellID
		end := id.ChildEndAtLevel(6)
		for child := id.ChildBeginAtLevel(6); child != end; child = child.Next() {
			group = append(group, child)
		}
		c.SetOptions(coverer.WithMaxCells(100))
		assert.False(t, c.IsCanonical(group))
		assert.True(t, c.IsCanonical(group[1:]))
		// Over budget, mergeable neighbors are not canonical.
		c.SetOptions(coverer.WithMaxCells(3))
		assert.False(t, c.IsCanonical(group[1:]))
	})
}

func TestFloodFill(t *testing.T) {
	rng := testutil.NewRNG(7)
	for range 20 {
		capRegion := rng.CapAngle(0.02)
		const level = 9
		flood := coverer.SimpleCovering(capRegion, capRegion.Center(), level)
		require.NotEmpty(t, flood)
		for _, id := range flood {
			assert.Equal(t, level, id.Level())
			assert.True(t, capRegion.IntersectsCell(region.CellFromCellID(id)))
		}

		fixed := coverer.New(coverer.WithFixedLevel(level), coverer.WithMaxCells(1<<20)).CellIDs(capRegion)
		assert.Subset(t, flood, fixed)
	}

	far := region.CapFromCenterAngle(cellid.PointFromCoords(1, 0, 0), 0.01)
	assert.Empty(t, coverer.FloodFill(far, cellid.FromFace(3).ChildBeginAtLevel(5)))
}

func TestCoveringContextAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := coverer.New(coverer.WithLogger(logger))

	cov, err := c.CoveringContext(context.Background(), region.CapFromCenterAngle(cellid.PointFromCoords(0, 0, 1), 0.1))
	require.NoError(t, err)
	assert.NotEmpty(t, cov)
	assert.Contains(t, buf.String(), "covering computed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.CoveringContext(ctx, region.FullCap())
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkCovering(b *testing.B) {
	rng := testutil.NewRNG(8)
	caps := make([]region.Cap, 64)
	for i := range caps {
		caps[i] = rng.Cap(1e-8, 1)
	}
	c := coverer.New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Covering(caps[i%len(caps)])
	}
}
