package cellunion_test

import (
	"bytes"
	"slices"
	"testing"

	"github.com/golang/geo/s1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/cellunion"
	"github.com/hupe1980/geocell/testutil"
)

func mustIDs(t *testing.T, ss ...string) []cellid.CellID {
	t.Helper()
	out := make([]cellid.CellID, len(ss))
	for i, s := range ss {
		id, err := cellid.FromString(s)
		require.NoError(t, err)
		out[i] = id
	}
	return out
}

// randomUnion builds a normalized union from a few random cells and, with
// some probability, complete sibling groups so that normalization has work
// to do.
func randomUnion(rng *testutil.RNG) cellunion.CellUnion {
	var ids []cellid.CellID
	for range 1 + rng.Intn(20) {
		id := rng.CellID(1 + rng.Intn(10))
		if rng.OneIn(3) {
			c := id.Children()
			ids = append(ids, c[:]...)
			continue
		}
		ids = append(ids, id)
	}
	return cellunion.New(ids...)
}

func TestNormalize(t *testing.T) {
	t.Run("four children collapse to parent", func(t *testing.T) {
		p := cellid.MustFromString("3/0123")
		c := p.Children()
		cu := cellunion.FromVerbatim(slices.Clone(c[:]))
		assert.True(t, cu.Normalize())
		assert.Equal(t, cellunion.CellUnion{p}, cu)
	})

	t.Run("collapse cascades", func(t *testing.T) {
		p := cellid.MustFromString("1/21")
		var ids []cellid.CellID
		for _, c := range p.Children() {
			for _, g := range c.Children() {
				ids = append(ids, g)
			}
		}
		// Reverse so sorting matters.
		slices.Reverse(ids)
		assert.Equal(t, cellunion.CellUnion{p}, cellunion.New(ids...))
	})

	t.Run("faces never collapse", func(t *testing.T) {
		cu := cellunion.WholeSphere()
		assert.False(t, cu.Normalize())
		assert.Len(t, cu, 6)
	})

	t.Run("contained cells removed", func(t *testing.T) {
		ids := mustIDs(t, "2/1", "2/10", "2/100", "2/3", "2/30", "4/")
		cu := cellunion.New(ids...)
		assert.Equal(t, cellunion.CellUnion(mustIDs(t, "2/1", "2/3", "4/")), cu)
	})

	t.Run("three siblings stay", func(t *testing.T) {
		ids := mustIDs(t, "0/10", "0/11", "0/12")
		cu := cellunion.FromVerbatim(ids)
		assert.False(t, cu.Normalize())
		assert.Len(t, cu, 3)
		assert.True(t, cu.IsNormalized())
	})

	t.Run("idempotent", func(t *testing.T) {
		rng := testutil.NewRNG(7)
		for range 200 {
			var ids []cellid.CellID
			for range rng.Intn(50) {
				ids = append(ids, rng.RandomLevelCellID())
			}
			once := cellunion.New(ids...)
			require.True(t, once.IsNormalized())
			twice := once.Clone()
			assert.False(t, twice.Normalize())
			assert.Equal(t, once, twice)
		}
	})

	t.Run("input not modified", func(t *testing.T) {
		ids := mustIDs(t, "5/3", "5/0")
		_ = cellunion.New(ids...)
		assert.Equal(t, mustIDs(t, "5/3", "5/0"), ids)
	})
}

func TestIsValid(t *testing.T) {
	assert.True(t, cellunion.CellUnion(mustIDs(t, "0/1", "0/2")).IsValid())
	assert.False(t, cellunion.CellUnion(mustIDs(t, "0/2", "0/1")).IsValid())
	assert.False(t, cellunion.CellUnion(mustIDs(t, "0/1", "0/12")).IsValid())
	assert.False(t, cellunion.CellUnion{cellid.None()}.IsValid())

	four := cellid.MustFromString("0/1").Children()
	cu := cellunion.FromVerbatim(four[:])
	assert.True(t, cu.IsValid())
	assert.False(t, cu.IsNormalized())
}

func TestContainsIntersects(t *testing.T) {
	cu := cellunion.New(mustIDs(t, "1/3", "2/012", "4/2")...)

	assert.True(t, cu.ContainsCellID(cellid.MustFromString("1/3")))
	assert.True(t, cu.ContainsCellID(cellid.MustFromString("1/3210")))
	assert.True(t, cu.ContainsCellID(cellid.MustFromString("2/01230")))
	assert.False(t, cu.ContainsCellID(cellid.MustFromString("2/01")))
	assert.False(t, cu.ContainsCellID(cellid.MustFromString("3/")))
	assert.False(t, cu.ContainsCellID(cellid.None()))

	assert.True(t, cu.IntersectsCellID(cellid.MustFromString("2/01")))
	assert.True(t, cu.IntersectsCellID(cellid.MustFromString("2/")))
	assert.False(t, cu.IntersectsCellID(cellid.MustFromString("2/011")))
	assert.False(t, cu.IntersectsCellID(cellid.MustFromString("5/")))

	sub := cellunion.New(mustIDs(t, "1/30", "4/22")...)
	assert.True(t, cu.Contains(sub))
	assert.True(t, cu.Intersects(sub))
	assert.False(t, sub.Contains(cu))

	cell := cellid.MustFromString("4/21")
	assert.True(t, cu.ContainsPoint(cell.Point()))
}

func TestFromBeginEnd(t *testing.T) {
	t.Run("whole sphere", func(t *testing.T) {
		cu := cellunion.FromBeginEnd(cellid.Begin(cellid.MaxLevel), cellid.End(cellid.MaxLevel))
		assert.Equal(t, cellunion.WholeSphere(), cu)
	})

	t.Run("empty", func(t *testing.T) {
		b := cellid.MustFromString("3/2").RangeMin()
		assert.Empty(t, cellunion.FromBeginEnd(b, b))
	})

	t.Run("min max", func(t *testing.T) {
		rng := testutil.NewRNG(11)
		for range 100 {
			a, b := rng.LeafCellID(), rng.LeafCellID()
			if a > b {
				a, b = b, a
			}
			cu := cellunion.FromMinMax(a, b)
			require.True(t, cu.IsNormalized())
			require.NotEmpty(t, cu)
			assert.Equal(t, a, cu[0].RangeMin())
			assert.Equal(t, b, cu[len(cu)-1].RangeMax())
		}
	})
}

func TestDenormalize(t *testing.T) {
	cu := cellunion.New(mustIDs(t, "0/", "1/0123")...)
	out := cu.Denormalize(2, 2)

	// 0/ expands to its 16 level-2 descendants; level 4 already fits.
	assert.Len(t, out, 17)
	for _, id := range out {
		assert.GreaterOrEqual(t, id.Level(), 2)
		assert.Zero(t, (id.Level()-2)%2)
	}
	assert.Equal(t, cu, cellunion.New(out...))

	odd := cellunion.New(cellid.MustFromString("2/123")).Denormalize(2, 2)
	assert.Len(t, odd, 4)
	assert.Equal(t, 4, odd[0].Level())
}

func TestAlgebra(t *testing.T) {
	rng := testutil.NewRNG(42)
	for range 100 {
		a, b := randomUnion(rng), randomUnion(rng)
		u := a.Union(b)
		require.True(t, u.IsNormalized())
		assert.True(t, u.Contains(a))
		assert.True(t, u.Contains(b))

		x := a.Intersection(b)
		require.True(t, x.IsNormalized())
		assert.True(t, a.Contains(x))
		assert.True(t, b.Contains(x))
		assert.Equal(t, x, b.Intersection(a))

		d := a.Difference(b)
		require.True(t, d.IsNormalized())
		assert.False(t, d.Intersects(b))
		assert.True(t, a.Contains(d))

		// Spot check intersection against leaf membership.
		for range 20 {
			leaf := rng.LeafCellID()
			if rng.OneIn(2) && len(u) > 0 {
				c := u[rng.Intn(len(u))]
				leaf = c.ChildBeginAtLevel(cellid.MaxLevel).Advance(int64(rng.Intn(1 << 10)))
				if !c.Contains(leaf) {
					leaf = c.RangeMin()
				}
			}
			assert.Equal(t, a.ContainsCellID(leaf) && b.ContainsCellID(leaf), x.ContainsCellID(leaf))
			assert.Equal(t, a.ContainsCellID(leaf) && !b.ContainsCellID(leaf), d.ContainsCellID(leaf))
		}

		whole := d.Union(b.Intersection(a)).Union(b.Difference(a))
		assert.Equal(t, u, whole)
		assert.Equal(t, u.LeafCellsCovered(), whole.LeafCellsCovered())
	}
}

func TestIntersectionSkipsDisjointRuns(t *testing.T) {
	a := cellunion.New(mustIDs(t, "0/0", "0/1", "0/2", "1/0", "1/1", "1/2", "5/3")...)
	b := cellunion.New(mustIDs(t, "1/13", "1/130", "5/")...)
	assert.Equal(t, cellunion.CellUnion(mustIDs(t, "1/13", "5/3")), a.Intersection(b))

	assert.Equal(t, cellunion.CellUnion(mustIDs(t, "0/1")), a.IntersectionWithCellID(cellid.MustFromString("0/1")))
	assert.Equal(t, cellunion.CellUnion(mustIDs(t, "1/0", "1/1", "1/2")), a.IntersectionWithCellID(cellid.MustFromString("1/")))
	assert.Empty(t, a.IntersectionWithCellID(cellid.MustFromString("3/")))
}

func TestExpand(t *testing.T) {
	t.Run("at level", func(t *testing.T) {
		id := cellid.MustFromString("3/1203012")
		cu := cellunion.New(id)
		out := cu.ExpandAtLevel(4)

		parent := id.Parent(4)
		assert.True(t, out.ContainsCellID(parent))
		for _, n := range parent.AllNeighbors(4) {
			assert.True(t, out.ContainsCellID(n))
		}
		want := cellunion.New(append(parent.AllNeighbors(4), parent)...)
		assert.Equal(t, want, out)
		assert.Equal(t, cellunion.New(parent).ExpandAtLevel(4), out)
	})

	t.Run("by radius", func(t *testing.T) {
		rng := testutil.NewRNG(3)
		for range 20 {
			p := rng.Point()
			cu := cellunion.New(cellid.FromPoint(p).Parent(15))
			radius := s1.Angle(1e-4)
			out := cu.ExpandByRadius(radius, 5)
			assert.True(t, out.Contains(cu))

			// A point at distance < radius from the cell must be covered.
			q := cellid.Point{Vector: p.Add(rng.Point().Mul(radius.Radians() / 4)).Normalize()}
			assert.True(t, out.ContainsPoint(q))
		}
	})
}

func TestRegion(t *testing.T) {
	cu := cellunion.New(mustIDs(t, "2/3", "4/01")...)
	bound := cu.CellUnionBound()
	assert.Equal(t, []cellid.CellID(cu), bound)
	bound[0] = cellid.None()
	assert.NotEqual(t, cellid.None(), cu[0])
}

func TestEncodeDecode(t *testing.T) {
	rng := testutil.NewRNG(99)
	cu := randomUnion(rng)

	var buf bytes.Buffer
	require.NoError(t, cu.Encode(&buf))
	assert.Equal(t, cu.EncodedLen(), buf.Len())
	assert.Equal(t, byte(1), buf.Bytes()[0])

	got, err := cellunion.Decode(bytes.NewReader(buf.Bytes()), cellunion.DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, cu, got)

	data, err := cu.MarshalBinary()
	require.NoError(t, err)
	var u cellunion.CellUnion
	require.NoError(t, u.UnmarshalBinary(data))
	assert.Equal(t, cu, u)

	t.Run("empty", func(t *testing.T) {
		data, err := cellunion.CellUnion(nil).MarshalBinary()
		require.NoError(t, err)
		got, n, err := cellunion.DecodeBytes(data, cellunion.DecodeOptions{})
		require.NoError(t, err)
		assert.Equal(t, 9, n)
		assert.Empty(t, got)
	})

	t.Run("bad version", func(t *testing.T) {
		bad := slices.Clone(data)
		bad[0] = 2
		_, err := cellunion.Decode(bytes.NewReader(bad), cellunion.DecodeOptions{})
		assert.ErrorIs(t, err, cellunion.ErrUnsupportedVersion)
	})

	t.Run("too many cells", func(t *testing.T) {
		big := cellunion.WholeSphere()
		data, err := big.MarshalBinary()
		require.NoError(t, err)
		_, err = cellunion.Decode(bytes.NewReader(data), cellunion.DecodeOptions{MaxCells: 5})
		assert.ErrorIs(t, err, cellunion.ErrTooManyCells)
		_, _, err = cellunion.DecodeBytes(data, cellunion.DecodeOptions{MaxCells: 5})
		assert.ErrorIs(t, err, cellunion.ErrTooManyCells)
	})

	t.Run("truncated", func(t *testing.T) {
		for _, n := range []int{0, 5, 9, len(data) - 1} {
			_, err := cellunion.Decode(bytes.NewReader(data[:n]), cellunion.DecodeOptions{})
			assert.ErrorIs(t, err, cellunion.ErrTruncated, "len %d", n)
		}
		var u cellunion.CellUnion
		assert.ErrorIs(t, u.UnmarshalBinary(data[:len(data)-3]), cellunion.ErrTruncated)
	})

	t.Run("stream", func(t *testing.T) {
		var buf bytes.Buffer
		a := cellunion.New(mustIDs(t, "1/2")...)
		b := cellunion.New(mustIDs(t, "3/0", "3/1")...)
		require.NoError(t, a.Encode(&buf))
		require.NoError(t, b.Encode(&buf))
		r := bytes.NewReader(buf.Bytes())
		got1, err := cellunion.Decode(r, cellunion.DecodeOptions{})
		require.NoError(t, err)
		got2, err := cellunion.Decode(r, cellunion.DecodeOptions{})
		require.NoError(t, err)
		assert.Equal(t, a, got1)
		assert.Equal(t, b, got2)
	})
}

func BenchmarkNormalize(b *testing.B) {
	rng := testutil.NewRNG(1)
	ids := rng.CellIDs(1000, 5, 20)
	buf := make(cellunion.CellUnion, len(ids))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(buf, ids)
		cu := buf[:len(ids)]
		cu.Normalize()
	}
}

func BenchmarkIntersection(b *testing.B) {
	rng := testutil.NewRNG(2)
	x := cellunion.New(rng.CellIDs(2000, 8, 16)...)
	y := cellunion.New(rng.CellIDs(50, 8, 16)...)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = x.Intersection(y)
	}
}
