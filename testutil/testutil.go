package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/golang/geo/s1"

	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/region"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// OneIn returns true with probability 1/n.
func (r *RNG) OneIn(n int) bool {
	return r.Intn(n) == 0
}

// CellID returns a random valid cell at the given level.
func (r *RNG) CellID(level int) cellid.CellID {
	r.mu.Lock()
	face := r.rand.Intn(cellid.NumFaces)
	pos := r.rand.Uint64() & ((1 << cellid.PosBits) - 1)
	r.mu.Unlock()
	return cellid.FromFacePosLevel(face, pos, level)
}

// RandomLevelCellID returns a random valid cell at a random level.
func (r *RNG) RandomLevelCellID() cellid.CellID {
	return r.CellID(r.Intn(cellid.MaxLevel + 1))
}

// LeafCellID returns a random leaf cell.
func (r *RNG) LeafCellID() cellid.CellID {
	return r.CellID(cellid.MaxLevel)
}

// Point returns a point distributed uniformly over the sphere.
func (r *RNG) Point() cellid.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		x := 2*r.rand.Float64() - 1
		y := 2*r.rand.Float64() - 1
		z := 2*r.rand.Float64() - 1
		if n := x*x + y*y + z*z; n > 1e-6 && n <= 1 {
			return cellid.PointFromCoords(x, y, z)
		}
	}
}

// Cap returns a cap with a random center whose area is log-uniformly
// distributed in [minArea, maxArea] (steradians).
func (r *RNG) Cap(minArea, maxArea float64) region.Cap {
	area := maxArea * math.Pow(minArea/maxArea, r.Float64())
	return region.CapFromCenterArea(r.Point(), area)
}

// CapAngle returns a cap with a random center and the given radius.
func (r *RNG) CapAngle(radius s1.Angle) region.Cap {
	return region.CapFromCenterAngle(r.Point(), radius)
}

// CellIDs returns n random cells with levels in [minLevel, maxLevel].
func (r *RNG) CellIDs(n, minLevel, maxLevel int) []cellid.CellID {
	out := make([]cellid.CellID, n)
	for i := range out {
		out[i] = r.CellID(minLevel + r.Intn(maxLevel-minLevel+1))
	}
	return out
}

// SkewedInt returns a number in [0, 2^maxLog) biased toward small values.
func (r *RNG) SkewedInt(maxLog int) int {
	base := r.Intn(maxLog + 1)
	return r.Intn(1 << uint(base))
}
