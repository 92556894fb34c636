package cellid

import "math"

// Metric is a measure of cell size (an angle or an area) that scales by a
// constant factor per level: Value(level) = Deriv * 2^(-Dim*level).
// Values are in radians (Dim 1) or steradians (Dim 2) on the unit sphere
// under the quadratic projection.
type Metric struct {
	Dim   int
	Deriv float64
}

// Cell size metrics for the quadratic projection.
var (
	// MinWidth bounds from below the distance between opposite edges of a
	// cell.
	MinWidth = Metric{1, 2 * math.Sqrt2 / 3}
	// AvgWidth is the mean width over all cells of a level.
	AvgWidth = Metric{1, 1.434523672886099389}
	// MaxWidth bounds the width from above.
	MaxWidth = Metric{1, 1.704897179199218452}

	// MinEdge bounds edge lengths from below.
	MinEdge = Metric{1, 2 * math.Sqrt2 / 3}
	// AvgEdge is the mean edge length.
	AvgEdge = Metric{1, 1.459213746386106062}
	// MaxEdge bounds edge lengths from above.
	MaxEdge = Metric{1, 1.704897179199218452}

	// MaxDiag bounds the diagonal from above.
	MaxDiag = Metric{1, 2.438654594434021032}

	// MinArea bounds the cell area from below.
	MinArea = Metric{2, 8 * math.Sqrt2 / 9}
	// AvgArea is 4*Pi / (6 * 4^level).
	AvgArea = Metric{2, 4 * math.Pi / 6}
	// MaxArea bounds the cell area from above.
	MaxArea = Metric{2, 2.635799253945280}
)

// Value returns the metric for cells at the given level.
func (m Metric) Value(level int) float64 {
	return math.Ldexp(m.Deriv, -m.Dim*level)
}

// MinLevel returns the smallest level whose value is at most val, or
// MaxLevel when no level qualifies.
func (m Metric) MinLevel(val float64) int {
	if val < 0 {
		return MaxLevel
	}
	for level := 0; level <= MaxLevel; level++ {
		if m.Value(level) <= val {
			return level
		}
	}
	return MaxLevel
}

// MaxLevel returns the largest level whose value is at least val, or 0 when
// no level qualifies.
func (m Metric) MaxLevel(val float64) int {
	if val <= 0 {
		return MaxLevel
	}
	for level := MaxLevel; level >= 0; level-- {
		if m.Value(level) >= val {
			return level
		}
	}
	return 0
}

// ClosestLevel returns the level whose value is closest to val in a
// geometric sense.
func (m Metric) ClosestLevel(val float64) int {
	x := math.Sqrt2
	if m.Dim == 2 {
		x = 2
	}
	return m.MinLevel(x * val)
}
