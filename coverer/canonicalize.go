package coverer

import (
	"slices"

	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/cellunion"
)

// recomputeThreshold is the excess*size product above which
// CanonicalizeCovering reruns the search instead of merging pairs.
const recomputeThreshold = 10000

// CanonicalizeCovering turns an arbitrary list of cells into one that
// satisfies IsCanonical under the current options. The input is not
// modified.
//
// Cells are first moved to acceptable levels and normalized. If the result
// still exceeds MaxCells, adjacent cells with the deepest common ancestor are
// merged until the budget or MinLevel is reached.
func (c *RegionCoverer) CanonicalizeCovering(covering []cellid.CellID) []cellid.CellID {
	c.checkOptions()
	o := c.opts
	cu := cellunion.FromVerbatim(slices.Clone(covering))

	if o.MaxLevel < cellid.MaxLevel || o.LevelMod > 1 {
		for i, id := range cu {
			level := id.Level()
			if newLevel := c.adjustLevel(min(level, o.MaxLevel)); newLevel != level {
				cu[i] = id.Parent(newLevel)
			}
		}
	}
	cu = c.normalize(cu)

	excess := len(cu) - o.MaxCells
	if excess <= 0 || c.IsCanonical(cu) {
		return cu
	}
	if excess*len(cu) > recomputeThreshold {
		if c.seeding {
			cu = c.coarsen(cu)
		} else {
			cu = cellunion.CellUnion(c.CellIDs(cu))
		}
		excess = len(cu) - o.MaxCells
	}

	for excess > 0 {
		bestIndex, bestLevel := -1, -1
		for i := 0; i+1 < len(cu); i++ {
			level := c.adjustLevel(cu[i].CommonAncestorLevel(cu[i+1]))
			if level > bestLevel {
				bestLevel, bestIndex = level, i
			}
		}
		if bestLevel < o.MinLevel {
			break
		}

		// Merge the pair, then keep absorbing sibling groups that the
		// merge completed.
		id := cu[bestIndex].Parent(bestLevel)
		cu = replaceCellsWithAncestor(cu, id)
		for bestLevel > o.MinLevel {
			bestLevel -= o.LevelMod
			id = id.Parent(bestLevel)
			if !c.containsAllChildren(cu, id) {
				break
			}
			cu = replaceCellsWithAncestor(cu, id)
		}
		excess = len(cu) - o.MaxCells
	}
	return cu
}

// IsCanonical reports whether covering is a valid result for the current
// options: every id valid and within [MinLevel, TrueMaxLevel] on the
// LevelMod grid, sorted and non-overlapping, no group of siblings that
// should have been merged, and, when over budget, no adjacent pair that
// could be merged at or above MinLevel.
func (c *RegionCoverer) IsCanonical(covering []cellid.CellID) bool {
	c.checkOptions()
	o := c.opts
	trueMax := o.TrueMaxLevel()
	tooMany := len(covering) > o.MaxCells
	sameParentCount := 1

	var prev cellid.CellID
	for i, id := range covering {
		if !id.IsValid() {
			return false
		}
		level := id.Level()
		if level < o.MinLevel || level > trueMax {
			return false
		}
		if o.LevelMod > 1 && (level-o.MinLevel)%o.LevelMod != 0 {
			return false
		}
		if i > 0 {
			if prev.RangeMax() >= id.RangeMin() {
				return false
			}
			if tooMany && c.adjustLevel(id.CommonAncestorLevel(prev)) >= o.MinLevel {
				return false
			}
			plevel := level - o.LevelMod
			if plevel < o.MinLevel || level != prev.Level() || id.Parent(plevel) != prev.Parent(plevel) {
				sameParentCount = 1
			} else {
				sameParentCount++
				if sameParentCount == 1<<c.maxChildrenShift() {
					return false
				}
			}
		}
		prev = id
	}
	return true
}

// normalize normalizes cu and then splits cells that MinLevel or LevelMod
// do not allow.
func (c *RegionCoverer) normalize(cu cellunion.CellUnion) cellunion.CellUnion {
	cu.Normalize()
	if c.opts.MinLevel > 0 || c.opts.LevelMod > 1 {
		cu = cu.Denormalize(c.opts.MinLevel, c.opts.LevelMod)
	}
	return cu
}

// adjustLevel rounds level down to the LevelMod grid anchored at MinLevel.
// Levels at or below MinLevel are returned unchanged.
func (c *RegionCoverer) adjustLevel(level int) int {
	if c.opts.LevelMod > 1 && level > c.opts.MinLevel {
		level -= (level - c.opts.MinLevel) % c.opts.LevelMod
	}
	return level
}

// adjustCellLevels moves cells onto the LevelMod grid and drops cells
// contained by a preceding one. cells must be sorted.
func (c *RegionCoverer) adjustCellLevels(cells []cellid.CellID) []cellid.CellID {
	if c.opts.LevelMod == 1 {
		return cells
	}
	out := cells[:0]
	for _, id := range cells {
		level := id.Level()
		if newLevel := c.adjustLevel(level); newLevel != level {
			id = id.Parent(newLevel)
		}
		if len(out) > 0 && out[len(out)-1].Contains(id) {
			continue
		}
		for len(out) > 0 && id.Contains(out[len(out)-1]) {
			out = out[:len(out)-1]
		}
		out = append(out, id)
	}
	return out
}

// coarsen replaces the finest cells by their ancestors one grid step at a
// time until pairwise merging becomes cheap or MinLevel is reached.
func (c *RegionCoverer) coarsen(cu cellunion.CellUnion) cellunion.CellUnion {
	for (len(cu)-c.opts.MaxCells)*len(cu) > recomputeThreshold {
		finest := 0
		for _, id := range cu {
			finest = max(finest, id.Level())
		}
		if finest <= c.opts.MinLevel {
			break
		}
		target := c.adjustLevel(finest - 1)
		for i, id := range cu {
			if id.Level() > target {
				cu[i] = id.Parent(target)
			}
		}
		cu = c.normalize(cu)
	}
	return cu
}

// containsAllChildren reports whether cells holds every child of id at the
// next grid level, consecutively.
func (c *RegionCoverer) containsAllChildren(cells []cellid.CellID, id cellid.CellID) bool {
	i, _ := slices.BinarySearch(cells, id.RangeMin())
	level := id.Level() + c.opts.LevelMod
	end := id.ChildEndAtLevel(level)
	for child := id.ChildBeginAtLevel(level); child != end; child = child.Next() {
		if i == len(cells) || cells[i] != child {
			return false
		}
		i++
	}
	return true
}

// replaceCellsWithAncestor replaces every cell contained by id with id.
func replaceCellsWithAncestor(cells cellunion.CellUnion, id cellid.CellID) cellunion.CellUnion {
	begin, _ := slices.BinarySearch(cells, id.RangeMin())
	end, found := slices.BinarySearch(cells, id.RangeMax())
	if found {
		end++
	}
	return slices.Replace(cells, begin, end, id)
}
