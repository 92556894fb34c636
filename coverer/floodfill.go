package coverer

import (
	"slices"

	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/region"
)

// FloodFill returns every cell at start's level that is reachable from start
// through edge neighbors intersecting r. The result is sorted but not
// normalized; all cells share start's level.
//
// FloodFill suits connected regions with complicated shapes, where the
// best-first search would be slow. It returns nothing when start itself does
// not intersect r.
func FloodFill(r region.Region, start cellid.CellID) []cellid.CellID {
	var out []cellid.CellID
	seen := map[cellid.CellID]struct{}{start: {}}
	frontier := []cellid.CellID{start}
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		if !r.IntersectsCell(region.CellFromCellID(id)) {
			continue
		}
		out = append(out, id)
		for _, nbr := range id.EdgeNeighbors() {
			if _, ok := seen[nbr]; ok {
				continue
			}
			seen[nbr] = struct{}{}
			frontier = append(frontier, nbr)
		}
	}
	slices.Sort(out)
	return out
}

// SimpleCovering covers a connected region containing p with cells at a
// single level by flood filling from the cell containing p.
func SimpleCovering(r region.Region, p cellid.Point, level int) []cellid.CellID {
	return FloodFill(r, cellid.FromPoint(p).Parent(level))
}
