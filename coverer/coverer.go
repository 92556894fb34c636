// Package coverer approximates regions by cell unions.
//
// A RegionCoverer runs a best-first search over the cell hierarchy: it
// starts from a cheap bound of the region, repeatedly subdivides the
// largest cell that partially intersects the region, and stops when the
// cell budget would be exceeded. Cells fully inside the region and cells at
// the finest allowed level are never subdivided.
//
// A RegionCoverer is not safe for concurrent use; create one per goroutine.
// Construction is cheap and the internal buffers are reused across calls.
package coverer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/cellunion"
	"github.com/hupe1980/geocell/internal/arena"
	"github.com/hupe1980/geocell/internal/queue"
	"github.com/hupe1980/geocell/region"
)

// candidate is a search node. Its children are stored contiguously in the
// coverer's kids buffer at [childOff, childOff+numChildren).
type candidate struct {
	cell        region.Cell
	isTerminal  bool
	childOff    int32
	numChildren int32
}

// Stats describes the most recent search.
type Stats struct {
	CandidatesCreated int           // candidates allocated by the search
	Cells             int           // cells in the returned covering
	Leftover          int           // queued candidates dropped at the end
	Duration          time.Duration // wall time of the call
}

// RegionCoverer computes coverings and interior coverings of regions.
type RegionCoverer struct {
	opts   Options
	logger *slog.Logger
	// seeding marks the helper coverer that computes initial candidates; it
	// never reruns a full search while canonicalizing.
	seeding bool

	// Per-call search state.
	region   region.Region
	interior bool
	result   []cellid.CellID
	pq       *queue.PriorityQueue[arena.Ref, int64]
	nodes    *arena.Arena[candidate]
	kids     []arena.Ref
	stats    Stats
}

// New returns a coverer with DefaultOptions modified by opts.
func New(opts ...Option) *RegionCoverer {
	cfg := config{opts: DefaultOptions()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &RegionCoverer{
		opts:   cfg.opts,
		logger: cfg.logger,
		pq:     queue.NewMax[arena.Ref, int64](64),
		nodes:  arena.New[candidate](256),
	}
}

// Options returns the current options.
func (c *RegionCoverer) Options() Options { return c.opts }

// SetOptions applies opts on top of the current configuration.
func (c *RegionCoverer) SetOptions(opts ...Option) {
	cfg := config{opts: c.opts, logger: c.logger}
	for _, opt := range opts {
		opt(&cfg)
	}
	c.opts = cfg.opts
	c.logger = cfg.logger
}

// Stats returns statistics of the most recent covering call.
func (c *RegionCoverer) Stats() Stats { return c.stats }

// Covering returns a normalized cell union covering r.
func (c *RegionCoverer) Covering(r region.Region) cellunion.CellUnion {
	return cellunion.FromNormalized(c.CellIDs(r))
}

// CellIDs is like Covering but returns the raw canonical cell list, which is
// not normalized when MinLevel or LevelMod force groups of siblings to stay
// split.
func (c *RegionCoverer) CellIDs(r region.Region) []cellid.CellID {
	c.interior = false
	c.coveringInternal(r)
	return c.takeResult()
}

// InteriorCovering returns a normalized cell union contained by r.
func (c *RegionCoverer) InteriorCovering(r region.Region) cellunion.CellUnion {
	return cellunion.FromNormalized(c.InteriorCellIDs(r))
}

// InteriorCellIDs is like InteriorCovering but returns the raw canonical
// cell list.
func (c *RegionCoverer) InteriorCellIDs(r region.Region) []cellid.CellID {
	c.interior = true
	c.coveringInternal(r)
	return c.takeResult()
}

// FastCovering returns a cheap covering derived from the region's own cell
// bound. It is usually looser than Covering.
func (c *RegionCoverer) FastCovering(r region.Region) cellunion.CellUnion {
	return cellunion.FromNormalized(c.FastCellIDs(r))
}

// FastCellIDs is like FastCovering but returns the raw canonical cell list.
func (c *RegionCoverer) FastCellIDs(r region.Region) []cellid.CellID {
	return c.CanonicalizeCovering(r.CellUnionBound())
}

// CoveringContext is like Covering but returns ctx.Err() instead of
// starting a search when ctx is already done.
func (c *RegionCoverer) CoveringContext(ctx context.Context, r region.Region) (cellunion.CellUnion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Covering(r), nil
}

func (c *RegionCoverer) takeResult() []cellid.CellID {
	out := c.result
	c.result = nil
	return out
}

func (c *RegionCoverer) checkOptions() {
	if c.opts.MinLevel > c.opts.MaxLevel {
		panic(fmt.Sprintf("coverer: min level %d exceeds max level %d", c.opts.MinLevel, c.opts.MaxLevel))
	}
}

func (c *RegionCoverer) maxChildrenShift() uint { return uint(2 * c.opts.LevelMod) }

// newCandidate returns a candidate for cell, or a null Ref when the cell does
// not intersect the region (or, for interior coverings, can never be part
// of the result).
func (c *RegionCoverer) newCandidate(cell region.Cell) arena.Ref {
	if !c.region.IntersectsCell(cell) {
		return arena.Ref{}
	}
	terminal := false
	if cell.Level() >= c.opts.MinLevel {
		if c.interior {
			if c.region.ContainsCell(cell) {
				terminal = true
			} else if cell.Level()+c.opts.LevelMod > c.opts.MaxLevel {
				return arena.Ref{}
			}
		} else if cell.Level()+c.opts.LevelMod > c.opts.MaxLevel || c.region.ContainsCell(cell) {
			terminal = true
		}
	}
	ref, cand := c.nodes.Alloc()
	cand.cell = cell
	cand.isTerminal = terminal
	c.stats.CandidatesCreated++
	return ref
}

// addCandidate either adds the candidate to the result, drops it, or
// expands its children and queues it.
func (c *RegionCoverer) addCandidate(ref arena.Ref) {
	if ref.IsNull() {
		return
	}
	cand := c.nodes.MustGet(ref)
	if cand.isTerminal {
		c.result = append(c.result, cand.cell.ID())
		return
	}

	// Expand one level at a time until MinLevel so it is not skipped.
	numLevels := c.opts.LevelMod
	if cand.cell.Level() < c.opts.MinLevel {
		numLevels = 1
	}
	cand.childOff = int32(len(c.kids))
	numTerminals := c.expandChildren(ref, cand.cell, numLevels)

	switch {
	case cand.numChildren == 0:
		// Nothing intersects; drop.
	case !c.interior && numTerminals == 1<<c.maxChildrenShift() && cand.cell.Level() >= c.opts.MinLevel:
		// Every child is terminal: use the parent instead. Not valid for
		// interior coverings, where children only intersect the region.
		cand.isTerminal = true
		c.addCandidate(ref)
	default:
		// Larger cells first; then fewer children; then fewer terminal
		// children. The queue pops the largest value, hence the negation.
		shift := c.maxChildrenShift()
		priority := -((((int64(cand.cell.Level()) << shift) + int64(cand.numChildren)) << shift) + int64(numTerminals))
		c.pq.Push(ref, priority)
	}
}

// expandChildren subdivides cell numLevels times and appends every
// intersecting descendant as a child of the candidate. It returns the number
// of terminal children.
func (c *RegionCoverer) expandChildren(parent arena.Ref, cell region.Cell, numLevels int) int {
	numLevels--
	numTerminals := 0
	for _, child := range cell.Subdivide() {
		if numLevels > 0 {
			if c.region.IntersectsCell(child) {
				numTerminals += c.expandChildren(parent, child, numLevels)
			}
			continue
		}
		if ref := c.newCandidate(child); !ref.IsNull() {
			c.kids = append(c.kids, ref)
			p := c.nodes.MustGet(parent)
			p.numChildren++
			if c.nodes.MustGet(ref).isTerminal {
				numTerminals++
			}
		}
	}
	return numTerminals
}

// initialCandidates seeds the queue from a small fast covering.
func (c *RegionCoverer) initialCandidates() {
	tmp := New(WithMaxCells(min(4, c.opts.MaxCells)), WithMaxLevel(c.opts.MaxLevel))
	tmp.seeding = true
	cells := tmp.FastCellIDs(c.region)
	cells = c.adjustCellLevels(cells)
	for _, id := range cells {
		c.addCandidate(c.newCandidate(region.CellFromCellID(id)))
	}
}

func (c *RegionCoverer) coveringInternal(r region.Region) {
	c.checkOptions()
	start := time.Now()

	c.region = r
	c.result = c.result[:0]
	c.kids = c.kids[:0]
	c.pq.Reset()
	c.nodes.Reset()
	c.stats = Stats{}

	c.initialCandidates()
	for c.pq.Len() > 0 && (!c.interior || len(c.result) < c.opts.MaxCells) {
		item, _ := c.pq.PopItem()
		cand := c.nodes.MustGet(item.Value)
		// Exterior coverings must use all children, so expansion happens
		// only within budget. A single child never hurts, and cells below
		// MinLevel must be expanded regardless.
		if c.interior ||
			cand.cell.Level() < c.opts.MinLevel ||
			cand.numChildren == 1 ||
			len(c.result)+c.pq.Len()+int(cand.numChildren) <= c.opts.MaxCells {
			off, n := cand.childOff, cand.numChildren
			for _, child := range c.kids[off : off+n] {
				if c.interior && len(c.result) >= c.opts.MaxCells {
					continue
				}
				c.addCandidate(child)
			}
		} else {
			cand.isTerminal = true
			c.addCandidate(item.Value)
		}
	}
	c.stats.Leftover = c.pq.Len()
	c.pq.Reset()
	c.region = nil

	// Merge complete sibling groups, then split again where MinLevel or
	// LevelMod require it.
	c.result = c.normalize(cellunion.CellUnion(c.result))

	c.stats.Cells = len(c.result)
	c.stats.Duration = time.Since(start)
	if c.logger != nil {
		c.logger.Debug("covering computed",
			"interior", c.interior,
			"cells", c.stats.Cells,
			"candidates", c.stats.CandidatesCreated,
			"leftover", c.stats.Leftover,
			"duration", c.stats.Duration,
		)
	}
}
