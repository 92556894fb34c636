package geocell

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/cellindex"
	"github.com/hupe1980/geocell/cellunion"
	"github.com/hupe1980/geocell/coverer"
	"github.com/hupe1980/geocell/internal/fs"
	"github.com/hupe1980/geocell/internal/mmap"
	"github.com/hupe1980/geocell/internal/pool"
	"github.com/hupe1980/geocell/region"
)

// Label identifies an indexed region. Labels must be non-negative.
type Label = cellindex.Label

// entry is a region waiting to be covered by Build. Exactly one of r and
// cells is set.
type entry struct {
	label Label
	r     region.Region
	cells cellunion.CellUnion
}

// RegionIndex maps labeled regions to cell coverings and answers which
// labels intersect a query region.
//
// Regions are added with Add or AddCellUnion, then Build covers them and
// freezes the index. A built index is safe for concurrent queries.
type RegionIndex struct {
	mu      sync.RWMutex
	opts    options
	pending []entry
	index   *cellindex.CellIndex
	labels  *roaring.Bitmap
	queries *pool.Pool
}

// New creates an empty RegionIndex.
func New(optFns ...Option) (*RegionIndex, error) {
	opts, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	return &RegionIndex{
		opts:    opts,
		index:   cellindex.New(),
		labels:  roaring.New(),
		queries: pool.New(opts.queryCoverer, opts.logger.Logger),
	}, nil
}

// Add queues region r under label. The covering is computed by Build.
func (x *RegionIndex) Add(label Label, r region.Region) error {
	if r == nil {
		return ErrInvalidRegion
	}
	return x.add(entry{label: label, r: r})
}

// AddCellUnion queues a precomputed covering under label.
func (x *RegionIndex) AddCellUnion(label Label, cu cellunion.CellUnion) error {
	if !cu.IsValid() {
		return ErrInvalidCellUnion
	}
	return x.add(entry{label: label, cells: cu})
}

func (x *RegionIndex) add(e entry) error {
	if e.label < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLabel, e.label)
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.index.IsBuilt() {
		return ErrAlreadyBuilt
	}
	x.pending = append(x.pending, e)
	return nil
}

// Build covers all queued regions concurrently and builds the index.
// On error the index is left unbuilt with its regions still queued.
func (x *RegionIndex) Build(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.index.IsBuilt() {
		return ErrAlreadyBuilt
	}

	start := time.Now()
	regions := len(x.pending)
	coverings, err := x.coverAll(ctx)
	if err != nil {
		x.opts.metricsCollector.RecordBuild(0, 0, time.Since(start), err)
		x.opts.logger.LogBuild(ctx, regions, 0, 0, time.Since(start), err)
		return err
	}

	for i, e := range x.pending {
		x.index.AddCellUnion(coverings[i], e.label)
		x.labels.Add(uint32(e.label))
	}
	x.index.Build()
	x.pending = nil

	d := time.Since(start)
	x.opts.metricsCollector.RecordBuild(x.index.NumCells(), x.index.NumRanges(), d, nil)
	x.opts.logger.LogBuild(ctx, regions, x.index.NumCells(), x.index.NumRanges(), d, nil)
	return nil
}

// coverAll computes the covering of every pending entry. Workers pull
// entries from a shared cursor, each owning one coverer.
func (x *RegionIndex) coverAll(ctx context.Context) ([]cellunion.CellUnion, error) {
	coverings := make([]cellunion.CellUnion, len(x.pending))
	var next atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	workers := min(x.opts.concurrency, max(1, len(x.pending)))
	for range workers {
		g.Go(func() error {
			c := coverer.New(coverer.WithOptions(x.opts.indexCoverer), coverer.WithLogger(x.opts.logger.Logger))
			for {
				i := int(next.Add(1) - 1)
				if i >= len(x.pending) {
					return nil
				}
				e := x.pending[i]
				if e.r == nil {
					coverings[i] = e.cells
					continue
				}
				cu, err := c.CoveringContext(ctx, e.r)
				if err != nil {
					return err
				}
				stats := c.Stats()
				x.opts.metricsCollector.RecordCovering(stats.Cells, stats.CandidatesCreated, stats.Duration)
				coverings[i] = cu
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return coverings, nil
}

// IsBuilt reports whether Build or ReadFrom has completed.
func (x *RegionIndex) IsBuilt() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.IsBuilt()
}

// Len returns the number of distinct labels in the built index.
func (x *RegionIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return int(x.labels.GetCardinality())
}

// NumCells returns the number of (cell, label) pairs in the built index.
func (x *RegionIndex) NumCells() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.NumCells()
}

// Labels returns a copy of the set of indexed labels.
func (x *RegionIndex) Labels() *roaring.Bitmap {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.labels.Clone()
}

// Query returns the labels whose coverings intersect the covering of r.
func (x *RegionIndex) Query(ctx context.Context, r region.Region) (*roaring.Bitmap, error) {
	if r == nil {
		return nil, ErrInvalidRegion
	}
	start := time.Now()
	qc := x.queries.Get()
	defer x.queries.Put(qc)

	target, err := x.cover(ctx, qc.Coverer, r)
	if err != nil {
		x.opts.metricsCollector.RecordQuery(0, time.Since(start), err)
		return nil, err
	}
	return x.queryCells(ctx, target, start)
}

// QueryCells returns the labels whose coverings intersect target, which
// must be sorted and non-overlapping.
func (x *RegionIndex) QueryCells(ctx context.Context, target cellunion.CellUnion) (*roaring.Bitmap, error) {
	if !target.IsValid() {
		return nil, ErrInvalidCellUnion
	}
	return x.queryCells(ctx, target, time.Now())
}

func (x *RegionIndex) queryCells(ctx context.Context, target cellunion.CellUnion, start time.Time) (*roaring.Bitmap, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if err := x.checkQuery(ctx); err != nil {
		x.opts.metricsCollector.RecordQuery(0, time.Since(start), err)
		x.opts.logger.LogQuery(ctx, len(target), 0, err)
		return nil, err
	}
	labels := x.index.IntersectingLabelSet(target)
	n := int(labels.GetCardinality())
	x.opts.metricsCollector.RecordQuery(n, time.Since(start), nil)
	x.opts.logger.LogQuery(ctx, len(target), n, nil)
	return labels, nil
}

// Visit calls fn for every indexed (cell, label) pair intersecting the
// covering of r until fn returns false. A pair may be reported more than
// once when several target cells intersect it.
func (x *RegionIndex) Visit(ctx context.Context, r region.Region, fn func(id cellid.CellID, label Label) bool) error {
	if r == nil {
		return ErrInvalidRegion
	}
	qc := x.queries.Get()
	defer x.queries.Put(qc)

	target, err := x.cover(ctx, qc.Coverer, r)
	if err != nil {
		return err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	if err := x.checkQuery(ctx); err != nil {
		return err
	}
	x.index.VisitIntersectingCells(target, fn)
	return nil
}

// VisitLabels calls fn once for every label intersecting the covering of r,
// in index order, until fn returns false. Unlike Query it streams labels
// without materializing the result set.
func (x *RegionIndex) VisitLabels(ctx context.Context, r region.Region, fn func(label Label) bool) error {
	if r == nil {
		return ErrInvalidRegion
	}
	qc := x.queries.Get()
	defer x.queries.Put(qc)

	target, err := x.cover(ctx, qc.Coverer, r)
	if err != nil {
		return err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	if err := x.checkQuery(ctx); err != nil {
		return err
	}
	x.index.VisitIntersectingCells(target, func(_ cellid.CellID, label Label) bool {
		if qc.MarkSeen(label) {
			return true
		}
		return fn(label)
	})
	return nil
}

func (x *RegionIndex) cover(ctx context.Context, c *coverer.RegionCoverer, r region.Region) (cellunion.CellUnion, error) {
	cu, err := c.CoveringContext(ctx, r)
	if err != nil {
		return nil, err
	}
	stats := c.Stats()
	x.opts.metricsCollector.RecordCovering(stats.Cells, stats.CandidatesCreated, stats.Duration)
	return cu, nil
}

func (x *RegionIndex) checkQuery(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !x.index.IsBuilt() {
		return ErrNotBuilt
	}
	return nil
}

// WriteTo writes a snapshot of the built index to w using the configured
// compression.
func (x *RegionIndex) WriteTo(w io.Writer) (int64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.index.IsBuilt() {
		return 0, ErrNotBuilt
	}
	return x.index.WriteSnapshot(w, x.opts.compression)
}

// ReadFrom replaces the contents of an empty index with a snapshot read
// from r. The index is built afterwards.
func (x *RegionIndex) ReadFrom(r io.Reader) (int64, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.index.IsBuilt() || len(x.pending) > 0 {
		return 0, ErrAlreadyBuilt
	}

	idx := cellindex.New()
	n, err := idx.ReadFrom(r)
	if err != nil {
		return n, translateError(err)
	}

	labels := roaring.New()
	for _, label := range idx.All() {
		labels.Add(uint32(label))
	}
	x.index = idx
	x.labels = labels
	return n, nil
}

// Save atomically writes a snapshot of the built index to path.
func (x *RegionIndex) Save(ctx context.Context, path string) error {
	n, err := fs.WriteFileAtomic(x.opts.fs, path, 0o644, x.WriteTo)
	x.opts.logger.LogSnapshot(ctx, path, n, err)
	return err
}

// Open loads a snapshot written by Save into a new built index.
func Open(ctx context.Context, path string, optFns ...Option) (*RegionIndex, error) {
	x, err := New(optFns...)
	if err != nil {
		return nil, err
	}

	load := func() error {
		m, err := mmap.Open(path)
		if err != nil {
			return err
		}
		defer m.Close()
		if err := m.Advise(mmap.AccessSequential); err != nil {
			return err
		}
		if _, err := x.ReadFrom(m.Reader()); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}

	err = load()
	x.opts.logger.LogLoad(ctx, path, x.NumCells(), err)
	if err != nil {
		return nil, err
	}
	return x, nil
}

// SortedLabels returns the labels of bm in ascending order.
func SortedLabels(bm *roaring.Bitmap) []Label {
	out := make([]Label, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, Label(it.Next()))
	}
	return out
}
