// Package geocell indexes labeled regions on the sphere by hierarchical
// cells and answers which regions intersect a query region.
//
// Regions are approximated by cell coverings: sets of cells from a 30-level
// quadtree on the six faces of a cube projected onto the unit sphere. Two
// regions can only intersect if their coverings share a cell or one covering
// cell contains another, which the index evaluates with a single merge walk
// over a sorted range table.
//
// # Quick Start
//
//	idx, _ := geocell.New(geocell.WithCovererOptions(coverer.Options{
//	    MaxCells: 16, MinLevel: 0, MaxLevel: 20, LevelMod: 1,
//	}))
//	_ = idx.Add(1, region.CapFromCenterAngle(p, s1.Angle(0.01)))
//	_ = idx.Add(2, region.CellFromCellID(id))
//	_ = idx.Build(ctx)
//
//	labels, _ := idx.Query(ctx, region.CapFromPoint(q))
//	for _, l := range geocell.SortedLabels(labels) {
//	    fmt.Println(l)
//	}
//
// # Packages
//
//   - cellid: 64-bit cell identifiers, hierarchy navigation, tokens,
//     neighbors and point conversion.
//   - cellunion: normalized sets of cells with set algebra and a binary
//     encoding.
//   - region: the Region interface with cell and cap implementations.
//   - coverer: approximates any Region with a bounded number of cells.
//   - cellindex: the low-level (cell, label) index with range iterators.
//
// # Persistence
//
// A built index is written with WriteTo or Save as a checksummed snapshot
// whose body is LZ4 or zstd compressed. Open memory-maps a snapshot file and
// decodes it into a new index.
//
// # Concurrency
//
// Build covers regions on WithConcurrency goroutines, each owning its own
// coverer. After Build, Query, Visit and VisitLabels are safe for concurrent
// use; query coverers are pooled.
//
// # Observability
//
// WithLogger installs a slog-based Logger. WithMetricsCollector receives
// covering, build and query measurements; see the promcollector package for
// a Prometheus implementation.
package geocell
