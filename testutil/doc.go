// Package testutil provides testing utilities for geocell.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic, thread-safe random source plus generators
// for random cell ids, points and caps.
//
// # Random Cells
//
//	rng := testutil.NewRNG(seed)
//	id := rng.CellID(12)        // random cell at level 12
//	leaf := rng.LeafCellID()    // random leaf cell
//	p := rng.Point()            // uniform point on the sphere
//
// # Random Regions
//
//	cp := rng.Cap(minArea, maxArea)
//
// Use external test packages (package foo_test) when importing testutil from
// cellid or region tests to avoid import cycles.
package testutil
