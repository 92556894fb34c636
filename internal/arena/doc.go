// Package arena provides a typed, generation-tagged slab allocator for
// short-lived search trees.
//
// # Usage Model
//
// An Arena hands out fixed-size slots in chunks that never move, so pointers
// returned by Alloc stay valid until Reset. Reset makes every slot available
// again and bumps the generation, which turns any Ref from before the reset
// into a stale reference that Get rejects. The typical pattern is:
//   - Create one arena per long-lived worker (for example a coverer)
//   - Allocate nodes during one search, linking them by Ref
//   - Reset when the search is done; chunks are reused by the next search
//
// An Arena is not safe for concurrent use.
package arena
