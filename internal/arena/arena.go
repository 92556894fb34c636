package arena

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrStaleRef is the panic value of MustGet for a reference from an earlier
// generation.
var ErrStaleRef = errors.New("arena: stale reference")

const (
	// DefaultChunkSize is the default number of slots per chunk.
	DefaultChunkSize = 1024
	// MaxSlots limits the number of live slots per generation.
	MaxSlots = 1 << 31
)

// Stats tracks arena usage.
//
//   - SlotsReserved: slots backed by allocated chunks
//   - SlotsUsed: slots handed out in the current generation
//   - PeakUsed: the largest SlotsUsed seen before any Reset
//   - ActiveChunks: chunks currently held
//   - TotalAllocs: cumulative allocation count
//   - Resets: number of completed generations
type Stats struct {
	SlotsReserved uint64
	SlotsUsed     uint64
	PeakUsed      uint64
	ActiveChunks  uint64
	TotalAllocs   uint64
	Resets        uint64
}

// Ref is a reference to an arena slot. The zero Ref is the null reference.
type Ref struct {
	Gen   uint32
	Index uint32
}

// IsNull reports whether r is the null reference.
func (r Ref) IsNull() bool { return r.Index == 0 }

func (r Ref) String() string { return fmt.Sprintf("ref(%d@%d)", r.Index, r.Gen) }

// Arena is a slab allocator for values of type T.
type Arena[T any] struct {
	chunkBits uint
	chunkMask uint32
	chunks    [][]T
	next      uint32 // next free slot; slot 0 is reserved as null
	gen       uint32
	stats     Stats
}

// New creates an arena whose chunks hold chunkSize slots, rounded up to a
// power of two. A non-positive chunkSize selects DefaultChunkSize.
func New[T any](chunkSize int) *Arena[T] {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	// Round up to the next power of 2 for shift/mask addressing.
	chunkBits := uint(bits.Len(uint(chunkSize - 1)))
	a := &Arena[T]{
		chunkBits: chunkBits,
		chunkMask: uint32(1)<<chunkBits - 1,
		next:      1,
		gen:       1, // 0 is never a valid generation
	}
	return a
}

// Generation returns the current generation.
func (a *Arena[T]) Generation() uint32 { return a.gen }

// Alloc returns a zeroed slot and its reference.
func (a *Arena[T]) Alloc() (Ref, *T) {
	if a.next >= MaxSlots {
		panic(fmt.Sprintf("arena: more than %d live slots", MaxSlots))
	}
	idx := a.next
	c := int(idx >> a.chunkBits)
	if c == len(a.chunks) {
		a.chunks = append(a.chunks, make([]T, 1<<a.chunkBits))
		a.stats.ActiveChunks++
		a.stats.SlotsReserved += 1 << a.chunkBits
	}
	a.next++
	a.stats.TotalAllocs++
	a.stats.SlotsUsed++
	a.stats.PeakUsed = max(a.stats.PeakUsed, a.stats.SlotsUsed)
	return Ref{Gen: a.gen, Index: idx}, &a.chunks[c][idx&a.chunkMask]
}

// Get returns the slot for ref, or nil if ref is null or stale.
func (a *Arena[T]) Get(ref Ref) *T {
	if ref.Gen != a.gen || ref.Index == 0 || ref.Index >= a.next {
		return nil
	}
	return &a.chunks[ref.Index>>a.chunkBits][ref.Index&a.chunkMask]
}

// MustGet is like Get but panics on a null or stale reference.
func (a *Arena[T]) MustGet(ref Ref) *T {
	p := a.Get(ref)
	if p == nil {
		panic(fmt.Errorf("%w: %v (generation %d)", ErrStaleRef, ref, a.gen))
	}
	return p
}

// Len returns the number of slots allocated in the current generation.
func (a *Arena[T]) Len() int { return int(a.next - 1) }

// Reset releases every slot and starts a new generation. Chunks are kept
// and zeroed for reuse.
func (a *Arena[T]) Reset() {
	used := a.next
	for c, chunk := range a.chunks {
		base := uint32(c) << a.chunkBits
		if base >= used {
			break
		}
		clear(chunk[:min(uint32(len(chunk)), used-base)])
	}
	a.next = 1
	a.gen++
	if a.gen == 0 {
		a.gen = 1
	}
	a.stats.SlotsUsed = 0
	a.stats.Resets++
}

// Free drops all chunks. The arena remains usable.
func (a *Arena[T]) Free() {
	a.chunks = nil
	a.next = 1
	a.gen++
	if a.gen == 0 {
		a.gen = 1
	}
	a.stats.SlotsUsed = 0
	a.stats.SlotsReserved = 0
	a.stats.ActiveChunks = 0
}

// Stats returns a snapshot of the usage counters.
func (a *Arena[T]) Stats() Stats { return a.stats }
