package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	value  int
	parent Ref
}

func TestArena_New(t *testing.T) {
	t.Run("default chunk size", func(t *testing.T) {
		a := New[node](0)
		assert.Equal(t, uint32(DefaultChunkSize-1), a.chunkMask)
		assert.Equal(t, uint32(1), a.Generation())
		assert.Zero(t, a.Len())
	})

	t.Run("rounds up to power of two", func(t *testing.T) {
		a := New[node](1000)
		assert.Equal(t, uint32(1023), a.chunkMask)
	})
}

func TestArena_Alloc(t *testing.T) {
	a := New[node](4)

	var refs []Ref
	for i := range 10 {
		ref, n := a.Alloc()
		require.NotNil(t, n)
		assert.False(t, ref.IsNull())
		assert.Zero(t, n.value)
		n.value = i
		if i > 0 {
			n.parent = refs[i-1]
		}
		refs = append(refs, ref)
	}
	assert.Equal(t, 10, a.Len())

	// Pointers stay valid across chunk growth.
	for i, ref := range refs {
		assert.Equal(t, i, a.MustGet(ref).value)
	}
	// Walk the parent chain.
	depth := 0
	for r := refs[9]; !r.IsNull(); r = a.MustGet(r).parent {
		depth++
	}
	assert.Equal(t, 10, depth)

	stats := a.Stats()
	assert.Equal(t, uint64(10), stats.TotalAllocs)
	assert.Equal(t, uint64(10), stats.SlotsUsed)
	// Slot 0 is reserved, so 11 slots need three chunks of four.
	assert.Equal(t, uint64(3), stats.ActiveChunks)
	assert.Equal(t, uint64(12), stats.SlotsReserved)
}

func TestArena_NullAndStale(t *testing.T) {
	a := New[node](8)
	assert.Nil(t, a.Get(Ref{}))
	assert.Panics(t, func() { a.MustGet(Ref{}) })

	ref, n := a.Alloc()
	n.value = 42

	a.Reset()
	assert.Equal(t, uint32(2), a.Generation())
	assert.Nil(t, a.Get(ref))
	assert.PanicsWithError(t, "arena: stale reference: ref(1@1) (generation 2)", func() { a.MustGet(ref) })

	// Slots are reused and zeroed.
	ref2, n2 := a.Alloc()
	assert.Equal(t, ref.Index, ref2.Index)
	assert.Zero(t, n2.value)

	// An unallocated index in the current generation is rejected.
	assert.Nil(t, a.Get(Ref{Gen: a.Generation(), Index: 5}))
}

func TestArena_ResetKeepsChunks(t *testing.T) {
	a := New[node](4)
	for range 20 {
		a.Alloc()
	}
	before := a.Stats()
	a.Reset()
	after := a.Stats()

	assert.Equal(t, before.ActiveChunks, after.ActiveChunks)
	assert.Zero(t, after.SlotsUsed)
	assert.Equal(t, uint64(20), after.PeakUsed)
	assert.Equal(t, uint64(1), after.Resets)

	a.Free()
	assert.Zero(t, a.Stats().ActiveChunks)
	ref, _ := a.Alloc()
	assert.NotNil(t, a.Get(ref))
}
