package queue

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityQueue_Max(t *testing.T) {
	pq := NewMax[string, int64](4)
	pq.Push("b", 2)
	pq.Push("d", 4)
	pq.Push("a", 1)
	pq.Push("c", 3)
	pq.Push("e", -7)
	assert.Equal(t, 5, pq.Len())

	top, ok := pq.TopItem()
	require.True(t, ok)
	assert.Equal(t, "d", top.Value)

	var got []string
	for pq.Len() > 0 {
		it, ok := pq.PopItem()
		require.True(t, ok)
		got = append(got, it.Value)
	}
	assert.Equal(t, []string{"d", "c", "b", "a", "e"}, got)

	_, ok = pq.PopItem()
	assert.False(t, ok)
	_, ok = pq.TopItem()
	assert.False(t, ok)
}

func TestPriorityQueue_Min(t *testing.T) {
	pq := NewMin[int, float32](0)
	in := []float32{5, 3, 9, 1, 1, 7, 0.5}
	for i, p := range in {
		pq.PushItem(Item[int, float32]{Value: i, Priority: p})
	}

	var got []float32
	for pq.Len() > 0 {
		it, _ := pq.PopItem()
		got = append(got, it.Priority)
	}
	want := slices.Clone(in)
	slices.Sort(want)
	assert.Equal(t, want, got)
}

func TestPriorityQueue_Reset(t *testing.T) {
	pq := NewMax[int, int](2)
	for i := range 10 {
		pq.Push(i, i)
	}
	pq.Reset()
	assert.Zero(t, pq.Len())
	pq.Push(1, 1)
	it, ok := pq.PopItem()
	require.True(t, ok)
	assert.Equal(t, 1, it.Value)
}
