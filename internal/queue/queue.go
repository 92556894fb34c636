// Package queue provides a value-based binary heap used by best-first
// searches.
package queue

import "cmp"

// Item is an entry of the priority queue.
// Value-based (no pointers) for cache locality.
type Item[T any, P cmp.Ordered] struct {
	Value    T // Value is the payload, typically an arena reference.
	Priority P // Priority orders the queue.
}

// PriorityQueue is a binary heap of Items.
// Value-based storage: no per-item allocation, no index bookkeeping.
type PriorityQueue[T any, P cmp.Ordered] struct {
	isMaxHeap bool
	items     []Item[T, P]
}

// NewMin initializes a queue that pops the smallest priority first.
func NewMin[T any, P cmp.Ordered](capacity int) *PriorityQueue[T, P] {
	return &PriorityQueue[T, P]{items: make([]Item[T, P], 0, capacity)}
}

// NewMax initializes a queue that pops the largest priority first.
func NewMax[T any, P cmp.Ordered](capacity int) *PriorityQueue[T, P] {
	return &PriorityQueue[T, P]{isMaxHeap: true, items: make([]Item[T, P], 0, capacity)}
}

// TopItem returns the top element of the heap.
func (pq *PriorityQueue[T, P]) TopItem() (Item[T, P], bool) {
	if len(pq.items) == 0 {
		return Item[T, P]{}, false
	}
	return pq.items[0], true
}

// Push inserts value with the given priority.
func (pq *PriorityQueue[T, P]) Push(value T, priority P) {
	pq.PushItem(Item[T, P]{Value: value, Priority: priority})
}

// PushItem inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue[T, P]) PushItem(item Item[T, P]) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PopItem removes and returns the top element while maintaining the heap invariant.
func (pq *PriorityQueue[T, P]) PopItem() (Item[T, P], bool) {
	n := len(pq.items)
	if n == 0 {
		return Item[T, P]{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items[n-1] = Item[T, P]{} // zero out for GC
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

func (pq *PriorityQueue[T, P]) less(i, j int) bool {
	if pq.isMaxHeap {
		return pq.items[i].Priority > pq.items[j].Priority
	}
	return pq.items[i].Priority < pq.items[j].Priority
}

func (pq *PriorityQueue[T, P]) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue[T, P]) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}

// Len returns the number of elements in the priority queue.
func (pq *PriorityQueue[T, P]) Len() int { return len(pq.items) }

// Reset clears the priority queue for reuse.
func (pq *PriorityQueue[T, P]) Reset() {
	clear(pq.items)
	pq.items = pq.items[:0]
}
