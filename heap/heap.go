// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package heap

import (
	"cmp"
	"container/heap"

	"github.com/ava-labs/avalanchego/ids"
)

// Heap tracks items of type [I] prioritized by [Val], with O(1) membership
// checks by id. It wraps container/heap so callers never touch the raw
// interface.
//
// Not safe for concurrent use.
type Heap[I any, V cmp.Ordered] struct {
	ih *innerHeap[I, V]
}

// New returns a heap with capacity for [items]. A min-heap surfaces the
// smallest Val first; a max-heap the largest.
func New[I any, V cmp.Ordered](items int, isMinHeap bool) *Heap[I, V] {
	return &Heap[I, V]{newInnerHeap[I, V](items, isMinHeap)}
}

func (h *Heap[I, V]) Len() int { return h.ih.Len() }

// Get returns the entry tracked under [id], if any.
func (h *Heap[I, V]) Get(id ids.ID) (*Entry[I, V], bool) {
	return h.ih.Get(id)
}

func (h *Heap[I, V]) Has(id ids.ID) bool {
	return h.ih.Has(id)
}

// Push adds [e] unless its ID is already tracked.
func (h *Heap[I, V]) Push(e *Entry[I, V]) {
	heap.Push(h.ih, e)
}

// Pop removes and returns the highest-priority entry, or nil when empty.
func (h *Heap[I, V]) Pop() *Entry[I, V] {
	if len(h.ih.items) == 0 {
		return nil
	}
	return heap.Pop(h.ih).(*Entry[I, V])
}

// Remove drops the entry at [index], or returns nil when out of range.
func (h *Heap[I, V]) Remove(index int) *Entry[I, V] {
	if index >= len(h.ih.items) {
		return nil
	}
	return heap.Remove(h.ih, index).(*Entry[I, V])
}

// First peeks at the highest-priority entry without removing it, or nil when
// empty.
func (h *Heap[I, V]) First() *Entry[I, V] {
	if len(h.ih.items) == 0 {
		return nil
	}
	return h.ih.items[0]
}
