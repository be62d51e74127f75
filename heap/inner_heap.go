// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package heap

import (
	"cmp"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

// Entry is an element of the heap, prioritized by [Val].
type Entry[I any, V cmp.Ordered] struct {
	ID   ids.ID // id of entry
	Item I      // associated item
	Val  V      // value to be prioritized

	Index int // index of the entry in heap
}

type innerHeap[I any, V cmp.Ordered] struct {
	isMinHeap bool                    // true for Min-Heap, false for Max-Heap
	items     []*Entry[I, V]          // items in this heap
	lookup    map[ids.ID]*Entry[I, V] // ids in the heap mapping to an entry
}

func newInnerHeap[I any, V cmp.Ordered](items int, isMinHeap bool) *innerHeap[I, V] {
	return &innerHeap[I, V]{
		isMinHeap: isMinHeap,

		items:  make([]*Entry[I, V], 0, items),
		lookup: make(map[ids.ID]*Entry[I, V], items),
	}
}

// Len returns the number of items in ih.
func (ih *innerHeap[I, V]) Len() int { return len(ih.items) }

// Less compares the priority of [i] and [j] based on ih.isMinHeap.
func (ih *innerHeap[I, V]) Less(i, j int) bool {
	if ih.isMinHeap {
		return ih.items[i].Val < ih.items[j].Val
	}
	return ih.items[i].Val > ih.items[j].Val
}

// Swap swaps the [i]th and [j]th element in ih.
func (ih *innerHeap[I, V]) Swap(i, j int) {
	ih.items[i], ih.items[j] = ih.items[j], ih.items[i]
	ih.items[i].Index = i
	ih.items[j].Index = j
}

// Push adds an *Entry to ih. If [x.ID] is already in ih, returns.
func (ih *innerHeap[I, V]) Push(x any) {
	entry, ok := x.(*Entry[I, V])
	if !ok {
		panic(fmt.Errorf("unexpected %T, expected *Entry", x))
	}
	if ih.Has(entry.ID) {
		return
	}
	ih.items = append(ih.items, entry)
	ih.lookup[entry.ID] = entry
}

// Pop removes the top element of ih and returns it.
func (ih *innerHeap[I, V]) Pop() any {
	old := ih.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	ih.items = old[0 : n-1]
	delete(ih.lookup, item.ID)
	return item
}

// Get returns the entry in ih associated with [id], and a bool if [id] was
// found in ih.
func (ih *innerHeap[I, V]) Get(id ids.ID) (*Entry[I, V], bool) {
	entry, ok := ih.lookup[id]
	return entry, ok
}

// Has returns whether [id] is found in ih.
func (ih *innerHeap[I, V]) Has(id ids.ID) bool {
	_, has := ih.lookup[id]
	return has
}
