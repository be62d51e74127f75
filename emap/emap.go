// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emap

import (
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/fungiblevm/heap"
)

type bucket struct {
	t     int64 // expiry shared by every id in the bucket
	items []ids.ID
}

// Item is anything with an id and an expiry.
type Item interface {
	ID() ids.ID
	Expiry() int64
}

// EMap remembers which items it has seen until their expiry passes. Items
// sharing an expiry share a bucket, so eviction stays cheap no matter how
// large the tracked set grows.
type EMap[T Item] struct {
	mu sync.RWMutex

	bh    *heap.Heap[*bucket, int64]
	seen  set.Set[ids.ID]
	times map[int64]*bucket // expiry -> bucket
}

func NewEMap[T Item]() *EMap[T] {
	return &EMap[T]{
		seen:  set.Set[ids.ID]{},
		times: make(map[int64]*bucket),
		bh:    heap.New[*bucket, int64](120, true),
	}
}

// Add marks [items] as seen.
func (e *EMap[T]) Add(items []T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, item := range items {
		e.add(item.ID(), item.Expiry())
	}
}

func (e *EMap[T]) add(id ids.ID, t int64) {
	// Items with no expiry would never be evicted, so they are not tracked.
	if t == 0 {
		return
	}

	if e.seen.Contains(id) {
		return
	}
	e.seen.Add(id)

	if b, ok := e.times[t]; ok {
		b.items = append(b.items, id)
		return
	}

	b := &bucket{
		t:     t,
		items: []ids.ID{id},
	}
	e.times[t] = b
	e.bh.Push(&heap.Entry[*bucket, int64]{
		ID:    id,
		Val:   t,
		Item:  b,
		Index: e.bh.Len(),
	})
}

// SetMin evicts everything that expired before [t] and returns the evicted
// ids.
func (e *EMap[T]) SetMin(t int64) []ids.ID {
	e.mu.Lock()
	defer e.mu.Unlock()

	evicted := []ids.ID{}
	for {
		b := e.bh.First()
		if b == nil || b.Val >= t {
			break
		}
		e.bh.Pop()
		for _, id := range b.Item.items {
			e.seen.Remove(id)
			evicted = append(evicted, id)
		}
		delete(e.times, b.Val)
	}
	return evicted
}

// Any returns true if any of [items] is currently tracked.
func (e *EMap[T]) Any(items []T) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, item := range items {
		if e.seen.Contains(item.ID()) {
			return true
		}
	}
	return false
}
