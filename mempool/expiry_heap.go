// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/chain"
)

type txEntry struct {
	id     ids.ID
	tx     *chain.Transaction
	expiry int64

	index int
}

// expiryHeap tracks pending transactions ordered by expiry, soonest first.
type expiryHeap struct {
	items  []*txEntry
	lookup map[ids.ID]*txEntry
}

func newExpiryHeap(items int) *expiryHeap {
	return &expiryHeap{
		items:  make([]*txEntry, 0, items),
		lookup: make(map[ids.ID]*txEntry, items),
	}
}

func (th expiryHeap) Len() int { return len(th.items) }

func (th expiryHeap) Less(i, j int) bool {
	return th.items[i].expiry < th.items[j].expiry
}

func (th expiryHeap) Swap(i, j int) {
	th.items[i], th.items[j] = th.items[j], th.items[i]
	th.items[i].index = i
	th.items[j].index = j
}

func (th *expiryHeap) Push(x interface{}) {
	entry, ok := x.(*txEntry)
	if !ok {
		panic(fmt.Errorf("unexpected %T, expected *txEntry", x))
	}
	if th.HasID(entry.id) {
		return
	}
	th.items = append(th.items, entry)
	th.lookup[entry.id] = entry
}

func (th *expiryHeap) Pop() interface{} {
	n := len(th.items)
	item := th.items[n-1]
	th.items[n-1] = nil // avoid memory leak
	th.items = th.items[0 : n-1]
	delete(th.lookup, item.id)
	return item
}

func (th *expiryHeap) GetID(id ids.ID) (*txEntry, bool) {
	entry, ok := th.lookup[id]
	return entry, ok
}

func (th *expiryHeap) HasID(id ids.ID) bool {
	_, has := th.GetID(id)
	return has
}
