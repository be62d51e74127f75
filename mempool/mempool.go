// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import (
	"container/heap"
	"context"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/fungiblevm/chain"
)

const maxPrealloc = 4_096

// Mempool holds submitted transactions until they are built into a block.
// Transactions pop in expiry order, soonest first, so nothing lingers past
// its validity window.
type Mempool struct {
	tracer trace.Tracer

	mu sync.RWMutex

	maxSize      int
	maxPayerSize int // maximum txs allowed from a single payer

	eh *expiryHeap

	// [owned] tracks which txs belong to which payer so a single account
	// cannot crowd out everyone else.
	owned map[string]set.Set[ids.ID]
}

// New creates a new [Mempool]. [maxSize] must be > 0 or else the
// implementation may panic.
func New(tracer trace.Tracer, maxSize int, maxPayerSize int) *Mempool {
	return &Mempool{
		tracer: tracer,

		maxSize:      maxSize,
		maxPayerSize: maxPayerSize,

		eh:    newExpiryHeap(min(maxSize, maxPrealloc)),
		owned: map[string]set.Set[ids.ID]{},
	}
}

func (th *Mempool) removeFromOwned(entry *txEntry) {
	sender := entry.tx.Payer()
	acct, ok := th.owned[sender]
	if !ok {
		// May no longer be populated
		return
	}
	acct.Remove(entry.id)
	if len(acct) == 0 {
		delete(th.owned, sender)
	}
}

// Add pushes all new txs from [txs] into th. A tx is not added if it is
// already present, if its payer is at [maxPayerSize], or if th is full.
func (th *Mempool) Add(ctx context.Context, txs []*chain.Transaction) {
	_, span := th.tracer.Start(ctx, "Mempool.Add")
	defer span.End()

	th.mu.Lock()
	defer th.mu.Unlock()

	for _, tx := range txs {
		txID := tx.ID()
		if th.eh.HasID(txID) {
			continue
		}
		if th.eh.Len() >= th.maxSize {
			continue // wait for txs to be built or expire
		}
		sender := tx.Payer()
		acct, ok := th.owned[sender]
		if !ok {
			acct = set.Set[ids.ID]{}
			th.owned[sender] = acct
		}
		if acct.Len() == th.maxPayerSize {
			continue
		}
		heap.Push(th.eh, &txEntry{
			id:     txID,
			tx:     tx,
			expiry: tx.Expiry(),
			index:  th.eh.Len(),
		})
		acct.Add(txID)
	}
}

// Has returns if th contains [txID].
func (th *Mempool) Has(ctx context.Context, txID ids.ID) bool {
	_, span := th.tracer.Start(ctx, "Mempool.Has")
	defer span.End()

	th.mu.RLock()
	defer th.mu.RUnlock()

	return th.eh.HasID(txID)
}

// Len returns the number of txs in th.
func (th *Mempool) Len(ctx context.Context) int {
	_, span := th.tracer.Start(ctx, "Mempool.Len")
	defer span.End()

	th.mu.RLock()
	defer th.mu.RUnlock()

	return th.eh.Len()
}

// Build removes and returns up to [max] txs from th in expiry order.
func (th *Mempool) Build(ctx context.Context, max int) []*chain.Transaction {
	_, span := th.tracer.Start(ctx, "Mempool.Build")
	defer span.End()

	th.mu.Lock()
	defer th.mu.Unlock()

	txs := make([]*chain.Transaction, 0, min(max, th.eh.Len()))
	for th.eh.Len() > 0 && len(txs) < max {
		entry, ok := heap.Pop(th.eh).(*txEntry)
		if !ok {
			break
		}
		th.removeFromOwned(entry)
		txs = append(txs, entry.tx)
	}
	return txs
}

// SetMinTimestamp removes all txs that expire before [t] from th and returns
// them.
func (th *Mempool) SetMinTimestamp(ctx context.Context, t int64) []*chain.Transaction {
	_, span := th.tracer.Start(ctx, "Mempool.SetMinTimestamp")
	defer span.End()

	th.mu.Lock()
	defer th.mu.Unlock()

	var removed []*chain.Transaction
	for th.eh.Len() > 0 {
		if th.eh.items[0].expiry >= t {
			break
		}
		entry, ok := heap.Pop(th.eh).(*txEntry)
		if !ok {
			break
		}
		th.removeFromOwned(entry)
		removed = append(removed, entry.tx)
	}
	return removed
}
