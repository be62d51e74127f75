// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package heap

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

func TestMinHeapOrdering(t *testing.T) {
	require := require.New(t)

	h := New[string, uint64](3, true)
	vals := []uint64{30, 10, 20}
	for _, val := range vals {
		h.Push(&Entry[string, uint64]{
			ID:    ids.GenerateTestID(),
			Item:  "item",
			Val:   val,
			Index: h.Len(),
		})
	}
	require.Equal(3, h.Len())
	require.Equal(uint64(10), h.First().Val)
	require.Equal(uint64(10), h.Pop().Val)
	require.Equal(uint64(20), h.Pop().Val)
	require.Equal(uint64(30), h.Pop().Val)
	require.Nil(h.Pop())
	require.Nil(h.First())
}

func TestMaxHeapOrdering(t *testing.T) {
	require := require.New(t)

	h := New[string, uint64](3, false)
	vals := []uint64{30, 10, 20}
	for _, val := range vals {
		h.Push(&Entry[string, uint64]{
			ID:    ids.GenerateTestID(),
			Item:  "item",
			Val:   val,
			Index: h.Len(),
		})
	}
	require.Equal(uint64(30), h.Pop().Val)
	require.Equal(uint64(20), h.Pop().Val)
	require.Equal(uint64(10), h.Pop().Val)
}

func TestHeapDuplicateID(t *testing.T) {
	require := require.New(t)

	h := New[string, uint64](2, true)
	id := ids.GenerateTestID()
	h.Push(&Entry[string, uint64]{ID: id, Item: "a", Val: 1, Index: h.Len()})
	h.Push(&Entry[string, uint64]{ID: id, Item: "b", Val: 2, Index: h.Len()})
	require.Equal(1, h.Len())
	entry, ok := h.Get(id)
	require.True(ok)
	require.Equal("a", entry.Item)
}

func TestHeapGetHasRemove(t *testing.T) {
	require := require.New(t)

	h := New[string, uint64](2, true)
	id := ids.GenerateTestID()
	h.Push(&Entry[string, uint64]{ID: id, Item: "a", Val: 5, Index: h.Len()})
	other := ids.GenerateTestID()
	h.Push(&Entry[string, uint64]{ID: other, Item: "b", Val: 3, Index: h.Len()})

	require.True(h.Has(id))
	entry, ok := h.Get(id)
	require.True(ok)
	require.Equal(uint64(5), entry.Val)

	removed := h.Remove(entry.Index)
	require.Equal(id, removed.ID)
	require.False(h.Has(id))
	require.Equal(1, h.Len())
	require.Nil(h.Remove(10))
}
