// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/state"
)

func BlockKey(height uint64) []byte {
	k := make([]byte, 1+consts.Uint64Len)
	k[0] = blockPrefix
	binary.BigEndian.PutUint64(k[1:], height)
	return k
}

// SetBlock stores the marshaled block accepted at [height].
func SetBlock(ctx context.Context, mu state.Mutable, height uint64, blk []byte) error {
	return mu.Insert(ctx, BlockKey(height), blk)
}

// GetBlock returns the marshaled block accepted at [height].
func GetBlock(ctx context.Context, im state.Immutable, height uint64) ([]byte, error) {
	return im.GetValue(ctx, BlockKey(height))
}

// SetLastAccepted records the tip of the chain.
func SetLastAccepted(
	ctx context.Context,
	mu state.Mutable,
	height uint64,
	blkID ids.ID,
) error {
	v := make([]byte, consts.Uint64Len+consts.IDLen)
	binary.BigEndian.PutUint64(v, height)
	copy(v[consts.Uint64Len:], blkID[:])
	return mu.Insert(ctx, []byte{lastAcceptedPrefix}, v)
}

// GetLastAccepted returns the height and ID of the chain tip. A fresh chain
// returns database.ErrNotFound.
func GetLastAccepted(ctx context.Context, im state.Immutable) (uint64, ids.ID, error) {
	v, err := im.GetValue(ctx, []byte{lastAcceptedPrefix})
	if err != nil {
		return 0, ids.Empty, err
	}
	if len(v) != consts.Uint64Len+consts.IDLen {
		return 0, ids.Empty, ErrInvalidLastAccepted
	}
	height := binary.BigEndian.Uint64(v)
	var blkID ids.ID
	copy(blkID[:], v[consts.Uint64Len:])
	return height, blkID, nil
}
