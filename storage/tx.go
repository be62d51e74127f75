// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/state"
)

func TxKey(id ids.ID) []byte {
	k := make([]byte, 1+consts.IDLen)
	k[0] = txPrefix
	copy(k[1:], id[:])
	return k
}

// SetTransaction records the execution outcome of [id] so clients can poll
// for it.
func SetTransaction(
	ctx context.Context,
	mu state.Mutable,
	id ids.ID,
	t int64,
	success bool,
) error {
	v := make([]byte, consts.Int64Len+consts.BoolLen)
	binary.BigEndian.PutUint64(v, uint64(t))
	if success {
		v[consts.Int64Len] = successByte
	} else {
		v[consts.Int64Len] = failureByte
	}
	return mu.Insert(ctx, TxKey(id), v)
}

// GetTransaction returns whether [id] executed, the block timestamp it
// executed at, and whether it succeeded.
func GetTransaction(
	ctx context.Context,
	im state.Immutable,
	id ids.ID,
) (bool, int64, bool, error) {
	v, err := im.GetValue(ctx, TxKey(id))
	if errors.Is(err, database.ErrNotFound) {
		return false, 0, false, nil
	}
	if err != nil {
		return false, 0, false, err
	}
	if len(v) != consts.Int64Len+consts.BoolLen {
		return false, 0, false, ErrInvalidTransaction
	}
	t := int64(binary.BigEndian.Uint64(v))
	return true, t, v[consts.Int64Len] == successByte, nil
}

const (
	failureByte = 0x0
	successByte = 0x1
)
