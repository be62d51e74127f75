// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/state"
	"github.com/ava-labs/fungiblevm/utils"
)

// State layout:
// 0x0/ (balance)
//   -> [owner public key] => balance
// 0x1/ (accepted blocks)
//   -> [height] => block bytes
// 0x2/ (last accepted)
//   -> height|blockID
// 0x3/ (outbox)
//   -> [envelope ID] => delivered|envelope bytes
// 0x4/ (outbox nonce)
//   -> next envelope sequence number
// 0x5/ (tx results)
//   -> [tx ID] => timestamp|success
const (
	balancePrefix      = 0x0
	blockPrefix        = 0x1
	lastAcceptedPrefix = 0x2
	outboxPrefix       = 0x3
	outboxNoncePrefix  = 0x4
	txPrefix           = 0x5
)

// BalanceKey returns the state key holding [pk]'s balance.
func BalanceKey(pk ed25519.PublicKey) []byte {
	k := make([]byte, 1+ed25519.PublicKeyLen)
	k[0] = balancePrefix
	copy(k[1:], pk[:])
	return k
}

// GetBalance returns the stored balance of [pk]. A missing key means a zero
// balance, never an error.
func GetBalance(
	ctx context.Context,
	im state.Immutable,
	pk ed25519.PublicKey,
) (uint64, error) {
	bal, _, err := getBalance(ctx, im, pk)
	return bal, err
}

func getBalance(
	ctx context.Context,
	im state.Immutable,
	pk ed25519.PublicKey,
) (uint64, bool, error) {
	v, err := im.GetValue(ctx, BalanceKey(pk))
	return innerGetBalance(v, err)
}

func innerGetBalance(v []byte, err error) (uint64, bool, error) {
	if errors.Is(err, database.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if len(v) != consts.Uint64Len {
		return 0, false, ErrInvalidBalance
	}
	return binary.BigEndian.Uint64(v), true, nil
}

// SetBalance overwrites [pk]'s balance with [balance]. Used by genesis
// initialization; steady-state mutation goes through AddBalance/SubBalance.
func SetBalance(
	ctx context.Context,
	mu state.Mutable,
	pk ed25519.PublicKey,
	balance uint64,
) error {
	v := make([]byte, consts.Uint64Len)
	binary.BigEndian.PutUint64(v, balance)
	return mu.Insert(ctx, BalanceKey(pk), v)
}

// AddBalance credits [amount] to [pk], saturating at consts.MaxBalance.
// Only a storage fault can surface an error.
func AddBalance(
	ctx context.Context,
	mu state.Mutable,
	pk ed25519.PublicKey,
	amount uint64,
) error {
	bal, _, err := getBalance(ctx, mu, pk)
	if err != nil {
		return err
	}
	nbal, err := smath.Add(bal, amount)
	if err != nil {
		// saturate at MaxBalance
		nbal = consts.MaxBalance
	}
	return SetBalance(ctx, mu, pk, nbal)
}

// SubBalance debits [amount] from [pk]. On ErrInsufficientBalance the stored
// balance is left exactly as it was.
func SubBalance(
	ctx context.Context,
	mu state.Mutable,
	pk ed25519.PublicKey,
	amount uint64,
) error {
	bal, _, err := getBalance(ctx, mu, pk)
	if err != nil {
		return err
	}
	nbal, err := smath.Sub(bal, amount)
	if err != nil {
		return fmt.Errorf(
			"%w: address=%s balance=%d amount=%d",
			ErrInsufficientBalance,
			utils.Address(pk),
			bal,
			amount,
		)
	}
	if nbal == 0 {
		// Zero balances are stored as absent keys.
		return mu.Remove(ctx, BalanceKey(pk))
	}
	return SetBalance(ctx, mu, pk, nbal)
}
