// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/state"
)

func newTestState(t *testing.T) (state.Mutable, ed25519.PublicKey) {
	t.Helper()
	require := require.New(t)
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	return state.FromDatabase(memdb.New()), priv.PublicKey()
}

func TestGetBalanceMissing(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu, pk := newTestState(t)

	bal, err := GetBalance(ctx, mu, pk)
	require.NoError(err)
	require.Zero(bal)
}

func TestAddSubBalance(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu, pk := newTestState(t)

	require.NoError(AddBalance(ctx, mu, pk, 100))
	bal, err := GetBalance(ctx, mu, pk)
	require.NoError(err)
	require.Equal(uint64(100), bal)

	require.NoError(SubBalance(ctx, mu, pk, 40))
	bal, err = GetBalance(ctx, mu, pk)
	require.NoError(err)
	require.Equal(uint64(60), bal)
}

func TestAddBalanceSaturates(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu, pk := newTestState(t)

	require.NoError(SetBalance(ctx, mu, pk, consts.MaxBalance-10))
	require.NoError(AddBalance(ctx, mu, pk, 100))

	bal, err := GetBalance(ctx, mu, pk)
	require.NoError(err)
	require.Equal(consts.MaxBalance, bal)
}

func TestSubBalanceInsufficient(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu, pk := newTestState(t)

	require.NoError(SetBalance(ctx, mu, pk, 100))
	err := SubBalance(ctx, mu, pk, 101)
	require.ErrorIs(err, ErrInsufficientBalance)

	// Failed debit leaves the balance untouched.
	bal, err := GetBalance(ctx, mu, pk)
	require.NoError(err)
	require.Equal(uint64(100), bal)
}

func TestSubBalanceToZeroDeletesKey(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu, pk := newTestState(t)

	require.NoError(SetBalance(ctx, mu, pk, 55))
	require.NoError(SubBalance(ctx, mu, pk, 55))

	_, exists, err := getBalance(ctx, mu, pk)
	require.NoError(err)
	require.False(exists)
}

func TestOutboxLifecycle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := memdb.New()
	mu := state.FromDatabase(db)

	id1 := ids.GenerateTestID()
	id2 := ids.GenerateTestID()
	require.NoError(SetOutgoingEnvelope(ctx, mu, id1, []byte("first")))
	require.NoError(SetOutgoingEnvelope(ctx, mu, id2, []byte("second")))

	pending, err := GetPendingEnvelopes(db)
	require.NoError(err)
	require.Len(pending, 2)

	require.NoError(MarkEnvelopeDelivered(ctx, mu, id1))
	raw, delivered, err := GetOutgoingEnvelope(ctx, mu, id1)
	require.NoError(err)
	require.True(delivered)
	require.Equal([]byte("first"), raw)

	pending, err = GetPendingEnvelopes(db)
	require.NoError(err)
	require.Len(pending, 1)
	require.Equal([]byte("second"), pending[0])
}

func TestOutboxNonce(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu, _ := newTestState(t)

	nonce, err := GetOutboxNonce(ctx, mu)
	require.NoError(err)
	require.Zero(nonce)

	require.NoError(SetOutboxNonce(ctx, mu, 7))
	nonce, err = GetOutboxNonce(ctx, mu)
	require.NoError(err)
	require.Equal(uint64(7), nonce)
}

func TestLastAccepted(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu, _ := newTestState(t)

	blkID := ids.GenerateTestID()
	require.NoError(SetLastAccepted(ctx, mu, 12, blkID))

	height, got, err := GetLastAccepted(ctx, mu)
	require.NoError(err)
	require.Equal(uint64(12), height)
	require.Equal(blkID, got)
}
