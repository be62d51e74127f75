// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain_test

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/chaintest"
	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/registry"
	"github.com/ava-labs/fungiblevm/storage"
)

func TestCreditExecute(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	key, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	owner := key.PublicKey()

	store := chaintest.NewInMemoryStore()

	// crediting an absent account creates it
	require.NoError((&chain.Credit{Owner: owner, Amount: 10}).Execute(ctx, store))
	balance, err := storage.GetBalance(ctx, store, owner)
	require.NoError(err)
	require.Equal(uint64(10), balance)

	// credits accumulate
	require.NoError((&chain.Credit{Owner: owner, Amount: 5}).Execute(ctx, store))
	balance, err = storage.GetBalance(ctx, store, owner)
	require.NoError(err)
	require.Equal(uint64(15), balance)

	// a credit that would overflow saturates instead of failing
	require.NoError((&chain.Credit{Owner: owner, Amount: consts.MaxBalance}).Execute(ctx, store))
	balance, err = storage.GetBalance(ctx, store, owner)
	require.NoError(err)
	require.Equal(consts.MaxBalance, balance)
}

func TestCreditRoundTrip(t *testing.T) {
	require := require.New(t)

	key, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	credit := &chain.Credit{Owner: key.PublicKey(), Amount: 123_456}

	payload, err := chain.MarshalMessage(credit)
	require.NoError(err)

	env := chain.NewEnvelope(ids.GenerateTestID(), payload)
	env.Source = ids.GenerateTestID()
	env.Nonce = 7
	require.NoError(env.Init())

	decoded, err := env.Message(registry.Message)
	require.NoError(err)
	require.Equal(credit, decoded)
}

func TestCreditBorshEncoding(t *testing.T) {
	require := require.New(t)

	// borsh: 32 owner bytes then a little-endian uint64
	owner := ed25519.PublicKey{}
	owner[0] = 0xAB
	credit := &chain.Credit{Owner: owner, Amount: 0x0102030405060708}

	body, err := credit.Marshal()
	require.NoError(err)
	require.Len(body, ed25519.PublicKeyLen+consts.Uint64Len)
	require.Equal(byte(0xAB), body[0])
	require.Equal(
		[]byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01},
		body[ed25519.PublicKeyLen:],
	)
}
