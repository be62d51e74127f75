// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest_test

import (
	"context"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fungiblevm/auth"
	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/chaintest"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/vm"
)

const testSupply = 1_000_000

var testGenesis = []byte(`{"initialSupply":1000000}`)

func submitTransfer(t *testing.T, v *vm.VM, key ed25519.PrivateKey, amount uint64, to chain.Account) {
	require := require.New(t)
	operationRegistry, authRegistry, _ := v.Registry()
	tx := chain.NewTx(
		&chain.Base{
			Timestamp: time.Now().UnixMilli() + 30_000,
			ChainID:   v.ChainID(),
		},
		&chain.Transfer{Owner: key.PublicKey(), Amount: amount, To: to},
	)
	signed, err := tx.Sign(auth.NewED25519Factory(key), operationRegistry, authRegistry)
	require.NoError(err)
	require.NoError(v.Submit(context.Background(), signed))
}

func TestNetworkSettlesAcrossChains(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	key, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	owner := key.PublicKey()

	network := chaintest.NewNetwork(logging.NoLog{}, 1)
	chainA, err := network.AddChain(ctx, testGenesis, &owner)
	require.NoError(err)
	chainB, err := network.AddChain(ctx, testGenesis, nil)
	require.NoError(err)
	chainC, err := network.AddChain(ctx, testGenesis, nil)
	require.NoError(err)
	defer func() {
		require.NoError(network.Shutdown(ctx))
	}()

	submitTransfer(t, chainA, key, 40_000, chain.Account{Chain: chainB.ChainID(), Owner: owner})
	require.NoError(network.Settle(ctx))

	balance, err := chainB.Balance(ctx, owner)
	require.NoError(err)
	require.Equal(uint64(40_000), balance)

	// hop the funds onward
	submitTransfer(t, chainB, key, 15_000, chain.Account{Chain: chainC.ChainID(), Owner: owner})
	require.NoError(network.Settle(ctx))

	balanceA, err := chainA.Balance(ctx, owner)
	require.NoError(err)
	balanceB, err := chainB.Balance(ctx, owner)
	require.NoError(err)
	balanceC, err := chainC.Balance(ctx, owner)
	require.NoError(err)
	require.Equal(uint64(testSupply-40_000), balanceA)
	require.Equal(uint64(25_000), balanceB)
	require.Equal(uint64(15_000), balanceC)
	require.Equal(uint64(testSupply), balanceA+balanceB+balanceC)
}

func TestNetworkSettleIdle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	network := chaintest.NewNetwork(logging.NoLog{}, 1)
	_, err := network.AddChain(ctx, testGenesis, nil)
	require.NoError(err)
	defer func() {
		require.NoError(network.Shutdown(ctx))
	}()

	// nothing to do settles immediately
	require.NoError(network.Settle(ctx))
}
