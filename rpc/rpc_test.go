// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fungiblevm/auth"
	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/pubsub"
	"github.com/ava-labs/fungiblevm/rpc"
	"github.com/ava-labs/fungiblevm/utils"
	"github.com/ava-labs/fungiblevm/vm"
)

var _ rpc.Controller = (*vm.VM)(nil)

type testNode struct {
	vm  *vm.VM
	ts  *httptest.Server
	cli *rpc.JSONRPCClient
}

func newTestNode(t *testing.T, creator *ed25519.PublicKey) *testNode {
	require := require.New(t)

	v, err := vm.New(
		context.Background(),
		logging.NoLog{},
		trace.Noop,
		memdb.New(),
		[]byte(`{"initialSupply":1000000}`),
		creator,
		1,
		ids.GenerateTestID(),
		nil,
	)
	require.NoError(err)

	handler, err := rpc.NewJSONRPCHandler(consts.Name, rpc.NewJSONRPCServer(v))
	require.NoError(err)
	webSocketServer, pubsubServer := rpc.NewWebSocketServer(v, pubsub.MaxPendingMessages)
	v.AddAcceptedSubscriber(webSocketServer)

	mux := http.NewServeMux()
	mux.Handle(rpc.JSONRPCEndpoint, handler)
	mux.Handle(rpc.WebSocketEndpoint, pubsubServer)
	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		ts.Close()
		require.NoError(v.Shutdown(context.Background()))
	})

	return &testNode{vm: v, ts: ts, cli: rpc.NewJSONRPCClient(ts.URL)}
}

func TestJSONRPCEndpoints(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	key, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	creator := key.PublicKey()
	node := newTestNode(t, &creator)

	ok, err := node.cli.Ping(ctx)
	require.NoError(err)
	require.True(ok)

	networkID, chainID, err := node.cli.Network(ctx)
	require.NoError(err)
	require.Equal(uint32(1), networkID)
	require.Equal(node.vm.ChainID(), chainID)

	g, err := node.cli.Genesis(ctx)
	require.NoError(err)
	require.Equal(uint64(1_000_000), g.InitialSupply)

	blockID, height, _, err := node.cli.LastAccepted(ctx)
	require.NoError(err)
	require.Equal(node.vm.LastAcceptedBlock().ID(), blockID)
	require.Zero(height)

	balance, err := node.cli.Balance(ctx, utils.Address(creator))
	require.NoError(err)
	require.Equal(uint64(1_000_000), balance)

	found, _, _, err := node.cli.Tx(ctx, ids.GenerateTestID())
	require.NoError(err)
	require.False(found)
}

func TestSubmitTransaction(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	key, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	creator := key.PublicKey()
	otherKey, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	other := otherKey.PublicKey()
	node := newTestNode(t, &creator)

	parser, err := node.cli.Parser(ctx)
	require.NoError(err)
	submit, tx, err := node.cli.GenerateTransaction(
		parser,
		&chain.Transfer{
			Owner:  creator,
			Amount: 40_000,
			To:     chain.Account{Chain: node.vm.ChainID(), Owner: other},
		},
		auth.NewED25519Factory(key),
	)
	require.NoError(err)
	require.NoError(submit(ctx))

	_, err = node.vm.BuildBlock(ctx)
	require.NoError(err)

	success, err := node.cli.WaitForTransaction(ctx, tx.ID())
	require.NoError(err)
	require.True(success)

	balance, err := node.cli.Balance(ctx, utils.Address(other))
	require.NoError(err)
	require.Equal(uint64(40_000), balance)
}

func TestEnvelopeEndpoints(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	key, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	creator := key.PublicKey()
	source := newTestNode(t, &creator)
	destination := newTestNode(t, nil)

	parser, err := source.cli.Parser(ctx)
	require.NoError(err)
	submit, _, err := source.cli.GenerateTransaction(
		parser,
		&chain.Transfer{
			Owner:  creator,
			Amount: 30_000,
			To:     chain.Account{Chain: destination.vm.ChainID(), Owner: creator},
		},
		auth.NewED25519Factory(key),
	)
	require.NoError(err)
	require.NoError(submit(ctx))
	_, err = source.vm.BuildBlock(ctx)
	require.NoError(err)

	pending, err := source.cli.PendingEnvelopes(ctx)
	require.NoError(err)
	require.Len(pending, 1)
	env := pending[0]

	require.NoError(destination.cli.DeliverEnvelope(ctx, env))
	_, err = destination.vm.BuildBlock(ctx)
	require.NoError(err)
	balance, err := destination.cli.Balance(ctx, utils.Address(creator))
	require.NoError(err)
	require.Equal(uint64(30_000), balance)

	require.NoError(source.cli.MarkEnvelopeDelivered(ctx, env.ID()))
	pending, err = source.cli.PendingEnvelopes(ctx)
	require.NoError(err)
	require.Empty(pending)
}

func TestWebSocketBlockStream(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	key, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	creator := key.PublicKey()
	node := newTestNode(t, &creator)

	wsCli, err := rpc.NewWebSocketClient(node.ts.URL, pubsub.MaxPendingMessages)
	require.NoError(err)
	defer wsCli.Close()
	require.NoError(wsCli.RegisterBlocks())
	// wait for the subscription to land before accepting a block
	time.Sleep(500 * time.Millisecond)

	parser, err := node.cli.Parser(ctx)
	require.NoError(err)
	submit, tx, err := node.cli.GenerateTransaction(
		parser,
		&chain.Transfer{
			Owner:  creator,
			Amount: 10_000,
			To:     chain.Account{Chain: node.vm.ChainID(), Owner: creator},
		},
		auth.NewED25519Factory(key),
	)
	require.NoError(err)
	require.NoError(submit(ctx))
	_, err = node.vm.BuildBlock(ctx)
	require.NoError(err)

	lctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	blk, results, err := wsCli.ListenBlock(lctx, parser)
	require.NoError(err)
	require.Equal(uint64(1), blk.Hght)
	require.Len(blk.Txs, 1)
	require.Equal(tx.ID(), blk.Txs[0].ID())
	require.Len(results, 1)
	require.True(results[0].Success)
}

func TestWebSocketIssueTx(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	key, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	creator := key.PublicKey()
	node := newTestNode(t, &creator)

	wsCli, err := rpc.NewWebSocketClient(node.ts.URL, pubsub.MaxPendingMessages)
	require.NoError(err)
	defer wsCli.Close()

	parser, err := node.cli.Parser(ctx)
	require.NoError(err)
	_, tx, err := node.cli.GenerateTransaction(
		parser,
		&chain.Transfer{
			Owner:  creator,
			Amount: 5_000,
			To:     chain.Account{Chain: node.vm.ChainID(), Owner: creator},
		},
		auth.NewED25519Factory(key),
	)
	require.NoError(err)
	require.NoError(wsCli.IssueTx(tx))

	// the tx lands in the mempool asynchronously
	require.Eventually(func() bool {
		_, err := node.vm.BuildBlock(ctx)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	lctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	txID, txErr, result, err := wsCli.ListenTx(lctx)
	require.NoError(err)
	require.NoError(txErr)
	require.Equal(tx.ID(), txID)
	require.True(result.Success)
}
