// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package relay_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fungiblevm/auth"
	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/relay"
	"github.com/ava-labs/fungiblevm/vm"
)

var errSimulated = errors.New("simulated failure")

// flakyNode fails the first [failMarks] outbox acknowledgements.
type flakyNode struct {
	relay.Node

	failMarks int
	marks     int
}

func (n *flakyNode) MarkEnvelopeDelivered(ctx context.Context, envelopeID ids.ID) error {
	if n.marks < n.failMarks {
		n.marks++
		return errSimulated
	}
	return n.Node.MarkEnvelopeDelivered(ctx, envelopeID)
}

// countingNode counts inbox deliveries.
type countingNode struct {
	relay.Node

	deliveries int
}

func (n *countingNode) DeliverEnvelope(ctx context.Context, env *chain.Envelope) error {
	n.deliveries++
	return n.Node.DeliverEnvelope(ctx, env)
}

func newChain(t *testing.T, creator *ed25519.PublicKey) *vm.VM {
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
	return v
}

func sendAcross(t *testing.T, source *vm.VM, key ed25519.PrivateKey, amount uint64, to chain.Account) {
	require := require.New(t)
	ctx := context.Background()
	operationRegistry, authRegistry, _ := source.Registry()
	tx := chain.NewTx(
		&chain.Base{
			Timestamp: time.Now().UnixMilli() + 30_000,
			ChainID:   source.ChainID(),
		},
		&chain.Transfer{Owner: key.PublicKey(), Amount: amount, To: to},
	)
	signed, err := tx.Sign(auth.NewED25519Factory(key), operationRegistry, authRegistry)
	require.NoError(err)
	require.NoError(source.Submit(ctx, signed))
	_, err = source.BuildBlock(ctx)
	require.NoError(err)
}

func TestRelayerDeliversAcrossChains(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	key, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	owner := key.PublicKey()
	vmA := newChain(t, &owner)
	vmB := newChain(t, nil)
	defer func() {
		require.NoError(vmA.Shutdown(ctx))
		require.NoError(vmB.Shutdown(ctx))
	}()

	r := relay.New(logging.NoLog{}, memdb.New(), time.Second)
	require.NoError(r.Register(vmA))
	require.NoError(r.Register(vmB))

	sendAcross(t, vmA, key, 50_000, chain.Account{Chain: vmB.ChainID(), Owner: owner})
	require.NoError(r.Flush(ctx))

	pending, err := vmA.PendingEnvelopes(ctx)
	require.NoError(err)
	require.Empty(pending)

	_, err = vmB.BuildBlock(ctx)
	require.NoError(err)
	balance, err := vmB.Balance(ctx, owner)
	require.NoError(err)
	require.Equal(uint64(50_000), balance)
}

func TestRelayerExactlyOnce(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	key, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	owner := key.PublicKey()
	vmA := newChain(t, &owner)
	vmB := newChain(t, nil)
	defer func() {
		require.NoError(vmA.Shutdown(ctx))
		require.NoError(vmB.Shutdown(ctx))
	}()

	source := &flakyNode{Node: vmA, failMarks: 1}
	destination := &countingNode{Node: vmB}
	r := relay.New(logging.NoLog{}, memdb.New(), time.Second)
	require.NoError(r.Register(source))
	require.NoError(r.Register(destination))

	sendAcross(t, vmA, key, 50_000, chain.Account{Chain: vmB.ChainID(), Owner: owner})

	// First pass delivers but loses the acknowledgement.
	require.ErrorIs(r.Flush(ctx), errSimulated)
	require.Equal(1, destination.deliveries)
	pending, err := vmA.PendingEnvelopes(ctx)
	require.NoError(err)
	require.Len(pending, 1)

	// Second pass must only repeat the acknowledgement.
	require.NoError(r.Flush(ctx))
	require.Equal(1, destination.deliveries)
	pending, err = vmA.PendingEnvelopes(ctx)
	require.NoError(err)
	require.Empty(pending)

	_, err = vmB.BuildBlock(ctx)
	require.NoError(err)
	balance, err := vmB.Balance(ctx, owner)
	require.NoError(err)
	require.Equal(uint64(50_000), balance)
}

func TestRelayerUnknownDestination(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	key, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	owner := key.PublicKey()
	vmA := newChain(t, &owner)
	defer func() {
		require.NoError(vmA.Shutdown(ctx))
	}()

	r := relay.New(logging.NoLog{}, memdb.New(), time.Second)
	require.NoError(r.Register(vmA))

	sendAcross(t, vmA, key, 50_000, chain.Account{Chain: ids.GenerateTestID(), Owner: owner})
	require.NoError(r.Flush(ctx))

	// No route yet, so the envelope stays pending.
	pending, err := vmA.PendingEnvelopes(ctx)
	require.NoError(err)
	require.Len(pending, 1)
}

func TestRelayerDuplicateRegistration(t *testing.T) {
	require := require.New(t)

	vmA := newChain(t, nil)
	defer func() {
		require.NoError(vmA.Shutdown(context.Background()))
	}()

	r := relay.New(logging.NoLog{}, memdb.New(), time.Second)
	require.NoError(r.Register(vmA))
	require.ErrorIs(r.Register(vmA), relay.ErrDuplicateChain)
}

func TestRelayerRun(t *testing.T) {
	require := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	key, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	owner := key.PublicKey()
	vmA := newChain(t, &owner)
	vmB := newChain(t, nil)
	defer func() {
		require.NoError(vmA.Shutdown(context.Background()))
		require.NoError(vmB.Shutdown(context.Background()))
	}()

	r := relay.New(logging.NoLog{}, memdb.New(), 10*time.Millisecond)
	require.NoError(r.Register(vmA))
	require.NoError(r.Register(vmB))

	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx)
	}()

	sendAcross(t, vmA, key, 25_000, chain.Account{Chain: vmB.ChainID(), Owner: owner})
	require.Eventually(func() bool {
		pending, err := vmA.PendingEnvelopes(context.Background())
		return err == nil && len(pending) == 0
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(<-done, context.Canceled)
}
