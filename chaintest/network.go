// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"context"
	"errors"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/relay"
	"github.com/ava-labs/fungiblevm/vm"
)

// settleRounds bounds Settle. Every round either accepts a block or drains an
// envelope, so a healthy network settles in a handful of passes.
const settleRounds = 16

var ErrDidNotSettle = errors.New("network did not settle")

// Network is an in-process group of chains joined by a relayer. Blocks are
// built explicitly and envelopes move only on demand, which keeps multi-chain
// tests deterministic.
type Network struct {
	networkID uint32
	relayer   *relay.Relayer
	chains    map[ids.ID]*vm.VM
}

func NewNetwork(log logging.Logger, networkID uint32) *Network {
	return &Network{
		networkID: networkID,
		// the interval is irrelevant here: envelopes move via Flush, not Run
		relayer: relay.New(log, memdb.New(), time.Hour),
		chains:  make(map[ids.ID]*vm.VM),
	}
}

// AddChain starts a chain over a fresh in-memory database and registers it
// with the relayer.
func (n *Network) AddChain(
	ctx context.Context,
	genesisBytes []byte,
	creator *ed25519.PublicKey,
) (*vm.VM, error) {
	chainID := ids.GenerateTestID()
	v, err := vm.New(
		ctx,
		logging.NoLog{},
		trace.Noop,
		memdb.New(),
		genesisBytes,
		creator,
		n.networkID,
		chainID,
		nil,
	)
	if err != nil {
		return nil, err
	}
	if err := n.relayer.Register(v); err != nil {
		return nil, err
	}
	n.chains[chainID] = v
	return v, nil
}

func (n *Network) Chain(chainID ids.ID) *vm.VM {
	return n.chains[chainID]
}

func (n *Network) Relayer() *relay.Relayer {
	return n.relayer
}

// FlushEnvelopes performs one relay pass over every chain.
func (n *Network) FlushEnvelopes(ctx context.Context) error {
	return n.relayer.Flush(ctx)
}

// BuildAll builds a block on every chain that has pending work. It reports
// whether any chain accepted a block.
func (n *Network) BuildAll(ctx context.Context) (bool, error) {
	built := false
	for _, v := range n.chains {
		_, err := v.BuildBlock(ctx)
		switch {
		case err == nil:
			built = true
		case errors.Is(err, vm.ErrNoPendingWork):
		default:
			return built, err
		}
	}
	return built, nil
}

// Settle alternates building and relaying until every mempool, inbox, and
// outbox is drained.
func (n *Network) Settle(ctx context.Context) error {
	for i := 0; i < settleRounds; i++ {
		built, err := n.BuildAll(ctx)
		if err != nil {
			return err
		}
		pending := 0
		for _, v := range n.chains {
			envelopes, err := v.PendingEnvelopes(ctx)
			if err != nil {
				return err
			}
			pending += len(envelopes)
		}
		if !built && pending == 0 {
			return nil
		}
		if err := n.FlushEnvelopes(ctx); err != nil {
			return err
		}
	}
	return ErrDidNotSettle
}

func (n *Network) Shutdown(ctx context.Context) error {
	for _, v := range n.chains {
		if err := v.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}
