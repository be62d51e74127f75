// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/genesis"
)

type Controller interface {
	Logger() logging.Logger
	Tracer() trace.Tracer
	Genesis() *genesis.Genesis
	NetworkID() uint32
	ChainID() ids.ID
	Registry() (chain.OperationRegistry, chain.AuthRegistry, chain.MessageRegistry)

	Submit(ctx context.Context, tx *chain.Transaction) error
	LastAcceptedBlock() *chain.StatelessBlock
	Balance(ctx context.Context, owner ed25519.PublicKey) (uint64, error)
	GetTransaction(ctx context.Context, txID ids.ID) (bool, int64, bool, error)
	PendingEnvelopes(ctx context.Context) ([]*chain.Envelope, error)
	DeliverEnvelope(ctx context.Context, env *chain.Envelope) error
	MarkEnvelopeDelivered(ctx context.Context, envelopeID ids.ID) error
}
