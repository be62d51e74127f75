// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/codec"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/state"
)

type (
	OperationRegistry = *codec.TypeParser[Operation]
	AuthRegistry      = *codec.TypeParser[Auth]
	MessageRegistry   = *codec.TypeParser[Message]
)

// Parser provides everything needed to decode and validate wire objects for
// one chain.
type Parser interface {
	ChainID() ids.ID
	Rules(t int64) Rules
	Registry() (OperationRegistry, AuthRegistry, MessageRegistry)
}

type Rules interface {
	NetworkID() uint32
	ChainID() ids.ID

	// GetValidityWindow is the amount of time (in milliseconds) a
	// transaction timestamp may deviate from the executing block's.
	GetValidityWindow() int64
}

// Operation is a user-submitted state transition. Operations are carried
// inside signed transactions and form a closed set registered in an
// [OperationRegistry].
type Operation interface {
	GetTypeID() uint8

	// Size is the number of bytes [Marshal] writes.
	Size() int
	Marshal(p *codec.Packer)

	// Execute applies the operation to [mu]. [signer] is nil when the
	// surrounding unit of work carries no verified signature. Domain
	// failures are reported inside the Result; an error return is reserved
	// for storage faults and aborts the surrounding block.
	Execute(
		ctx context.Context,
		chainID ids.ID,
		mu state.Mutable,
		signer *ed25519.PublicKey,
		txID ids.ID,
	) (*Result, error)
}

// Message is a chain-to-chain state transition carried in an [Envelope].
// Unlike operations, messages carry no authentication: the transport
// vouches for them.
type Message interface {
	GetTypeID() uint8

	// Marshal returns the canonical body encoding of the message, not
	// including its type prefix.
	Marshal() ([]byte, error)

	// Execute applies the message to [mu]. It has no rejection path; only
	// storage faults surface as errors.
	Execute(ctx context.Context, mu state.Mutable) error
}

// Auth proves who authorized a transaction.
type Auth interface {
	GetTypeID() uint8

	Size() int
	Marshal(p *codec.Packer)

	// Verify checks the carried signature over [msg].
	Verify(msg []byte) error

	// Actor is the key whose authority this auth asserts.
	Actor() ed25519.PublicKey
}

type AuthFactory interface {
	Sign(msg []byte) (Auth, error)
}
