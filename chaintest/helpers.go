// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/genesis"
	"github.com/ava-labs/fungiblevm/registry"
	"github.com/ava-labs/fungiblevm/state"
)

var _ state.Mutable = (*InMemoryStore)(nil)

// InMemoryStore is an in-memory implementation of `state.Mutable`
type InMemoryStore struct {
	Storage map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		Storage: make(map[string][]byte),
	}
}

func (i *InMemoryStore) GetValue(_ context.Context, key []byte) ([]byte, error) {
	val, ok := i.Storage[string(key)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return val, nil
}

func (i *InMemoryStore) Insert(_ context.Context, key []byte, value []byte) error {
	i.Storage[string(key)] = value
	return nil
}

func (i *InMemoryStore) Remove(_ context.Context, key []byte) error {
	delete(i.Storage, string(key))
	return nil
}

var _ chain.Parser = (*Parser)(nil)

// Parser is a chain.Parser over the production registries.
type Parser struct {
	networkID uint32
	chainID   ids.ID
	genesis   *genesis.Genesis
}

func NewParser(networkID uint32, chainID ids.ID, g *genesis.Genesis) *Parser {
	return &Parser{networkID, chainID, g}
}

func (p *Parser) ChainID() ids.ID {
	return p.chainID
}

func (p *Parser) Rules(int64) chain.Rules {
	return p.genesis.Rules(p.networkID, p.chainID)
}

func (*Parser) Registry() (chain.OperationRegistry, chain.AuthRegistry, chain.MessageRegistry) {
	return registry.Operation, registry.Auth, registry.Message
}

// OperationTest is a single parameterized test. It calls Execute on the
// operation with the passed parameters and checks that all assertions pass.
type OperationTest struct {
	Name string

	Operation chain.Operation

	ChainID ids.ID
	State   state.Mutable
	Signer  *ed25519.PublicKey
	TxID    ids.ID

	ExpectedResult *chain.Result
	ExpectedErr    error

	Assertion func(context.Context, *testing.T, state.Mutable)
}

// Run executes the [OperationTest] and makes sure all assertions pass.
func (test *OperationTest) Run(ctx context.Context, t *testing.T) {
	t.Run(test.Name, func(t *testing.T) {
		require := require.New(t)

		result, err := test.Operation.Execute(ctx, test.ChainID, test.State, test.Signer, test.TxID)

		require.ErrorIs(err, test.ExpectedErr)
		if test.ExpectedErr == nil {
			require.Equal(test.ExpectedResult.Success, result.Success)
			require.Equal(test.ExpectedResult.Error, result.Error)
			if test.ExpectedResult.Outgoing != nil {
				require.NotNil(result.Outgoing)
				require.Equal(test.ExpectedResult.Outgoing.Destination, result.Outgoing.Destination)
				require.Equal(test.ExpectedResult.Outgoing.Payload, result.Outgoing.Payload)
			} else {
				require.Nil(result.Outgoing)
			}
		}

		if test.Assertion != nil {
			test.Assertion(ctx, t, test.State)
		}
	})
}
