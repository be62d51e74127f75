// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/genesis"
	"github.com/ava-labs/fungiblevm/registry"
	"github.com/ava-labs/fungiblevm/requester"
	"github.com/ava-labs/fungiblevm/utils"
)

const waitSleep = 500 * time.Millisecond

type JSONRPCClient struct {
	requester *requester.EndpointRequester

	networkID uint32
	chainID   ids.ID
	g         *genesis.Genesis
}

// NewJSONRPCClient creates a new client object.
func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += JSONRPCEndpoint
	req := requester.New(uri, consts.Name)
	return &JSONRPCClient{requester: req}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

func (cli *JSONRPCClient) Network(ctx context.Context) (uint32, ids.ID, error) {
	if cli.chainID != ids.Empty {
		return cli.networkID, cli.chainID, nil
	}

	resp := new(NetworkReply)
	err := cli.requester.SendRequest(
		ctx,
		"network",
		nil,
		resp,
	)
	if err != nil {
		return 0, ids.Empty, err
	}
	cli.networkID = resp.NetworkID
	cli.chainID = resp.ChainID
	return resp.NetworkID, resp.ChainID, nil
}

func (cli *JSONRPCClient) Genesis(ctx context.Context) (*genesis.Genesis, error) {
	if cli.g != nil {
		return cli.g, nil
	}

	resp := new(GenesisReply)
	err := cli.requester.SendRequest(
		ctx,
		"genesis",
		nil,
		resp,
	)
	if err != nil {
		return nil, err
	}
	cli.g = resp.Genesis
	return resp.Genesis, nil
}

func (cli *JSONRPCClient) SubmitTx(ctx context.Context, d []byte) (ids.ID, error) {
	resp := new(SubmitTxReply)
	err := cli.requester.SendRequest(
		ctx,
		"submitTx",
		&SubmitTxArgs{Tx: d},
		resp,
	)
	return resp.TxID, err
}

func (cli *JSONRPCClient) LastAccepted(ctx context.Context) (ids.ID, uint64, int64, error) {
	resp := new(LastAcceptedReply)
	err := cli.requester.SendRequest(
		ctx,
		"lastAccepted",
		nil,
		resp,
	)
	return resp.BlockID, resp.Height, resp.Timestamp, err
}

func (cli *JSONRPCClient) Balance(ctx context.Context, addr string) (uint64, error) {
	resp := new(BalanceReply)
	err := cli.requester.SendRequest(
		ctx,
		"balance",
		&BalanceArgs{
			Address: addr,
		},
		resp,
	)
	return resp.Amount, err
}

func (cli *JSONRPCClient) Tx(ctx context.Context, id ids.ID) (bool, bool, int64, error) {
	resp := new(TxReply)
	err := cli.requester.SendRequest(
		ctx,
		"tx",
		&TxArgs{TxID: id},
		resp,
	)
	switch {
	// We use string parsing here because the JSON-RPC library we use may not
	// allows us to perform errors.Is.
	case err != nil && strings.Contains(err.Error(), ErrTxNotFound.Error()):
		return false, false, -1, nil
	case err != nil:
		return false, false, -1, err
	}
	return true, resp.Success, resp.Timestamp, nil
}

func (cli *JSONRPCClient) PendingEnvelopes(ctx context.Context) ([]*chain.Envelope, error) {
	resp := new(PendingEnvelopesReply)
	err := cli.requester.SendRequest(
		ctx,
		"pendingEnvelopes",
		nil,
		resp,
	)
	if err != nil {
		return nil, err
	}
	envelopes := make([]*chain.Envelope, len(resp.Envelopes))
	for i, raw := range resp.Envelopes {
		env, err := chain.ParseEnvelope(raw)
		if err != nil {
			return nil, err
		}
		envelopes[i] = env
	}
	return envelopes, nil
}

func (cli *JSONRPCClient) DeliverEnvelope(ctx context.Context, env *chain.Envelope) error {
	resp := new(DeliverEnvelopeReply)
	return cli.requester.SendRequest(
		ctx,
		"deliverEnvelope",
		&DeliverEnvelopeArgs{Envelope: env.Bytes()},
		resp,
	)
}

func (cli *JSONRPCClient) MarkEnvelopeDelivered(ctx context.Context, envelopeID ids.ID) error {
	resp := new(MarkEnvelopeDeliveredReply)
	return cli.requester.SendRequest(
		ctx,
		"markEnvelopeDelivered",
		&MarkEnvelopeDeliveredArgs{EnvelopeID: envelopeID},
		resp,
	)
}

func (cli *JSONRPCClient) WaitForBalance(
	ctx context.Context,
	addr string,
	min uint64,
) error {
	return Wait(ctx, func(ctx context.Context) (bool, error) {
		balance, err := cli.Balance(ctx, addr)
		if err != nil {
			return false, err
		}
		shouldExit := balance >= min
		if !shouldExit {
			utils.Outf(
				"{{yellow}}waiting for %s balance: %s{{/}}\n",
				utils.FormatBalance(min),
				addr,
			)
		}
		return shouldExit, nil
	})
}

func (cli *JSONRPCClient) WaitForTransaction(ctx context.Context, txID ids.ID) (bool, error) {
	var success bool
	if err := Wait(ctx, func(ctx context.Context) (bool, error) {
		found, isuccess, _, err := cli.Tx(ctx, txID)
		if err != nil {
			return false, err
		}
		success = isuccess
		return found, nil
	}); err != nil {
		return false, err
	}
	return success, nil
}

// GenerateTransaction signs [operation] with [authFactory] and returns both
// the transaction and a closure that submits it.
func (cli *JSONRPCClient) GenerateTransaction(
	parser chain.Parser,
	operation chain.Operation,
	authFactory chain.AuthFactory,
) (func(context.Context) error, *chain.Transaction, error) {
	now := time.Now().UnixMilli()
	rules := parser.Rules(now)

	base := &chain.Base{
		Timestamp: utils.UnixRMilli(now, rules.GetValidityWindow()),
		ChainID:   rules.ChainID(),
	}
	operationRegistry, authRegistry, _ := parser.Registry()
	tx := chain.NewTx(base, operation)
	tx, err := tx.Sign(authFactory, operationRegistry, authRegistry)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to sign transaction", err)
	}
	return func(ictx context.Context) error {
		_, err := cli.SubmitTx(ictx, tx.Bytes())
		return err
	}, tx, nil
}

var _ chain.Parser = (*Parser)(nil)

type Parser struct {
	networkID uint32
	chainID   ids.ID
	genesis   *genesis.Genesis
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

func (cli *JSONRPCClient) Parser(ctx context.Context) (chain.Parser, error) {
	g, err := cli.Genesis(ctx)
	if err != nil {
		return nil, err
	}
	networkID, chainID, err := cli.Network(ctx)
	if err != nil {
		return nil, err
	}
	return &Parser{networkID, chainID, g}, nil
}

func Wait(ctx context.Context, check func(ctx context.Context) (bool, error)) error {
	for ctx.Err() == nil {
		exit, err := check(ctx)
		if err != nil {
			return err
		}
		if exit {
			return nil
		}
		time.Sleep(waitSleep)
	}
	return ctx.Err()
}
