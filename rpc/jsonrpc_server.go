// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/codec"
	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/genesis"
	"github.com/ava-labs/fungiblevm/utils"
)

type JSONRPCServer struct {
	c Controller
}

func NewJSONRPCServer(c Controller) *JSONRPCServer {
	return &JSONRPCServer{c}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	j.c.Logger().Info("ping")
	reply.Success = true
	return nil
}

type NetworkReply struct {
	NetworkID uint32 `json:"networkId"`
	ChainID   ids.ID `json:"chainId"`
}

func (j *JSONRPCServer) Network(_ *http.Request, _ *struct{}, reply *NetworkReply) (err error) {
	reply.NetworkID = j.c.NetworkID()
	reply.ChainID = j.c.ChainID()
	return nil
}

type GenesisReply struct {
	Genesis *genesis.Genesis `json:"genesis"`
}

func (j *JSONRPCServer) Genesis(_ *http.Request, _ *struct{}, reply *GenesisReply) (err error) {
	reply.Genesis = j.c.Genesis()
	return nil
}

type SubmitTxArgs struct {
	Tx []byte `json:"tx"`
}

type SubmitTxReply struct {
	TxID ids.ID `json:"txId"`
}

func (j *JSONRPCServer) SubmitTx(
	req *http.Request,
	args *SubmitTxArgs,
	reply *SubmitTxReply,
) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "JSONRPCServer.SubmitTx")
	defer span.End()

	operationRegistry, authRegistry, _ := j.c.Registry()
	rtx := codec.NewReader(args.Tx, consts.NetworkSizeLimit) // will likely be much smaller than this
	tx, err := chain.UnmarshalTx(rtx, operationRegistry, authRegistry)
	if err != nil {
		return fmt.Errorf("%w: unable to unmarshal on public service", err)
	}
	if !rtx.Empty() {
		return errors.New("tx has extra bytes")
	}
	reply.TxID = tx.ID()
	return j.c.Submit(ctx, tx)
}

type LastAcceptedReply struct {
	Height    uint64 `json:"height"`
	BlockID   ids.ID `json:"blockId"`
	Timestamp int64  `json:"timestamp"`
}

func (j *JSONRPCServer) LastAccepted(_ *http.Request, _ *struct{}, reply *LastAcceptedReply) error {
	blk := j.c.LastAcceptedBlock()
	reply.Height = blk.Hght
	reply.BlockID = blk.ID()
	reply.Timestamp = blk.Tmstmp
	return nil
}

type BalanceArgs struct {
	Address string `json:"address"`
}

type BalanceReply struct {
	Amount uint64 `json:"amount"`
}

func (j *JSONRPCServer) Balance(req *http.Request, args *BalanceArgs, reply *BalanceReply) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "JSONRPCServer.Balance")
	defer span.End()

	owner, err := utils.ParseAddress(args.Address)
	if err != nil {
		return err
	}
	balance, err := j.c.Balance(ctx, owner)
	if err != nil {
		return err
	}
	reply.Amount = balance
	return err
}

type TxArgs struct {
	TxID ids.ID `json:"txId"`
}

type TxReply struct {
	Timestamp int64 `json:"timestamp"`
	Success   bool  `json:"success"`
}

func (j *JSONRPCServer) Tx(req *http.Request, args *TxArgs, reply *TxReply) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "JSONRPCServer.Tx")
	defer span.End()

	found, t, success, err := j.c.GetTransaction(ctx, args.TxID)
	if err != nil {
		return err
	}
	if !found {
		return ErrTxNotFound
	}
	reply.Timestamp = t
	reply.Success = success
	return nil
}

type PendingEnvelopesReply struct {
	Envelopes [][]byte `json:"envelopes"`
}

func (j *JSONRPCServer) PendingEnvelopes(
	req *http.Request,
	_ *struct{},
	reply *PendingEnvelopesReply,
) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "JSONRPCServer.PendingEnvelopes")
	defer span.End()

	envelopes, err := j.c.PendingEnvelopes(ctx)
	if err != nil {
		return err
	}
	reply.Envelopes = make([][]byte, len(envelopes))
	for i, env := range envelopes {
		reply.Envelopes[i] = env.Bytes()
	}
	return nil
}

type DeliverEnvelopeArgs struct {
	Envelope []byte `json:"envelope"`
}

type DeliverEnvelopeReply struct {
	EnvelopeID ids.ID `json:"envelopeId"`
}

func (j *JSONRPCServer) DeliverEnvelope(
	req *http.Request,
	args *DeliverEnvelopeArgs,
	reply *DeliverEnvelopeReply,
) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "JSONRPCServer.DeliverEnvelope")
	defer span.End()

	env, err := chain.ParseEnvelope(args.Envelope)
	if err != nil {
		return fmt.Errorf("%w: unable to parse envelope", err)
	}
	reply.EnvelopeID = env.ID()
	return j.c.DeliverEnvelope(ctx, env)
}

type MarkEnvelopeDeliveredArgs struct {
	EnvelopeID ids.ID `json:"envelopeId"`
}

type MarkEnvelopeDeliveredReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) MarkEnvelopeDelivered(
	req *http.Request,
	args *MarkEnvelopeDeliveredArgs,
	reply *MarkEnvelopeDeliveredReply,
) error {
	ctx, span := j.c.Tracer().Start(req.Context(), "JSONRPCServer.MarkEnvelopeDelivered")
	defer span.End()

	if err := j.c.MarkEnvelopeDelivered(ctx, args.EnvelopeID); err != nil {
		return err
	}
	reply.Success = true
	return nil
}
