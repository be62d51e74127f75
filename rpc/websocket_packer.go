// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"errors"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/codec"
	"github.com/ava-labs/fungiblevm/consts"
)

const (
	BlockMode byte = 0
	TxMode    byte = 1
)

func PackBlockMessage(b *chain.StatelessBlock) ([]byte, error) {
	results, err := chain.MarshalResults(b.Results())
	if err != nil {
		return nil, err
	}
	size := codec.BytesLen(b.Bytes()) + codec.BytesLen(results)
	p := codec.NewWriter(size, consts.MaxInt)
	p.PackBytes(b.Bytes())
	p.PackBytes(results)
	return p.Bytes(), p.Err()
}

func UnpackBlockMessage(
	msg []byte,
	parser chain.Parser,
) (*chain.StatelessBlock, []*chain.Result, error) {
	p := codec.NewReader(msg, consts.MaxInt)
	var blkMsg []byte
	p.UnpackBytes(-1, true, &blkMsg)
	blk, err := chain.ParseBlock(blkMsg, parser)
	if err != nil {
		return nil, nil, err
	}
	var resultsMsg []byte
	p.UnpackBytes(-1, true, &resultsMsg)
	results, err := chain.UnmarshalResults(resultsMsg)
	if err != nil {
		return nil, nil, err
	}
	if !p.Empty() {
		return nil, nil, chain.ErrInvalidObject
	}
	return blk, results, p.Err()
}

// PackAcceptedTxMessage packs a tx acceptance notification.
func PackAcceptedTxMessage(txID ids.ID, result *chain.Result) ([]byte, error) {
	size := consts.IDLen + consts.BoolLen + result.Size()
	p := codec.NewWriter(size, consts.MaxInt)
	p.PackID(txID)
	p.PackBool(false)
	if err := result.Marshal(p); err != nil {
		return nil, err
	}
	return p.Bytes(), p.Err()
}

// PackRemovedTxMessage packs a tx removal notification.
func PackRemovedTxMessage(txID ids.ID, err error) ([]byte, error) {
	errString := err.Error()
	size := consts.IDLen + consts.BoolLen + codec.StringLen(errString)
	p := codec.NewWriter(size, consts.MaxInt)
	p.PackID(txID)
	p.PackBool(true)
	p.PackString(errString)
	return p.Bytes(), p.Err()
}

// UnpackTxMessage unpacks a tx message from [msg]. Returns the txID, an
// error regarding the status of the tx, the result of the tx, and an error
// if there was a problem unpacking the message.
func UnpackTxMessage(msg []byte) (ids.ID, error, *chain.Result, error) {
	p := codec.NewReader(msg, consts.MaxInt)
	var txID ids.ID
	p.UnpackID(true, &txID)
	if p.UnpackBool() {
		errString := p.UnpackString(true)
		return txID, errors.New(errString), nil, p.Err()
	}
	result, err := chain.UnmarshalResult(p)
	if err != nil {
		return ids.Empty, nil, nil, err
	}
	if !p.Empty() {
		return ids.Empty, nil, nil, chain.ErrInvalidObject
	}
	return txID, nil, result, p.Err()
}
