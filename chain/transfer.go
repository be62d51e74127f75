// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/codec"
	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/state"
	"github.com/ava-labs/fungiblevm/storage"
	"github.com/ava-labs/fungiblevm/utils"
)

var _ Operation = (*Transfer)(nil)

// Transfer moves [Amount] from [Owner] to [To]. When [To] lives on the
// executing chain the credit is applied immediately; otherwise the debit
// commits locally and a Credit message is emitted toward [To.Chain].
type Transfer struct {
	// Owner is the account being debited. It must match the transaction's
	// authenticated signer.
	Owner ed25519.PublicKey `json:"owner"`

	// Amount of value moved from [Owner] to [To].
	Amount uint64 `json:"amount"`

	// To is the recipient account, possibly on another chain.
	To Account `json:"to"`
}

func (*Transfer) GetTypeID() uint8 {
	return transferID
}

func (*Transfer) Size() int {
	return ed25519.PublicKeyLen + consts.Uint64Len + AccountSize
}

func (t *Transfer) Marshal(p *codec.Packer) {
	p.PackPublicKey(t.Owner)
	p.PackUint64(t.Amount)
	t.To.Marshal(p)
}

func UnmarshalTransfer(p *codec.Packer) (Operation, error) {
	var transfer Transfer
	p.UnpackPublicKey(true, &transfer.Owner)
	transfer.Amount = p.UnpackUint64(true)
	to, err := UnmarshalAccount(p)
	if err != nil {
		return nil, err
	}
	transfer.To = to
	return &transfer, nil
}

func (t *Transfer) Execute(
	ctx context.Context,
	chainID ids.ID,
	mu state.Mutable,
	signer *ed25519.PublicKey,
	_ ids.ID,
) (*Result, error) {
	if t.Amount == 0 {
		return &Result{Success: false, Error: utils.ErrBytes(ErrValueZero)}, nil
	}
	if err := Authorized(signer, t.Owner); err != nil {
		return &Result{Success: false, Error: utils.ErrBytes(err)}, nil
	}
	if err := storage.SubBalance(ctx, mu, t.Owner, t.Amount); err != nil {
		if errors.Is(err, storage.ErrInsufficientBalance) {
			return &Result{Success: false, Error: utils.ErrBytes(err)}, nil
		}
		return nil, err
	}
	if t.To.Chain == chainID {
		if err := storage.AddBalance(ctx, mu, t.To.Owner, t.Amount); err != nil {
			return nil, err
		}
		return &Result{Success: true}, nil
	}

	// The recipient lives elsewhere: the debited value now exists only in
	// the outgoing envelope until the destination applies the credit.
	payload, err := MarshalMessage(&Credit{Owner: t.To.Owner, Amount: t.Amount})
	if err != nil {
		return nil, err
	}
	return &Result{
		Success:  true,
		Outgoing: NewEnvelope(t.To.Chain, payload),
	}, nil
}
