// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"

	"github.com/near/borsh-go"

	"github.com/ava-labs/fungiblevm/codec"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/state"
	"github.com/ava-labs/fungiblevm/storage"
)

var _ Message = (*Credit)(nil)

// Credit adds [Amount] to [Owner] on the destination chain. It is applied
// unconditionally: the sending chain already debited, so there is no
// authentication and no rejection path here. The credit saturates at the
// balance ceiling rather than failing.
//
// The body is borsh-encoded: 32 owner bytes followed by a little-endian
// amount.
type Credit struct {
	Owner  ed25519.PublicKey `json:"owner"`
	Amount uint64            `json:"amount"`
}

func (*Credit) GetTypeID() uint8 {
	return creditID
}

func (c *Credit) Marshal() ([]byte, error) {
	return borsh.Serialize(*c)
}

func UnmarshalCredit(p *codec.Packer) (Message, error) {
	var body []byte
	p.UnpackBytes(MaxMessageBodySize, true, &body)
	if err := p.Err(); err != nil {
		return nil, err
	}
	var credit Credit
	if err := borsh.Deserialize(&credit, body); err != nil {
		return nil, err
	}
	return &credit, nil
}

func (c *Credit) Execute(ctx context.Context, mu state.Mutable) error {
	return storage.AddBalance(ctx, mu, c.Owner, c.Amount)
}
