// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/codec"
	"github.com/ava-labs/fungiblevm/consts"
)

const BaseSize = consts.Int64Len + consts.IDLen

type Base struct {
	// Timestamp is the expiry of the transaction (inclusive). Once this time
	// passes and the transaction is not included in a block, it is safe to
	// regenerate it.
	Timestamp int64 `json:"timestamp"`

	// ChainID protects against replay on other chains.
	ChainID ids.ID `json:"chainId"`
}

func (b *Base) Execute(chainID ids.ID, r Rules, timestamp int64) error {
	switch {
	case b.Timestamp < timestamp: // tx: 100 block: 110
		return fmt.Errorf("%w: expiry=%d block=%d", ErrTimestampTooLate, b.Timestamp, timestamp)
	case b.Timestamp > timestamp+r.GetValidityWindow(): // tx: 100 block: 10
		return fmt.Errorf("%w: expiry=%d block=%d", ErrTimestampTooEarly, b.Timestamp, timestamp)
	case b.ChainID != chainID:
		return ErrInvalidChainID
	default:
		return nil
	}
}

func (*Base) Size() int {
	return BaseSize
}

func (b *Base) Marshal(p *codec.Packer) {
	p.PackInt64(b.Timestamp)
	p.PackID(b.ChainID)
}

func UnmarshalBase(p *codec.Packer) (*Base, error) {
	var base Base
	base.Timestamp = p.UnpackInt64(true)
	p.UnpackID(true, &base.ChainID)
	return &base, p.Err()
}
