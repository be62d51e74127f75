// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/utils/units"

	"github.com/ava-labs/fungiblevm/codec"
	"github.com/ava-labs/fungiblevm/consts"
)

const maxResultErrorSize = units.KiB

// Result is the outcome of one unit of work (a transaction or an inbound
// envelope). Domain failures set Success false and leave the ledger
// untouched; they never abort the surrounding block.
type Result struct {
	Success bool   `json:"success"`
	Error   []byte `json:"error"`

	// Outgoing is populated when the unit of work addressed an account on
	// another chain. The processor assigns Source and Nonce before the
	// envelope is persisted to the outbox.
	Outgoing *Envelope `json:"outgoing"`
}

func (r *Result) Size() int {
	size := consts.BoolLen + codec.BytesLen(r.Error) + consts.BoolLen
	if r.Outgoing != nil {
		size += r.Outgoing.Size()
	}
	return size
}

func (r *Result) Marshal(p *codec.Packer) error {
	p.PackBool(r.Success)
	p.PackBytes(r.Error)
	p.PackBool(r.Outgoing != nil)
	if r.Outgoing != nil {
		r.Outgoing.Marshal(p)
	}
	return p.Err()
}

func UnmarshalResult(p *codec.Packer) (*Result, error) {
	result := &Result{
		Success: p.UnpackBool(),
	}
	p.UnpackBytes(maxResultErrorSize, false, &result.Error)
	if len(result.Error) == 0 {
		result.Error = nil
	}
	if p.UnpackBool() {
		env, err := UnmarshalEnvelope(p)
		if err != nil {
			return nil, err
		}
		result.Outgoing = env
	}
	return result, p.Err()
}

func MarshalResults(results []*Result) ([]byte, error) {
	size := consts.IntLen
	for _, result := range results {
		size += result.Size()
	}
	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	p.PackInt(len(results))
	for _, result := range results {
		if err := result.Marshal(p); err != nil {
			return nil, err
		}
	}
	return p.Bytes(), p.Err()
}

func UnmarshalResults(src []byte) ([]*Result, error) {
	p := codec.NewReader(src, consts.NetworkSizeLimit)
	items := p.UnpackInt(false)
	results := make([]*Result, items)
	for i := 0; i < items; i++ {
		result, err := UnmarshalResult(p)
		if err != nil {
			return nil, err
		}
		results[i] = result
	}
	if !p.Empty() {
		return nil, ErrInvalidObject
	}
	return results, nil
}
