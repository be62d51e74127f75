// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/codec"
	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/utils"
)

// StatefulBlock is the wire representation of a block.
type StatefulBlock struct {
	Prnt   ids.ID `json:"parent"`
	Tmstmp int64  `json:"timestamp"`
	Hght   uint64 `json:"height"`

	// Envelopes are inbound cross-chain deliveries accepted into this block.
	// They execute before Txs.
	Envelopes []*Envelope    `json:"envelopes"`
	Txs       []*Transaction `json:"txs"`

	size int
}

func (b *StatefulBlock) Size() int {
	return b.size
}

func (b *StatefulBlock) Marshal() ([]byte, error) {
	size := consts.IDLen + consts.Int64Len + consts.Uint64Len + 2*consts.IntLen
	for _, env := range b.Envelopes {
		size += env.Size()
	}
	for _, tx := range b.Txs {
		size += tx.Size()
	}

	p := codec.NewWriter(size, consts.NetworkSizeLimit)
	p.PackID(b.Prnt)
	p.PackInt64(b.Tmstmp)
	p.PackUint64(b.Hght)

	p.PackInt(len(b.Envelopes))
	for _, env := range b.Envelopes {
		env.Marshal(p)
	}
	p.PackInt(len(b.Txs))
	for _, tx := range b.Txs {
		if err := tx.Marshal(p); err != nil {
			return nil, err
		}
	}

	bytes := p.Bytes()
	if err := p.Err(); err != nil {
		return nil, err
	}
	b.size = len(bytes)
	return bytes, nil
}

func UnmarshalBlock(raw []byte, parser Parser) (*StatefulBlock, error) {
	var (
		p = codec.NewReader(raw, consts.NetworkSizeLimit)
		b StatefulBlock
	)
	b.size = len(raw)

	p.UnpackID(false, &b.Prnt)
	b.Tmstmp = p.UnpackInt64(false)
	b.Hght = p.UnpackUint64(false)

	// don't preallocate from the wire counts to avoid DoS
	envCount := p.UnpackInt(false)
	b.Envelopes = []*Envelope{}
	for i := 0; i < envCount; i++ {
		env, err := UnmarshalEnvelope(p)
		if err != nil {
			return nil, err
		}
		b.Envelopes = append(b.Envelopes, env)
	}

	txCount := p.UnpackInt(false) // can produce empty blocks
	operationRegistry, authRegistry, _ := parser.Registry()
	b.Txs = []*Transaction{}
	for i := 0; i < txCount; i++ {
		tx, err := UnmarshalTx(p, operationRegistry, authRegistry)
		if err != nil {
			return nil, err
		}
		b.Txs = append(b.Txs, tx)
	}

	if !p.Empty() {
		// Ensure no leftover bytes
		return nil, fmt.Errorf("%w: remaining=%d", ErrInvalidObject, len(raw)-p.Offset())
	}
	return &b, p.Err()
}

// StatelessBlock couples the wire block with its identity and execution
// results.
type StatelessBlock struct {
	*StatefulBlock

	id    ids.ID
	bytes []byte

	results []*Result
}

func NewBlock(parent ids.ID, tmstmp int64, height uint64, envelopes []*Envelope, txs []*Transaction) *StatelessBlock {
	return &StatelessBlock{
		StatefulBlock: &StatefulBlock{
			Prnt:      parent,
			Tmstmp:    tmstmp,
			Hght:      height,
			Envelopes: envelopes,
			Txs:       txs,
		},
	}
}

// Init computes the block's canonical bytes and ID.
func (b *StatelessBlock) Init() error {
	bytes, err := b.StatefulBlock.Marshal()
	if err != nil {
		return err
	}
	b.bytes = bytes
	b.id = utils.ToID(bytes)
	return nil
}

func ParseBlock(raw []byte, parser Parser) (*StatelessBlock, error) {
	sb, err := UnmarshalBlock(raw, parser)
	if err != nil {
		return nil, err
	}
	return &StatelessBlock{
		StatefulBlock: sb,
		id:            utils.ToID(raw),
		bytes:         raw,
	}, nil
}

func (b *StatelessBlock) ID() ids.ID { return b.id }

func (b *StatelessBlock) Bytes() []byte { return b.bytes }

func (b *StatelessBlock) Results() []*Result { return b.results }
