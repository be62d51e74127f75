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

const envelopeBaseSize = consts.IDLen*2 + consts.Uint64Len

// Envelope carries one message from a source chain to a destination chain.
// In-flight value exists only here: the source has already debited and the
// destination has not yet credited.
//
// The ID is derived from the canonical bytes, so it is stable across the
// source's outbox, the relay, and the destination's inbox.
type Envelope struct {
	Source      ids.ID `json:"source"`
	Destination ids.ID `json:"destination"`

	// Nonce is the source chain's outbox sequence number. It distinguishes
	// otherwise identical envelopes (same payload, same destination).
	Nonce uint64 `json:"nonce"`

	Payload []byte `json:"payload"`

	id    ids.ID
	bytes []byte
}

// NewEnvelope returns a partial envelope addressed to [destination]. The
// processor assigns Source and Nonce when the emitting transaction commits.
func NewEnvelope(destination ids.ID, payload []byte) *Envelope {
	return &Envelope{
		Destination: destination,
		Payload:     payload,
	}
}

func (e *Envelope) Size() int {
	return envelopeBaseSize + codec.BytesLen(e.Payload)
}

// Init computes the canonical bytes and content-derived ID. It must be
// called after Source and Nonce are assigned.
func (e *Envelope) Init() error {
	p := codec.NewWriter(e.Size(), consts.NetworkSizeLimit)
	e.Marshal(p)
	if err := p.Err(); err != nil {
		return err
	}
	e.bytes = p.Bytes()
	e.id = utils.ToID(e.bytes)
	return nil
}

func (e *Envelope) ID() ids.ID {
	return e.id
}

func (e *Envelope) Bytes() []byte {
	return e.bytes
}

func (e *Envelope) Marshal(p *codec.Packer) {
	p.PackID(e.Source)
	p.PackID(e.Destination)
	p.PackUint64(e.Nonce)
	p.PackBytes(e.Payload)
}

func UnmarshalEnvelope(p *codec.Packer) (*Envelope, error) {
	var (
		start = p.Offset()
		env   Envelope
	)
	p.UnpackID(true, &env.Source)
	p.UnpackID(true, &env.Destination)
	env.Nonce = p.UnpackUint64(false) // the source's first envelope has nonce 0
	p.UnpackBytes(MaxPayloadSize, true, &env.Payload)
	if err := p.Err(); err != nil {
		return nil, err
	}
	codecBytes := p.Bytes()
	env.bytes = codecBytes[start:p.Offset()]
	env.id = utils.ToID(env.bytes)
	return &env, nil
}

// ParseEnvelope decodes a standalone envelope from [raw].
func ParseEnvelope(raw []byte) (*Envelope, error) {
	p := codec.NewReader(raw, consts.NetworkSizeLimit)
	env, err := UnmarshalEnvelope(p)
	if err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, ErrInvalidEnvelope
	}
	return env, nil
}

// Message decodes the payload against [registry].
func (e *Envelope) Message(registry MessageRegistry) (Message, error) {
	p := codec.NewReader(e.Payload, MaxPayloadSize)
	typeID := p.UnpackByte()
	unmarshal, ok := registry.LookupIndex(typeID)
	if !ok {
		return nil, fmt.Errorf("%w: %d is unknown message type", ErrInvalidObject, typeID)
	}
	msg, err := unmarshal(p)
	if err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, ErrInvalidPayload
	}
	return msg, nil
}
