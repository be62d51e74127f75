// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/fungiblevm/codec"
	"github.com/ava-labs/fungiblevm/consts"
)

// MarshalMessage encodes [m] with its type prefix for embedding in an
// envelope payload.
func MarshalMessage(m Message) ([]byte, error) {
	body, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	p := codec.NewWriter(consts.ByteLen+codec.BytesLen(body), MaxPayloadSize)
	p.PackByte(m.GetTypeID())
	p.PackBytes(body)
	return p.Bytes(), p.Err()
}
