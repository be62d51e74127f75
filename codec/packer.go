// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
)

// Packer wraps an avalanchego Packer to provide typed helpers for the
// objects this VM puts on the wire. Errors accumulate inside the packer and
// are surfaced once via [Err].
type Packer struct {
	p *wrappers.Packer
}

func NewWriter(initial int, limit int) *Packer {
	return &Packer{
		p: &wrappers.Packer{Bytes: make([]byte, 0, initial), MaxSize: limit},
	}
}

func NewReader(src []byte, limit int) *Packer {
	return &Packer{
		p: &wrappers.Packer{Bytes: src, MaxSize: limit},
	}
}

func (p *Packer) PackByte(v byte) {
	p.p.PackByte(v)
}

func (p *Packer) UnpackByte() byte {
	return p.p.UnpackByte()
}

func (p *Packer) PackUint64(v uint64) {
	p.p.PackLong(v)
}

func (p *Packer) UnpackUint64(required bool) uint64 {
	v := p.p.UnpackLong()
	if required && v == 0 {
		p.addErr(fmt.Errorf("%w: Uint64 field is not populated", ErrFieldNotPopulated))
	}
	return v
}

func (p *Packer) PackInt64(v int64) {
	p.p.PackLong(uint64(v))
}

func (p *Packer) UnpackInt64(required bool) int64 {
	v := p.p.UnpackLong()
	if required && v == 0 {
		p.addErr(fmt.Errorf("%w: Int64 field is not populated", ErrFieldNotPopulated))
	}
	return int64(v)
}

func (p *Packer) PackInt(v int) {
	p.p.PackInt(uint32(v))
}

func (p *Packer) UnpackInt(required bool) int {
	v := p.p.UnpackInt()
	if required && v == 0 {
		p.addErr(fmt.Errorf("%w: Int field is not populated", ErrFieldNotPopulated))
	}
	return int(v)
}

func (p *Packer) PackBool(v bool) {
	p.p.PackBool(v)
}

func (p *Packer) UnpackBool() bool {
	return p.p.UnpackBool()
}

func (p *Packer) PackFixedBytes(v []byte) {
	p.p.PackFixedBytes(v)
}

func (p *Packer) UnpackFixedBytes(size int, dest *[]byte) {
	copy(*dest, p.p.UnpackFixedBytes(size))
}

func (p *Packer) PackString(s string) {
	p.p.PackStr(s)
}

func (p *Packer) UnpackString(required bool) string {
	v := p.p.UnpackStr()
	if required && len(v) == 0 {
		p.addErr(fmt.Errorf("%w: String field is not populated", ErrFieldNotPopulated))
	}
	return v
}

func (p *Packer) PackBytes(v []byte) {
	p.p.PackBytes(v)
}

func (p *Packer) UnpackBytes(limit int, required bool, dest *[]byte) {
	*dest = p.p.UnpackLimitedBytes(uint32(limit))
	if required && len(*dest) == 0 {
		p.addErr(fmt.Errorf("%w: Bytes field is not populated", ErrFieldNotPopulated))
	}
}

func (p *Packer) PackID(id ids.ID) {
	p.p.PackFixedBytes(id[:])
}

func (p *Packer) UnpackID(required bool, dest *ids.ID) {
	copy(dest[:], p.p.UnpackFixedBytes(consts.IDLen))
	if required && *dest == ids.Empty {
		p.addErr(fmt.Errorf("%w: ID field is not populated", ErrFieldNotPopulated))
	}
}

func (p *Packer) PackPublicKey(pk ed25519.PublicKey) {
	p.p.PackFixedBytes(pk[:])
}

func (p *Packer) UnpackPublicKey(required bool, dest *ed25519.PublicKey) {
	copy(dest[:], p.p.UnpackFixedBytes(ed25519.PublicKeyLen))
	if required && *dest == ed25519.EmptyPublicKey {
		p.addErr(fmt.Errorf("%w: PublicKey field is not populated", ErrFieldNotPopulated))
	}
}

func (p *Packer) PackSignature(sig ed25519.Signature) {
	p.p.PackFixedBytes(sig[:])
}

func (p *Packer) UnpackSignature(dest *ed25519.Signature) {
	copy(dest[:], p.p.UnpackFixedBytes(ed25519.SignatureLen))
}

func (p *Packer) Empty() bool {
	return len(p.p.Bytes) == p.p.Offset
}

func (p *Packer) Offset() int {
	return p.p.Offset
}

func (p *Packer) Bytes() []byte {
	return p.p.Bytes
}

func (p *Packer) Err() error {
	return p.p.Err
}

func (p *Packer) addErr(err error) {
	p.p.Add(err)
}
