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

type Transaction struct {
	Base      *Base     `json:"base"`
	Operation Operation `json:"operation"`
	Auth      Auth      `json:"auth"`

	digest []byte
	bytes  []byte
	size   int
	id     ids.ID
}

func NewTx(base *Base, op Operation) *Transaction {
	return &Transaction{
		Base:      base,
		Operation: op,
	}
}

// Digest is the byte string the auth signs: everything except the auth
// itself.
func (t *Transaction) Digest() ([]byte, error) {
	if len(t.digest) > 0 {
		return t.digest, nil
	}
	size := t.Base.Size() + consts.ByteLen + t.Operation.Size()
	p := codec.NewWriter(size, size)
	t.Base.Marshal(p)
	p.PackByte(t.Operation.GetTypeID())
	t.Operation.Marshal(p)
	return p.Bytes(), p.Err()
}

// Sign attaches auth from [factory] and reloads the transaction from its own
// bytes so all caches are populated exactly as a peer decoding it would see
// them.
func (t *Transaction) Sign(
	factory AuthFactory,
	operationRegistry OperationRegistry,
	authRegistry AuthRegistry,
) (*Transaction, error) {
	msg, err := t.Digest()
	if err != nil {
		return nil, err
	}
	auth, err := factory.Sign(msg)
	if err != nil {
		return nil, err
	}
	t.Auth = auth

	size := len(msg) + consts.ByteLen + t.Auth.Size()
	p := codec.NewWriter(size, size)
	if err := t.Marshal(p); err != nil {
		return nil, err
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	p = codec.NewReader(p.Bytes(), consts.NetworkSizeLimit)
	return UnmarshalTx(p, operationRegistry, authRegistry)
}

// Verify checks the auth signature over the transaction digest.
func (t *Transaction) Verify() error {
	msg, err := t.Digest()
	if err != nil {
		return err
	}
	return t.Auth.Verify(msg)
}

func (t *Transaction) Bytes() []byte { return t.bytes }

func (t *Transaction) Size() int { return t.size }

func (t *Transaction) ID() ids.ID { return t.id }

func (t *Transaction) Expiry() int64 { return t.Base.Timestamp }

// Payer identifies the account responsible for this transaction. Only valid
// on signed transactions.
func (t *Transaction) Payer() string {
	actor := t.Auth.Actor()
	return string(actor[:])
}

func (t *Transaction) Marshal(p *codec.Packer) error {
	if len(t.bytes) > 0 {
		p.PackFixedBytes(t.bytes)
		return p.Err()
	}
	return t.marshal(p)
}

func (t *Transaction) marshal(p *codec.Packer) error {
	t.Base.Marshal(p)
	p.PackByte(t.Operation.GetTypeID())
	t.Operation.Marshal(p)
	if t.Auth == nil {
		return ErrAuthNotSet
	}
	p.PackByte(t.Auth.GetTypeID())
	t.Auth.Marshal(p)
	return p.Err()
}

func UnmarshalTx(
	p *codec.Packer,
	operationRegistry OperationRegistry,
	authRegistry AuthRegistry,
) (*Transaction, error) {
	start := p.Offset()
	base, err := UnmarshalBase(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal base", err)
	}
	operationType := p.UnpackByte()
	unmarshalOperation, ok := operationRegistry.LookupIndex(operationType)
	if !ok {
		return nil, fmt.Errorf("%w: %d is unknown operation type", ErrInvalidObject, operationType)
	}
	operation, err := unmarshalOperation(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal operation", err)
	}
	digest := p.Offset()
	authType := p.UnpackByte()
	unmarshalAuth, ok := authRegistry.LookupIndex(authType)
	if !ok {
		return nil, fmt.Errorf("%w: %d is unknown auth type", ErrInvalidObject, authType)
	}
	auth, err := unmarshalAuth(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal auth", err)
	}

	var tx Transaction
	tx.Base = base
	tx.Operation = operation
	tx.Auth = auth
	if err := p.Err(); err != nil {
		return nil, p.Err()
	}
	codecBytes := p.Bytes()
	tx.digest = codecBytes[start:digest]
	tx.bytes = codecBytes[start:p.Offset()]
	tx.size = len(tx.bytes)
	tx.id = utils.ToID(tx.bytes)
	return &tx, nil
}

// ParseTx decodes a standalone signed transaction from [raw].
func ParseTx(raw []byte, parser Parser) (*Transaction, error) {
	p := codec.NewReader(raw, consts.NetworkSizeLimit)
	operationRegistry, authRegistry, _ := parser.Registry()
	tx, err := UnmarshalTx(p, operationRegistry, authRegistry)
	if err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, ErrInvalidObject
	}
	return tx, nil
}
