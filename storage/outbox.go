// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/state"
)

const (
	envelopePending   = 0x0
	envelopeDelivered = 0x1
)

// EnvelopeKey returns the outbox key for envelope [id].
func EnvelopeKey(id ids.ID) []byte {
	k := make([]byte, 1+consts.IDLen)
	k[0] = outboxPrefix
	copy(k[1:], id[:])
	return k
}

// SetOutgoingEnvelope records [raw] in the outbox as pending delivery.
func SetOutgoingEnvelope(
	ctx context.Context,
	mu state.Mutable,
	id ids.ID,
	raw []byte,
) error {
	v := make([]byte, 1+len(raw))
	v[0] = envelopePending
	copy(v[1:], raw)
	return mu.Insert(ctx, EnvelopeKey(id), v)
}

// MarkEnvelopeDelivered flips the pending flag on envelope [id]. Marking an
// unknown envelope is an error.
func MarkEnvelopeDelivered(
	ctx context.Context,
	mu state.Mutable,
	id ids.ID,
) error {
	v, err := mu.GetValue(ctx, EnvelopeKey(id))
	if err != nil {
		return err
	}
	if len(v) < 1 {
		return ErrInvalidEnvelope
	}
	nv := make([]byte, len(v))
	copy(nv, v)
	nv[0] = envelopeDelivered
	return mu.Insert(ctx, EnvelopeKey(id), nv)
}

// GetOutgoingEnvelope returns the raw envelope bytes for [id] and whether it
// has been marked delivered.
func GetOutgoingEnvelope(
	ctx context.Context,
	im state.Immutable,
	id ids.ID,
) ([]byte, bool, error) {
	v, err := im.GetValue(ctx, EnvelopeKey(id))
	if err != nil {
		return nil, false, err
	}
	if len(v) < 1 {
		return nil, false, ErrInvalidEnvelope
	}
	return v[1:], v[0] == envelopeDelivered, nil
}

// GetPendingEnvelopes scans the outbox and returns the raw bytes of every
// envelope not yet marked delivered.
func GetPendingEnvelopes(db database.Iteratee) ([][]byte, error) {
	it := db.NewIteratorWithPrefix([]byte{outboxPrefix})
	defer it.Release()

	var pending [][]byte
	for it.Next() {
		v := it.Value()
		if len(v) < 1 {
			return nil, ErrInvalidEnvelope
		}
		if v[0] != envelopePending {
			continue
		}
		raw := make([]byte, len(v)-1)
		copy(raw, v[1:])
		pending = append(pending, raw)
	}
	return pending, it.Error()
}

// GetOutboxNonce returns the next envelope sequence number for this chain.
func GetOutboxNonce(ctx context.Context, im state.Immutable) (uint64, error) {
	v, err := im.GetValue(ctx, []byte{outboxNoncePrefix})
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(v) != consts.Uint64Len {
		return 0, ErrInvalidNonce
	}
	return binary.BigEndian.Uint64(v), nil
}

// SetOutboxNonce persists the next envelope sequence number.
func SetOutboxNonce(ctx context.Context, mu state.Mutable, nonce uint64) error {
	v := make([]byte, consts.Uint64Len)
	binary.BigEndian.PutUint64(v, nonce)
	return mu.Insert(ctx, []byte{outboxNoncePrefix}, v)
}
