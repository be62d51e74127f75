// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
)

// BatchVerify checks the signatures of [txs] in a single batch. It is
// cheaper than verifying one-by-one when a block carries many transactions.
func BatchVerify(txs []*chain.Transaction) error {
	batch := ed25519.NewBatch(len(txs))
	for _, tx := range txs {
		msg, err := tx.Digest()
		if err != nil {
			return err
		}
		d, ok := tx.Auth.(*ED25519)
		if !ok {
			// non-batchable auth verifies individually
			if err := tx.Auth.Verify(msg); err != nil {
				return err
			}
			continue
		}
		batch.Add(msg, d.Signer, d.Signature)
	}
	if !batch.Verify() {
		return ErrInvalidSignature
	}
	return nil
}
