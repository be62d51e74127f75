// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "github.com/ava-labs/fungiblevm/crypto/ed25519"

// Authorized returns nil iff [signer] is present and equal to [owner]. It is
// evaluated before any ledger mutation, so a failure leaves no side effects.
func Authorized(signer *ed25519.PublicKey, owner ed25519.PublicKey) error {
	if signer == nil || *signer != owner {
		return ErrIncorrectAuthentication
	}
	return nil
}
