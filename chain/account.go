// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/codec"
	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
)

const AccountSize = consts.IDLen + ed25519.PublicKeyLen

// Account addresses an owner on a specific chain. The same owner on two
// chains holds independent balances.
type Account struct {
	Chain ids.ID            `json:"chain"`
	Owner ed25519.PublicKey `json:"owner"`
}

func (a *Account) Marshal(p *codec.Packer) {
	p.PackID(a.Chain)
	p.PackPublicKey(a.Owner)
}

func UnmarshalAccount(p *codec.Packer) (Account, error) {
	var acct Account
	p.UnpackID(true, &acct.Chain)
	p.UnpackPublicKey(true, &acct.Owner)
	return acct, p.Err()
}
