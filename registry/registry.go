// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/fungiblevm/auth"
	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/codec"
)

var (
	Operation chain.OperationRegistry
	Auth      chain.AuthRegistry
	Message   chain.MessageRegistry
)

// Setup types
func init() {
	Operation = codec.NewTypeParser[chain.Operation]()
	Auth = codec.NewTypeParser[chain.Auth]()
	Message = codec.NewTypeParser[chain.Message]()

	errs := &wrappers.Errs{}
	errs.Add(
		Operation.Register(&chain.Transfer{}, chain.UnmarshalTransfer),
		Auth.Register(&auth.ED25519{}, auth.UnmarshalED25519),
		Message.Register(&chain.Credit{}, chain.UnmarshalCredit),
	)
	if errs.Errored() {
		panic(errs.Err)
	}
}
