// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrInvalidBalance      = errors.New("invalid balance")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidEnvelope     = errors.New("invalid envelope record")
	ErrInvalidNonce        = errors.New("invalid outbox nonce")
	ErrInvalidLastAccepted = errors.New("invalid last accepted record")
	ErrInvalidTransaction  = errors.New("invalid transaction record")
)
