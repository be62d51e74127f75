// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "errors"

var (
	// Base validity
	ErrTimestampTooEarly = errors.New("timestamp too early")
	ErrTimestampTooLate  = errors.New("timestamp too late")
	ErrInvalidChainID    = errors.New("invalid chain ID")

	// Transfer
	ErrValueZero               = errors.New("value is zero")
	ErrIncorrectAuthentication = errors.New("incorrect authentication")

	// Delivery
	ErrMisdirectedEnvelope = errors.New("envelope not addressed to this chain")

	// Decoding
	ErrInvalidObject   = errors.New("invalid object")
	ErrInvalidEnvelope = errors.New("invalid envelope")
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrAuthNotSet      = errors.New("auth not set")
)
