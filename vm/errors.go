// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import "errors"

var (
	// ErrNoPendingWork is returned by BuildBlock when neither transactions
	// nor inbound envelopes are waiting.
	ErrNoPendingWork = errors.New("no transactions or envelopes to build")

	// ErrNotAdded is returned by Submit when the mempool refuses a tx (full,
	// or the payer is at its cap).
	ErrNotAdded = errors.New("tx not added to mempool")

	// The ledger defines exactly one operation kind and one message kind.
	// Generic application calls and session handles are interaction surfaces
	// it deliberately does not have.
	ErrCallsNotSupported    = errors.New("calls not supported")
	ErrSessionsNotSupported = errors.New("sessions not supported")
)
