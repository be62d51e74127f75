// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"

	"github.com/ava-labs/fungiblevm/chain"
)

// AcceptedSubscriber is notified after each block commits. Subscribers must
// be registered before block building starts.
type AcceptedSubscriber interface {
	Accepted(ctx context.Context, blk *chain.StatelessBlock) error
}
