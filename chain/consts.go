// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/utils/units"

	"github.com/ava-labs/fungiblevm/consts"
)

// Note: the registries error during initialization if a duplicate ID is
// assigned. We explicitly assign IDs to avoid accidental remapping.
const (
	transferID uint8 = 0
)

const (
	creditID uint8 = 0
)

const (
	// MaxMessageBodySize bounds the body of a single message inside an
	// envelope payload.
	MaxMessageBodySize = units.KiB

	// MaxPayloadSize is [MaxMessageBodySize] plus the type prefix and length
	// prefix added by [MarshalMessage].
	MaxPayloadSize = consts.ByteLen + consts.IntLen + MaxMessageBodySize
)
