// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package relay

import "errors"

var ErrDuplicateChain = errors.New("chain already registered")
