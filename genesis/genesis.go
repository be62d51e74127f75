// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ava-labs/avalanchego/trace"

	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/state"
	"github.com/ava-labs/fungiblevm/storage"
	"github.com/ava-labs/fungiblevm/utils"
)

type CustomAllocation struct {
	Address string `json:"address"` // bech32
	Balance uint64 `json:"balance"`
}

type Genesis struct {
	// InitialSupply is assigned to the chain creator at chain creation, if
	// the creator is known.
	InitialSupply uint64 `json:"initialSupply"`

	// ValidityWindow is how far (in milliseconds) a transaction expiry may
	// sit past an executing block's timestamp.
	ValidityWindow int64 `json:"validityWindow"`

	CustomAllocation []*CustomAllocation `json:"customAllocation"`
}

func Default() *Genesis {
	return &Genesis{
		InitialSupply:  1_000_000_000_000_000_000, // 1B whole tokens at 9 decimals
		ValidityWindow: 60_000,                    // ms
	}
}

func New(b []byte) (*Genesis, error) {
	g := Default()
	if len(b) > 0 {
		if err := json.Unmarshal(b, g); err != nil {
			return nil, fmt.Errorf("%w: can't unmarshal genesis", err)
		}
	}
	return g, nil
}

// Load populates the empty ledger exactly once, at chain creation. The
// initial supply goes to [creator]; a chain created without an authenticated
// creator starts with no supply. Custom allocations are credited either way.
func (g *Genesis) Load(
	ctx context.Context,
	tracer trace.Tracer,
	mu state.Mutable,
	creator *ed25519.PublicKey,
) error {
	ctx, span := tracer.Start(ctx, "Genesis.Load")
	defer span.End()

	if creator != nil {
		if err := storage.SetBalance(ctx, mu, *creator, g.InitialSupply); err != nil {
			return err
		}
	}
	for _, alloc := range g.CustomAllocation {
		pk, err := utils.ParseAddress(alloc.Address)
		if err != nil {
			return err
		}
		if err := storage.AddBalance(ctx, mu, pk, alloc.Balance); err != nil {
			return err
		}
	}
	return nil
}
