// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/rpc"
	"github.com/ava-labs/fungiblevm/utils"
)

func (h *Handler) GenerateKey() error {
	// TODO: encrypt key
	priv, err := ed25519.GeneratePrivateKey()
	if err != nil {
		return err
	}
	if err := h.StoreKey(priv); err != nil {
		return err
	}
	publicKey := priv.PublicKey()
	if err := h.StoreDefaultKey(publicKey); err != nil {
		return err
	}
	utils.Outf(
		"{{green}}created address:{{/}} %s\n",
		h.c.Address(publicKey),
	)
	return nil
}

func (h *Handler) ImportKey(keyPath string) error {
	priv, err := ed25519.LoadKey(keyPath)
	if err != nil {
		return err
	}
	if err := h.StoreKey(priv); err != nil {
		return err
	}
	publicKey := priv.PublicKey()
	if err := h.StoreDefaultKey(publicKey); err != nil {
		return err
	}
	utils.Outf(
		"{{green}}imported address:{{/}} %s\n",
		h.c.Address(publicKey),
	)
	return nil
}

func (h *Handler) SetKey() error {
	keys, err := h.GetKeys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		utils.Outf("{{red}}no stored keys{{/}}\n")
		return nil
	}
	_, uris, err := h.GetDefaultChain()
	if err != nil {
		return err
	}
	ctx := context.Background()
	cli := rpc.NewJSONRPCClient(uris[0])
	utils.Outf("{{cyan}}stored keys:{{/}} %d\n", len(keys))
	for i := 0; i < len(keys); i++ {
		addr := h.c.Address(keys[i].PublicKey())
		balance, err := cli.Balance(ctx, addr)
		if err != nil {
			return err
		}
		utils.Outf(
			"%d) {{cyan}}address:{{/}} %s {{cyan}}balance:{{/}} %s %s\n",
			i,
			addr,
			utils.FormatBalance(balance),
			h.c.Symbol(),
		)
	}

	keyIndex, err := h.PromptChoice("set default key", len(keys))
	if err != nil {
		return err
	}
	key := keys[keyIndex]
	return h.StoreDefaultKey(key.PublicKey())
}

// Balance prints the default key's balance on the default chain, or on every
// imported chain when [checkAllChains] is set.
func (h *Handler) Balance(checkAllChains bool) error {
	priv, err := h.GetDefaultKey()
	if err != nil {
		return err
	}
	addr := h.c.Address(priv.PublicKey())

	chains := map[ids.ID][]string{}
	if checkAllChains {
		chains, err = h.GetChains()
		if err != nil {
			return err
		}
		if len(chains) == 0 {
			return ErrNoChains
		}
	} else {
		chainID, uris, err := h.GetDefaultChain()
		if err != nil {
			return err
		}
		chains[chainID] = uris
	}

	ctx := context.Background()
	for chainID, uris := range chains {
		cli := rpc.NewJSONRPCClient(uris[0])
		balance, err := cli.Balance(ctx, addr)
		if err != nil {
			return err
		}
		utils.Outf(
			"{{cyan}}chainID:{{/}} %s {{cyan}}balance:{{/}} %s %s\n",
			chainID,
			utils.FormatBalance(balance),
			h.c.Symbol(),
		)
	}
	return nil
}
