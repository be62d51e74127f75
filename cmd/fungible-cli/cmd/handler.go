// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/auth"
	"github.com/ava-labs/fungiblevm/cli"
	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/rpc"
	"github.com/ava-labs/fungiblevm/utils"
)

var _ cli.Controller = (*Controller)(nil)

type Handler struct {
	h *cli.Handler
}

func NewHandler(h *cli.Handler) *Handler {
	return &Handler{h}
}

func (h *Handler) Root() *cli.Handler {
	return h.h
}

func (h *Handler) DefaultActor() (
	ids.ID, ed25519.PrivateKey, *auth.ED25519Factory,
	*rpc.JSONRPCClient, error,
) {
	priv, err := h.h.GetDefaultKey()
	if err != nil {
		return ids.Empty, ed25519.EmptyPrivateKey, nil, nil, err
	}
	chainID, uris, err := h.h.GetDefaultChain()
	if err != nil {
		return ids.Empty, ed25519.EmptyPrivateKey, nil, nil, err
	}
	// For [DefaultActor], we always send requests to the first returned URI.
	return chainID, priv, auth.NewED25519Factory(priv), rpc.NewJSONRPCClient(uris[0]), nil
}

func (*Handler) GetBalance(
	ctx context.Context,
	cli *rpc.JSONRPCClient,
	publicKey ed25519.PublicKey,
) (uint64, error) {
	addr := utils.Address(publicKey)
	balance, err := cli.Balance(ctx, addr)
	if err != nil {
		return 0, err
	}
	if balance == 0 {
		utils.Outf("{{red}}balance:{{/}} 0 %s\n", consts.Symbol)
		utils.Outf("{{red}}please send funds to %s{{/}}\n", addr)
		utils.Outf("{{red}}exiting...{{/}}\n")
		return 0, nil
	}
	utils.Outf(
		"{{yellow}}balance:{{/}} %s %s\n",
		utils.FormatBalance(balance),
		consts.Symbol,
	)
	return balance, nil
}

type Controller struct {
	databasePath string
}

func NewController(databasePath string) *Controller {
	return &Controller{databasePath}
}

func (c *Controller) DatabasePath() string {
	return c.databasePath
}

func (*Controller) Symbol() string {
	return consts.Symbol
}

func (*Controller) Address(pk ed25519.PublicKey) string {
	return utils.Address(pk)
}

func (*Controller) ParseAddress(address string) (ed25519.PublicKey, error) {
	return utils.ParseAddress(address)
}
