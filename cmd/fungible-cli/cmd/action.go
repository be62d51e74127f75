// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/utils"
)

var actionCmd = &cobra.Command{
	Use: "action",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var transferCmd = &cobra.Command{
	Use: "transfer",
	RunE: func(*cobra.Command, []string) error {
		ctx := context.Background()
		chainID, priv, factory, cli, err := handler.DefaultActor()
		if err != nil {
			return err
		}

		// Get balance info
		balance, err := handler.GetBalance(ctx, cli, priv.PublicKey())
		if balance == 0 || err != nil {
			return err
		}

		// Select recipient
		recipient, err := handler.Root().PromptAddress("recipient")
		if err != nil {
			return err
		}

		// Select destination chain
		destination := chainID
		crossChain, err := handler.Root().PromptBool("cross-chain transfer")
		if err != nil {
			return err
		}
		if crossChain {
			destination, err = handler.Root().PromptID("destination chainID")
			if err != nil {
				return err
			}
		}

		// Select amount
		amount, err := handler.Root().PromptAmount("amount", balance, nil)
		if err != nil {
			return err
		}

		// Confirm action
		cont, err := handler.Root().PromptContinue()
		if !cont || err != nil {
			return err
		}

		// Generate transaction
		parser, err := cli.Parser(ctx)
		if err != nil {
			return err
		}
		submit, tx, err := cli.GenerateTransaction(parser, &chain.Transfer{
			Owner:  priv.PublicKey(),
			Amount: amount,
			To: chain.Account{
				Chain: destination,
				Owner: recipient,
			},
		}, factory)
		if err != nil {
			return err
		}
		if err := submit(ctx); err != nil {
			return err
		}
		success, err := cli.WaitForTransaction(ctx, tx.ID())
		if err != nil {
			return err
		}
		handler.Root().PrintStatus(tx.ID(), success)
		if success && crossChain {
			utils.Outf("{{yellow}}credit lands on %s once the relayer delivers it{{/}}\n", destination)
		}
		return nil
	},
}
