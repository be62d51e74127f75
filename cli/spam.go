// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fungiblevm/auth"
	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/pubsub"
	"github.com/ava-labs/fungiblevm/rpc"
	"github.com/ava-labs/fungiblevm/utils"
)

const fundingBatchSize = 16

// Spam issues a ring of transfers between ephemeral accounts until [ctx] is
// cancelled. The root key funds the accounts up front; whatever they hold
// when the spammer exits is stranded.
func (h *Handler) Spam(ctx context.Context) error {
	chainID, uris, err := h.PromptChain("select chainID", nil)
	if err != nil {
		return err
	}
	keys, err := h.GetKeys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return ErrNoKeys
	}
	cli := rpc.NewJSONRPCClient(uris[0])
	balances := make([]uint64, len(keys))
	for i := 0; i < len(keys); i++ {
		addr := h.c.Address(keys[i].PublicKey())
		balance, err := cli.Balance(ctx, addr)
		if err != nil {
			return err
		}
		balances[i] = balance
		utils.Outf(
			"%d) {{cyan}}address:{{/}} %s {{cyan}}balance:{{/}} %s %s\n",
			i,
			addr,
			utils.FormatBalance(balance),
			h.c.Symbol(),
		)
	}
	keyIndex, err := h.PromptChoice("select root key", len(keys))
	if err != nil {
		return err
	}
	root := keys[keyIndex]
	rootBalance := balances[keyIndex]

	numAccounts, err := h.PromptInt("number of accounts", consts.MaxInt)
	if err != nil {
		return err
	}
	if numAccounts < 2 {
		return ErrInsufficientAccounts
	}
	txsPerSecond, err := h.PromptInt("txs to try and issue per second", consts.MaxInt)
	if err != nil {
		return err
	}

	// No longer using db, so we close
	if err := h.CloseDatabase(); err != nil {
		return err
	}

	parser, err := cli.Parser(ctx)
	if err != nil {
		return err
	}

	accounts := make([]ed25519.PrivateKey, numAccounts)
	factories := make([]chain.AuthFactory, numAccounts)
	for i := range accounts {
		priv, err := ed25519.GeneratePrivateKey()
		if err != nil {
			return err
		}
		accounts[i] = priv
		factories[i] = auth.NewED25519Factory(priv)
	}

	distAmount := rootBalance / uint64(numAccounts+1)
	if distAmount == 0 {
		return ErrInsufficientBalance
	}
	utils.Outf(
		"{{yellow}}distributing funds to each account:{{/}} %s %s\n",
		utils.FormatBalance(distAmount),
		h.c.Symbol(),
	)
	rootFactory := auth.NewED25519Factory(root)
	// The mempool caps pending transactions per payer, so fund in batches.
	for start := 0; start < numAccounts; {
		end := min(start+fundingBatchSize, numAccounts)
		txIDs := make([]ids.ID, 0, end-start)
		for i := start; i < end; i++ {
			submit, tx, err := cli.GenerateTransaction(parser, &chain.Transfer{
				Owner:  root.PublicKey(),
				Amount: distAmount,
				To: chain.Account{
					Chain: chainID,
					Owner: accounts[i].PublicKey(),
				},
			}, rootFactory)
			if err != nil {
				return err
			}
			if err := submit(ctx); err != nil {
				return err
			}
			txIDs = append(txIDs, tx.ID())
		}
		for _, txID := range txIDs {
			success, err := cli.WaitForTransaction(ctx, txID)
			if err != nil {
				return err
			}
			if !success {
				return ErrTxFailed
			}
		}
		start = end
	}
	utils.Outf("{{yellow}}distributed funds to {{/}}%d{{yellow}} accounts{{/}}\n", numAccounts)

	scli, err := rpc.NewWebSocketClient(uris[0], pubsub.MaxPendingMessages)
	if err != nil {
		return err
	}
	defer scli.Close()

	var issued, confirmed, failed uint64

	// Confirmation listener. Closing the websocket client unblocks it.
	go func() {
		for {
			_, dErr, result, err := scli.ListenTx(context.TODO())
			if err != nil {
				return
			}
			if dErr != nil || result == nil || !result.Success {
				atomic.AddUint64(&failed, 1)
				continue
			}
			atomic.AddUint64(&confirmed, 1)
		}
	}()

	// Issue transfers in a ring: each account sends 1 unit to the next.
	issuerCtx, cancelIssuer := context.WithCancel(ctx)
	defer cancelIssuer()
	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for round := 0; ; round++ {
			select {
			case <-issuerCtx.Done():
				return
			case <-t.C:
			}
			for j := 0; j < txsPerSecond; j++ {
				sender := (round*txsPerSecond + j) % numAccounts
				recipient := (sender + 1) % numAccounts
				_, tx, err := cli.GenerateTransaction(parser, &chain.Transfer{
					Owner:  accounts[sender].PublicKey(),
					Amount: 1,
					To: chain.Account{
						Chain: chainID,
						Owner: accounts[recipient].PublicKey(),
					},
				}, factories[sender])
				if err != nil {
					utils.Outf("{{red}}unable to generate tx:{{/}} %v\n", err)
					continue
				}
				if err := scli.IssueTx(tx); err != nil {
					utils.Outf("{{red}}unable to issue tx:{{/}} %v\n", err)
					return
				}
				atomic.AddUint64(&issued, 1)
			}
		}
	}()

	utils.Outf(
		"{{green}}spamming with %d accounts at %d txs/second (ctrl+c to stop){{/}}\n",
		numAccounts,
		txsPerSecond,
	)
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			i := atomic.LoadUint64(&issued)
			c := atomic.LoadUint64(&confirmed)
			f := atomic.LoadUint64(&failed)
			utils.Outf(
				"{{yellow}}issued:{{/}} %d {{yellow}}confirmed:{{/}} %d {{yellow}}failed:{{/}} %d {{yellow}}inflight:{{/}} %d\n",
				i, c, f, i-c-f,
			)
		case <-ctx.Done():
			utils.Outf(
				"{{green}}spam complete:{{/}} issued=%d confirmed=%d failed=%d\n",
				atomic.LoadUint64(&issued),
				atomic.LoadUint64(&confirmed),
				atomic.LoadUint64(&failed),
			)
			return nil
		}
	}
}
