// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"reflect"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/units"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/pubsub"
	"github.com/ava-labs/fungiblevm/rpc"
	"github.com/ava-labs/fungiblevm/utils"
	"github.com/ava-labs/fungiblevm/window"
)

// Deployment describes a running daemon: its HTTP endpoint and the names of
// the chains it serves. The daemon derives each chainID from the chain's
// name, so the importer repeats that derivation to build chain URIs.
type Deployment struct {
	Endpoint string   `yaml:"endpoint"`
	Chains   []string `yaml:"chains"`
}

func (h *Handler) ImportChain() error {
	chainID, err := h.PromptID("chainID")
	if err != nil {
		return err
	}
	uri, err := h.PromptString("uri", 0, consts.MaxInt)
	if err != nil {
		return err
	}
	if err := h.StoreChain(chainID, uri); err != nil {
		return err
	}
	return h.StoreDefaultChain(chainID)
}

func (h *Handler) ImportDeployment(deploymentPath string) error {
	rawDeployment, err := os.ReadFile(deploymentPath)
	if err != nil {
		return err
	}
	var deployment Deployment
	if err := yaml.Unmarshal(rawDeployment, &deployment); err != nil {
		return err
	}
	if len(deployment.Chains) == 0 {
		return ErrNoChains
	}
	for _, name := range deployment.Chains {
		chainID := utils.ToID([]byte(name))
		uri := fmt.Sprintf("%s/ext/bc/%s", deployment.Endpoint, chainID)
		if err := h.StoreChain(chainID, uri); err != nil {
			if errors.Is(err, ErrDuplicate) {
				continue
			}
			return err
		}
		utils.Outf(
			"{{yellow}}imported chain:{{/}} %s {{yellow}}chainID:{{/}} %s {{yellow}}uri:{{/}} %s\n",
			name,
			chainID,
			uri,
		)
	}
	return h.StoreDefaultChain(utils.ToID([]byte(deployment.Chains[0])))
}

func (h *Handler) SetDefaultChain() error {
	chainID, _, err := h.PromptChain("set default chain", nil)
	if err != nil {
		return err
	}
	return h.StoreDefaultChain(chainID)
}

func (h *Handler) PrintChainInfo() error {
	_, uris, err := h.GetDefaultChain()
	if err != nil {
		return err
	}
	cli := rpc.NewJSONRPCClient(uris[0])
	networkID, chainID, err := cli.Network(context.Background())
	if err != nil {
		return err
	}
	utils.Outf(
		"{{cyan}}networkID:{{/}} %d {{cyan}}chainID:{{/}} %s\n",
		networkID,
		chainID,
	)
	return nil
}

func (h *Handler) WatchChain(hideTxs bool) error {
	ctx := context.Background()
	chainID, uris, err := h.PromptChain("select chainID", nil)
	if err != nil {
		return err
	}
	if err := h.CloseDatabase(); err != nil {
		return err
	}
	utils.Outf("{{yellow}}uri:{{/}} %s\n", uris[0])
	rcli := rpc.NewJSONRPCClient(uris[0])
	parser, err := rcli.Parser(ctx)
	if err != nil {
		return err
	}
	scli, err := rpc.NewWebSocketClient(uris[0], pubsub.MaxPendingMessages)
	if err != nil {
		return err
	}
	defer scli.Close()
	if err := scli.RegisterBlocks(); err != nil {
		return err
	}
	utils.Outf("{{green}}watching for new blocks on %s 👀{{/}}\n", chainID)
	var (
		start             time.Time
		lastBlock         int64
		lastBlockDetailed time.Time
		tpsWindow         = window.Window{}
	)
	for ctx.Err() == nil {
		blk, results, err := scli.ListenBlock(ctx, parser)
		if err != nil {
			return err
		}
		now := time.Now()
		if lastBlock != 0 {
			since := now.Unix() - lastBlock
			newWindow, err := window.Roll(tpsWindow, int(since))
			if err != nil {
				return err
			}
			tpsWindow = newWindow
			window.Update(&tpsWindow, window.WindowSliceSize-consts.Uint64Len, uint64(len(blk.Txs)))
			runningDuration := time.Since(start)
			tpsDivisor := math.Min(window.WindowSize, runningDuration.Seconds())
			utils.Outf(
				"{{green}}height:{{/}}%d {{green}}txs:{{/}}%d {{green}}envelopes:{{/}}%d {{green}}size:{{/}}%.2fKB {{green}}TPS:{{/}}%.2f {{green}}latency:{{/}}%dms {{green}}gap:{{/}}%dms\n",
				blk.Hght,
				len(blk.Txs),
				len(blk.Envelopes),
				float64(len(blk.Bytes()))/units.KiB,
				float64(window.Sum(tpsWindow))/tpsDivisor,
				now.UnixMilli()-blk.Tmstmp,
				time.Since(lastBlockDetailed).Milliseconds(),
			)
		} else {
			utils.Outf(
				"{{green}}height:{{/}}%d {{green}}txs:{{/}}%d {{green}}envelopes:{{/}}%d {{green}}size:{{/}}%.2fKB {{green}}latency:{{/}}%dms\n",
				blk.Hght,
				len(blk.Txs),
				len(blk.Envelopes),
				float64(len(blk.Bytes()))/units.KiB,
				now.UnixMilli()-blk.Tmstmp,
			)
			start = now
		}
		lastBlock = now.Unix()
		lastBlockDetailed = now
		if hideTxs {
			continue
		}
		// Envelope results come first in a block; transaction results follow.
		txResults := results[len(blk.Envelopes):]
		for i, tx := range blk.Txs {
			h.printTransaction(chainID, tx, txResults[i])
		}
	}
	return nil
}

func (h *Handler) printTransaction(chainID ids.ID, tx *chain.Transaction, result *chain.Result) {
	status := "⚠️"
	summaryStr := string(result.Error)
	if result.Success {
		status = "✅"
		if op, ok := tx.Operation.(*chain.Transfer); ok {
			summaryStr = fmt.Sprintf(
				"%s %s -> %s",
				utils.FormatBalance(op.Amount),
				h.c.Symbol(),
				h.c.Address(op.To.Owner),
			)
			if op.To.Chain != chainID {
				summaryStr += fmt.Sprintf(" (destination: %s)", op.To.Chain)
			}
		}
	}
	utils.Outf(
		"%s {{yellow}}%s{{/}} {{yellow}}signer:{{/}} %s {{yellow}}summary (%s):{{/}} [%s]\n",
		status,
		tx.ID(),
		h.c.Address(tx.Auth.Actor()),
		reflect.TypeOf(tx.Operation),
		summaryStr,
	)
}
