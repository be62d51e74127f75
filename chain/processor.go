// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"

	"github.com/ava-labs/fungiblevm/state"
	"github.com/ava-labs/fungiblevm/storage"
	"github.com/ava-labs/fungiblevm/utils"
)

type Processor struct {
	tracer trace.Tracer
}

func NewProcessor(tracer trace.Tracer) *Processor {
	return &Processor{tracer: tracer}
}

// Execute runs [blk] over [view]: inbound envelopes first, then
// transactions, each unit in its own layered view so a failure leaves no
// partial writes. Results are returned in execution order and recorded on
// [blk]. An error return means a storage fault and aborts the block.
func (p *Processor) Execute(
	ctx context.Context,
	parser Parser,
	view state.Mutable,
	blk *StatelessBlock,
) ([]*Result, error) {
	ctx, span := p.tracer.Start(ctx, "Processor.Execute")
	defer span.End()

	var (
		chainID = parser.ChainID()
		rules   = parser.Rules(blk.Tmstmp)
		results = make([]*Result, 0, len(blk.Envelopes)+len(blk.Txs))
	)
	_, _, messageRegistry := parser.Registry()

	for _, env := range blk.Envelopes {
		result, err := p.deliver(ctx, messageRegistry, chainID, view, env)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	for _, tx := range blk.Txs {
		result, err := p.execute(ctx, rules, chainID, view, tx, blk.Tmstmp)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	blk.results = results
	return results, nil
}

func (p *Processor) deliver(
	ctx context.Context,
	registry MessageRegistry,
	chainID ids.ID,
	view state.Mutable,
	env *Envelope,
) (*Result, error) {
	if env.Destination != chainID {
		return &Result{Success: false, Error: utils.ErrBytes(ErrMisdirectedEnvelope)}, nil
	}
	msg, err := env.Message(registry)
	if err != nil {
		return &Result{Success: false, Error: utils.ErrBytes(err)}, nil
	}
	tview := state.NewSimpleMutable(view)
	if err := msg.Execute(ctx, tview); err != nil {
		return nil, err
	}
	if err := tview.Commit(ctx); err != nil {
		return nil, err
	}
	return &Result{Success: true}, nil
}

func (p *Processor) execute(
	ctx context.Context,
	rules Rules,
	chainID ids.ID,
	view state.Mutable,
	tx *Transaction,
	tmstmp int64,
) (*Result, error) {
	if err := tx.Base.Execute(chainID, rules, tmstmp); err != nil {
		return &Result{Success: false, Error: utils.ErrBytes(err)}, nil
	}
	var (
		actor = tx.Auth.Actor()
		tview = state.NewSimpleMutable(view)
	)
	result, err := tx.Operation.Execute(ctx, chainID, tview, &actor, tx.ID())
	if err != nil {
		return nil, err
	}
	if !result.Success {
		// the failed unit's buffered view is discarded wholesale
		return result, nil
	}
	if out := result.Outgoing; out != nil {
		out.Source = chainID
		nonce, err := storage.GetOutboxNonce(ctx, tview)
		if err != nil {
			return nil, err
		}
		out.Nonce = nonce
		if err := out.Init(); err != nil {
			return nil, err
		}
		if err := storage.SetOutgoingEnvelope(ctx, tview, out.ID(), out.Bytes()); err != nil {
			return nil, err
		}
		if err := storage.SetOutboxNonce(ctx, tview, nonce+1); err != nil {
			return nil, err
		}
	}
	if err := tview.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}
