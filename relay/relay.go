// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package relay

import (
	"context"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/neilotoole/errgroup"
	"go.uber.org/zap"

	"github.com/ava-labs/fungiblevm/chain"
)

// Node is a chain the relayer can read envelopes from and deliver envelopes
// to. Both in-process VMs and remote RPC clients satisfy it.
type Node interface {
	ChainID() ids.ID
	PendingEnvelopes(ctx context.Context) ([]*chain.Envelope, error)
	DeliverEnvelope(ctx context.Context, env *chain.Envelope) error
	MarkEnvelopeDelivered(ctx context.Context, envelopeID ids.ID) error
}

// Relayer moves envelopes between registered chains. It records the ID of
// every envelope it has handed to a destination in [db], so a crash between
// delivery and outbox acknowledgement never produces a second credit.
type Relayer struct {
	log      logging.Logger
	db       database.Database
	interval time.Duration

	nodesLock sync.RWMutex
	nodes     map[ids.ID]Node
}

func New(log logging.Logger, db database.Database, interval time.Duration) *Relayer {
	return &Relayer{
		log:      log,
		db:       db,
		interval: interval,
		nodes:    map[ids.ID]Node{},
	}
}

// Register adds [node] to the relayer's routing table.
func (r *Relayer) Register(node Node) error {
	r.nodesLock.Lock()
	defer r.nodesLock.Unlock()

	chainID := node.ChainID()
	if _, ok := r.nodes[chainID]; ok {
		return ErrDuplicateChain
	}
	r.nodes[chainID] = node
	return nil
}

// Run flushes pending envelopes on a fixed interval until [ctx] is canceled.
// Failed passes are retried on the next tick.
func (r *Relayer) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := r.Flush(ctx); err != nil {
				r.log.Warn("relay pass failed", zap.Error(err))
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Flush performs one relay pass over every registered chain.
func (r *Relayer) Flush(ctx context.Context) error {
	r.nodesLock.RLock()
	sources := make([]Node, 0, len(r.nodes))
	for _, node := range r.nodes {
		sources = append(sources, node)
	}
	r.nodesLock.RUnlock()

	eg, egCtx := errgroup.WithContext(ctx)
	for _, source := range sources {
		source := source
		eg.Go(func() error {
			return r.flushSource(egCtx, source)
		})
	}
	return eg.Wait()
}

// flushSource relays [source]'s pending envelopes in outbox order. The pass
// stops at the first failure so that nonce order is preserved across retries.
func (r *Relayer) flushSource(ctx context.Context, source Node) error {
	envelopes, err := source.PendingEnvelopes(ctx)
	if err != nil {
		return err
	}
	for _, env := range envelopes {
		if err := r.relay(ctx, source, env); err != nil {
			return err
		}
	}
	return nil
}

func (r *Relayer) relay(ctx context.Context, source Node, env *chain.Envelope) error {
	envelopeID := env.ID()
	delivered, err := r.db.Has(envelopeID[:])
	if err != nil {
		return err
	}
	if delivered {
		// The destination already has this envelope. Only the outbox
		// acknowledgement was lost, so repeat that alone.
		return source.MarkEnvelopeDelivered(ctx, envelopeID)
	}

	r.nodesLock.RLock()
	destination, ok := r.nodes[env.Destination]
	r.nodesLock.RUnlock()
	if !ok {
		// Leave the envelope pending until the destination is registered.
		r.log.Debug(
			"no node for destination chain",
			zap.Stringer("envelopeID", envelopeID),
			zap.Stringer("destination", env.Destination),
		)
		return nil
	}

	if err := destination.DeliverEnvelope(ctx, env); err != nil {
		return err
	}
	if err := r.db.Put(envelopeID[:], env.Destination[:]); err != nil {
		return err
	}
	r.log.Debug(
		"relayed envelope",
		zap.Stringer("envelopeID", envelopeID),
		zap.Stringer("source", env.Source),
		zap.Stringer("destination", env.Destination),
	)
	return source.MarkEnvelopeDelivered(ctx, envelopeID)
}
