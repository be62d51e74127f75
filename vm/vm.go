// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"errors"
	"sync"
	"time"

	ametrics "github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/fungiblevm/auth"
	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/emap"
	"github.com/ava-labs/fungiblevm/genesis"
	"github.com/ava-labs/fungiblevm/mempool"
	"github.com/ava-labs/fungiblevm/registry"
	"github.com/ava-labs/fungiblevm/state"
	"github.com/ava-labs/fungiblevm/storage"
)

const (
	mempoolSize      = 2_048
	mempoolPayerSize = 32
	maxBuildTxs      = 1_024
)

var _ chain.Parser = (*VM)(nil)

// VM hosts one chain's replica of the ledger: its database, mempool, inbound
// envelope queue, and block production. Execution is fully sequential; all
// state transitions happen under [stateLock].
type VM struct {
	log     logging.Logger
	tracer  trace.Tracer
	metrics *metrics

	networkID uint32
	chainID   ids.ID
	genesis   *genesis.Genesis

	db        database.Database
	processor *chain.Processor
	mempool   *mempool.Mempool

	// seen tracks accepted txIDs until their expiry so a tx cannot be
	// replayed within its validity window.
	seen *emap.EMap[*chain.Transaction]

	// stateLock orders block execution, outbox bookkeeping, and reads over
	// the chain's database.
	stateLock    sync.RWMutex
	lastAccepted *chain.StatelessBlock

	inboxLock sync.Mutex
	inbox     []*chain.Envelope

	acceptedSubscribers []AcceptedSubscriber
}

// New opens (or creates) a chain over [db]. A fresh database is initialized
// from [genesisBytes]: the initial supply goes to [creator] if non-nil and a
// height-0 block is committed.
func New(
	ctx context.Context,
	log logging.Logger,
	tracer trace.Tracer,
	db database.Database,
	genesisBytes []byte,
	creator *ed25519.PublicKey,
	networkID uint32,
	chainID ids.ID,
	gatherer ametrics.MultiGatherer,
) (*VM, error) {
	g, err := genesis.New(genesisBytes)
	if err != nil {
		return nil, err
	}
	m, err := newMetrics(gatherer)
	if err != nil {
		return nil, err
	}
	v := &VM{
		log:     log,
		tracer:  tracer,
		metrics: m,

		networkID: networkID,
		chainID:   chainID,
		genesis:   g,

		db:        db,
		processor: chain.NewProcessor(tracer),
		mempool:   mempool.New(tracer, mempoolSize, mempoolPayerSize),
		seen:      emap.NewEMap[*chain.Transaction](),
	}

	height, blkID, err := storage.GetLastAccepted(ctx, state.FromDatabase(db))
	switch {
	case err == nil:
		raw, err := storage.GetBlock(ctx, state.FromDatabase(db), height)
		if err != nil {
			return nil, err
		}
		blk, err := chain.ParseBlock(raw, v)
		if err != nil {
			return nil, err
		}
		v.lastAccepted = blk
		log.Info("resumed chain",
			zap.Stringer("chainID", chainID),
			zap.Uint64("height", height),
			zap.Stringer("blkID", blkID),
		)
	case errors.Is(err, database.ErrNotFound):
		if err := v.initGenesis(ctx, creator); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return v, nil
}

// initGenesis populates the empty ledger and commits the height-0 block.
func (v *VM) initGenesis(ctx context.Context, creator *ed25519.PublicKey) error {
	vdb := versiondb.New(v.db)
	defer vdb.Abort()

	mu := state.NewSimpleMutable(state.FromDatabase(vdb))
	if err := v.genesis.Load(ctx, v.tracer, mu, creator); err != nil {
		return err
	}

	blk := chain.NewBlock(ids.Empty, time.Now().UnixMilli(), 0, nil, nil)
	if err := blk.Init(); err != nil {
		return err
	}
	if err := storage.SetBlock(ctx, mu, blk.Hght, blk.Bytes()); err != nil {
		return err
	}
	if err := storage.SetLastAccepted(ctx, mu, blk.Hght, blk.ID()); err != nil {
		return err
	}
	if err := mu.Commit(ctx); err != nil {
		return err
	}
	if err := vdb.Commit(); err != nil {
		return err
	}
	v.lastAccepted = blk
	v.log.Info("loaded genesis",
		zap.Stringer("chainID", v.chainID),
		zap.Uint64("initialSupply", v.genesis.InitialSupply),
		zap.Bool("creatorFunded", creator != nil),
	)
	return nil
}

func (v *VM) Logger() logging.Logger { return v.log }

func (v *VM) Tracer() trace.Tracer { return v.tracer }

func (v *VM) Genesis() *genesis.Genesis { return v.genesis }

func (v *VM) NetworkID() uint32 { return v.networkID }

func (v *VM) ChainID() ids.ID { return v.chainID }

func (v *VM) Rules(int64) chain.Rules {
	return v.genesis.Rules(v.networkID, v.chainID)
}

func (*VM) Registry() (chain.OperationRegistry, chain.AuthRegistry, chain.MessageRegistry) {
	return registry.Operation, registry.Auth, registry.Message
}

// Submit verifies [tx] against the current time and queues it for the next
// block. Submitting an already pending tx is a no-op.
func (v *VM) Submit(ctx context.Context, tx *chain.Transaction) error {
	ctx, span := v.tracer.Start(ctx, "VM.Submit")
	defer span.End()

	v.metrics.txsSubmitted.Inc()
	if err := tx.Verify(); err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	if err := tx.Base.Execute(v.chainID, v.Rules(now), now); err != nil {
		return err
	}
	if v.seen.Any([]*chain.Transaction{tx}) {
		return ErrRepeatedTx
	}
	if v.mempool.Has(ctx, tx.ID()) {
		return nil
	}
	v.mempool.Add(ctx, []*chain.Transaction{tx})
	if !v.mempool.Has(ctx, tx.ID()) {
		return ErrNotAdded
	}
	v.log.Debug("tx submitted", zap.Stringer("txID", tx.ID()))
	return nil
}

// DeliverEnvelope queues an inbound envelope for the next block. The
// destination must be this chain and the payload must decode; beyond that
// the envelope executes unconditionally.
func (v *VM) DeliverEnvelope(ctx context.Context, env *chain.Envelope) error {
	_, span := v.tracer.Start(ctx, "VM.DeliverEnvelope")
	defer span.End()

	if env.Destination != v.chainID {
		return chain.ErrMisdirectedEnvelope
	}
	if _, err := env.Message(registry.Message); err != nil {
		return err
	}

	v.inboxLock.Lock()
	defer v.inboxLock.Unlock()
	v.inbox = append(v.inbox, env)
	v.log.Debug("envelope queued",
		zap.Stringer("envelopeID", env.ID()),
		zap.Stringer("source", env.Source),
	)
	return nil
}

func (v *VM) drainInbox() []*chain.Envelope {
	v.inboxLock.Lock()
	defer v.inboxLock.Unlock()

	envelopes := v.inbox
	v.inbox = nil
	return envelopes
}

// dropRepeats filters out any tx accepted within its validity window. A
// repeat can slip into the mempool when a client resubmits after acceptance
// but before expiry.
func (v *VM) dropRepeats(txs []*chain.Transaction) []*chain.Transaction {
	fresh := make([]*chain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if v.seen.Any([]*chain.Transaction{tx}) {
			continue
		}
		fresh = append(fresh, tx)
	}
	return fresh
}

// verified drops any tx whose auth does not check out. The batch path covers
// the common case where everything from Submit is still valid.
func (v *VM) verified(txs []*chain.Transaction) []*chain.Transaction {
	if len(txs) == 0 {
		return txs
	}
	if err := auth.BatchVerify(txs); err == nil {
		return txs
	}
	valid := make([]*chain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if err := tx.Verify(); err != nil {
			v.log.Warn("dropping tx with invalid auth",
				zap.Stringer("txID", tx.ID()),
				zap.Error(err),
			)
			continue
		}
		valid = append(valid, tx)
	}
	return valid
}

// BuildBlock drains the inbox and mempool into a block, executes it, and
// commits the results atomically. It returns ErrNoPendingWork when there is
// nothing to do.
func (v *VM) BuildBlock(ctx context.Context) (*chain.StatelessBlock, error) {
	ctx, span := v.tracer.Start(ctx, "VM.BuildBlock")
	defer span.End()

	v.stateLock.Lock()
	defer v.stateLock.Unlock()

	tmstmp := time.Now().UnixMilli()
	if expired := v.mempool.SetMinTimestamp(ctx, tmstmp); len(expired) > 0 {
		v.metrics.txsExpired.Add(float64(len(expired)))
		v.log.Debug("dropped expired txs", zap.Int("count", len(expired)))
	}
	v.seen.SetMin(tmstmp)

	envelopes := v.drainInbox()
	txs := v.verified(v.dropRepeats(v.mempool.Build(ctx, maxBuildTxs)))
	if len(envelopes) == 0 && len(txs) == 0 {
		return nil, ErrNoPendingWork
	}

	parent := v.lastAccepted
	blk := chain.NewBlock(parent.ID(), tmstmp, parent.Hght+1, envelopes, txs)
	if err := blk.Init(); err != nil {
		return nil, err
	}

	vdb := versiondb.New(v.db)
	defer vdb.Abort()

	base := state.NewSimpleMutable(state.FromDatabase(vdb))
	results, err := v.processor.Execute(ctx, v, base, blk)
	if err != nil {
		return nil, err
	}
	for i, tx := range blk.Txs {
		result := results[len(blk.Envelopes)+i]
		if err := storage.SetTransaction(ctx, base, tx.ID(), blk.Tmstmp, result.Success); err != nil {
			return nil, err
		}
	}
	if err := storage.SetBlock(ctx, base, blk.Hght, blk.Bytes()); err != nil {
		return nil, err
	}
	if err := storage.SetLastAccepted(ctx, base, blk.Hght, blk.ID()); err != nil {
		return nil, err
	}
	if err := base.Commit(ctx); err != nil {
		return nil, err
	}
	if err := vdb.Commit(); err != nil {
		return nil, err
	}
	v.lastAccepted = blk
	v.seen.Add(blk.Txs)

	v.recordResults(blk, results)
	for _, sub := range v.acceptedSubscribers {
		if err := sub.Accepted(ctx, blk); err != nil {
			v.log.Warn("accepted subscriber failed", zap.Error(err))
		}
	}
	v.log.Info("block accepted",
		zap.Uint64("height", blk.Hght),
		zap.Stringer("blkID", blk.ID()),
		zap.Int("envelopes", len(blk.Envelopes)),
		zap.Int("txs", len(blk.Txs)),
	)
	return blk, nil
}

func (v *VM) recordResults(blk *chain.StatelessBlock, results []*chain.Result) {
	v.metrics.blocksBuilt.Inc()
	for i, result := range results {
		inbound := i < len(blk.Envelopes)
		switch {
		case inbound && result.Success:
			v.metrics.envelopesDelivered.Inc()
			v.metrics.credits.Inc()
		case !inbound && result.Success:
			v.metrics.txsAccepted.Inc()
			v.metrics.transfers.Inc()
		case !inbound:
			v.metrics.txsFailed.Inc()
		}
		if result.Outgoing != nil {
			v.metrics.envelopesEmitted.Inc()
		}
	}
}

// AddAcceptedSubscriber registers [sub] for accepted blocks. Must be called
// before block building starts.
func (v *VM) AddAcceptedSubscriber(sub AcceptedSubscriber) {
	v.acceptedSubscribers = append(v.acceptedSubscribers, sub)
}

func (v *VM) LastAcceptedBlock() *chain.StatelessBlock {
	v.stateLock.RLock()
	defer v.stateLock.RUnlock()

	return v.lastAccepted
}

// Balance reads [owner]'s committed balance.
func (v *VM) Balance(ctx context.Context, owner ed25519.PublicKey) (uint64, error) {
	_, span := v.tracer.Start(ctx, "VM.Balance")
	defer span.End()

	v.stateLock.RLock()
	defer v.stateLock.RUnlock()

	return storage.GetBalance(ctx, state.FromDatabase(v.db), owner)
}

// GetTransaction reports whether [txID] has executed, at what block
// timestamp, and whether it succeeded.
func (v *VM) GetTransaction(ctx context.Context, txID ids.ID) (bool, int64, bool, error) {
	_, span := v.tracer.Start(ctx, "VM.GetTransaction")
	defer span.End()

	v.stateLock.RLock()
	defer v.stateLock.RUnlock()

	return storage.GetTransaction(ctx, state.FromDatabase(v.db), txID)
}

// PendingEnvelopes returns every outbox envelope not yet marked delivered.
func (v *VM) PendingEnvelopes(ctx context.Context) ([]*chain.Envelope, error) {
	_, span := v.tracer.Start(ctx, "VM.PendingEnvelopes")
	defer span.End()

	v.stateLock.RLock()
	defer v.stateLock.RUnlock()

	raws, err := storage.GetPendingEnvelopes(v.db)
	if err != nil {
		return nil, err
	}
	envelopes := make([]*chain.Envelope, 0, len(raws))
	for _, raw := range raws {
		env, err := chain.ParseEnvelope(raw)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, env)
	}
	return envelopes, nil
}

// MarkEnvelopeDelivered flips the outbox record for [envID] once the
// transport has handed it to the destination.
func (v *VM) MarkEnvelopeDelivered(ctx context.Context, envID ids.ID) error {
	_, span := v.tracer.Start(ctx, "VM.MarkEnvelopeDelivered")
	defer span.End()

	v.stateLock.Lock()
	defer v.stateLock.Unlock()

	return storage.MarkEnvelopeDelivered(ctx, state.FromDatabase(v.db), envID)
}

// CallApplication rejects generic application calls; the ledger's only
// operation is Transfer.
func (*VM) CallApplication(context.Context, []byte) ([]byte, error) {
	return nil, ErrCallsNotSupported
}

// CallSession rejects session handles; the ledger holds no sessions.
func (*VM) CallSession(context.Context, []byte) ([]byte, error) {
	return nil, ErrSessionsNotSupported
}

func (v *VM) Shutdown(context.Context) error {
	v.log.Info("shutting down chain", zap.Stringer("chainID", v.chainID))
	return v.db.Close()
}
