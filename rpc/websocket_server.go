// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/codec"
	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/emap"
	"github.com/ava-labs/fungiblevm/pubsub"
)

type WebSocketServer struct {
	c Controller
	s *pubsub.Server

	blockListeners *pubsub.Connections

	txL         sync.Mutex
	txListeners map[ids.ID]*pubsub.Connections
	expiringTxs *emap.EMap[*chain.Transaction] // ensures all tx listeners are eventually responded to
}

func NewWebSocketServer(c Controller, maxPendingMessages int) (*WebSocketServer, *pubsub.Server) {
	w := &WebSocketServer{
		c:              c,
		blockListeners: pubsub.NewConnections(),
		txListeners:    map[ids.ID]*pubsub.Connections{},
		expiringTxs:    emap.NewEMap[*chain.Transaction](),
	}
	cfg := pubsub.NewDefaultServerConfig()
	cfg.MaxPendingMessages = maxPendingMessages
	w.s = pubsub.New(c.Logger(), cfg, w.MessageCallback())
	return w, w.s
}

// Note: no need to have a tx listener removal, this will happen when all
// submitted transactions are cleared.
func (w *WebSocketServer) AddTxListener(tx *chain.Transaction, c *pubsub.Connection) {
	w.txL.Lock()
	defer w.txL.Unlock()

	txID := tx.ID()
	if _, ok := w.txListeners[txID]; !ok {
		w.txListeners[txID] = pubsub.NewConnections()
	}
	w.txListeners[txID].Add(c)
	w.expiringTxs.Add([]*chain.Transaction{tx})
}

// RemoveTx notifies listeners that [txID] will never enter a block.
func (w *WebSocketServer) RemoveTx(txID ids.ID, err error) error {
	w.txL.Lock()
	defer w.txL.Unlock()

	return w.removeTx(txID, err)
}

func (w *WebSocketServer) removeTx(txID ids.ID, err error) error {
	listeners, ok := w.txListeners[txID]
	if !ok {
		return nil
	}
	bytes, err := PackRemovedTxMessage(txID, err)
	if err != nil {
		return err
	}
	w.s.Publish(append([]byte{TxMode}, bytes...), listeners)
	delete(w.txListeners, txID)
	// [expiringTxs] will be cleared eventually (does not support removal)
	return nil
}

func (w *WebSocketServer) setMinTx(t int64) error {
	w.txL.Lock()
	defer w.txL.Unlock()

	expired := w.expiringTxs.SetMin(t)
	for _, id := range expired {
		if err := w.removeTx(id, ErrExpired); err != nil {
			return err
		}
	}
	if exp := len(expired); exp > 0 {
		w.c.Logger().Debug("expired listeners", zap.Int("count", exp))
	}
	return nil
}

// Accepted pushes accepted blocks and tx results to subscribed connections.
func (w *WebSocketServer) Accepted(_ context.Context, b *chain.StatelessBlock) error {
	if w.blockListeners.Len() > 0 {
		bytes, err := PackBlockMessage(b)
		if err != nil {
			return err
		}
		inactiveConnection := w.s.Publish(append([]byte{BlockMode}, bytes...), w.blockListeners)
		for _, conn := range inactiveConnection {
			w.blockListeners.Remove(conn)
		}
	}

	w.txL.Lock()
	// Envelope results precede tx results within a block.
	txResults := b.Results()[len(b.Envelopes):]
	for i, tx := range b.Txs {
		txID := tx.ID()
		listeners, ok := w.txListeners[txID]
		if !ok {
			continue
		}
		bytes, err := PackAcceptedTxMessage(txID, txResults[i])
		if err != nil {
			w.txL.Unlock()
			return err
		}
		w.s.Publish(append([]byte{TxMode}, bytes...), listeners)
		delete(w.txListeners, txID)
		// [expiringTxs] will be cleared eventually (does not support removal)
	}
	w.txL.Unlock()
	return w.setMinTx(b.Tmstmp)
}

func (w *WebSocketServer) MessageCallback() pubsub.Callback {
	var (
		log                                = w.c.Logger()
		tracer                             = w.c.Tracer()
		operationRegistry, authRegistry, _ = w.c.Registry()
	)

	return func(msgBytes []byte, c *pubsub.Connection) {
		ctx, span := tracer.Start(context.Background(), "WebSocketServer.Callback")
		defer span.End()

		// Check empty messages
		if len(msgBytes) == 0 {
			log.Error("failed to unmarshal msg",
				zap.Int("len", len(msgBytes)),
			)
			return
		}

		switch msgBytes[0] {
		case BlockMode:
			w.blockListeners.Add(c)
			log.Debug("added block listener")
		case TxMode:
			msgBytes = msgBytes[1:]
			// Unmarshal TX
			p := codec.NewReader(msgBytes, consts.NetworkSizeLimit) // will likely be much smaller
			tx, err := chain.UnmarshalTx(p, operationRegistry, authRegistry)
			if err != nil {
				log.Error("failed to unmarshal tx",
					zap.Int("len", len(msgBytes)),
					zap.Error(err),
				)
				return
			}

			// We can't batch verify here because we don't want to invalidate
			// honest submissions if one connection sent an invalid transaction.
			msg, err := tx.Digest()
			if err != nil {
				// Should never occur because populated during unmarshal
				return
			}
			if err := tx.Auth.Verify(msg); err != nil {
				log.Error("failed to verify sig",
					zap.Error(err),
				)
				return
			}
			w.AddTxListener(tx, c)

			txID := tx.ID()
			if err := w.c.Submit(ctx, tx); err != nil {
				log.Debug("failed to submit tx",
					zap.Stringer("txID", txID),
					zap.Error(err),
				)
				if err := w.RemoveTx(txID, err); err != nil {
					log.Warn("unable to remove tx", zap.Error(err))
				}
				return
			}
			log.Debug("submitted tx", zap.Stringer("txID", txID))
		default:
			log.Error("unexpected message type",
				zap.Int("len", len(msgBytes)),
				zap.Uint8("mode", msgBytes[0]),
			)
		}
	}
}
