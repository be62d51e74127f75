// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"strings"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/gorilla/websocket"

	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/pubsub"
)

type WebSocketClient struct {
	conn *websocket.Conn

	writeLock sync.Mutex

	pendingBlocks chan []byte
	pendingTxs    chan []byte

	readStopped chan struct{}
	err         error

	cl sync.Once
}

// NewWebSocketClient creates a new client for the streaming rpc server.
// Dials into the server at [uri] and returns a client.
func NewWebSocketClient(uri string, pending int) (*WebSocketClient, error) {
	uri = strings.ReplaceAll(uri, "http://", "ws://")
	uri = strings.ReplaceAll(uri, "https://", "wss://")
	uri = strings.TrimSuffix(uri, "/")
	uri += WebSocketEndpoint
	conn, resp, err := websocket.DefaultDialer.Dial(uri, nil)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	wc := &WebSocketClient{
		conn:          conn,
		pendingBlocks: make(chan []byte, pending),
		pendingTxs:    make(chan []byte, pending),
		readStopped:   make(chan struct{}),
	}
	go func() {
		defer close(wc.readStopped)

		for {
			_, msgBatch, err := conn.ReadMessage()
			if err != nil {
				wc.err = err
				return
			}
			msgs, err := pubsub.ParseBatchMessage(pubsub.MaxWriteMessageSize, msgBatch)
			if err != nil {
				wc.err = err
				return
			}
			for _, msg := range msgs {
				if len(msg) == 0 {
					continue
				}
				tmsg := msg[1:]
				switch msg[0] {
				case BlockMode:
					wc.pendingBlocks <- tmsg
				case TxMode:
					wc.pendingTxs <- tmsg
				}
			}
		}
	}()
	return wc, nil
}

func (c *WebSocketClient) write(msg []byte) error {
	select {
	case <-c.readStopped:
		return c.err
	default:
	}
	batch, err := pubsub.CreateBatchMessage(pubsub.MaxReadMessageSize, [][]byte{msg})
	if err != nil {
		return err
	}
	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	return c.conn.WriteMessage(websocket.BinaryMessage, batch)
}

// RegisterBlocks subscribes this client to the accepted block stream.
func (c *WebSocketClient) RegisterBlocks() error {
	return c.write([]byte{BlockMode})
}

// IssueTx sends [tx] to the streaming rpc server.
func (c *WebSocketClient) IssueTx(tx *chain.Transaction) error {
	return c.write(append([]byte{TxMode}, tx.Bytes()...))
}

// ListenBlock listens for block messages from the streaming server.
func (c *WebSocketClient) ListenBlock(
	ctx context.Context,
	parser chain.Parser,
) (*chain.StatelessBlock, []*chain.Result, error) {
	select {
	case msg := <-c.pendingBlocks:
		return UnpackBlockMessage(msg, parser)
	case <-c.readStopped:
		return nil, nil, c.err
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

// ListenTx listens for responses from the streaming server.
func (c *WebSocketClient) ListenTx(ctx context.Context) (ids.ID, error, *chain.Result, error) {
	select {
	case msg := <-c.pendingTxs:
		return UnpackTxMessage(msg)
	case <-c.readStopped:
		return ids.Empty, nil, nil, c.err
	case <-ctx.Done():
		return ids.Empty, nil, nil, ctx.Err()
	}
}

// Close closes [c]'s connection to the streaming rpc server.
func (c *WebSocketClient) Close() error {
	var err error
	c.cl.Do(func() {
		err = c.conn.Close()
	})
	return err
}
