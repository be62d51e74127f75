// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"github.com/ava-labs/fungiblevm/codec"
	"github.com/ava-labs/fungiblevm/consts"
)

// CreateBatchMessage packs [msgs] into a single batch message.
func CreateBatchMessage(maxSize int, msgs [][]byte) ([]byte, error) {
	size := consts.IntLen
	for _, msg := range msgs {
		size += codec.BytesLen(msg)
	}
	msgBatch := codec.NewWriter(size, maxSize)
	msgBatch.PackInt(len(msgs))
	for _, msg := range msgs {
		msgBatch.PackBytes(msg)
	}
	return msgBatch.Bytes(), msgBatch.Err()
}

// ParseBatchMessage unpacks the messages in [msg].
func ParseBatchMessage(maxSize int, msg []byte) ([][]byte, error) {
	msgBatch := codec.NewReader(msg, maxSize)
	msgLen := msgBatch.UnpackInt(true)
	msgs := [][]byte{}
	for i := 0; i < msgLen; i++ {
		var nextMsg []byte
		msgBatch.UnpackBytes(-1, true, &nextMsg)
		if err := msgBatch.Err(); err != nil {
			return nil, err
		}
		msgs = append(msgs, nextMsg)
	}
	return msgs, msgBatch.Err()
}
