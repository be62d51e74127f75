// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
)

var _ Mutable = (*DatabaseMutable)(nil)

// DatabaseMutable exposes an avalanchego database through the Mutable
// interface. Writes go straight to the underlying store; wrap it in a
// SimpleMutable for buffered commits.
type DatabaseMutable struct {
	db database.KeyValueReaderWriterDeleter
}

func FromDatabase(db database.KeyValueReaderWriterDeleter) *DatabaseMutable {
	return &DatabaseMutable{db: db}
}

func (d *DatabaseMutable) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return d.db.Get(key)
}

func (d *DatabaseMutable) Insert(_ context.Context, key []byte, value []byte) error {
	return d.db.Put(key, value)
}

func (d *DatabaseMutable) Remove(_ context.Context, key []byte) error {
	return d.db.Delete(key)
}
