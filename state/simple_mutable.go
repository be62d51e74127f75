// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var _ Mutable = (*SimpleMutable)(nil)

type changeOp struct {
	value  []byte
	delete bool
}

// SimpleMutable buffers writes over a base view and applies them on Commit.
// Views layer: a per-transaction view commits into a per-block view, which
// commits into the database, so a failed unit of work leaves no trace.
type SimpleMutable struct {
	base Mutable

	changes map[string]*changeOp
}

func NewSimpleMutable(base Mutable) *SimpleMutable {
	return &SimpleMutable{base: base, changes: map[string]*changeOp{}}
}

func (s *SimpleMutable) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	if op, ok := s.changes[string(key)]; ok {
		if op.delete {
			return nil, database.ErrNotFound
		}
		return op.value, nil
	}
	return s.base.GetValue(ctx, key)
}

func (s *SimpleMutable) Insert(_ context.Context, key []byte, value []byte) error {
	s.changes[string(key)] = &changeOp{value: value}
	return nil
}

func (s *SimpleMutable) Remove(_ context.Context, key []byte) error {
	s.changes[string(key)] = &changeOp{delete: true}
	return nil
}

// Commit replays buffered changes into the base view in key order so
// database write order is deterministic across replicas.
func (s *SimpleMutable) Commit(ctx context.Context) error {
	keys := maps.Keys(s.changes)
	slices.Sort(keys)
	for _, k := range keys {
		op := s.changes[k]
		if op.delete {
			if err := s.base.Remove(ctx, []byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := s.base.Insert(ctx, []byte(k), op.value); err != nil {
			return err
		}
	}
	s.changes = map[string]*changeOp{}
	return nil
}
