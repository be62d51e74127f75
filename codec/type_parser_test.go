// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testA struct{}

type testB struct{}

func TestTypeParser(t *testing.T) {
	require := require.New(t)
	parser := NewTypeParser[any]()

	require.NoError(parser.Register(&testA{}, func(*Packer) (any, error) {
		return &testA{}, nil
	}))
	require.NoError(parser.Register(&testB{}, func(*Packer) (any, error) {
		return &testB{}, nil
	}))

	index, _, ok := parser.LookupType(&testA{})
	require.True(ok)
	require.Equal(uint8(0), index)

	index, _, ok = parser.LookupType(&testB{})
	require.True(ok)
	require.Equal(uint8(1), index)

	f, ok := parser.LookupIndex(1)
	require.True(ok)
	v, err := f(nil)
	require.NoError(err)
	require.IsType(&testB{}, v)

	_, ok = parser.LookupIndex(2)
	require.False(ok)

	require.ErrorIs(parser.Register(&testA{}, nil), ErrDuplicateItem)
}
