// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fungiblevm/crypto/ed25519"
)

func TestToIDDeterministic(t *testing.T) {
	require := require.New(t)

	a := ToID([]byte("transfer"))
	b := ToID([]byte("transfer"))
	require.Equal(a, b)
	require.NotEqual(a, ToID([]byte("credit")))
}

func TestAddressRoundTrip(t *testing.T) {
	require := require.New(t)

	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	pk := priv.PublicKey()

	parsed, err := ParseAddress(Address(pk))
	require.NoError(err)
	require.Equal(pk, parsed)
}

func TestFormatParseBalance(t *testing.T) {
	require := require.New(t)

	require.Equal("1.000000000", FormatBalance(1_000_000_000))
	require.Equal("0.000000001", FormatBalance(1))

	v, err := ParseBalance("1.5")
	require.NoError(err)
	require.Equal(uint64(1_500_000_000), v)

	_, err = ParseBalance("not a number")
	require.Error(err)
}
