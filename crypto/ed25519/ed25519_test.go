// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	require := require.New(t)

	priv, err := GeneratePrivateKey()
	require.NoError(err)

	msg := []byte("fungible")
	sig := Sign(msg, priv)
	require.True(Verify(msg, priv.PublicKey(), sig))
	require.False(Verify([]byte("fungible2"), priv.PublicKey(), sig))

	var badSig Signature
	copy(badSig[:], sig[:])
	badSig[0] ^= 0x01
	require.False(Verify(msg, priv.PublicKey(), badSig))
}

func TestBatchVerify(t *testing.T) {
	require := require.New(t)

	batch := NewBatch(8)
	for i := 0; i < 8; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(err)
		msg := []byte{byte(i)}
		batch.Add(msg, priv.PublicKey(), Sign(msg, priv))
	}
	require.True(batch.Verify())

	batch = NewBatch(2)
	priv, err := GeneratePrivateKey()
	require.NoError(err)
	batch.Add([]byte("ok"), priv.PublicKey(), Sign([]byte("ok"), priv))
	batch.Add([]byte("bad"), priv.PublicKey(), Sign([]byte("other"), priv))
	require.False(batch.Verify())
}

func TestAddressRoundTrip(t *testing.T) {
	require := require.New(t)

	priv, err := GeneratePrivateKey()
	require.NoError(err)
	pk := priv.PublicKey()

	addr := Address("fungible", pk)
	require.True(strings.HasPrefix(addr, "fungible1"))

	parsed, err := ParseAddress("fungible", addr)
	require.NoError(err)
	require.Equal(pk, parsed)

	_, err = ParseAddress("other", addr)
	require.ErrorIs(err, ErrIncorrectHrp)
}

func TestKeyFileRoundTrip(t *testing.T) {
	require := require.New(t)

	priv, err := GeneratePrivateKey()
	require.NoError(err)

	path := filepath.Join(t.TempDir(), "key")
	require.NoError(priv.Save(path))

	loaded, err := LoadKey(path)
	require.NoError(err)
	require.Equal(priv, loaded)
}
