// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	// Name of the VM and the namespace for its metrics and API endpoints.
	Name   = "fungiblevm"
	Symbol = "FUNG"
	// HRP is the human-readable prefix of bech32 addresses.
	HRP      = "fungible"
	Decimals = 9

	Version = "v0.0.1"
)

const (
	IDLen     = 32
	IntLen    = 4
	Uint64Len = 8
	Int64Len  = 8
	ByteLen   = 1
	BoolLen   = 1
	MaxUint8  = ^uint8(0)
	MaxUint64 = ^uint64(0)
	MaxInt    = int(^uint(0) >> 1)

	// MaxBalance is the ceiling a credit saturates at. A receiving chain can
	// never be pushed past it by an inbound message.
	MaxBalance = MaxUint64

	// NetworkSizeLimit bounds any single wire object (transaction, envelope,
	// block).
	NetworkSizeLimit = 2_718_281 // 2.7 MB

	MillisecondsPerSecond = 1000
)
