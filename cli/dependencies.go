package cli

import "github.com/ava-labs/fungiblevm/crypto/ed25519"

type Controller interface {
	DatabasePath() string
	Symbol() string
	Address(ed25519.PublicKey) string
	ParseAddress(string) (ed25519.PublicKey, error)
}
