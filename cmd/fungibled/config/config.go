// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/fungiblevm/trace"
)

const (
	defaultBuildInterval = 500 * time.Millisecond
	defaultRelayInterval = 500 * time.Millisecond
)

var (
	ErrNoChains       = errors.New("no chains configured")
	ErrDuplicateChain = errors.New("duplicate chain name")
)

type ChainConfig struct {
	// Name identifies the chain. The chainID is derived from it, so renaming
	// a chain abandons its database.
	Name string `json:"name"`

	// GenesisFile points at the chain's genesis JSON. Defaults apply when
	// empty.
	GenesisFile string `json:"genesis"`

	// Creator optionally names the address that receives the initial supply.
	Creator string `json:"creator"`
}

type Config struct {
	HTTPHost string `json:"host"`
	HTTPPort int    `json:"port"`

	DataDir string `json:"dataDir"`

	// LogDir enables rotated file logging when set.
	LogDir   string `json:"logDir"`
	LogLevel string `json:"logLevel"`

	NetworkID uint32 `json:"networkID"`

	// Intervals are in milliseconds.
	BuildIntervalMilli int64 `json:"buildInterval"`
	RelayIntervalMilli int64 `json:"relayInterval"`

	Trace trace.Config `json:"trace"`

	Chains []ChainConfig `json:"chains"`
}

func (c *Config) Verify() error {
	if len(c.Chains) == 0 {
		return ErrNoChains
	}
	names := make(map[string]struct{}, len(c.Chains))
	for _, chain := range c.Chains {
		if len(chain.Name) == 0 {
			return fmt.Errorf("%w: unnamed chain", ErrNoChains)
		}
		if _, ok := names[chain.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateChain, chain.Name)
		}
		names[chain.Name] = struct{}{}
	}
	return nil
}

func (c *Config) GetLogLevel() (logging.Level, error) {
	if len(c.LogLevel) == 0 {
		return logging.Info, nil
	}
	return logging.ToLevel(c.LogLevel)
}

func (c *Config) GetBuildInterval() time.Duration {
	if c.BuildIntervalMilli <= 0 {
		return defaultBuildInterval
	}
	return time.Duration(c.BuildIntervalMilli) * time.Millisecond
}

func (c *Config) GetRelayInterval() time.Duration {
	if c.RelayIntervalMilli <= 0 {
		return defaultRelayInterval
	}
	return time.Duration(c.RelayIntervalMilli) * time.Millisecond
}
