// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ametrics "github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/fungiblevm/cmd/fungibled/config"
	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/pebble"
	"github.com/ava-labs/fungiblevm/pubsub"
	"github.com/ava-labs/fungiblevm/relay"
	"github.com/ava-labs/fungiblevm/rpc"
	"github.com/ava-labs/fungiblevm/server"
	"github.com/ava-labs/fungiblevm/storage"
	"github.com/ava-labs/fungiblevm/trace"
	"github.com/ava-labs/fungiblevm/utils"
	"github.com/ava-labs/fungiblevm/vm"
)

var (
	allowedOrigins  = []string{"*"}
	allowedHosts    = []string{"*"}
	shutdownTimeout = 30 * time.Second
	httpConfig      = server.HTTPConfig{
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
)

func fatal(l logging.Logger, msg string, fields ...zap.Field) {
	l.Fatal(msg, fields...)
	os.Exit(1)
}

func main() {
	// Load config
	if len(os.Args) != 2 {
		utils.Outf("{{red}}no config file specified{{/}}\n")
		os.Exit(1)
	}
	configPath := os.Args[1]
	rawConfig, err := os.ReadFile(configPath)
	if err != nil {
		utils.Outf("{{red}}cannot open config file (%s){{/}}: %v\n", configPath, err)
		os.Exit(1)
	}
	var c config.Config
	if err := json.Unmarshal(rawConfig, &c); err != nil {
		utils.Outf("{{red}}cannot read config file{{/}}: %v\n", err)
		os.Exit(1)
	}
	if err := c.Verify(); err != nil {
		utils.Outf("{{red}}invalid config{{/}}: %v\n", err)
		os.Exit(1)
	}
	level, err := c.GetLogLevel()
	if err != nil {
		utils.Outf("{{red}}invalid log level{{/}}: %v\n", err)
		os.Exit(1)
	}
	log := newLogger(level, c.LogDir)

	tracer, err := trace.New(&c.Trace)
	if err != nil {
		fatal(log, "cannot create tracer", zap.Error(err))
	}
	defer func() {
		_ = tracer.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open chains
	gatherer := ametrics.NewPrefixGatherer()
	chains := make([]*vm.VM, 0, len(c.Chains))
	for _, chainConfig := range c.Chains {
		chainID := utils.ToID([]byte(chainConfig.Name))
		var creator *ed25519.PublicKey
		if len(chainConfig.Creator) > 0 {
			pk, err := utils.ParseAddress(chainConfig.Creator)
			if err != nil {
				fatal(log, "cannot parse creator address",
					zap.String("chain", chainConfig.Name),
					zap.Error(err),
				)
			}
			creator = &pk
		}
		var genesisBytes []byte
		if len(chainConfig.GenesisFile) > 0 {
			genesisBytes, err = os.ReadFile(chainConfig.GenesisFile)
			if err != nil {
				fatal(log, "cannot open genesis file",
					zap.String("path", chainConfig.GenesisFile),
					zap.Error(err),
				)
			}
		}
		chainGatherer := ametrics.NewPrefixGatherer()
		if err := gatherer.Register(chainConfig.Name, chainGatherer); err != nil {
			fatal(log, "cannot register chain metrics", zap.Error(err))
		}
		db, err := storage.New(pebble.NewDefaultConfig(), c.DataDir, chainConfig.Name, chainGatherer)
		if err != nil {
			fatal(log, "cannot open chain database",
				zap.String("chain", chainConfig.Name),
				zap.Error(err),
			)
		}
		v, err := vm.New(ctx, log, tracer, db, genesisBytes, creator, c.NetworkID, chainID, chainGatherer)
		if err != nil {
			fatal(log, "cannot initialize chain",
				zap.String("chain", chainConfig.Name),
				zap.Error(err),
			)
		}
		log.Info("chain ready",
			zap.String("name", chainConfig.Name),
			zap.Stringer("chainID", chainID),
			zap.Uint64("height", v.LastAcceptedBlock().Hght),
		)
		chains = append(chains, v)
	}

	// The relayer persists its delivered set next to the chain databases.
	relayDB, err := storage.New(pebble.NewDefaultConfig(), c.DataDir, "relay", gatherer)
	if err != nil {
		fatal(log, "cannot open relay database", zap.Error(err))
	}
	relayer := relay.New(log, relayDB, c.GetRelayInterval())
	for _, v := range chains {
		if err := relayer.Register(v); err != nil {
			fatal(log, "cannot register chain with relayer", zap.Error(err))
		}
	}

	// Create server
	listenAddress := net.JoinHostPort(c.HTTPHost, fmt.Sprintf("%d", c.HTTPPort))
	listener, err := net.Listen("tcp", listenAddress)
	if err != nil {
		fatal(log, "cannot create listener", zap.Error(err))
	}
	srv, err := server.New("", log, listener, httpConfig, allowedOrigins, allowedHosts, shutdownTimeout)
	if err != nil {
		fatal(log, "cannot create server", zap.Error(err))
	}
	for _, v := range chains {
		base := fmt.Sprintf("ext/bc/%s", v.ChainID())
		handler, err := rpc.NewJSONRPCHandler(consts.Name, rpc.NewJSONRPCServer(v))
		if err != nil {
			fatal(log, "cannot create handler", zap.Error(err))
		}
		if err := srv.AddRoute(handler, base, rpc.JSONRPCEndpoint); err != nil {
			fatal(log, "cannot add rpc route", zap.Error(err))
		}
		webSocketServer, pubsubServer := rpc.NewWebSocketServer(v, pubsub.MaxPendingMessages)
		v.AddAcceptedSubscriber(webSocketServer)
		if err := srv.AddRoute(pubsubServer, base, rpc.WebSocketEndpoint); err != nil {
			fatal(log, "cannot add websocket route", zap.Error(err))
		}
	}
	if err := srv.AddRoute(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}), "metrics", ""); err != nil {
		fatal(log, "cannot add metrics route", zap.Error(err))
	}

	log.Info("daemon ready",
		zap.String("address", listenAddress),
		zap.Int("chains", len(chains)),
	)

	// Start builders, relayer, and server
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return relayer.Run(gctx)
	})
	for _, v := range chains {
		v := v
		g.Go(func() error {
			return runBuilder(gctx, v, c.GetBuildInterval())
		})
	}
	g.Go(func() error {
		return srv.Dispatch()
	})
	g.Go(func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			log.Info("triggering server shutdown", zap.Any("signal", sig))
		case <-gctx.Done():
		}
		cancel()
		return srv.Shutdown()
	})
	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
		log.Error("daemon exited", zap.Error(err))
	} else {
		log.Info("daemon exited")
	}

	// Close chains
	for _, v := range chains {
		if err := v.Shutdown(context.Background()); err != nil {
			log.Error("cannot shutdown chain", zap.Error(err))
		}
	}
	if err := relayDB.Close(); err != nil {
		log.Error("cannot close relay database", zap.Error(err))
	}
}

// runBuilder drives [v]'s block production. An idle mempool is not an error;
// anything else is.
func runBuilder(ctx context.Context, v *vm.VM, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if _, err := v.BuildBlock(ctx); err != nil && !errors.Is(err, vm.ErrNoPendingWork) {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
