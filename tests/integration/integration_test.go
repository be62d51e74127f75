// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// integration implements the integration tests.
package integration_test

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/fatih/color"
	ginkgo "github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/ava-labs/fungiblevm/auth"
	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/consts"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/pubsub"
	"github.com/ava-labs/fungiblevm/relay"
	"github.com/ava-labs/fungiblevm/rpc"
	"github.com/ava-labs/fungiblevm/storage"
	"github.com/ava-labs/fungiblevm/utils"
	"github.com/ava-labs/fungiblevm/vm"
)

const networkID = uint32(1)

var (
	logFactory logging.Factory
	log        logging.Logger
)

func init() {
	logFactory = logging.NewFactory(logging.Config{
		DisplayLevel: logging.Debug,
	})
	l, err := logFactory.Make("main")
	if err != nil {
		panic(err)
	}
	log = l
}

func TestIntegration(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "fungiblevm integration test suites")
}

var (
	requestTimeout time.Duration
	initialSupply  uint64
)

func init() {
	flag.DurationVar(
		&requestTimeout,
		"request-timeout",
		120*time.Second,
		"timeout for transaction issuance and confirmation",
	)
	flag.Uint64Var(
		&initialSupply,
		"initial-supply",
		1_000_000,
		"units minted to the creator on the home chain",
	)
}

var (
	priv    ed25519.PrivateKey
	factory *auth.ED25519Factory
	rsender ed25519.PublicKey
	sender  string

	priv2    ed25519.PrivateKey
	factory2 *auth.ED25519Factory
	rsender2 ed25519.PublicKey
	sender2  string

	// embedded chains: the creator's supply lives on instances[0]
	instances []instance
	relayer   *relay.Relayer
)

type instance struct {
	chainID    ids.ID
	vm         *vm.VM
	httpServer *httptest.Server
	cli        *rpc.JSONRPCClient
}

// relayNode drives a chain through its public API, the same path an
// out-of-process relayer would take.
type relayNode struct {
	chainID ids.ID
	cli     *rpc.JSONRPCClient
}

func (n *relayNode) ChainID() ids.ID { return n.chainID }

func (n *relayNode) PendingEnvelopes(ctx context.Context) ([]*chain.Envelope, error) {
	return n.cli.PendingEnvelopes(ctx)
}

func (n *relayNode) DeliverEnvelope(ctx context.Context, env *chain.Envelope) error {
	return n.cli.DeliverEnvelope(ctx, env)
}

func (n *relayNode) MarkEnvelopeDelivered(ctx context.Context, envelopeID ids.ID) error {
	return n.cli.MarkEnvelopeDelivered(ctx, envelopeID)
}

var _ = ginkgo.BeforeSuite(func() {
	var err error
	priv, err = ed25519.GeneratePrivateKey()
	gomega.Ω(err).Should(gomega.BeNil())
	factory = auth.NewED25519Factory(priv)
	rsender = priv.PublicKey()
	sender = utils.Address(rsender)
	log.Debug(
		"generated key",
		zap.String("addr", sender),
		zap.String("pk", hex.EncodeToString(priv[:])),
	)

	priv2, err = ed25519.GeneratePrivateKey()
	gomega.Ω(err).Should(gomega.BeNil())
	factory2 = auth.NewED25519Factory(priv2)
	rsender2 = priv2.PublicKey()
	sender2 = utils.Address(rsender2)
	log.Debug(
		"generated key",
		zap.String("addr", sender2),
		zap.String("pk", hex.EncodeToString(priv2[:])),
	)

	genesisBytes := []byte(fmt.Sprintf(`{"initialSupply":%d}`, initialSupply))

	instances = make([]instance, 2)
	for i := range instances {
		chainID := ids.GenerateTestID()
		l, err := logFactory.Make(chainID.String())
		gomega.Ω(err).Should(gomega.BeNil())

		var creator *ed25519.PublicKey
		if i == 0 {
			creator = &rsender
		}
		v, err := vm.New(
			context.Background(),
			l,
			trace.Noop,
			memdb.New(),
			genesisBytes,
			creator,
			networkID,
			chainID,
			nil,
		)
		gomega.Ω(err).Should(gomega.BeNil())

		handler, err := rpc.NewJSONRPCHandler(consts.Name, rpc.NewJSONRPCServer(v))
		gomega.Ω(err).Should(gomega.BeNil())
		webSocketServer, pubsubServer := rpc.NewWebSocketServer(v, pubsub.MaxPendingMessages)
		v.AddAcceptedSubscriber(webSocketServer)

		mux := http.NewServeMux()
		mux.Handle(rpc.JSONRPCEndpoint, handler)
		mux.Handle(rpc.WebSocketEndpoint, pubsubServer)
		httpServer := httptest.NewServer(mux)
		instances[i] = instance{
			chainID:    chainID,
			vm:         v,
			httpServer: httpServer,
			cli:        rpc.NewJSONRPCClient(httpServer.URL),
		}
	}

	relayer = relay.New(log, memdb.New(), time.Second)
	for _, inst := range instances {
		err := relayer.Register(&relayNode{chainID: inst.chainID, cli: inst.cli})
		gomega.Ω(err).Should(gomega.BeNil())
	}

	// Verify the genesis allocation landed before any test moves value
	balance, err := instances[0].cli.Balance(context.Background(), sender)
	gomega.Ω(err).Should(gomega.BeNil())
	gomega.Ω(balance).Should(gomega.Equal(initialSupply))

	color.Blue("created %d chains", len(instances))
})

var _ = ginkgo.AfterSuite(func() {
	for _, inst := range instances {
		inst.httpServer.Close()
		err := inst.vm.Shutdown(context.TODO())
		gomega.Ω(err).Should(gomega.BeNil())
	}
})

var _ = ginkgo.Describe("[Ping]", func() {
	ginkgo.It("can ping", func() {
		for _, inst := range instances {
			ok, err := inst.cli.Ping(context.Background())
			gomega.Ω(ok).Should(gomega.BeTrue())
			gomega.Ω(err).Should(gomega.BeNil())
		}
	})
})

var _ = ginkgo.Describe("[Network]", func() {
	ginkgo.It("can get network", func() {
		for _, inst := range instances {
			netID, chainID, err := inst.cli.Network(context.Background())
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(netID).Should(gomega.Equal(networkID))
			gomega.Ω(chainID).Should(gomega.Equal(inst.chainID))
		}
	})
})

var _ = ginkgo.Describe("[Genesis]", func() {
	ginkgo.It("serves the genesis", func() {
		for _, inst := range instances {
			g, err := inst.cli.Genesis(context.Background())
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(g.InitialSupply).Should(gomega.Equal(initialSupply))
		}
	})

	ginkgo.It("only allocates on the creator's chain", func() {
		balance, err := instances[1].cli.Balance(context.Background(), sender)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(balance).Should(gomega.BeZero())
	})
})

var _ = ginkgo.Describe("[Tx Processing]", func() {
	ginkgo.It("get currently accepted block ID", func() {
		for _, inst := range instances {
			_, _, _, err := inst.cli.LastAccepted(context.Background())
			gomega.Ω(err).Should(gomega.BeNil())
		}
	})

	var transferTxRoot *chain.Transaction
	ginkgo.It("transfers within the home chain", func() {
		parser, err := instances[0].cli.Parser(context.Background())
		gomega.Ω(err).Should(gomega.BeNil())

		ginkgo.By("issue transfer", func() {
			submit, transferTx, err := instances[0].cli.GenerateTransaction(
				parser,
				&chain.Transfer{
					Owner:  rsender,
					Amount: 100_000,
					To:     chain.Account{Chain: instances[0].chainID, Owner: rsender2},
				},
				factory,
			)
			transferTxRoot = transferTx
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(submit(context.Background())).Should(gomega.BeNil())
		})

		ginkgo.By("build block", func() {
			blk, err := instances[0].vm.BuildBlock(context.Background())
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(blk.Txs).Should(gomega.HaveLen(1))
			results := blk.Results()
			gomega.Ω(results).Should(gomega.HaveLen(1))
			gomega.Ω(results[0].Success).Should(gomega.BeTrue())
		})

		ginkgo.By("check balances", func() {
			balance, err := instances[0].cli.Balance(context.Background(), sender)
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(balance).Should(gomega.Equal(initialSupply - 100_000))

			balance2, err := instances[0].cli.Balance(context.Background(), sender2)
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(balance2).Should(gomega.Equal(uint64(100_000)))
		})

		ginkgo.By("fetch the result", func() {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			success, err := instances[0].cli.WaitForTransaction(ctx, transferTxRoot.ID())
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(success).Should(gomega.BeTrue())
		})
	})

	ginkgo.It("rejects a repeat of an accepted tx", func() {
		_, err := instances[0].cli.SubmitTx(context.Background(), transferTxRoot.Bytes())
		gomega.Ω(err).ShouldNot(gomega.BeNil())
	})
})

var _ = ginkgo.Describe("[Rejected Operations]", func() {
	ginkgo.It("fails a transfer of zero", func() {
		parser, err := instances[0].cli.Parser(context.Background())
		gomega.Ω(err).Should(gomega.BeNil())
		submit, _, err := instances[0].cli.GenerateTransaction(
			parser,
			&chain.Transfer{
				Owner:  rsender,
				Amount: 0,
				To:     chain.Account{Chain: instances[0].chainID, Owner: rsender2},
			},
			factory,
		)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(submit(context.Background())).Should(gomega.BeNil())

		blk, err := instances[0].vm.BuildBlock(context.Background())
		gomega.Ω(err).Should(gomega.BeNil())
		results := blk.Results()
		gomega.Ω(results).Should(gomega.HaveLen(1))
		gomega.Ω(results[0].Success).Should(gomega.BeFalse())
		gomega.Ω(string(results[0].Error)).Should(gomega.ContainSubstring(chain.ErrValueZero.Error()))
	})

	ginkgo.It("fails a transfer signed by the wrong key", func() {
		parser, err := instances[0].cli.Parser(context.Background())
		gomega.Ω(err).Should(gomega.BeNil())
		submit, _, err := instances[0].cli.GenerateTransaction(
			parser,
			&chain.Transfer{
				Owner:  rsender,
				Amount: 1,
				To:     chain.Account{Chain: instances[0].chainID, Owner: rsender2},
			},
			factory2, // not the owner's key
		)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(submit(context.Background())).Should(gomega.BeNil())

		blk, err := instances[0].vm.BuildBlock(context.Background())
		gomega.Ω(err).Should(gomega.BeNil())
		results := blk.Results()
		gomega.Ω(results).Should(gomega.HaveLen(1))
		gomega.Ω(results[0].Success).Should(gomega.BeFalse())
		gomega.Ω(string(results[0].Error)).Should(gomega.ContainSubstring(chain.ErrIncorrectAuthentication.Error()))

		ginkgo.By("no value moved", func() {
			balance, err := instances[0].cli.Balance(context.Background(), sender)
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(balance).Should(gomega.Equal(initialSupply - 100_000))
		})
	})

	ginkgo.It("fails a transfer above the owner's balance", func() {
		parser, err := instances[0].cli.Parser(context.Background())
		gomega.Ω(err).Should(gomega.BeNil())
		submit, _, err := instances[0].cli.GenerateTransaction(
			parser,
			&chain.Transfer{
				// sender2 holds exactly 100_000 on this chain
				Owner:  rsender2,
				Amount: 100_001,
				To:     chain.Account{Chain: instances[0].chainID, Owner: rsender},
			},
			factory2,
		)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(submit(context.Background())).Should(gomega.BeNil())

		blk, err := instances[0].vm.BuildBlock(context.Background())
		gomega.Ω(err).Should(gomega.BeNil())
		results := blk.Results()
		gomega.Ω(results).Should(gomega.HaveLen(1))
		gomega.Ω(results[0].Success).Should(gomega.BeFalse())
		gomega.Ω(string(results[0].Error)).Should(gomega.ContainSubstring(storage.ErrInsufficientBalance.Error()))

		ginkgo.By("the failed debit left the balance alone", func() {
			balance2, err := instances[0].cli.Balance(context.Background(), sender2)
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(balance2).Should(gomega.Equal(uint64(100_000)))
		})
	})
})

var _ = ginkgo.Describe("[Cross-Chain Transfer]", func() {
	ginkgo.It("moves value between chains through the relayer", func() {
		var env *chain.Envelope

		ginkgo.By("issue transfer toward the second chain", func() {
			parser, err := instances[0].cli.Parser(context.Background())
			gomega.Ω(err).Should(gomega.BeNil())
			submit, _, err := instances[0].cli.GenerateTransaction(
				parser,
				&chain.Transfer{
					Owner:  rsender,
					Amount: 50_000,
					To:     chain.Account{Chain: instances[1].chainID, Owner: rsender2},
				},
				factory,
			)
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(submit(context.Background())).Should(gomega.BeNil())

			blk, err := instances[0].vm.BuildBlock(context.Background())
			gomega.Ω(err).Should(gomega.BeNil())
			results := blk.Results()
			gomega.Ω(results).Should(gomega.HaveLen(1))
			gomega.Ω(results[0].Success).Should(gomega.BeTrue())
			gomega.Ω(results[0].Outgoing).ShouldNot(gomega.BeNil())
		})

		ginkgo.By("debit committed at the source, nothing at the destination", func() {
			balance, err := instances[0].cli.Balance(context.Background(), sender)
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(balance).Should(gomega.Equal(initialSupply - 150_000))

			balance2, err := instances[1].cli.Balance(context.Background(), sender2)
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(balance2).Should(gomega.BeZero())
		})

		ginkgo.By("the outbox holds the envelope", func() {
			pending, err := instances[0].cli.PendingEnvelopes(context.Background())
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(pending).Should(gomega.HaveLen(1))
			env = pending[0]
			gomega.Ω(env.Source).Should(gomega.Equal(instances[0].chainID))
			gomega.Ω(env.Destination).Should(gomega.Equal(instances[1].chainID))
		})

		ginkgo.By("flush the relayer", func() {
			gomega.Ω(relayer.Flush(context.Background())).Should(gomega.BeNil())

			pending, err := instances[0].cli.PendingEnvelopes(context.Background())
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(pending).Should(gomega.BeEmpty())
		})

		ginkgo.By("the credit lands once the destination builds", func() {
			blk, err := instances[1].vm.BuildBlock(context.Background())
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(blk.Envelopes).Should(gomega.HaveLen(1))
			gomega.Ω(blk.Envelopes[0].ID()).Should(gomega.Equal(env.ID()))

			balance2, err := instances[1].cli.Balance(context.Background(), sender2)
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(balance2).Should(gomega.Equal(uint64(50_000)))
		})

		ginkgo.By("another flush does not redeliver", func() {
			gomega.Ω(relayer.Flush(context.Background())).Should(gomega.BeNil())

			_, err := instances[1].vm.BuildBlock(context.Background())
			gomega.Ω(err).Should(gomega.MatchError(vm.ErrNoPendingWork))

			balance2, err := instances[1].cli.Balance(context.Background(), sender2)
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(balance2).Should(gomega.Equal(uint64(50_000)))
		})
	})
})

var _ = ginkgo.Describe("[WebSocket]", func() {
	ginkgo.It("streams accepted blocks and tx results", func() {
		wsCli, err := rpc.NewWebSocketClient(instances[0].httpServer.URL, pubsub.MaxPendingMessages)
		gomega.Ω(err).Should(gomega.BeNil())
		defer wsCli.Close()
		gomega.Ω(wsCli.RegisterBlocks()).Should(gomega.BeNil())
		// wait for the subscription to land before accepting a block
		time.Sleep(500 * time.Millisecond)

		parser, err := instances[0].cli.Parser(context.Background())
		gomega.Ω(err).Should(gomega.BeNil())
		_, tx, err := instances[0].cli.GenerateTransaction(
			parser,
			&chain.Transfer{
				Owner:  rsender,
				Amount: 1_000,
				To:     chain.Account{Chain: instances[0].chainID, Owner: rsender2},
			},
			factory,
		)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(wsCli.IssueTx(tx)).Should(gomega.BeNil())

		// the tx reaches the mempool asynchronously
		gomega.Eventually(func() error {
			_, err := instances[0].vm.BuildBlock(context.Background())
			return err
		}, requestTimeout, 100*time.Millisecond).Should(gomega.BeNil())

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		blk, results, err := wsCli.ListenBlock(ctx, parser)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(blk.Txs).Should(gomega.HaveLen(1))
		gomega.Ω(blk.Txs[0].ID()).Should(gomega.Equal(tx.ID()))
		gomega.Ω(results).Should(gomega.HaveLen(1))
		gomega.Ω(results[0].Success).Should(gomega.BeTrue())

		txID, txErr, result, err := wsCli.ListenTx(ctx)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(txErr).Should(gomega.BeNil())
		gomega.Ω(txID).Should(gomega.Equal(tx.ID()))
		gomega.Ω(result.Success).Should(gomega.BeTrue())
	})
})
