// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// e2e drives a real fungibled process through its public API. The suite
// skips itself unless -fungibled points at a built binary.
package e2e_test

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	ginkgo "github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/ava-labs/fungiblevm/auth"
	"github.com/ava-labs/fungiblevm/chain"
	"github.com/ava-labs/fungiblevm/cmd/fungibled/config"
	"github.com/ava-labs/fungiblevm/crypto/ed25519"
	"github.com/ava-labs/fungiblevm/rpc"
	"github.com/ava-labs/fungiblevm/utils"
)

const (
	chainAlpha = "alpha"
	chainBeta  = "beta"

	initialSupply = uint64(1_000_000)
)

func TestE2e(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "fungiblevm e2e test suites")
}

var (
	fungibledPath  string
	startTimeout   time.Duration
	requestTimeout time.Duration
)

func init() {
	flag.StringVar(
		&fungibledPath,
		"fungibled",
		"",
		"path to the fungibled binary (the suite skips when empty)",
	)
	flag.DurationVar(
		&startTimeout,
		"start-timeout",
		30*time.Second,
		"how long to wait for the daemon to serve its API",
	)
	flag.DurationVar(
		&requestTimeout,
		"request-timeout",
		120*time.Second,
		"timeout for transaction issuance and confirmation",
	)
}

var (
	priv    ed25519.PrivateKey
	factory *auth.ED25519Factory
	rsender ed25519.PublicKey
	sender  string

	priv2    ed25519.PrivateKey
	rsender2 ed25519.PublicKey
	sender2  string

	workDir    string
	daemon     *exec.Cmd
	daemonDone chan error

	alphaID  ids.ID
	betaID   ids.ID
	alphaCli *rpc.JSONRPCClient
	betaCli  *rpc.JSONRPCClient
)

// freePort grabs an ephemeral port. The daemon binds it right after, so the
// window for another process to steal it is tiny.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	port := l.Addr().(*net.TCPAddr).Port
	return port, l.Close()
}

var _ = ginkgo.BeforeSuite(func() {
	if len(fungibledPath) == 0 {
		ginkgo.Skip("no fungibled binary provided")
	}

	var err error
	priv, err = ed25519.GeneratePrivateKey()
	gomega.Ω(err).Should(gomega.BeNil())
	factory = auth.NewED25519Factory(priv)
	rsender = priv.PublicKey()
	sender = utils.Address(rsender)

	priv2, err = ed25519.GeneratePrivateKey()
	gomega.Ω(err).Should(gomega.BeNil())
	rsender2 = priv2.PublicKey()
	sender2 = utils.Address(rsender2)

	workDir, err = os.MkdirTemp("", "fungibled-e2e")
	gomega.Ω(err).Should(gomega.BeNil())

	genesisPath := filepath.Join(workDir, "genesis.json")
	gomega.Ω(os.WriteFile(
		genesisPath,
		[]byte(fmt.Sprintf(`{"initialSupply":%d}`, initialSupply)),
		0o644,
	)).Should(gomega.BeNil())

	port, err := freePort()
	gomega.Ω(err).Should(gomega.BeNil())

	cfg := config.Config{
		HTTPHost:  "127.0.0.1",
		HTTPPort:  port,
		DataDir:   filepath.Join(workDir, "data"),
		LogLevel:  "debug",
		NetworkID: 1,

		BuildIntervalMilli: 100,
		RelayIntervalMilli: 100,

		Chains: []config.ChainConfig{
			{
				Name:        chainAlpha,
				GenesisFile: genesisPath,
				Creator:     sender,
			},
			{
				Name: chainBeta,
			},
		},
	}
	configBytes, err := json.MarshalIndent(cfg, "", "  ")
	gomega.Ω(err).Should(gomega.BeNil())
	configPath := filepath.Join(workDir, "config.json")
	gomega.Ω(os.WriteFile(configPath, configBytes, 0o644)).Should(gomega.BeNil())

	daemon = exec.Command(fungibledPath, configPath)
	daemon.Stdout = ginkgo.GinkgoWriter
	daemon.Stderr = ginkgo.GinkgoWriter
	gomega.Ω(daemon.Start()).Should(gomega.BeNil())
	daemonDone = make(chan error, 1)
	go func() {
		daemonDone <- daemon.Wait()
	}()

	alphaID = utils.ToID([]byte(chainAlpha))
	betaID = utils.ToID([]byte(chainBeta))
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	alphaCli = rpc.NewJSONRPCClient(fmt.Sprintf("%s/ext/bc/%s", base, alphaID))
	betaCli = rpc.NewJSONRPCClient(fmt.Sprintf("%s/ext/bc/%s", base, betaID))

	for _, cli := range []*rpc.JSONRPCClient{alphaCli, betaCli} {
		cli := cli
		gomega.Eventually(func() bool {
			ok, err := cli.Ping(context.Background())
			return err == nil && ok
		}, startTimeout, 100*time.Millisecond).Should(gomega.BeTrue())
	}
})

var _ = ginkgo.AfterSuite(func() {
	if daemon != nil && daemon.Process != nil {
		gomega.Ω(daemon.Process.Signal(syscall.SIGTERM)).Should(gomega.BeNil())
		select {
		case <-daemonDone:
		case <-time.After(30 * time.Second):
			_ = daemon.Process.Kill()
			<-daemonDone
		}
	}
	if len(workDir) > 0 {
		_ = os.RemoveAll(workDir)
	}
})

var _ = ginkgo.Describe("[Genesis]", func() {
	ginkgo.It("serves each chain's genesis", func() {
		for _, cli := range []*rpc.JSONRPCClient{alphaCli, betaCli} {
			g, err := cli.Genesis(context.Background())
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(g.InitialSupply).Should(gomega.Equal(initialSupply))
		}
	})

	ginkgo.It("allocated the supply to the creator on alpha only", func() {
		balance, err := alphaCli.Balance(context.Background(), sender)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(balance).Should(gomega.Equal(initialSupply))

		balance, err = betaCli.Balance(context.Background(), sender)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(balance).Should(gomega.BeZero())
	})
})

var _ = ginkgo.Describe("[Transfer]", func() {
	ginkgo.It("moves value within alpha", func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		parser, err := alphaCli.Parser(ctx)
		gomega.Ω(err).Should(gomega.BeNil())
		submit, tx, err := alphaCli.GenerateTransaction(
			parser,
			&chain.Transfer{
				Owner:  rsender,
				Amount: 100_000,
				To:     chain.Account{Chain: alphaID, Owner: rsender2},
			},
			factory,
		)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(submit(ctx)).Should(gomega.BeNil())

		// the daemon's builder commits the block on its own
		success, err := alphaCli.WaitForTransaction(ctx, tx.ID())
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(success).Should(gomega.BeTrue())

		balance, err := alphaCli.Balance(ctx, sender2)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(balance).Should(gomega.Equal(uint64(100_000)))
	})
})

var _ = ginkgo.Describe("[Cross-Chain Transfer]", func() {
	ginkgo.It("settles value on beta without touching alpha again", func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		parser, err := alphaCli.Parser(ctx)
		gomega.Ω(err).Should(gomega.BeNil())
		submit, tx, err := alphaCli.GenerateTransaction(
			parser,
			&chain.Transfer{
				Owner:  rsender,
				Amount: 50_000,
				To:     chain.Account{Chain: betaID, Owner: rsender2},
			},
			factory,
		)
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(submit(ctx)).Should(gomega.BeNil())

		success, err := alphaCli.WaitForTransaction(ctx, tx.ID())
		gomega.Ω(err).Should(gomega.BeNil())
		gomega.Ω(success).Should(gomega.BeTrue())

		// the daemon's relayer carries the envelope to beta
		gomega.Ω(betaCli.WaitForBalance(ctx, sender2, 50_000)).Should(gomega.BeNil())

		ginkgo.By("the source outbox drains", func() {
			gomega.Eventually(func() int {
				pending, err := alphaCli.PendingEnvelopes(context.Background())
				if err != nil {
					return -1
				}
				return len(pending)
			}, requestTimeout, 100*time.Millisecond).Should(gomega.BeZero())
		})

		ginkgo.By("no value was created or destroyed", func() {
			alphaSender, err := alphaCli.Balance(ctx, sender)
			gomega.Ω(err).Should(gomega.BeNil())
			alphaSender2, err := alphaCli.Balance(ctx, sender2)
			gomega.Ω(err).Should(gomega.BeNil())
			betaSender2, err := betaCli.Balance(ctx, sender2)
			gomega.Ω(err).Should(gomega.BeNil())
			gomega.Ω(alphaSender + alphaSender2 + betaSender2).Should(gomega.Equal(initialSupply))
		})
	})
})
