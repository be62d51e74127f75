// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	ametrics "github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/fungiblevm/consts"
)

type metrics struct {
	blocksBuilt  prometheus.Counter
	txsSubmitted prometheus.Counter
	txsAccepted  prometheus.Counter
	txsFailed    prometheus.Counter
	txsExpired   prometheus.Counter

	transfers prometheus.Counter
	credits   prometheus.Counter

	envelopesEmitted   prometheus.Counter
	envelopesDelivered prometheus.Counter
}

func newMetrics(gatherer ametrics.MultiGatherer) (*metrics, error) {
	m := &metrics{
		blocksBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "blocks_built",
			Help:      "number of blocks built and accepted",
		}),
		txsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_submitted",
			Help:      "number of txs submitted to the chain",
		}),
		txsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_accepted",
			Help:      "number of txs executed successfully",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_failed",
			Help:      "number of txs that executed with a failure result",
		}),
		txsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_expired",
			Help:      "number of txs dropped from the mempool after expiry",
		}),
		transfers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "operations",
			Name:      "transfer",
			Help:      "number of transfer operations applied",
		}),
		credits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "operations",
			Name:      "credit",
			Help:      "number of credit messages applied",
		}),
		envelopesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "envelopes",
			Name:      "emitted",
			Help:      "number of cross-chain envelopes written to the outbox",
		}),
		envelopesDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "envelopes",
			Name:      "delivered",
			Help:      "number of inbound envelopes executed",
		}),
	}
	r := prometheus.NewRegistry()
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.blocksBuilt),
		r.Register(m.txsSubmitted),
		r.Register(m.txsAccepted),
		r.Register(m.txsFailed),
		r.Register(m.txsExpired),

		r.Register(m.transfers),
		r.Register(m.credits),

		r.Register(m.envelopesEmitted),
		r.Register(m.envelopesDelivered),
	)
	if gatherer != nil {
		errs.Add(gatherer.Register(consts.Name, r))
	}
	return m, errs.Err
}
