// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ava-labs/fungiblevm/utils"
)

var prometheusCmd = &cobra.Command{
	Use: "prometheus",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

// Each chain exports under its own name prefix, so panels match metrics by
// suffix.
func getPanels() []string {
	panels := []string{}

	panels = append(panels, `sum(increase({__name__=~".+_fungiblevm_chain_blocks_built"}[5s]))/5`)
	utils.Outf("{{yellow}}blocks built (per second):{{/}} %s\n", panels[len(panels)-1])

	panels = append(panels, `sum(increase({__name__=~".+_fungiblevm_chain_txs_accepted"}[5s]))/5`)
	utils.Outf("{{yellow}}txs accepted (per second):{{/}} %s\n", panels[len(panels)-1])

	panels = append(panels, `sum(increase({__name__=~".+_fungiblevm_chain_txs_failed"}[5s]))/5`)
	utils.Outf("{{yellow}}txs failed (per second):{{/}} %s\n", panels[len(panels)-1])

	panels = append(panels, `sum(increase({__name__=~".+_fungiblevm_envelopes_emitted"}[5s]))/5`)
	utils.Outf("{{yellow}}envelopes emitted (per second):{{/}} %s\n", panels[len(panels)-1])

	panels = append(panels, `sum(increase({__name__=~".+_fungiblevm_envelopes_delivered"}[5s]))/5`)
	utils.Outf("{{yellow}}envelopes delivered (per second):{{/}} %s\n", panels[len(panels)-1])

	panels = append(panels, `sum(increase({__name__=~".+_fungiblevm_operations_transfer"}[5s]))/5`)
	utils.Outf("{{yellow}}transfers applied (per second):{{/}} %s\n", panels[len(panels)-1])

	panels = append(panels, `sum(increase({__name__=~".+_fungiblevm_operations_credit"}[5s]))/5`)
	utils.Outf("{{yellow}}credits applied (per second):{{/}} %s\n", panels[len(panels)-1])

	return panels
}

var generatePrometheusCmd = &cobra.Command{
	Use: "generate",
	RunE: func(*cobra.Command, []string) error {
		return handler.Root().GeneratePrometheus(prometheusBaseURI, prometheusOpenBrowser, startPrometheus, prometheusFile, prometheusData, getPanels)
	},
}
