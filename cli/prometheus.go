// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

//nolint:gosec
package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"time"

	"github.com/pkg/browser"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/fungiblevm/utils"
)

const fsModeWrite = 0o600

type PrometheusStaticConfig struct {
	Targets []string `yaml:"targets"`
}

type PrometheusScrapeConfig struct {
	JobName       string                    `yaml:"job_name"`
	StaticConfigs []*PrometheusStaticConfig `yaml:"static_configs"`
	MetricsPath   string                    `yaml:"metrics_path"`
}

type PrometheusConfig struct {
	Global struct {
		ScrapeInterval     string `yaml:"scrape_interval"`
		EvaluationInterval string `yaml:"evaluation_interval"`
	} `yaml:"global"`
	ScrapeConfigs []*PrometheusScrapeConfig `yaml:"scrape_configs"`
}

// GeneratePrometheus writes a scrape config covering the selected chain's
// daemon and emits a dashboard link over [getPanels]. The daemon serves one
// metrics route for all of its chains, so panels are daemon-wide.
func (h *Handler) GeneratePrometheus(baseURI string, openBrowser bool, startPrometheus bool, prometheusFile string, prometheusData string, getPanels func() []string) error {
	_, uris, err := h.PromptChain("select chainID", nil)
	if err != nil {
		return err
	}
	if err := h.CloseDatabase(); err != nil {
		return err
	}
	endpoints := make([]string, len(uris))
	for i, uri := range uris {
		host, err := utils.GetHost(uri)
		if err != nil {
			return err
		}
		port, err := utils.GetPort(uri)
		if err != nil {
			return err
		}
		endpoints[i] = fmt.Sprintf("%s:%s", host, port)
	}

	// Create Prometheus YAML
	var prometheusConfig PrometheusConfig
	prometheusConfig.Global.ScrapeInterval = "1s"
	prometheusConfig.Global.EvaluationInterval = "1s"
	prometheusConfig.ScrapeConfigs = []*PrometheusScrapeConfig{
		{
			JobName: "prometheus",
			StaticConfigs: []*PrometheusStaticConfig{
				{
					Targets: endpoints,
				},
			},
			MetricsPath: "/metrics",
		},
	}
	yamlData, err := yaml.Marshal(&prometheusConfig)
	if err != nil {
		return err
	}
	if err := os.WriteFile(prometheusFile, yamlData, fsModeWrite); err != nil {
		return err
	}

	// Generated dashboard link
	//
	// We must manually encode the params because prometheus skips any panels
	// that are not numerically sorted and `url.params` only sorts
	// lexicographically.
	dashboard := baseURI + "/graph"
	for i, panel := range getPanels() {
		appendChar := "&"
		if i == 0 {
			appendChar = "?"
		}
		dashboard = fmt.Sprintf("%s%sg%d.expr=%s&g%d.tab=0&g%d.step_input=1&g%d.range_input=5m", dashboard, appendChar, i, url.QueryEscape(panel), i, i, i)
	}

	if !startPrometheus {
		if !openBrowser {
			utils.Outf("{{orange}}pre-built dashboard:{{/}} %s\n", dashboard)

			// Emit command to run prometheus
			utils.Outf("{{green}}prometheus cmd:{{/}} /tmp/prometheus --config.file=%s --storage.tsdb.path=%s\n", prometheusFile, prometheusData)
			return nil
		}
		return browser.OpenURL(dashboard)
	}

	// Start prometheus and open browser
	//
	// Attempting to exit from the terminal will gracefully
	// stop this process.
	cmd := exec.CommandContext(context.Background(), "/tmp/prometheus", "--config.file="+prometheusFile, "--storage.tsdb.path="+prometheusData)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	errChan := make(chan error)
	go func() {
		select {
		case <-errChan:
			return
		case <-time.After(5 * time.Second):
			if !openBrowser {
				utils.Outf("{{orange}}pre-built dashboard:{{/}} %s\n", dashboard)
				return
			}
			utils.Outf("{{cyan}}opening dashboard{{/}}\n")
			if err := browser.OpenURL(dashboard); err != nil {
				utils.Outf("{{red}}unable to open dashboard:{{/}} %s\n", err.Error())
			}
		}
	}()

	utils.Outf("{{cyan}}starting prometheus (/tmp/prometheus) in background{{/}}\n")
	if err := cmd.Run(); err != nil {
		errChan <- err
		utils.Outf("{{orange}}prometheus exited with error:{{/}} %v\n", err)
		utils.Outf(`install prometheus using the following commands:

rm -f /tmp/prometheus
wget https://github.com/prometheus/prometheus/releases/download/v2.43.0/prometheus-2.43.0.linux-amd64.tar.gz
tar -xvf prometheus-2.43.0.linux-amd64.tar.gz
rm prometheus-2.43.0.linux-amd64.tar.gz
mv prometheus-2.43.0.linux-amd64/prometheus /tmp/prometheus
rm -rf prometheus-2.43.0.linux-amd64

`)
		return err
	}
	utils.Outf("{{cyan}}prometheus exited{{/}}\n")
	return nil
}
