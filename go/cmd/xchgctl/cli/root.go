/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cli implements xchgctl, a tool to inspect how rows are routed
// between nodes and to run distributed exchanges in a single process.
package cli

import (
	"errors"
	"flag"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"vitess.io/distexchange/go/stats/prometheusbackend"
	"vitess.io/distexchange/go/vt/log"
	"vitess.io/distexchange/go/vt/portal"
	"vitess.io/distexchange/go/vt/utils"
)

var (
	configFile   string
	metricsAddr  string
	portalConfig = portal.DefaultConfig()

	// Main is the root command of xchgctl.
	Main = &cobra.Command{
		Use:   "xchgctl",
		Short: "xchgctl routes values to nodes and simulates distributed exchanges.",
		Long: "`xchgctl` shows where the locator sends a value for a given distribution strategy, " +
			"and runs in-process redistributions through the exchange to report what every node receives.\n\n" +
			"Every flag can also be set in the config file given by --config, or through an environment " +
			"variable named after the flag with an XCHG_ prefix, such as XCHG_PORTAL_QUANTUM.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: preRun,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Flush()
		},
	}
)

func preRun(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd.Flags(), configFile); err != nil {
		return err
	}
	return log.Init(cmd.Flags())
}

// serveMetrics exports the stats variables on addr until the returned
// function is called.
func serveMetrics(addr string) (func(), error) {
	reg := prometheus.NewRegistry()
	prometheusbackend.Init(reg, "xchg")

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warningf("metrics server: %v", err)
		}
	}()
	log.InfoS("serving metrics", "addr", lis.Addr().String())
	return func() { _ = srv.Close() }, nil
}

func init() {
	fs := Main.PersistentFlags()
	fs.SetNormalizeFunc(utils.NormalizeUnderscoresToDashes)
	fs.AddGoFlagSet(flag.CommandLine)

	log.RegisterFlags(fs)
	portalConfig.RegisterFlags(fs)
	utils.SetFlagStringVar(fs, &configFile, "config", configFile, "config file with flag values, in any format viper reads (yaml, json, toml)")
	utils.SetFlagStringVar(fs, &metricsAddr, "metrics-addr", metricsAddr, "address to serve Prometheus metrics on while a simulation runs")
}
