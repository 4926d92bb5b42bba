/*
Copyright 2024 The promql-lang Authors.

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

package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/go-promql/promql/internal/metrics"
)

// rootFlags are shared across all promqllint subcommands.
type rootFlags struct {
	jsonOutput  bool
	metricsAddr string
}

var flags rootFlags

// recorder is populated in PersistentPreRun once --metrics-addr is
// known; whenever nobody asked for a metrics server it is a Recorder
// built with a nil registry, which feeds no collector.
var recorder *metrics.Recorder

// NewRootCmd builds the promqllint command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "promqllint",
		Short: "Lint and format PromQL expressions",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.metricsAddr == "" {
				recorder = metrics.NewRecorder(nil)
				return nil
			}
			reg := prometheus.NewRegistry()
			recorder = metrics.NewRecorder(reg)
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			go http.ListenAndServe(flags.metricsAddr, mux)
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "emit results as JSON instead of human-readable text")
	root.PersistentFlags().StringVar(&flags.metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics about promqllint's own calls on this address")

	root.AddCommand(newLintCmd())
	root.AddCommand(newFmtCmd())
	return root
}
