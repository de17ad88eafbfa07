// Copyright 2024-2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"

	"github.com/value-lens/vl-api/common"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Realtime provider
	viper.BindEnv("realtime.base_url", "VL_REALTIME_URL")
	rootCmd.PersistentFlags().String("realtime-url", "", "Base URL of the realtime quote provider")
	viper.BindPFlag("realtime.base_url", rootCmd.PersistentFlags().Lookup("realtime-url"))
	viper.SetDefault("realtime.base_url", "https://military-jobye-haiqstudios-14f59639.koyeb.app")

	// EODHD
	viper.BindEnv("eodhd.api_token", "EODHD_API_TOKEN")
	rootCmd.PersistentFlags().String("eodhd-token", "", "EODHD API token; leave blank to disable the primary financials provider")
	viper.BindPFlag("eodhd.api_token", rootCmd.PersistentFlags().Lookup("eodhd-token"))

	// Cache
	viper.SetDefault("cache.quote_ttl", 300)
	viper.SetDefault("cache.search_ttl", 86400)
	viper.SetDefault("cache.local_size", 1024)
	viper.BindEnv("cache.redis", "VL_CACHE_REDIS")
	viper.BindEnv("cache.redis_url", "VL_REDIS_URL")

	// Logging configuration
	viper.BindEnv("log.level", "VL_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "VL_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "VL_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stdout", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	rootCmd.PersistentFlags().Bool("log-pretty", false, "Print logs for human consumption")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Tracing
	viper.BindEnv("otlp.endpoint", "OTLP_ENDPOINT")
	rootCmd.PersistentFlags().String("otlp-endpoint", "", "OTLP trace collector endpoint; blank disables tracing")
	viper.BindPFlag("otlp.endpoint", rootCmd.PersistentFlags().Lookup("otlp-endpoint"))
}

var rootCmd = &cobra.Command{
	Use:     "vlapi",
	Version: common.CurrentVersion.String(),
	Short:   "ValueLens aggregates Indian equity market data",
	Long: `ValueLens merges realtime quotes and multi-year financial statements for
Indian equities from several upstream providers into one record per symbol
and serves it over HTTP.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
