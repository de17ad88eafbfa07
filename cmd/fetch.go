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
	"context"
	"fmt"
	"time"

	"github.com/value-lens/vl-api/common"
	"github.com/value-lens/vl-api/data"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [symbol]...",
	Short: "Resolve symbols once and print the merged records",
	Long: `Resolve each symbol against the live providers and print the merged
record as JSON. Useful for diagnosing upstream trouble without running the
server.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()

		quoteTTL := time.Duration(viper.GetInt("cache.quote_ttl")) * time.Second
		searchTTL := time.Duration(viper.GetInt("cache.search_ttl")) * time.Second
		manager := data.NewManager(data.NewMemoryCache(quoteTTL, searchTTL))

		for _, symbol := range args {
			fmt.Println(string(manager.Resolve(context.Background(), symbol)))
		}
	},
}
