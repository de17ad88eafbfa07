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
	"os"
	"os/signal"
	"time"

	"github.com/value-lens/vl-api/common"
	"github.com/value-lens/vl-api/data"
	"github.com/value-lens/vl-api/middleware"
	"github.com/value-lens/vl-api/observability/opentelemetry"
	"github.com/value-lens/vl-api/router"

	"github.com/go-co-op/gocron"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	viper.BindEnv("server.port", "PORT")
	serveCmd.Flags().IntP("port", "p", 10000, "Port to run application server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}

func buildCache() data.Cache {
	quoteTTL := time.Duration(viper.GetInt("cache.quote_ttl")) * time.Second
	searchTTL := time.Duration(viper.GetInt("cache.search_ttl")) * time.Second

	if viper.GetBool("cache.redis") {
		cache, err := data.NewRedisCache(viper.GetString("cache.redis_url"), viper.GetInt("cache.local_size"), quoteTTL, searchTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create redis cache")
		}
		log.Info().Msg("using redis-backed cache")
		return cache
	}

	return data.NewMemoryCache(quoteTTL, searchTTL)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ValueLens API server",
	Long:  `Run HTTP server that implements the ValueLens API`,
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
		log.Info().Str("Version", common.CurrentVersion.String()).Msg("initialized logging")

		if viper.GetString("otlp.endpoint") != "" {
			shutdown, err := opentelemetry.Setup()
			if err != nil {
				log.Fatal().Err(err).Msg("could not initialize tracing")
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Error().Err(err).Msg("could not shutdown tracing")
				}
			}()
		}

		cache := buildCache()
		manager := data.NewManager(cache)
		log.Info().Str("FinancialsSource", manager.FinancialsSource()).Msg("initialized data framework")

		// Create new Fiber instance
		app := fiber.New(fiber.Config{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		})

		// shutdown cleanly on interrupt
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		go func() {
			sig := <-c // block until signal is read
			log.Info().Str("Signal", sig.String()).Msg("received signal; shutting down")
			if err := app.Shutdown(); err != nil {
				log.Fatal().Err(err).Msg("could not shutdown app")
			}
		}()

		// Configure CORS
		app.Use(cors.New(cors.Config{
			AllowHeaders: "*",
			AllowMethods: "GET,POST,HEAD,OPTIONS",
		}))

		// Setup logging middleware
		app.Use(middleware.NewLogger())

		// Setup routes
		router.SetupRoutes(app, manager)

		// expired cache entries are dead weight; reclaim them hourly
		if memCache, ok := cache.(*data.MemoryCache); ok {
			scheduler := gocron.NewScheduler(time.UTC)
			scheduler.Every(1).Hour().Do(func() {
				removed := memCache.Sweep()
				log.Debug().Int("Removed", removed).Msg("swept expired cache entries")
			})
			scheduler.StartAsync()
		}

		if err := app.Listen(":" + viper.GetString("server.port")); err != nil {
			log.Fatal().Err(err).Msg("server exited")
		}
	},
}
