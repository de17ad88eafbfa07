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

package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/value-lens/vl-api/data"
	"github.com/value-lens/vl-api/handler"
)

// SetupRoutes setup router api
func SetupRoutes(app *fiber.App, manager *data.Manager) {
	h := handler.New(manager)

	app.Get("/", h.Status)

	api := app.Group("/api")
	api.Get("/search", h.Search)
	api.Get("/fullstock/:symbol", h.FullStock)
	api.Post("/batch-quotes", h.BatchQuotes)
	api.Get("/test", h.Probe)
}
