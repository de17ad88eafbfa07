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

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/value-lens/vl-api/common"
	"github.com/value-lens/vl-api/data"
	"github.com/value-lens/vl-api/observability/opentelemetry"
	"go.opentelemetry.io/otel"
)

// Handler serves the HTTP facade over the resolution engine. The engine
// never fails, so none of the stock endpoints produce error responses; the
// only caller-visible failure is a malformed request body.
type Handler struct {
	manager *data.Manager
}

func New(manager *data.Manager) *Handler {
	return &Handler{manager: manager}
}

type StatusResponse struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Sources      map[string]string `json:"sources"`
	CacheEntries int               `json:"cache_entries"`
	EODHDEnabled bool              `json:"eodhd_configured"`
}

// Status reports service health, the configured provider chain and the
// active cache entry count.
func (h *Handler) Status(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{
		Status:  "ok",
		Service: "ValueLens API v" + common.CurrentVersion.String(),
		Sources: map[string]string{
			"realtime":   "Indian Stock Market API (INR)",
			"financials": h.manager.FinancialsSource(),
		},
		CacheEntries: h.manager.CacheEntries(),
		EODHDEnabled: h.manager.EODHDConfigured(),
	})
}

// Probe exercises each provider with a live request; diagnostics only.
func (h *Handler) Probe(c *fiber.Ctx) error {
	return c.JSON(h.manager.Probe(c.Context()))
}

func sendJSON(c *fiber.Ctx, payload []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(payload)
}

// Search handles GET /api/search?q=. Short queries yield an empty array,
// not an error.
func (h *Handler) Search(c *fiber.Ctx) error {
	return sendJSON(c, h.manager.Search(c.Context(), c.Query("q")))
}

// FullStock handles GET /api/fullstock/:symbol.
func (h *Handler) FullStock(c *fiber.Ctx) error {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(c.Context(), "handler.FullStock")
	defer span.End()
	span.SetAttributes(opentelemetry.SpanAttributesFromFiber(c)...)

	return sendJSON(c, h.manager.Resolve(ctx, c.Params("symbol")))
}

type batchQuotesRequest struct {
	Symbols []string `json:"symbols"`
}

// BatchQuotes handles POST /api/batch-quotes. Only the first 20 symbols are
// considered; an unparseable body is the caller's fault and the only 4xx
// this surface produces.
func (h *Handler) BatchQuotes(c *fiber.Ctx) error {
	var req batchQuotesRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn().Err(err).Msg("could not parse batch quotes request body")
		return fiber.ErrBadRequest
	}
	return sendJSON(c, h.manager.BatchQuotes(c.Context(), req.Symbols))
}
