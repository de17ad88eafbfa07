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

package data

import (
	"context"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/value-lens/vl-api/observability/opentelemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	// maxBatchSymbols bounds a single batch-quote request.
	maxBatchSymbols = 20

	// minSearchLength is the shortest query worth sending upstream.
	minSearchLength = 2

	// provenanceNone tags a field set no provider supplied.
	provenanceNone = "none"
)

type tickerProber interface {
	TickerProbe(ctx context.Context, query string) (name string, sector string, ok bool)
}

// Manager is the merge/resolution engine. It owns the provider set and the
// injected cache and produces one canonical record per symbol no matter how
// many upstreams fail.
type Manager struct {
	cache Cache

	realtime  RealtimeProvider
	searcher  SearchProvider
	batcher   BatchQuoteProvider
	primary   FinancialsProvider
	secondary FinancialsProvider
	prober    tickerProber

	eodhd *eodhd
}

// NewManager wires the provider set from configuration. The cache service is
// injected so concurrent requests share one store.
func NewManager(cache Cache) *Manager {
	ismaProvider := NewISMA(viper.GetString("realtime.base_url"))
	eodhdProvider := NewEODHD(viper.GetString("eodhd.api_token"))
	yahooProvider := NewYahoo()

	if !eodhdProvider.Configured() {
		log.Info().Msg("no EODHD API token configured; financial statements fall back to yahoo")
	}

	return &Manager{
		cache:     cache,
		realtime:  ismaProvider,
		searcher:  ismaProvider,
		batcher:   ismaProvider,
		primary:   eodhdProvider,
		secondary: yahooProvider,
		prober:    yahooProvider,
		eodhd:     eodhdProvider,
	}
}

// CacheEntries reports the active cache entry count for the status endpoint.
func (m *Manager) CacheEntries() int {
	return m.cache.Len()
}

// FinancialsSource names the financial-statements provider currently
// preferred by the fallback chain.
func (m *Manager) FinancialsSource() string {
	if m.eodhd.Configured() {
		return m.primary.Name()
	}
	return m.secondary.Name()
}

// EODHDConfigured reports whether the primary financials provider has a
// credential.
func (m *Manager) EODHDConfigured() bool {
	return m.eodhd.Configured()
}

// marketCapCrores converts a raw INR market cap to crores. Values at or
// below 1e6 are assumed to already be in crores: the realtime provider is
// inconsistent about units, so this threshold is its workaround, not a
// general rule.
func marketCapCrores(raw float64) float64 {
	if raw > 1e6 {
		return raw / Crore
	}
	return raw
}

// Resolve returns the merged record for symbol as the exact JSON payload
// served to clients. It never fails: total provider failure yields a zeroed
// record with provenance none/none. Cached payloads are returned verbatim.
func (m *Manager) Resolve(ctx context.Context, symbol string) json.RawMessage {
	sym := NormalizeSymbol(symbol)
	key := "full:" + sym

	if payload, ok := m.cache.Get(key, CategoryQuote); ok {
		return payload
	}

	record := m.merge(ctx, sym)

	payload, err := json.Marshal(record)
	if err != nil {
		// a MergedStockRecord always marshals; keep the contract anyway
		log.Error().Err(err).Str("Symbol", sym).Msg("could not marshal merged record")
		return json.RawMessage("{}")
	}

	m.cache.Set(key, CategoryQuote, payload)
	return payload
}

func (m *Manager) merge(ctx context.Context, sym string) MergedStockRecord {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "Manager.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("Symbol", sym))

	var (
		quote     RealtimeQuote
		haveQuote bool
		fin       FinancialSeries
		finSource string
	)

	// realtime and financials have no data dependency; fetch them in
	// parallel and join before merging
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		quote, haveQuote = m.realtime.Quote(gctx, sym)
		return nil
	})
	g.Go(func() error {
		// strict fallback: the secondary runs only when the primary
		// returns nothing, never merged field-by-field
		if f, ok := m.primary.Financials(gctx, sym); ok {
			fin = f
			finSource = m.primary.Name()
			return nil
		}
		if f, ok := m.secondary.Financials(gctx, sym); ok {
			fin = f
			finSource = m.secondary.Name()
		}
		return nil
	})
	_ = g.Wait()

	mcapCr := marketCapCrores(quote.MarketCapRaw)

	sharesCr := 0.0
	switch {
	case fin.Shares > 0:
		sharesCr = round2(fin.Shares / Crore)
	case quote.Price > 0 && mcapCr > 0:
		sharesCr = round2(mcapCr / quote.Price)
	}

	var latestRev, latestPAT float64
	if len(fin.Years) > 0 {
		latestRev = fin.Years[0].Rev
		latestPAT = fin.Years[0].PAT
	}

	record := MergedStockRecord{
		Symbol:        sym,
		Name:          quote.Name,
		Sector:        quote.Sector,
		Industry:      quote.Industry,
		Price:         quote.Price,
		SharesCr:      sharesCr,
		MarketCapCr:   round0(mcapCr),
		PE:            quote.PE,
		EPS:           quote.EPS,
		PAT:           latestPAT,
		Rev:           latestRev,
		RevCAGR3:      cagrPtr(fin.Years, Revenue, 3),
		RevCAGR5:      cagrPtr(fin.Years, Revenue, 5),
		PATCAGR3:      cagrPtr(fin.Years, Profit, 3),
		PATCAGR5:      cagrPtr(fin.Years, Profit, 5),
		DayChange:     quote.DayChange,
		DayChangePct:  quote.DayChangePct,
		YearHigh:      quote.YearHigh,
		YearLow:       quote.YearLow,
		BookValue:     quote.BookValue,
		DividendYield: quote.DividendYield,
		Source: Provenance{
			Realtime:       provenanceNone,
			Financials:     provenanceNone,
			YearsAvailable: len(fin.Years),
		},
	}

	if haveQuote {
		record.Source.Realtime = m.realtime.Name()
	} else {
		record.Name = sym
		record.Sector = "Unknown"
	}
	if finSource != "" {
		record.Source.Financials = finSource
	}

	log.Info().
		Str("Symbol", sym).
		Float64("Price", record.Price).
		Float64("MarketCapCr", record.MarketCapCr).
		Int("YearsAvailable", record.Source.YearsAvailable).
		Str("RealtimeSource", record.Source.Realtime).
		Str("FinancialsSource", record.Source.Financials).
		Msg("resolved symbol")

	return record
}

// BatchQuotes resolves up to 20 symbols with one upstream list request.
// Best-effort: failures produce an empty array, never an error. An empty
// request returns an empty array without touching any provider.
func (m *Manager) BatchQuotes(ctx context.Context, symbols []string) json.RawMessage {
	if len(symbols) == 0 {
		return json.RawMessage("[]")
	}

	if len(symbols) > maxBatchSymbols {
		symbols = symbols[:maxBatchSymbols]
	}

	cleaned := make([]string, 0, len(symbols))
	for _, s := range symbols {
		cleaned = append(cleaned, NormalizeSymbol(s))
	}

	keyParts := make([]string, len(cleaned))
	copy(keyParts, cleaned)
	sort.Strings(keyParts)
	key := "batch:" + strings.Join(keyParts, "_")

	if payload, ok := m.cache.Get(key, CategoryQuote); ok {
		return payload
	}

	summaries := m.batcher.BatchQuotes(ctx, cleaned)
	if summaries == nil {
		summaries = []QuoteSummary{}
	}

	payload, err := json.Marshal(summaries)
	if err != nil {
		log.Error().Err(err).Msg("could not marshal batch quotes")
		return json.RawMessage("[]")
	}

	m.cache.Set(key, CategoryQuote, payload)
	return payload
}

// Search resolves a free-text query to up to 15 candidates. Queries shorter
// than 2 characters return an empty array without any provider call. When
// the primary search comes back empty, the query is probed as a literal
// ticker against the secondary provider.
func (m *Manager) Search(ctx context.Context, query string) json.RawMessage {
	query = strings.TrimSpace(query)
	if len(query) < minSearchLength {
		return json.RawMessage("[]")
	}

	key := "search:" + strings.ToLower(query)
	if payload, ok := m.cache.Get(key, CategorySearch); ok {
		return payload
	}

	results := m.searcher.Search(ctx, query)
	if len(results) == 0 {
		if name, sector, ok := m.prober.TickerProbe(ctx, query); ok {
			results = []SearchResult{{
				Symbol: strings.ToUpper(query),
				Name:   name,
				Sector: sector,
			}}
		}
	}
	if results == nil {
		results = []SearchResult{}
	}

	payload, err := json.Marshal(results)
	if err != nil {
		log.Error().Err(err).Str("Query", query).Msg("could not marshal search results")
		return json.RawMessage("[]")
	}

	m.cache.Set(key, CategorySearch, payload)
	return payload
}

// Probe exercises every configured provider with a live request and reports
// reachability. Serves the diagnostic endpoint only.
func (m *Manager) Probe(ctx context.Context) map[string]interface{} {
	sources := make(map[string]interface{}, 3)

	if quote, ok := m.realtime.Quote(ctx, "TCS"); ok {
		sources[m.realtime.Name()] = map[string]interface{}{
			"working":     quote.Price > 0,
			"tcs_cmp":     quote.Price,
			"tcs_mcap_cr": round0(quote.MarketCapRaw / Crore),
			"tcs_pe":      quote.PE,
		}
	} else {
		sources[m.realtime.Name()] = map[string]interface{}{"working": false}
	}

	fin, ok := m.secondary.Financials(ctx, "TCS")
	sources[m.secondary.Name()] = map[string]interface{}{
		"working": ok,
		"years":   len(fin.Years),
	}

	if m.eodhd.Configured() {
		sources[m.eodhd.Name()] = map[string]interface{}{
			"working":    m.eodhd.Probe(ctx),
			"key_prefix": m.eodhd.TokenPrefix(),
		}
	} else {
		sources[m.eodhd.Name()] = map[string]interface{}{
			"configured": false,
			"note":       "Set EODHD_API_TOKEN env var to enable",
		}
	}

	return map[string]interface{}{
		"status":  "ok",
		"sources": sources,
	}
}
