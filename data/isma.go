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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/value-lens/vl-api/observability/opentelemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// isma wraps the Indian Stock Market API: realtime quotes, symbol search and
// the batch quote list. All figures arrive in INR natively.
type isma struct {
	baseURL string
	client  *http.Client
}

// NewISMA creates the realtime provider. baseURL comes from configuration so
// tests and self-hosted mirrors can point elsewhere.
func NewISMA(baseURL string) *isma {
	return &isma{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *isma) Name() string {
	return "isma"
}

// get performs one GET and returns the body. Callers treat any error as
// "no data"; this is the only place transport failures are produced.
func (p *isma) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request returned invalid status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

type ismaQuote struct {
	LastPrice        float64 `json:"last_price"`
	MarketCap        float64 `json:"market_cap"`
	PERatio          float64 `json:"pe_ratio"`
	EarningsPerShare float64 `json:"earnings_per_share"`
	Sector           string  `json:"sector"`
	Industry         string  `json:"industry"`
	CompanyName      string  `json:"company_name"`
	Change           float64 `json:"change"`
	PercentChange    float64 `json:"percent_change"`
	YearHigh         float64 `json:"year_high"`
	YearLow          float64 `json:"year_low"`
	Volume           float64 `json:"volume"`
	BookValue        float64 `json:"book_value"`
	DividendYield    float64 `json:"dividend_yield"`
}

type ismaQuoteResponse struct {
	Status string    `json:"status"`
	Data   ismaQuote `json:"data"`
}

// Quote fetches the realtime snapshot for a cleaned symbol. Market cap is
// passed through raw; the engine owns the crore conversion heuristic.
func (p *isma) Quote(ctx context.Context, symbol string) (RealtimeQuote, bool) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "isma.Quote")
	defer span.End()
	span.SetAttributes(attribute.String("Symbol", symbol))

	subLog := log.With().Str("Provider", p.Name()).Str("Symbol", symbol).Logger()

	requestURL := fmt.Sprintf("%s/stock?symbol=%s&res=num", p.baseURL, url.QueryEscape(symbol))
	body, err := p.get(ctx, requestURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "isma quote request failed")
		subLog.Warn().Err(err).Msg("realtime quote request failed")
		return RealtimeQuote{}, false
	}

	var resp ismaQuoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not unmarshal json")
		subLog.Warn().Err(err).Msg("could not unmarshal realtime quote")
		return RealtimeQuote{}, false
	}

	if resp.Status != "success" {
		subLog.Warn().Str("UpstreamStatus", resp.Status).Msg("realtime provider reported non-success")
		return RealtimeQuote{}, false
	}

	d := resp.Data
	return RealtimeQuote{
		Price:         d.LastPrice,
		MarketCapRaw:  d.MarketCap,
		PE:            d.PERatio,
		EPS:           d.EarningsPerShare,
		Sector:        d.Sector,
		Industry:      d.Industry,
		Name:          d.CompanyName,
		DayChange:     d.Change,
		DayChangePct:  d.PercentChange,
		YearHigh:      d.YearHigh,
		YearLow:       d.YearLow,
		Volume:        d.Volume,
		BookValue:     d.BookValue,
		DividendYield: d.DividendYield,
	}, true
}

type ismaSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Symbol      string `json:"symbol"`
		CompanyName string `json:"company_name"`
	} `json:"results"`
}

// Search returns up to 15 candidates for a free-text query.
func (p *isma) Search(ctx context.Context, query string) []SearchResult {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "isma.Search")
	defer span.End()

	subLog := log.With().Str("Provider", p.Name()).Str("Query", query).Logger()

	requestURL := fmt.Sprintf("%s/search?query=%s", p.baseURL, url.QueryEscape(query))
	body, err := p.get(ctx, requestURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "isma search request failed")
		subLog.Warn().Err(err).Msg("search request failed")
		return []SearchResult{}
	}

	var resp ismaSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		subLog.Warn().Err(err).Msg("could not unmarshal search results")
		return []SearchResult{}
	}

	if resp.Status != "success" {
		return []SearchResult{}
	}

	results := make([]SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		if len(results) >= 15 {
			break
		}
		results = append(results, SearchResult{
			Symbol: r.Symbol,
			Name:   r.CompanyName,
			Sector: "NSE",
		})
	}
	return results
}

type ismaBatchResponse struct {
	Stocks []struct {
		Symbol        string  `json:"symbol"`
		CompanyName   string  `json:"company_name"`
		LastPrice     float64 `json:"last_price"`
		PERatio       float64 `json:"pe_ratio"`
		MarketCap     float64 `json:"market_cap"`
		PercentChange float64 `json:"percent_change"`
	} `json:"stocks"`
}

// BatchQuotes issues one upstream list request for the given symbols and maps
// each element to a QuoteSummary. No per-symbol fallback.
func (p *isma) BatchQuotes(ctx context.Context, symbols []string) []QuoteSummary {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "isma.BatchQuotes")
	defer span.End()
	span.SetAttributes(attribute.Int("NumSymbols", len(symbols)))

	subLog := log.With().Str("Provider", p.Name()).Int("NumSymbols", len(symbols)).Logger()

	requestURL := fmt.Sprintf("%s/stock/list?symbols=%s&res=num", p.baseURL, url.QueryEscape(strings.Join(symbols, ",")))
	body, err := p.get(ctx, requestURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "isma batch request failed")
		subLog.Warn().Err(err).Msg("batch quote request failed")
		return []QuoteSummary{}
	}

	var resp ismaBatchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		subLog.Warn().Err(err).Msg("could not unmarshal batch quotes")
		return []QuoteSummary{}
	}

	summaries := make([]QuoteSummary, 0, len(resp.Stocks))
	for _, s := range resp.Stocks {
		summaries = append(summaries, QuoteSummary{
			Symbol:       s.Symbol,
			Name:         s.CompanyName,
			Price:        s.LastPrice,
			PE:           s.PERatio,
			MarketCapCr:  round0(s.MarketCap / Crore),
			DayChangePct: s.PercentChange,
		})
	}
	return summaries
}
