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
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/value-lens/vl-api/observability/opentelemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var eodhdAPI = "https://eodhd.com"

// maxStatementYears caps how much income-statement history is kept.
const maxStatementYears = 10

// eodhd is the primary financial-statements provider. It is credential
// gated: without an API token every call is "no data", which pushes the
// engine onto the secondary provider.
type eodhd struct {
	token  string
	client *http.Client
}

// NewEODHD creates the provider. An empty token disables it.
func NewEODHD(token string) *eodhd {
	return &eodhd{
		token:  token,
		client: &http.Client{Timeout: 20 * time.Second},
	}
}

func (p *eodhd) Name() string {
	return "eodhd"
}

// Configured reports whether an API token is present.
func (p *eodhd) Configured() bool {
	return p.token != ""
}

// TokenPrefix returns a redacted form of the token for diagnostics.
func (p *eodhd) TokenPrefix() string {
	if len(p.token) < 5 {
		return p.token
	}
	return p.token[:5] + "..."
}

type eodhdFundamentals struct {
	Financials struct {
		IncomeStatement struct {
			Yearly map[string]eodhdStatement `json:"yearly"`
		} `json:"Income_Statement"`
	} `json:"Financials"`
}

type eodhdStatement struct {
	TotalRevenue interface{} `json:"totalRevenue"`
	NetIncome    interface{} `json:"netIncome"`
}

// asFloat tolerates the mixed encodings EODHD uses for numeric values:
// JSON numbers, quoted strings, or null.
func asFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Financials returns up to 10 most-recent fiscal years, period descending,
// values converted from INR to crores.
func (p *eodhd) Financials(ctx context.Context, symbol string) (FinancialSeries, bool) {
	if !p.Configured() {
		return FinancialSeries{}, false
	}

	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "eodhd.Financials")
	defer span.End()
	span.SetAttributes(attribute.String("Symbol", symbol))

	subLog := log.With().Str("Provider", p.Name()).Str("Symbol", symbol).Logger()

	ticker := NormalizeSymbol(symbol) + ".NSE"
	requestURL := fmt.Sprintf("%s/api/fundamentals/%s?api_token=%s&fmt=json&filter=Financials", eodhdAPI, ticker, p.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		subLog.Warn().Err(err).Msg("could not build fundamentals request")
		return FinancialSeries{}, false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "eodhd fundamentals request failed")
		subLog.Warn().Err(err).Msg("fundamentals request failed")
		return FinancialSeries{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		subLog.Warn().Int("HTTPResponseStatusCode", resp.StatusCode).Msg("fundamentals request returned non-success status")
		return FinancialSeries{}, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		subLog.Warn().Err(err).Msg("could not read fundamentals body")
		return FinancialSeries{}, false
	}

	var fundamentals eodhdFundamentals
	if err := json.Unmarshal(body, &fundamentals); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not unmarshal json")
		subLog.Warn().Err(err).Msg("could not unmarshal fundamentals")
		return FinancialSeries{}, false
	}

	yearly := fundamentals.Financials.IncomeStatement.Yearly
	if len(yearly) == 0 {
		subLog.Info().Msg("no income statement section in fundamentals")
		return FinancialSeries{}, false
	}

	periods := make([]string, 0, len(yearly))
	for period := range yearly {
		periods = append(periods, period)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))
	if len(periods) > maxStatementYears {
		periods = periods[:maxStatementYears]
	}

	years := make([]YearRecord, 0, len(periods))
	for _, period := range periods {
		stmt := yearly[period]
		year := period
		if len(year) > 4 {
			year = year[:4]
		}
		years = append(years, YearRecord{
			Year: year,
			Rev:  round2(asFloat(stmt.TotalRevenue) / Crore),
			PAT:  round2(asFloat(stmt.NetIncome) / Crore),
		})
	}

	return FinancialSeries{Years: years}, true
}

// Probe checks reachability for the diagnostic endpoint with a minimal
// end-of-day request.
func (p *eodhd) Probe(ctx context.Context) bool {
	if !p.Configured() {
		return false
	}

	requestURL := fmt.Sprintf("%s/api/eod/TCS.NSE?api_token=%s&fmt=json&limit=1", eodhdAPI, p.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("Provider", p.Name()).Msg("probe failed")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
