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
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/value-lens/vl-api/observability/opentelemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var yahooAPI = "https://query1.finance.yahoo.com"

// Line-item preference lists for the secondary financials provider. Yahoo
// labels the same figure differently across listings; the first key present
// in a statement wins. Kept as data so provider schema drift is a config
// change, not a code change.
var (
	revenueLineItems = []string{"totalRevenue", "operatingRevenue", "revenue"}
	profitLineItems  = []string{"netIncome", "netIncomeApplicableToCommonShares", "netIncomeFromContinuingOps"}
)

// yahoo is the secondary financial-statements provider and the search
// fallback ticker probe. Unqualified symbols get the NSE suffix.
type yahoo struct {
	client *http.Client
}

func NewYahoo() *yahoo {
	return &yahoo{
		client: &http.Client{Timeout: 20 * time.Second},
	}
}

func (p *yahoo) Name() string {
	return "yahoo"
}

// nseTicker qualifies a symbol for the Indian exchange unless the caller
// already picked one.
func nseTicker(symbol string) string {
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".NS"
}

type yahooValue struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

// yahooOptionalValue distinguishes a reported zero from an absent line item.
type yahooOptionalValue struct {
	Raw *float64 `json:"raw"`
}

// yahooStatement is one reporting period with provider-dependent line-item
// keys; values are decoded lazily so unknown shapes don't break the parse.
type yahooStatement map[string]json.RawMessage

// lineItem returns the first present value among candidate keys.
func (s yahooStatement) lineItem(keys []string) (float64, bool) {
	for _, key := range keys {
		raw, ok := s[key]
		if !ok {
			continue
		}
		var v yahooOptionalValue
		if err := json.Unmarshal(raw, &v); err != nil || v.Raw == nil {
			continue
		}
		return *v.Raw, true
	}
	return 0, false
}

// year extracts the fiscal year label from the statement's endDate.
func (s yahooStatement) year() string {
	raw, ok := s["endDate"]
	if !ok {
		return ""
	}
	var v yahooValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	if len(v.Fmt) >= 4 {
		return v.Fmt[:4]
	}
	if v.Raw > 0 {
		return fmt.Sprintf("%d", time.Unix(int64(v.Raw), 0).UTC().Year())
	}
	return ""
}

type yahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			IncomeStatementHistory struct {
				IncomeStatementHistory []yahooStatement `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
			DefaultKeyStatistics struct {
				SharesOutstanding yahooValue `json:"sharesOutstanding"`
			} `json:"defaultKeyStatistics"`
			SummaryProfile struct {
				Sector string `json:"sector"`
			} `json:"summaryProfile"`
			Price struct {
				RegularMarketPrice yahooValue `json:"regularMarketPrice"`
				LongName           string     `json:"longName"`
				ShortName          string     `json:"shortName"`
			} `json:"price"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func (p *yahoo) quoteSummary(ctx context.Context, ticker string, modules string) (*yahooQuoteSummaryResponse, error) {
	requestURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s", yahooAPI, ticker, modules)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request returned invalid status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var summary yahooQuoteSummaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, err
	}

	if summary.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("upstream error: %s", summary.QuoteSummary.Error.Code)
	}

	return &summary, nil
}

// Financials returns the annual income statement history in crores, plus
// total shares outstanding when key statistics report it.
func (p *yahoo) Financials(ctx context.Context, symbol string) (FinancialSeries, bool) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "yahoo.Financials")
	defer span.End()
	span.SetAttributes(attribute.String("Symbol", symbol))

	subLog := log.With().Str("Provider", p.Name()).Str("Symbol", symbol).Logger()

	ticker := nseTicker(symbol)
	summary, err := p.quoteSummary(ctx, ticker, "incomeStatementHistory,defaultKeyStatistics")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "yahoo financials request failed")
		subLog.Warn().Err(err).Str("Ticker", ticker).Msg("financials request failed")
		return FinancialSeries{}, false
	}

	if len(summary.QuoteSummary.Result) == 0 {
		subLog.Info().Str("Ticker", ticker).Msg("no financials result for ticker")
		return FinancialSeries{}, false
	}

	result := summary.QuoteSummary.Result[0]
	statements := result.IncomeStatementHistory.IncomeStatementHistory
	if len(statements) == 0 {
		subLog.Info().Str("Ticker", ticker).Msg("no income statement history for ticker")
		return FinancialSeries{}, false
	}

	// Yahoo reports most recent period first already
	years := make([]YearRecord, 0, len(statements))
	for _, stmt := range statements {
		rev, _ := stmt.lineItem(revenueLineItems)
		pat, _ := stmt.lineItem(profitLineItems)
		years = append(years, YearRecord{
			Year: stmt.year(),
			Rev:  round2(rev / Crore),
			PAT:  round2(pat / Crore),
		})
	}

	return FinancialSeries{
		Years:  years,
		Shares: result.DefaultKeyStatistics.SharesOutstanding.Raw,
	}, true
}

// TickerProbe treats a raw query as a literal ticker and reports its display
// name and sector when the symbol trades. Used as the search fallback and by
// the diagnostic endpoint.
func (p *yahoo) TickerProbe(ctx context.Context, query string) (name string, sector string, ok bool) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "yahoo.TickerProbe")
	defer span.End()

	ticker := nseTicker(query)
	summary, err := p.quoteSummary(ctx, ticker, "price,summaryProfile")
	if err != nil {
		log.Info().Err(err).Str("Provider", p.Name()).Str("Ticker", ticker).Msg("ticker probe failed")
		return "", "", false
	}

	if len(summary.QuoteSummary.Result) == 0 {
		return "", "", false
	}

	result := summary.QuoteSummary.Result[0]
	if result.Price.RegularMarketPrice.Raw <= 0 {
		return "", "", false
	}

	name = result.Price.LongName
	if name == "" {
		name = result.Price.ShortName
	}
	if name == "" {
		name = strings.ToUpper(query)
	}

	sector = result.SummaryProfile.Sector
	if sector == "" {
		sector = "NSE"
	}

	return name, sector, true
}
