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

package data_test

import (
	"context"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/value-lens/vl-api/data"
)

var _ = Describe("Yahoo provider", func() {
	var ctx context.Context
	provider := data.NewYahoo()

	BeforeEach(func() {
		ctx = context.Background()
		httpmock.Reset()
	})

	Context("when fetching financials", func() {
		It("parses statements and shares outstanding", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v10/finance/quoteSummary/TCS.NS?modules=incomeStatementHistory,defaultKeyStatistics",
				httpmock.NewStringResponder(200, `{"quoteSummary":{"result":[{
					"incomeStatementHistory":{"incomeStatementHistory":[
						{"endDate":{"raw":1680220800,"fmt":"2023-03-31"},
						 "totalRevenue":{"raw":2200000000000,"fmt":"2.2T"},
						 "netIncome":{"raw":450000000000,"fmt":"450B"}},
						{"endDate":{"raw":1648684800,"fmt":"2022-03-31"},
						 "totalRevenue":{"raw":1900000000000,"fmt":"1.9T"},
						 "netIncome":{"raw":380000000000,"fmt":"380B"}}]},
					"defaultKeyStatistics":{"sharesOutstanding":{"raw":3660000000,"fmt":"3.66B"}}}],
					"error":null}}`))

			fin, ok := provider.Financials(ctx, "TCS")
			Expect(ok).To(BeTrue())
			Expect(fin.Shares).To(Equal(3660000000.0))
			Expect(fin.Years).To(Equal([]data.YearRecord{
				{Year: "2023", Rev: 220000, PAT: 45000},
				{Year: "2022", Rev: 190000, PAT: 38000},
			}))
		})

		It("falls back through the line-item preference lists", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v10/finance/quoteSummary/TCS.NS?modules=incomeStatementHistory,defaultKeyStatistics",
				httpmock.NewStringResponder(200, `{"quoteSummary":{"result":[{
					"incomeStatementHistory":{"incomeStatementHistory":[
						{"endDate":{"raw":1680220800,"fmt":"2023-03-31"},
						 "maxAge":1,
						 "operatingRevenue":{"raw":500000000000},
						 "netIncomeFromContinuingOps":{"raw":100000000000}}]},
					"defaultKeyStatistics":{}}],"error":null}}`))

			fin, ok := provider.Financials(ctx, "TCS")
			Expect(ok).To(BeTrue())
			Expect(fin.Years).To(Equal([]data.YearRecord{
				{Year: "2023", Rev: 50000, PAT: 10000},
			}))
		})

		It("treats a null line item as absent", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v10/finance/quoteSummary/TCS.NS?modules=incomeStatementHistory,defaultKeyStatistics",
				httpmock.NewStringResponder(200, `{"quoteSummary":{"result":[{
					"incomeStatementHistory":{"incomeStatementHistory":[
						{"endDate":{"raw":1680220800,"fmt":"2023-03-31"},
						 "totalRevenue":{"raw":null},
						 "netIncome":{"raw":100000000}}]},
					"defaultKeyStatistics":{}}],"error":null}}`))

			fin, ok := provider.Financials(ctx, "TCS")
			Expect(ok).To(BeTrue())
			Expect(fin.Years[0].Rev).To(BeZero())
			Expect(fin.Years[0].PAT).To(Equal(10.0))
		})

		It("reports no data when the statement history is empty", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v10/finance/quoteSummary/TCS.NS?modules=incomeStatementHistory,defaultKeyStatistics",
				httpmock.NewStringResponder(200, `{"quoteSummary":{"result":[{
					"incomeStatementHistory":{"incomeStatementHistory":[]},
					"defaultKeyStatistics":{}}],"error":null}}`))

			_, ok := provider.Financials(ctx, "TCS")
			Expect(ok).To(BeFalse())
		})

		It("reports no data when the upstream returns an error object", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v10/finance/quoteSummary/GHOST.NS?modules=incomeStatementHistory,defaultKeyStatistics",
				httpmock.NewStringResponder(200, `{"quoteSummary":{"result":[],
					"error":{"code":"Not Found","description":"No data found"}}}`))

			_, ok := provider.Financials(ctx, "GHOST")
			Expect(ok).To(BeFalse())
		})

		It("keeps an explicit exchange suffix", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v10/finance/quoteSummary/TCS.BO?modules=incomeStatementHistory,defaultKeyStatistics",
				httpmock.NewStringResponder(200, `{"quoteSummary":{"result":[{
					"incomeStatementHistory":{"incomeStatementHistory":[
						{"endDate":{"fmt":"2023-03-31"},"totalRevenue":{"raw":10000000}}]},
					"defaultKeyStatistics":{}}],"error":null}}`))

			_, ok := provider.Financials(ctx, "TCS.BO")
			Expect(ok).To(BeTrue())
		})
	})

	Context("when probing a ticker", func() {
		It("returns the display name and sector for a trading symbol", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v10/finance/quoteSummary/ZOMATO.NS?modules=price,summaryProfile",
				httpmock.NewStringResponder(200, `{"quoteSummary":{"result":[{
					"price":{"regularMarketPrice":{"raw":182.5},"longName":"Zomato Limited","shortName":"ZOMATO"},
					"summaryProfile":{"sector":"Consumer Cyclical"}}],"error":null}}`))

			name, sector, ok := provider.TickerProbe(ctx, "ZOMATO")
			Expect(ok).To(BeTrue())
			Expect(name).To(Equal("Zomato Limited"))
			Expect(sector).To(Equal("Consumer Cyclical"))
		})

		It("falls back to the short name and a default sector", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v10/finance/quoteSummary/IRCTC.NS?modules=price,summaryProfile",
				httpmock.NewStringResponder(200, `{"quoteSummary":{"result":[{
					"price":{"regularMarketPrice":{"raw":650},"shortName":"IRCTC"},
					"summaryProfile":{}}],"error":null}}`))

			name, sector, ok := provider.TickerProbe(ctx, "IRCTC")
			Expect(ok).To(BeTrue())
			Expect(name).To(Equal("IRCTC"))
			Expect(sector).To(Equal("NSE"))
		})

		It("falls back to the upper-cased query when no name is reported", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v10/finance/quoteSummary/newco.NS?modules=price,summaryProfile",
				httpmock.NewStringResponder(200, `{"quoteSummary":{"result":[{
					"price":{"regularMarketPrice":{"raw":42.5}},
					"summaryProfile":{}}],"error":null}}`))

			name, sector, ok := provider.TickerProbe(ctx, "newco")
			Expect(ok).To(BeTrue())
			Expect(name).To(Equal("NEWCO"))
			Expect(sector).To(Equal("NSE"))
		})

		It("rejects symbols without a positive market price", func() {
			httpmock.RegisterResponder("GET",
				"https://query1.finance.yahoo.com/v10/finance/quoteSummary/DELISTED.NS?modules=price,summaryProfile",
				httpmock.NewStringResponder(200, `{"quoteSummary":{"result":[{
					"price":{"regularMarketPrice":{"raw":0}},"summaryProfile":{}}],"error":null}}`))

			_, _, ok := provider.TickerProbe(ctx, "DELISTED")
			Expect(ok).To(BeFalse())
		})
	})
})
