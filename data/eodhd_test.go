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
	"fmt"
	"strings"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/value-lens/vl-api/data"
)

var _ = Describe("EODHD provider", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		httpmock.Reset()
	})

	It("reports no data without making a request when unconfigured", func() {
		provider := data.NewEODHD("")
		Expect(provider.Configured()).To(BeFalse())

		_, ok := provider.Financials(ctx, "TCS")
		Expect(ok).To(BeFalse())
		Expect(httpmock.GetTotalCallCount()).To(BeZero())
	})

	It("redacts the token for diagnostics", func() {
		Expect(data.NewEODHD("abcdefgh").TokenPrefix()).To(Equal("abcde..."))
		Expect(data.NewEODHD("ab").TokenPrefix()).To(Equal("ab"))
	})

	Context("when configured", func() {
		provider := data.NewEODHD("TEST")

		It("parses yearly statements newest first and converts to crores", func() {
			httpmock.RegisterResponder("GET",
				"https://eodhd.com/api/fundamentals/TCS.NSE?api_token=TEST&fmt=json&filter=Financials",
				httpmock.NewStringResponder(200, `{"Financials":{"Income_Statement":{"yearly":{
					"2021-03-31":{"totalRevenue":1500000000000,"netIncome":300000000000},
					"2023-03-31":{"totalRevenue":"2200000000000","netIncome":450000000000},
					"2022-03-31":{"totalRevenue":1900000000000,"netIncome":null}}}}}`))

			fin, ok := provider.Financials(ctx, "TCS")
			Expect(ok).To(BeTrue())
			Expect(fin.Shares).To(BeZero())
			Expect(fin.Years).To(Equal([]data.YearRecord{
				{Year: "2023", Rev: 220000, PAT: 45000},
				{Year: "2022", Rev: 190000, PAT: 0},
				{Year: "2021", Rev: 150000, PAT: 30000},
			}))
		})

		It("qualifies the upstream ticker with the NSE suffix", func() {
			httpmock.RegisterResponder("GET",
				"https://eodhd.com/api/fundamentals/INFY.NSE?api_token=TEST&fmt=json&filter=Financials",
				httpmock.NewStringResponder(200, `{"Financials":{"Income_Statement":{"yearly":{
					"2023-03-31":{"totalRevenue":10000000,"netIncome":10000000}}}}}`))

			_, ok := provider.Financials(ctx, "infy.ns")
			Expect(ok).To(BeTrue())
		})

		It("keeps only the 10 most recent fiscal years", func() {
			entries := make([]string, 0, 13)
			for year := 2011; year <= 2023; year++ {
				entries = append(entries, fmt.Sprintf(`"%d-03-31":{"totalRevenue":%d,"netIncome":1}`, year, year))
			}
			body := `{"Financials":{"Income_Statement":{"yearly":{` + strings.Join(entries, ",") + `}}}}`
			httpmock.RegisterResponder("GET",
				"https://eodhd.com/api/fundamentals/TCS.NSE?api_token=TEST&fmt=json&filter=Financials",
				httpmock.NewStringResponder(200, body))

			fin, ok := provider.Financials(ctx, "TCS")
			Expect(ok).To(BeTrue())
			Expect(fin.Years).To(HaveLen(10))
			Expect(fin.Years[0].Year).To(Equal("2023"))
			Expect(fin.Years[9].Year).To(Equal("2014"))
		})

		It("reports no data when the statement section is missing", func() {
			httpmock.RegisterResponder("GET",
				"https://eodhd.com/api/fundamentals/TCS.NSE?api_token=TEST&fmt=json&filter=Financials",
				httpmock.NewStringResponder(200, `{"Financials":{}}`))

			_, ok := provider.Financials(ctx, "TCS")
			Expect(ok).To(BeFalse())
		})

		It("reports no data on an HTTP error status", func() {
			httpmock.RegisterResponder("GET",
				"https://eodhd.com/api/fundamentals/TCS.NSE?api_token=TEST&fmt=json&filter=Financials",
				httpmock.NewStringResponder(403, `{"message":"invalid token"}`))

			_, ok := provider.Financials(ctx, "TCS")
			Expect(ok).To(BeFalse())
		})
	})
})
