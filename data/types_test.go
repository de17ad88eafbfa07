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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/goccy/go-json"
	"github.com/value-lens/vl-api/data"
)

var _ = Describe("NormalizeSymbol", func() {
	DescribeTable("cleaning tickers",
		func(in string, expected string) {
			Expect(data.NormalizeSymbol(in)).To(Equal(expected))
		},
		Entry("upper-cases", "infy", "INFY"),
		Entry("trims whitespace", "  TCS  ", "TCS"),
		Entry("strips the NSE suffix", "RELIANCE.NS", "RELIANCE"),
		Entry("strips the BSE suffix", "reliance.bo", "RELIANCE"),
		Entry("leaves clean symbols alone", "HDFCBANK", "HDFCBANK"),
	)
})

var _ = Describe("MergedStockRecord", func() {
	It("serializes absent growth rates as null", func() {
		payload, err := json.Marshal(data.MergedStockRecord{Symbol: "TCS"})
		Expect(err).To(BeNil())

		var wire map[string]interface{}
		Expect(json.Unmarshal(payload, &wire)).To(Succeed())
		Expect(wire).To(HaveKey("r3"))
		Expect(wire["r3"]).To(BeNil())
		Expect(wire["r5"]).To(BeNil())
		Expect(wire["p3"]).To(BeNil())
		Expect(wire["p5"]).To(BeNil())
	})
})
