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

	"github.com/value-lens/vl-api/data"
)

var _ = Describe("CAGR", func() {
	DescribeTable("revenue growth rates",
		func(years []data.YearRecord, n int, expected float64, expectedOk bool) {
			got, ok := data.CAGR(years, data.Revenue, n)
			Expect(ok).To(Equal(expectedOk))
			Expect(got).To(Equal(expected))
		},
		Entry("doubles over 2 years",
			[]data.YearRecord{{Rev: 200}, {Rev: 150}, {Rev: 100}}, 2, 41.4, true),
		Entry("doubles over 5 years",
			[]data.YearRecord{{Rev: 100}, {Rev: 90}, {Rev: 80}, {Rev: 70}, {Rev: 60}, {Rev: 50}}, 5, 14.9, true),
		Entry("flat series is zero growth, not unknown",
			[]data.YearRecord{{Rev: 100}, {Rev: 100}, {Rev: 100}, {Rev: 100}}, 3, 0.0, true),
		Entry("declining series is negative",
			[]data.YearRecord{{Rev: 50}, {Rev: 75}, {Rev: 100}}, 2, -29.3, true),
		Entry("not computable with fewer than n+1 years",
			[]data.YearRecord{{Rev: 200}, {Rev: 100}}, 2, 0.0, false),
		Entry("not computable from an empty series",
			[]data.YearRecord{}, 3, 0.0, false),
		Entry("not computable when the newest year is zero",
			[]data.YearRecord{{Rev: 0}, {Rev: 150}, {Rev: 100}}, 2, 0.0, false),
		Entry("not computable when the base year is negative",
			[]data.YearRecord{{Rev: 200}, {Rev: 150}, {Rev: -100}}, 2, 0.0, false),
		Entry("not computable for n of zero",
			[]data.YearRecord{{Rev: 200}, {Rev: 100}}, 0, 0.0, false),
	)

	It("computes profit growth over the pat series", func() {
		years := []data.YearRecord{{PAT: 200, Rev: 1}, {PAT: 150, Rev: 1}, {PAT: 100, Rev: 1}}
		got, ok := data.CAGR(years, data.Profit, 2)
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(41.4))
	})
})
