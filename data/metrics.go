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

import "math"

// Revenue and Profit select the series a growth rate is computed over.
var (
	Revenue = func(r YearRecord) float64 { return r.Rev }
	Profit  = func(r YearRecord) float64 { return r.PAT }
)

// CAGR computes the compound annual growth rate, in percent rounded to one
// decimal, between the most recent year and n years back. years must be
// ordered most recent first. ok is false when the rate is not computable:
// fewer than n+1 years, or either endpoint not strictly positive. A zero
// return with ok=false is "unknown", never "0% growth".
func CAGR(years []YearRecord, value func(YearRecord) float64, n int) (float64, bool) {
	if n <= 0 || len(years) < n+1 {
		return 0, false
	}

	a := value(years[0])
	b := value(years[n])
	if a <= 0 || b <= 0 {
		return 0, false
	}

	return round1((math.Pow(a/b, 1/float64(n)) - 1) * 100), true
}

// cagrPtr adapts CAGR's comma-ok result to the nullable wire representation.
func cagrPtr(years []YearRecord, value func(YearRecord) float64, n int) *float64 {
	if v, ok := CAGR(years, value, n); ok {
		return &v
	}
	return nil
}
