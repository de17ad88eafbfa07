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
	"math"
	"strings"
)

// Crore is the unit used for all financial statement figures (1e7 INR).
const Crore = 1e7

// NormalizeSymbol strips exchange suffixes and upper-cases a ticker.
// Symbols are compared and cached in this form.
func NormalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	symbol = strings.TrimSuffix(symbol, ".NS")
	symbol = strings.TrimSuffix(symbol, ".BO")
	return symbol
}

// RealtimeQuote is the normalized output of the realtime provider. Every
// field is optional upstream; absent values stay at their zero value.
type RealtimeQuote struct {
	Price         float64
	MarketCapRaw  float64
	PE            float64
	EPS           float64
	Sector        string
	Industry      string
	Name          string
	DayChange     float64
	DayChangePct  float64
	YearHigh      float64
	YearLow       float64
	Volume        float64
	BookValue     float64
	DividendYield float64
}

// YearRecord is one fiscal year of an income statement, in crores.
type YearRecord struct {
	Year string  `json:"year"`
	Rev  float64 `json:"rev"`
	PAT  float64 `json:"pat"`
}

// FinancialSeries is an annual income statement history, most recent year
// first, plus the total shares outstanding when the provider reports it.
type FinancialSeries struct {
	Years  []YearRecord
	Shares float64
}

// Provenance records which provider actually supplied each field set.
type Provenance struct {
	Realtime       string `json:"realtime"`
	Financials     string `json:"financials"`
	YearsAvailable int    `json:"years_available"`
}

// MergedStockRecord is the canonical per-symbol record served to clients.
// CAGR fields are nil when not computable so that true 0% growth stays
// distinguishable from "could not compute".
type MergedStockRecord struct {
	Symbol        string     `json:"sym"`
	Name          string     `json:"name"`
	Sector        string     `json:"sec"`
	Industry      string     `json:"industry"`
	Price         float64    `json:"cmp"`
	SharesCr      float64    `json:"shr"`
	MarketCapCr   float64    `json:"mcapCr"`
	PE            float64    `json:"pe"`
	EPS           float64    `json:"eps"`
	PAT           float64    `json:"pat"`
	Rev           float64    `json:"rev"`
	RevCAGR3      *float64   `json:"r3"`
	RevCAGR5      *float64   `json:"r5"`
	PATCAGR3      *float64   `json:"p3"`
	PATCAGR5      *float64   `json:"p5"`
	DayChange     float64    `json:"dayChange"`
	DayChangePct  float64    `json:"dayChangePct"`
	YearHigh      float64    `json:"yearHigh"`
	YearLow       float64    `json:"yearLow"`
	BookValue     float64    `json:"bookValue"`
	DividendYield float64    `json:"dividendYield"`
	Source        Provenance `json:"_source"`
}

// QuoteSummary is the lightweight per-symbol shape returned by batch quotes.
type QuoteSummary struct {
	Symbol       string  `json:"sym"`
	Name         string  `json:"name"`
	Price        float64 `json:"cmp"`
	PE           float64 `json:"pe"`
	MarketCapCr  float64 `json:"mcapCr"`
	DayChangePct float64 `json:"dayChangePct"`
}

// SearchResult is a single symbol-search candidate.
type SearchResult struct {
	Symbol string `json:"sym"`
	Name   string `json:"name"`
	Sector string `json:"sec"`
}

func round0(v float64) float64 {
	return math.Round(v)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
