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

import "context"

// Provider adapters never surface transport or parse errors to the engine.
// Failure is representable only as ok=false ("no data"), logged at the
// adapter with enough context to diagnose the upstream outage. The engine's
// fallback logic is driven entirely by these typed outcomes.

// RealtimeProvider returns the current market snapshot for one symbol.
type RealtimeProvider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (RealtimeQuote, bool)
}

// FinancialsProvider returns the annual income statement history for one
// symbol, most recent year first, values in crores.
type FinancialsProvider interface {
	Name() string
	Financials(ctx context.Context, symbol string) (FinancialSeries, bool)
}

// SearchProvider resolves a free-text query to candidate symbols.
type SearchProvider interface {
	Search(ctx context.Context, query string) []SearchResult
}

// BatchQuoteProvider maps up to one upstream request onto many symbols.
// Entirely best-effort: any failure yields an empty slice.
type BatchQuoteProvider interface {
	BatchQuotes(ctx context.Context, symbols []string) []QuoteSummary
}
