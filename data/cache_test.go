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
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/value-lens/vl-api/data"
)

var _ = Describe("MemoryCache", func() {
	var cache *data.MemoryCache

	BeforeEach(func() {
		cache = data.NewMemoryCache(50*time.Millisecond, 250*time.Millisecond)
	})

	It("returns stored payloads before the TTL elapses", func() {
		cache.Set("full:TCS", data.CategoryQuote, []byte(`{"sym":"TCS"}`))

		payload, ok := cache.Get("full:TCS", data.CategoryQuote)
		Expect(ok).To(BeTrue())
		Expect(payload).To(Equal([]byte(`{"sym":"TCS"}`)))
		Expect(cache.Len()).To(Equal(1))
	})

	It("misses on unknown keys", func() {
		_, ok := cache.Get("full:GHOST", data.CategoryQuote)
		Expect(ok).To(BeFalse())
	})

	It("expires quote entries after the quote TTL", func() {
		cache.Set("full:TCS", data.CategoryQuote, []byte(`{}`))
		time.Sleep(80 * time.Millisecond)

		_, ok := cache.Get("full:TCS", data.CategoryQuote)
		Expect(ok).To(BeFalse())
		Expect(cache.Len()).To(BeZero())
	})

	It("keeps search entries past the quote TTL", func() {
		cache.Set("search:tata", data.CategorySearch, []byte(`[]`))
		time.Sleep(80 * time.Millisecond)

		_, ok := cache.Get("search:tata", data.CategorySearch)
		Expect(ok).To(BeTrue())
	})

	It("replaces an existing entry and restarts its TTL", func() {
		cache.Set("full:TCS", data.CategoryQuote, []byte(`{"cmp":1}`))
		time.Sleep(30 * time.Millisecond)
		cache.Set("full:TCS", data.CategoryQuote, []byte(`{"cmp":2}`))
		time.Sleep(30 * time.Millisecond)

		payload, ok := cache.Get("full:TCS", data.CategoryQuote)
		Expect(ok).To(BeTrue())
		Expect(payload).To(Equal([]byte(`{"cmp":2}`)))
		Expect(cache.Len()).To(Equal(1))
	})

	It("sweeps only entries older than the longest TTL", func() {
		cache.Set("full:OLD", data.CategoryQuote, []byte(`{}`))
		time.Sleep(300 * time.Millisecond)
		cache.Set("full:NEW", data.CategoryQuote, []byte(`{}`))

		Expect(cache.Sweep()).To(Equal(1))
		Expect(cache.Len()).To(Equal(1))

		_, ok := cache.Get("full:NEW", data.CategoryQuote)
		Expect(ok).To(BeTrue())
	})

	It("is safe for concurrent readers and writers", func() {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(n int) {
				defer GinkgoRecover()
				defer wg.Done()
				key := fmt.Sprintf("full:SYM%d", n)
				for j := 0; j < 100; j++ {
					cache.Set(key, data.CategoryQuote, []byte(`{}`))
					cache.Get(key, data.CategoryQuote)
					cache.Len()
				}
			}(i)
		}
		wg.Wait()
		Expect(cache.Len()).To(Equal(8))
	})
})

var _ = Describe("RedisCache", func() {
	// nothing listens on this port, so every redis command fails
	const unreachableRedis = "redis://127.0.0.1:6399/0"

	It("rejects a malformed redis URL", func() {
		_, err := data.NewRedisCache("not-a-redis-url", 16, time.Minute, time.Hour)
		Expect(err).ToNot(BeNil())
	})

	It("rejects a non-positive local layer size", func() {
		_, err := data.NewRedisCache(unreachableRedis, 0, time.Minute, time.Hour)
		Expect(err).ToNot(BeNil())
	})

	Context("when the redis server is unreachable", func() {
		var cache *data.RedisCache

		BeforeEach(func() {
			var err error
			cache, err = data.NewRedisCache(unreachableRedis, 16, 50*time.Millisecond, time.Hour)
			Expect(err).To(BeNil())
		})

		It("serves writes back from the local layer", func() {
			cache.Set("full:TCS", data.CategoryQuote, []byte(`{"sym":"TCS"}`))
			Expect(cache.Len()).To(Equal(1))

			payload, ok := cache.Get("full:TCS", data.CategoryQuote)
			Expect(ok).To(BeTrue())
			Expect(payload).To(Equal([]byte(`{"sym":"TCS"}`)))
		})

		It("misses once the local entry's stamp is older than the TTL", func() {
			cache.Set("full:TCS", data.CategoryQuote, []byte(`{}`))
			time.Sleep(80 * time.Millisecond)

			_, ok := cache.Get("full:TCS", data.CategoryQuote)
			Expect(ok).To(BeFalse())
		})

		It("applies the search TTL to search entries", func() {
			cache.Set("search:tata", data.CategorySearch, []byte(`[]`))
			time.Sleep(80 * time.Millisecond)

			_, ok := cache.Get("search:tata", data.CategorySearch)
			Expect(ok).To(BeTrue())
		})

		It("misses on keys never stored locally", func() {
			_, ok := cache.Get("full:GHOST", data.CategoryQuote)
			Expect(ok).To(BeFalse())
		})
	})
})

