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
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
)

// Category selects the TTL applied to a cache entry.
type Category string

const (
	CategoryQuote  Category = "quote"
	CategorySearch Category = "search"
)

// Cache is a TTL-aware payload store shared by every request handler. It is
// constructed once at process start and handed to the Manager. Expiry happens
// on read; there is no eviction policy beyond TTL.
type Cache interface {
	Get(key string, category Category) ([]byte, bool)
	Set(key string, category Category, payload []byte)
	Len() int
}

type memoryEntry struct {
	payload    []byte
	insertedAt time.Time
}

// MemoryCache is the default store: an unbounded mutex-guarded map. Entries
// accumulate for the process lifetime; the serve command schedules Sweep to
// reclaim the ones that already expired.
type MemoryCache struct {
	quoteTTL  time.Duration
	searchTTL time.Duration

	locker sync.RWMutex
	items  map[string]memoryEntry
}

func NewMemoryCache(quoteTTL, searchTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		quoteTTL:  quoteTTL,
		searchTTL: searchTTL,
		items:     make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) ttl(category Category) time.Duration {
	if category == CategorySearch {
		return c.searchTTL
	}
	return c.quoteTTL
}

func (c *MemoryCache) Get(key string, category Category) ([]byte, bool) {
	c.locker.RLock()
	entry, ok := c.items[key]
	c.locker.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Since(entry.insertedAt) > c.ttl(category) {
		c.locker.Lock()
		// re-check under the write lock; a fresher entry may have landed
		if cur, ok := c.items[key]; ok && time.Since(cur.insertedAt) > c.ttl(category) {
			delete(c.items, key)
		}
		c.locker.Unlock()
		return nil, false
	}

	return entry.payload, true
}

func (c *MemoryCache) Set(key string, category Category, payload []byte) {
	c.locker.Lock()
	c.items[key] = memoryEntry{payload: payload, insertedAt: time.Now()}
	c.locker.Unlock()
}

func (c *MemoryCache) Len() int {
	c.locker.RLock()
	defer c.locker.RUnlock()
	return len(c.items)
}

// Sweep removes entries whose longest possible TTL has elapsed and returns
// how many were reclaimed. Entries younger than the search TTL are kept even
// under the quote category; Get applies the precise per-category check.
func (c *MemoryCache) Sweep() int {
	maxTTL := c.quoteTTL
	if c.searchTTL > maxTTL {
		maxTTL = c.searchTTL
	}

	c.locker.Lock()
	defer c.locker.Unlock()

	removed := 0
	for key, entry := range c.items {
		if time.Since(entry.insertedAt) > maxTTL {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// RedisCache keeps a small local LRU layer in front of a redis server so that
// repeated hits for popular symbols skip the network. Redis applies the TTL
// server-side; the local layer re-checks insertion time. Redis failures
// degrade to the local layer only.
type RedisCache struct {
	quoteTTL  time.Duration
	searchTTL time.Duration

	local *lru.Cache
	rdb   *redis.Client
}

func NewRedisCache(redisURL string, localSize int, quoteTTL, searchTTL time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Error().Err(err).Msg("could not parse redis URL")
		return nil, err
	}

	local, err := lru.New(localSize)
	if err != nil {
		log.Error().Err(err).Msg("could not create LRU cache")
		return nil, err
	}

	return &RedisCache{
		quoteTTL:  quoteTTL,
		searchTTL: searchTTL,
		local:     local,
		rdb:       redis.NewClient(opt),
	}, nil
}

func (c *RedisCache) ttl(category Category) time.Duration {
	if category == CategorySearch {
		return c.searchTTL
	}
	return c.quoteTTL
}

func (c *RedisCache) Get(key string, category Category) ([]byte, bool) {
	if v, ok := c.local.Get(key); ok {
		entry := v.(memoryEntry)
		if time.Since(entry.insertedAt) <= c.ttl(category) {
			return entry.payload, true
		}
		c.local.Remove(key)
	}

	val, err := c.rdb.Get(context.Background(), key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("Key", key).Msg("redis get failed")
		}
		return nil, false
	}

	// backdate the local entry so it expires with the server-side key,
	// not one full TTL after it
	if remain, err := c.rdb.TTL(context.Background(), key).Result(); err == nil && remain > 0 {
		c.local.Add(key, memoryEntry{payload: val, insertedAt: time.Now().Add(remain - c.ttl(category))})
	}
	return val, true
}

func (c *RedisCache) Set(key string, category Category, payload []byte) {
	c.local.Add(key, memoryEntry{payload: payload, insertedAt: time.Now()})

	if err := c.rdb.Set(context.Background(), key, payload, c.ttl(category)).Err(); err != nil {
		log.Warn().Err(err).Str("Key", key).Msg("redis set failed")
	}
}

func (c *RedisCache) Len() int {
	return c.local.Len()
}
