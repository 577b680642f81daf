// Copyright 2025 Naren Yellavula
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"strconv"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const suggestionCacheTTL = 500 * time.Millisecond

// SuggestionCache holds suggestion lists keyed by an (input, limit) pair
// behind a short TTL. Invalidation is TTL-only; it has no purge method.
// SuggestionEngine.Suggest does not consult it, and nothing in mux
// constructs one, so every Suggest call walks the indices afresh.
type SuggestionCache struct {
	cache *ttlcache.Cache[string, []Suggestion]
}

// NewSuggestionCache creates a cache and starts its expiration loop.
func NewSuggestionCache() *SuggestionCache {
	c := ttlcache.New[string, []Suggestion](
		ttlcache.WithTTL[string, []Suggestion](suggestionCacheTTL),
	)
	go c.Start()
	return &SuggestionCache{cache: c}
}

// Close stops the cache's expiration loop.
func (sc *SuggestionCache) Close() {
	sc.cache.Stop()
}

func suggestionCacheKey(input string, limit int) string {
	return strconv.Itoa(limit) + "\x00" + input
}

// Get returns the cached suggestions for (input, limit), or nil if absent
// or expired.
func (sc *SuggestionCache) Get(input string, limit int) []Suggestion {
	item := sc.cache.Get(suggestionCacheKey(input, limit))
	if item == nil {
		return nil
	}
	return item.Value()
}

// Set stores suggestions for (input, limit).
func (sc *SuggestionCache) Set(input string, limit int, suggestions []Suggestion) {
	sc.cache.Set(suggestionCacheKey(input, limit), suggestions, ttlcache.DefaultTTL)
}
