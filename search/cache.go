// Copyright 2025 Poiesic Systems
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


package search

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/poiesic/shelf/core"
)

const (
	cacheTTL         = 5 * time.Minute
	cacheNumCounters = 10_000
	cacheMaxCost     = 1_000
)

// CachedSearcher memoizes query results for a short window. Cache keys
// carry a generation counter; any index mutation bumps the generation,
// which orphans every cached entry without touching the cache itself.
type CachedSearcher struct {
	searcher   *Searcher
	cache      *ristretto.Cache[string, []*core.SearchResult]
	generation atomic.Uint64
	ttl        time.Duration
}

// NewCachedSearcher wraps a searcher with a query result cache.
func NewCachedSearcher(searcher *Searcher) (*CachedSearcher, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []*core.SearchResult]{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CachedSearcher{
		searcher: searcher,
		cache:    cache,
		ttl:      cacheTTL,
	}, nil
}

// Search returns cached results when the query was seen recently and
// nothing changed since, running a fresh fused search otherwise.
func (c *CachedSearcher) Search(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	key := c.key(query, maxHits)
	if results, ok := c.cache.Get(key); ok {
		return results, nil
	}

	results, err := c.searcher.Search(ctx, query, maxHits)
	if err != nil {
		return nil, err
	}
	c.cache.SetWithTTL(key, results, 1, c.ttl)
	c.cache.Wait()
	return results, nil
}

// Invalidate marks all cached entries stale. Call it after any write
// that can change search results.
func (c *CachedSearcher) Invalidate() {
	c.generation.Add(1)
}

// Close releases the cache resources.
func (c *CachedSearcher) Close() {
	c.cache.Close()
}

func (c *CachedSearcher) key(query string, maxHits int) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return fmt.Sprintf("%d:%d:%s", c.generation.Load(), maxHits, normalized)
}
