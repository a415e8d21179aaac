package rules

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// QueryCache memoizes Engine.Search results by normalized query text and k,
// capacity-bounded rather than time-bounded: unlike the Meta Cache, a stale
// rules answer is never useful once the underlying index changes, so a
// rebuild (see cmd/rulesbuild) should always be paired with a fresh cache.
type QueryCache struct {
	cache *lru.Cache[string, []Rule]
}

// NewQueryCache builds a cache holding at most capacity distinct queries.
func NewQueryCache(capacity int) (*QueryCache, error) {
	if capacity <= 0 {
		capacity = 100
	}
	c, err := lru.New[string, []Rule](capacity)
	if err != nil {
		return nil, err
	}
	return &QueryCache{cache: c}, nil
}

// Get returns a cached hit for query+k, if any.
func (c *QueryCache) Get(query string, k int) ([]Rule, bool) {
	rules, ok := c.cache.Get(cacheKey(query, k))
	return rules, ok
}

// Put stores results for query+k.
func (c *QueryCache) Put(query string, k int, rules []Rule) {
	c.cache.Add(cacheKey(query, k), rules)
}

// Len returns the number of distinct cached queries.
func (c *QueryCache) Len() int {
	return c.cache.Len()
}

// Purge empties the cache, used after a Rules Index rebuild.
func (c *QueryCache) Purge() {
	c.cache.Purge()
}

func cacheKey(query string, k int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return normalized + "|" + strconv.Itoa(k)
}
