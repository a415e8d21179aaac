// Package meta caches and refreshes metagame snapshots per format.
package meta

import (
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

const (
	defaultNumCounters = 1e4
	defaultMaxCost     = 1e6
	defaultBufferItems = 64

	// DefaultFreshWindow and DefaultStaleWindow are the two independent age
	// bands from meta_cache.py's is_expired (ttl_seconds) and is_stale
	// (stale_threshold_hours=168): a snapshot younger than freshWindow is
	// used verbatim, one older than staleWindow is treated as absent and
	// forces a refetch, and anything in between is returned with Stale set.
	DefaultFreshWindow = 24 * time.Hour
	DefaultStaleWindow = 7 * 24 * time.Hour
)

// entry is what the cache stores per format key.
type entry struct {
	snapshot Snapshot
	cachedAt time.Time
}

// Snapshot is a cached metagame summary for one format.
type Snapshot struct {
	Format       string
	SnapshotDate string
	Summary      string
	Sources      []Source
}

// Source is one citation backing a Snapshot.
type Source struct {
	Title   string
	URL     string
	Snippet string
}

// Lookup is the result of consulting the cache for a format.
type Lookup struct {
	Snapshot Snapshot
	Found    bool
	Stale    bool
}

// Cache is a TTL-bounded cache of format metagame snapshots, keyed by
// lowercased format name, grounded on hyper-light-sylk's DomainCache
// wrapper around ristretto but with no per-item TTL: entries never expire
// out of ristretto itself, since a stale-but-present entry must still be
// returned (with Stale set) rather than evicted, per meta_cache.py.
type Cache struct {
	mu          sync.RWMutex
	cache       *ristretto.Cache
	now         func() time.Time
	freshWindow time.Duration
	staleWindow time.Duration
}

// NewCache builds a Meta Cache with ristretto's default admission policy
// sizing, matching DomainCache's defaults scaled down for this cache's
// much smaller expected key count (dozens of formats, not millions).
// freshWindow and staleWindow come from stackconfig.Config's
// MetaCacheFreshTTL/MetaCacheStaleTTL; passing zero for either falls back
// to the spec's 24h/7d defaults.
func NewCache(freshWindow, staleWindow time.Duration) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: defaultNumCounters,
		MaxCost:     defaultMaxCost,
		BufferItems: defaultBufferItems,
	})
	if err != nil {
		return nil, err
	}
	if freshWindow <= 0 {
		freshWindow = DefaultFreshWindow
	}
	if staleWindow <= 0 {
		staleWindow = DefaultStaleWindow
	}
	return &Cache{cache: c, now: time.Now, freshWindow: freshWindow, staleWindow: staleWindow}, nil
}

// key normalizes a format name into the cache key, matching
// meta_cache.py's f"{format_name.lower()}_meta" convention.
func key(format string) string {
	return strings.ToLower(format) + "_meta"
}

// Get consults the cache for format. Found is false both when nothing is
// cached and when the cached entry is older than staleWindow (7d) — the
// original's "older forces a refetch" behavior for a snapshot that has
// aged out entirely, not merely gone stale.
func (c *Cache) Get(format string) Lookup {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, found := c.cache.Get(key(format))
	if !found {
		return Lookup{}
	}
	e, ok := value.(entry)
	if !ok {
		return Lookup{}
	}

	age := c.now().Sub(e.cachedAt)
	if age > c.staleWindow {
		return Lookup{}
	}
	return Lookup{Snapshot: e.snapshot, Found: true, Stale: age > c.freshWindow}
}

// Put stores snapshot under format, timestamped now.
func (c *Cache) Put(format string, snapshot Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Set(key(format), entry{snapshot: snapshot, cachedAt: c.now()}, 1)
	c.cache.Wait()
}

// Clear evicts one format's cached snapshot, or every entry if format is
// empty, matching meta_cache.py's clear(key=None) semantics.
func (c *Cache) Clear(format string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if format == "" {
		c.cache.Clear()
		return
	}
	c.cache.Del(key(format))
}
