package card

import (
	"context"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Source resolves a single card by fuzzy name; ScryfallClient implements it,
// and tests substitute a stub.
type Source interface {
	FetchCard(ctx context.Context, name string) (*Card, error)
}

// CachedSource wraps a Source with a capacity-bounded LRU cache keyed on the
// lowercased card name, following the golang-lru/v2 usage pattern in
// hyper-light-sylk's agents/archivalist/bleve_index.go.
type CachedSource struct {
	source Source
	cache  *lru.Cache[string, *Card]

	mu       sync.Mutex
	inflight map[string]*singleFlight
}

type singleFlight struct {
	done chan struct{}
	card *Card
	err  error
}

// NewCachedSource wraps source with an LRU cache of the given capacity.
func NewCachedSource(source Source, capacity int) (*CachedSource, error) {
	if capacity <= 0 {
		capacity = 1000
	}
	cache, err := lru.New[string, *Card](capacity)
	if err != nil {
		return nil, err
	}
	return &CachedSource{source: source, cache: cache, inflight: make(map[string]*singleFlight)}, nil
}

// FetchCard returns a cached card if present, otherwise fetches once and
// caches the result. Concurrent callers requesting the same name collapse
// into a single upstream request.
func (c *CachedSource) FetchCard(ctx context.Context, name string) (*Card, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	c.mu.Lock()
	if flight, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-flight.done
		return flight.card, flight.err
	}
	flight := &singleFlight{done: make(chan struct{})}
	c.inflight[key] = flight
	c.mu.Unlock()

	card, err := c.source.FetchCard(ctx, name)
	flight.card, flight.err = card, err
	close(flight.done)

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()

	if err == nil {
		c.cache.Add(key, card)
	}
	return card, err
}

// Len reports the number of cards currently cached.
func (c *CachedSource) Len() int {
	return c.cache.Len()
}
