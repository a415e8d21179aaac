package card

import (
	"context"
	"sync"
)

// maxParallelLookups bounds compare_multiple_cards's fanout so a question
// naming a long list of cards cannot open unbounded concurrent connections
// to the Card Source Adapter's upstream.
const maxParallelLookups = 4

// CompareMultiple fetches every name in names concurrently, capped at
// maxParallelLookups in flight, and returns results aligned to the input
// order (a nil entry marks a name that failed to resolve).
func CompareMultiple(ctx context.Context, source Source, names []string) []*Card {
	results := make([]*Card, len(names))
	if len(names) == 0 {
		return results
	}

	sem := make(chan struct{}, maxParallelLookups)
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, name string) {
			defer wg.Done()
			defer func() { <-sem }()
			card, err := source.FetchCard(ctx, name)
			if err != nil {
				return
			}
			results[i] = card
		}(i, name)
	}
	wg.Wait()
	return results
}
