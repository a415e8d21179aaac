package meta

import (
	"context"
	"strings"
)

// searchResultCount is the fixed call shape from spec §4.7: the Meta Agent
// always calls search_mtg_meta(question, 5).
const searchResultCount = 5

// Service ties the cache and the web searcher together into the single
// consult-cache-then-refetch flow the Meta Agent needs.
type Service struct {
	cache    *Cache
	searcher *Searcher
	now      func() string
}

// NewService builds a Service. nowFn stamps SnapshotDate on a fresh
// snapshot; pass a fixed-format time source in tests.
func NewService(cache *Cache, searcher *Searcher, nowFn func() string) *Service {
	return &Service{cache: cache, searcher: searcher, now: nowFn}
}

// Get resolves a metagame snapshot for format, consulting the cache first.
// A snapshot younger than the fresh window is used verbatim; one between
// the fresh and stale windows is used but returned with Stale set; one
// past the stale window (or entirely absent) triggers a fresh
// search_mtg_meta(question, 5) call, whose result is cached under format
// before being returned.
func (s *Service) Get(ctx context.Context, format, question string) (Snapshot, bool, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "" {
		if lookup := s.cache.Get(format); lookup.Found {
			return lookup.Snapshot, lookup.Stale, nil
		}
	}

	results, err := s.searcher.Search(ctx, question, searchResultCount)
	if err != nil {
		return Snapshot{}, false, err
	}

	snapshot := Snapshot{Format: format, SnapshotDate: s.now(), Summary: summarize(results)}
	for _, r := range results {
		snapshot.Sources = append(snapshot.Sources, Source{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
	}
	if format != "" {
		s.cache.Put(format, snapshot)
	}
	return snapshot, false, nil
}

// Refresh forces a fresh search_mtg_meta(format, 5) call for format,
// ignoring whatever is currently cached, and stores the result under
// format before returning it. This backs spec §6's Meta refresh operation,
// used when a caller explicitly wants to bypass a stale-but-not-yet-expired
// cache entry rather than wait for Get's own age check to trigger a refetch.
func (s *Service) Refresh(ctx context.Context, format string) (Snapshot, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	results, err := s.searcher.Search(ctx, "top decks in "+format, searchResultCount)
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{Format: format, SnapshotDate: s.now(), Summary: summarize(results)}
	for _, r := range results {
		snapshot.Sources = append(snapshot.Sources, Source{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
	}
	if format != "" {
		s.cache.Put(format, snapshot)
	}
	return snapshot, nil
}

// RawSearch runs search_mtg_meta directly against the Searcher, with no
// cache consultation — the search_mtg_meta tool itself is stateless (spec
// §4.3); only the Meta Agent's call to Get consults the format-keyed cache.
func (s *Service) RawSearch(ctx context.Context, query string, maxResults int) ([]Result, error) {
	return s.searcher.Search(ctx, query, maxResults)
}

// summarize joins result snippets into a single narrative summary. The
// Meta Agent's LLM step is expected to further condense this; Service only
// guarantees a non-empty, deterministic fallback summary.
func summarize(results []Result) string {
	var parts []string
	for _, r := range results {
		if r.Snippet == "" {
			continue
		}
		parts = append(parts, r.Snippet)
	}
	if len(parts) == 0 && len(results) > 0 {
		return results[0].Title
	}
	return strings.Join(parts, " ")
}
