package meta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/stacksage/stacksage/pkg/stackerrors"
)

// notConfiguredNotice is the structured "not configured" body returned
// verbatim (spec §4.3) whenever no META_SEARCH_CREDENTIAL is set.
const notConfiguredNotice = "not-configured"

const scrapeTimeout = 5 * time.Second

// maxResultsCap bounds a single search_mtg_meta call, matching the Meta
// Agent's fixed call shape of search_mtg_meta(question, 5).
const maxResultsCap = 5

// Searcher looks up metagame commentary for a query, degrading to a
// not-configured notice when no external search credential is present.
type Searcher struct {
	credential string
	httpClient *http.Client
	searchURL  string
}

// NewSearcher builds a Searcher. credential is stackconfig.Config's
// MetaSearchCredential; an empty credential makes every Search call
// return the not-configured notice without touching the network, per
// spec.md line 220.
func NewSearcher(credential, searchURL string) *Searcher {
	return &Searcher{
		credential: credential,
		httpClient: &http.Client{Timeout: scrapeTimeout},
		searchURL:  searchURL,
	}
}

// Result is one scraped metagame commentary hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Search implements the search_mtg_meta(query, max_results) tool. With no
// credential configured it returns a single Result carrying the
// not-configured notice, matching the original's "degrades gracefully"
// contract rather than returning an error — a missing optional API key is
// not a tool failure.
func (s *Searcher) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if s.credential == "" {
		return []Result{{Title: notConfiguredNotice, Snippet: notConfiguredNotice}}, nil
	}
	if maxResults <= 0 || maxResults > maxResultsCap {
		maxResults = maxResultsCap
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building meta search request: %v", stackerrors.ErrToolMisconfigured, err)
	}
	q := req.URL.Query()
	q.Set("q", query)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+s.credential)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: meta search request: %v", stackerrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: meta search returned status %d", stackerrors.ErrUpstreamUnavailable, resp.StatusCode)
	}

	results, err := parseMetaResultsHTML(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing meta search response: %v", stackerrors.ErrUpstreamUnavailable, err)
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// parseMetaResultsHTML extracts (title, url, snippet) triples from a
// metagame-share results page, grounded on rag/preprocess/cleaner.go's
// HTMLToText walk over goquery selections.
func parseMetaResultsHTML(body io.Reader) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	var out []Result
	doc.Find("article, .result, .search-result").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find("h1,h2,h3,a").First().Text())
		if title == "" {
			return
		}
		href, _ := sel.Find("a").First().Attr("href")
		snippet := strings.TrimSpace(sel.Find("p").First().Text())
		out = append(out, Result{Title: title, URL: href, Snippet: snippet})
	})
	if len(out) == 0 {
		return nil, errors.New("no results found in meta search response")
	}
	return out, nil
}
