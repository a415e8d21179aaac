package meta

import (
	"context"
	"strings"
	"testing"
)

func TestSearchDegradesWhenNoCredentialConfigured(t *testing.T) {
	s := NewSearcher("", "")
	results, err := s.Search(context.Background(), "standard meta", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Title != notConfiguredNotice {
		t.Fatalf("expected a single not-configured result, got %+v", results)
	}
}

func TestParseMetaResultsHTMLExtractsTitleURLSnippet(t *testing.T) {
	html := `<html><body>
		<article><h2><a href="https://example.com/a">Izzet Murktide leads Modern</a></h2><p>A summary of the deck.</p></article>
		<article><h2><a href="https://example.com/b">Rakdos Midrange resurges</a></h2><p>Another summary.</p></article>
	</body></html>`

	results, err := parseMetaResultsHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Izzet Murktide leads Modern" || results[0].URL != "https://example.com/a" {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if results[1].Snippet != "Another summary." {
		t.Fatalf("unexpected second result snippet: %+v", results[1])
	}
}

func TestParseMetaResultsHTMLNoMatchesErrors(t *testing.T) {
	_, err := parseMetaResultsHTML(strings.NewReader("<html><body><p>nothing here</p></body></html>"))
	if err == nil {
		t.Fatalf("expected an error when no result elements are found")
	}
}
