package card

import (
	"context"
	"errors"
	"testing"

	"github.com/stacksage/stacksage/pkg/stackerrors"
)

func TestSearchFiltersIsEmpty(t *testing.T) {
	if !(SearchFilters{}).IsEmpty() {
		t.Fatalf("expected zero-value filters to be empty")
	}
	if (SearchFilters{Colors: "wu"}).IsEmpty() {
		t.Fatalf("expected filters with a color set to be non-empty")
	}
}

func TestSearchFiltersToScryfallQuery(t *testing.T) {
	f := SearchFilters{Colors: "wu", ManaValue: "3", CardType: "creature"}
	got := f.toScryfallQuery()
	want := "c:wu mv=3 t:creature"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestComparisonOrEqualsPreservesExplicitOperators(t *testing.T) {
	cases := map[string]string{
		"3":   "=3",
		">=3": ">=3",
		"<3":  "<3",
	}
	for in, want := range cases {
		if got := comparisonOrEquals(in); got != want {
			t.Fatalf("comparisonOrEquals(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSearchByCriteriaRejectsEmptyFilters(t *testing.T) {
	client := NewScryfallClient()
	_, err := client.SearchByCriteria(context.Background(), SearchFilters{})
	if !errors.Is(err, stackerrors.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}
