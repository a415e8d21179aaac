package card

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/stacksage/stacksage/pkg/stackerrors"
)

// SearchFilters is the recognized attribute filter set for
// search_by_criteria, per SPEC_FULL.md §4.1.
type SearchFilters struct {
	Colors      string
	ManaValue   string
	Power       string
	Toughness   string
	FormatLegal string
	CardType    string
	Keywords    string
	Text        string
	Rarity      string
}

// IsEmpty reports whether every filter field is blank.
func (f SearchFilters) IsEmpty() bool {
	return f.Colors == "" && f.ManaValue == "" && f.Power == "" && f.Toughness == "" &&
		f.FormatLegal == "" && f.CardType == "" && f.Keywords == "" && f.Text == "" && f.Rarity == ""
}

// searchResultCap bounds search_by_criteria results, per SPEC_FULL.md §4.1.
const searchResultCap = 10

// toScryfallQuery renders filters into Scryfall's search-string syntax.
func (f SearchFilters) toScryfallQuery() string {
	var parts []string
	if f.Colors != "" {
		parts = append(parts, "c:"+f.Colors)
	}
	if f.ManaValue != "" {
		parts = append(parts, "mv"+comparisonOrEquals(f.ManaValue))
	}
	if f.Power != "" {
		parts = append(parts, "pow"+comparisonOrEquals(f.Power))
	}
	if f.Toughness != "" {
		parts = append(parts, "tou"+comparisonOrEquals(f.Toughness))
	}
	if f.FormatLegal != "" {
		parts = append(parts, "f:"+f.FormatLegal)
	}
	if f.CardType != "" {
		parts = append(parts, "t:"+f.CardType)
	}
	if f.Keywords != "" {
		parts = append(parts, "keyword:"+f.Keywords)
	}
	if f.Text != "" {
		parts = append(parts, "o:\""+f.Text+"\"")
	}
	if f.Rarity != "" {
		parts = append(parts, "r:"+f.Rarity)
	}
	return strings.Join(parts, " ")
}

// comparisonOrEquals prefixes a bare number with "=" so "mv3" becomes
// "mv=3", while leaving an already-comparison-qualified value ("mv>=3")
// untouched.
func comparisonOrEquals(value string) string {
	for _, op := range []string{"<=", ">=", "<", ">", "="} {
		if strings.HasPrefix(value, op) {
			return value
		}
	}
	return "=" + value
}

type scryfallSearchResponse struct {
	Data []scryfallCardResponse `json:"data"`
}

// SearchByCriteria implements search_by_criteria against Scryfall's
// /cards/search endpoint, ordered by EDHREC popularity rank as the closest
// available analog to "external popularity ranking" and capped at 10
// results. Unlike FetchCard, results are never cached: the filter space is
// open-ended and caching it would mostly just grow memory for one-shot
// queries.
func (c *ScryfallClient) SearchByCriteria(ctx context.Context, filters SearchFilters) ([]*Card, error) {
	if filters.IsEmpty() {
		return nil, fmt.Errorf("%w: search_by_criteria requires at least one filter", stackerrors.ErrInvalidQuery)
	}

	params := url.Values{
		"q":     {filters.toScryfallQuery()},
		"order": {"edhrec"},
	}
	reqURL := c.baseURL + "/cards/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build scryfall search request: %w", err)
	}
	req.Header.Set("User-Agent", "StackSage-MTG-Assistant/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: scryfall search: %v", stackerrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: scryfall search returned status %d", stackerrors.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var data scryfallSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode scryfall search response: %v", stackerrors.ErrUpstreamUnavailable, err)
	}

	n := len(data.Data)
	if n > searchResultCap {
		n = searchResultCap
	}
	cards := make([]*Card, n)
	for i := 0; i < n; i++ {
		cards[i] = toCard(data.Data[i])
	}
	return cards, nil
}

func toCard(data scryfallCardResponse) *Card {
	oracleText := data.OracleText
	if oracleText == "" {
		oracleText = "No oracle text available."
	}
	typeLine := data.TypeLine
	if typeLine == "" {
		typeLine = "Unknown type"
	}
	return &Card{
		Name:            data.Name,
		OracleText:      oracleText,
		TypeLine:        typeLine,
		ManaCost:        data.ManaCost,
		Colors:          data.Colors,
		ColorIdentity:   data.ColorIdentity,
		Keywords:        data.Keywords,
		Legalities:      data.Legalities,
		Power:           data.Power,
		Toughness:       data.Toughness,
		Set:             data.Set,
		CollectorNumber: data.CollectorNumber,
	}
}
