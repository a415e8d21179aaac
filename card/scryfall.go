package card

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/stacksage/stacksage/pkg/stackerrors"
)

// scryfallBaseURL is Scryfall's public REST API, per
// original_source/backend/core/scryfall.py's ScryfallAPI.BASE_URL.
const scryfallBaseURL = "https://api.scryfall.com"

// fetchTimeout matches the original client's per-request timeout of 5
// seconds for both the card lookup and the rulings follow-up call.
const fetchTimeout = 5 * time.Second

// ScryfallClient is the Card Source Adapter: an HTTP client over Scryfall's
// card and rulings endpoints. No Go example in the corpus implements a
// Scryfall client, so this is grounded directly on the Python original
// rather than an in-corpus Go analog.
type ScryfallClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewScryfallClient builds a client with the standard 5s per-call timeout.
func NewScryfallClient() *ScryfallClient {
	return &ScryfallClient{
		baseURL:    scryfallBaseURL,
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
}

type scryfallCardResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	OracleText      string            `json:"oracle_text"`
	TypeLine        string            `json:"type_line"`
	ManaCost        string            `json:"mana_cost"`
	Colors          []string          `json:"colors"`
	ColorIdentity   []string          `json:"color_identity"`
	Keywords        []string          `json:"keywords"`
	Legalities      map[string]string `json:"legalities"`
	Power           string            `json:"power"`
	Toughness       string            `json:"toughness"`
	Set             string            `json:"set"`
	CollectorNumber string            `json:"collector_number"`
}

type scryfallRulingsResponse struct {
	Data []struct {
		Comment string `json:"comment"`
	} `json:"data"`
}

// FetchCard fuzzy-matches name against Scryfall's /cards/named endpoint and
// fetches its rulings. It returns stackerrors.ErrNotFound for a 404 and
// stackerrors.ErrUpstreamUnavailable for any other transport or status
// failure, matching Stack Sage's error taxonomy instead of the Python
// original's print-and-return-None behavior.
func (c *ScryfallClient) FetchCard(ctx context.Context, name string) (*Card, error) {
	params := url.Values{"fuzzy": {name}}
	reqURL := c.baseURL + "/cards/named?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build scryfall request: %w", err)
	}
	req.Header.Set("User-Agent", "StackSage-MTG-Assistant/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: scryfall card lookup: %v", stackerrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: card %q", stackerrors.ErrNotFound, name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: scryfall returned status %d for %q", stackerrors.ErrUpstreamUnavailable, resp.StatusCode, name)
	}

	var data scryfallCardResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: decode scryfall response: %v", stackerrors.ErrUpstreamUnavailable, err)
	}

	rulings, err := c.fetchRulings(ctx, data.ID)
	if err != nil {
		// A rulings failure should not sink an otherwise successful card
		// lookup; the card is still useful context without them.
		rulings = nil
	}

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
		Rulings:         rulings,
		Legalities:      data.Legalities,
		Power:           data.Power,
		Toughness:       data.Toughness,
		Set:             data.Set,
		CollectorNumber: data.CollectorNumber,
	}, nil
}

func (c *ScryfallClient) fetchRulings(ctx context.Context, cardID string) ([]string, error) {
	if cardID == "" {
		return nil, nil
	}
	reqURL := fmt.Sprintf("%s/cards/%s/rulings", c.baseURL, cardID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scryfall rulings returned status %d", resp.StatusCode)
	}

	var data scryfallRulingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	rulings := make([]string, len(data.Data))
	for i, r := range data.Data {
		rulings[i] = r.Comment
	}
	return rulings, nil
}

// FetchCards fetches multiple cards, skipping any name that fails to
// resolve (matching original_source's fetch_cards: exclude, don't abort).
func (c *ScryfallClient) FetchCards(ctx context.Context, names []string) []*Card {
	cards := make([]*Card, 0, len(names))
	for _, name := range names {
		card, err := c.FetchCard(ctx, name)
		if err != nil {
			continue
		}
		cards = append(cards, card)
	}
	return cards
}
