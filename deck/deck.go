package deck

import "strings"

// Card is a single decklist entry, adapted from
// original_source/backend/core/deck_models.py's DeckCard dataclass.
type Card struct {
	Name        string
	Quantity    int
	IsSideboard bool
}

// Deck is a full decklist, ported from deck_models.py's Deck dataclass.
type Deck struct {
	Name       string
	Format     string
	Mainboard  []Card
	Sideboard  []Card
	Commander  string
	Companion  string
}

// TotalMainboardCards sums mainboard quantities.
func (d Deck) TotalMainboardCards() int {
	return sumQuantities(d.Mainboard)
}

// TotalSideboardCards sums sideboard quantities.
func (d Deck) TotalSideboardCards() int {
	return sumQuantities(d.Sideboard)
}

// CardCount returns how many total copies of name appear across mainboard
// and sideboard combined, matching Deck.get_card_count's case-insensitive
// comparison.
func (d Deck) CardCount(name string) int {
	target := strings.ToLower(name)
	count := 0
	for _, c := range append(append([]Card{}, d.Mainboard...), d.Sideboard...) {
		if strings.ToLower(c.Name) == target {
			count += c.Quantity
		}
	}
	return count
}

func sumQuantities(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Quantity
	}
	return total
}
