package card

import (
	"strconv"
	"strings"
)

// Card is a single Magic: The Gathering card as returned by the Card
// Source Adapter, adapted from original_source/backend/core/scryfall.py's
// Card dataclass.
type Card struct {
	Name            string
	OracleText      string
	TypeLine        string
	ManaCost        string
	Colors          []string
	ColorIdentity   []string
	Keywords        []string
	Rulings         []string
	Legalities      map[string]string
	Power           string
	Toughness       string
	Set             string
	CollectorNumber string
}

// maxContextRulings caps how many rulings are surfaced to an LLM prompt;
// full ruling histories on well-known cards can run past a hundred lines
// and would crowd out everything else in the Card Agent's context budget.
const maxContextRulings = 3

// ContextString renders the card into the compact block format the
// Interaction and Judge agents expect to see cited in their prompts.
func (c Card) ContextString() string {
	var b strings.Builder
	b.WriteString("**")
	b.WriteString(c.Name)
	b.WriteString("**\n")
	b.WriteString("Type: ")
	b.WriteString(c.TypeLine)
	b.WriteString("\n")
	if c.ManaCost != "" {
		b.WriteString("Mana Cost: ")
		b.WriteString(c.ManaCost)
		b.WriteString("\n")
	}
	if c.Power != "" || c.Toughness != "" {
		b.WriteString("P/T: ")
		b.WriteString(c.Power)
		b.WriteString("/")
		b.WriteString(c.Toughness)
		b.WriteString("\n")
	}
	b.WriteString("Oracle Text: ")
	b.WriteString(c.OracleText)
	b.WriteString("\n")

	if len(c.Keywords) > 0 {
		b.WriteString("Keywords: ")
		b.WriteString(strings.Join(c.Keywords, ", "))
		b.WriteString("\n")
	}

	if len(c.Rulings) > 0 {
		b.WriteString("\nRulings:\n")
		n := len(c.Rulings)
		if n > maxContextRulings {
			n = maxContextRulings
		}
		for i := 0; i < n; i++ {
			b.WriteString("  ")
			b.WriteString(strconv.Itoa(i + 1))
			b.WriteString(". ")
			b.WriteString(c.Rulings[i])
			b.WriteString("\n")
		}
	}

	return b.String()
}
