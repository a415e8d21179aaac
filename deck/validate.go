package deck

import (
	"context"
	"fmt"
	"strings"

	"github.com/stacksage/stacksage/card"
)

// basicLands are exempt from copy limits in every format, per
// deck_validator.py's BASIC_LANDS set.
var basicLands = map[string]struct{}{
	"plains": {}, "island": {}, "swamp": {}, "mountain": {}, "forest": {}, "wastes": {},
	"snow-covered plains": {}, "snow-covered island": {}, "snow-covered swamp": {},
	"snow-covered mountain": {}, "snow-covered forest": {},
}

// maxLegalityChecks caps how many unique card names get a legality lookup,
// matching deck_validator.py's checked_count limit of 20 to bound Scryfall
// round trips for a large deck.
const maxLegalityChecks = 20

// Severity distinguishes a validation issue that makes a deck illegal from
// one that is merely worth flagging.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding.
type Issue struct {
	Severity Severity
	Message  string
	CardName string
}

// Result is validate's output. It never carries a Go error: an illegal deck
// is a normal, well-formed answer, not a failure.
type Result struct {
	IsLegal    bool
	Format     string
	TotalCards int
	Errors     []Issue
	Warnings   []Issue
}

func (r *Result) addError(msg string, cardName string) {
	r.Errors = append(r.Errors, Issue{Severity: SeverityError, Message: msg, CardName: cardName})
	r.IsLegal = false
}

func (r *Result) addWarning(msg string, cardName string) {
	r.Warnings = append(r.Warnings, Issue{Severity: SeverityWarning, Message: msg, CardName: cardName})
}

// Validate checks deck against its declared format's rules, looking up card
// legality through source (typically a card.CachedSource wrapping
// card.ScryfallClient). Ported format-by-format from
// original_source/backend/core/deck_validator.py's DeckValidator.
func Validate(ctx context.Context, source card.Source, d Deck) *Result {
	format := strings.ToLower(d.Format)
	result := &Result{IsLegal: true, Format: format, TotalCards: d.TotalMainboardCards()}

	switch format {
	case "commander", "edh":
		validateCommander(ctx, source, d, result)
	case "standard":
		validateSizedConstructed(ctx, source, d, result, "standard", 60)
	case "modern", "pioneer", "legacy", "vintage":
		validateSizedConstructed(ctx, source, d, result, format, 60)
	case "pauper":
		validateSizedConstructed(ctx, source, d, result, "pauper", 60)
	case "brawl":
		validateSingletonWithCommander(ctx, source, d, result, "brawl", 60)
	default:
		result.addWarning(fmt.Sprintf("Unknown format: %s. Performing basic validation only.", format), "")
		validateBasic(d, result)
	}

	return result
}

func validateBasic(d Deck, result *Result) {
	if d.TotalMainboardCards() < 60 {
		result.addError(fmt.Sprintf("Deck has %d cards, minimum is 60", d.TotalMainboardCards()), "")
	}
	checkCopyLimits(d, result, 4)
}

func validateSizedConstructed(ctx context.Context, source card.Source, d Deck, result *Result, format string, minSize int) {
	if d.TotalMainboardCards() < minSize {
		result.addError(fmt.Sprintf("%s decks must have at least %d cards (found %d)", titleCase(format), minSize, d.TotalMainboardCards()), "")
	}
	checkCopyLimits(d, result, 4)
	if d.TotalSideboardCards() > 15 {
		result.addError(fmt.Sprintf("Sideboard has %d cards, maximum is 15", d.TotalSideboardCards()), "")
	}
	checkFormatLegality(ctx, source, d, result, format)
}

func validateCommander(ctx context.Context, source card.Source, d Deck, result *Result) {
	total := d.TotalMainboardCards()
	if d.Commander != "" {
		total++
	}
	if total != 100 {
		result.addError(fmt.Sprintf("Commander decks must have exactly 100 cards (found %d)", total), "")
	}
	if d.Commander == "" {
		result.addError("Commander deck must have a commander specified", "")
	}
	checkCopyLimits(d, result, 1)
	if d.TotalSideboardCards() > 0 {
		result.addWarning("Commander format does not use sideboards", "")
	}
	checkFormatLegality(ctx, source, d, result, "commander")
	checkColorIdentity(ctx, source, d, result)
}

func validateSingletonWithCommander(ctx context.Context, source card.Source, d Deck, result *Result, format string, exactSize int) {
	total := d.TotalMainboardCards()
	if d.Commander != "" {
		total++
	}
	if total != exactSize {
		result.addError(fmt.Sprintf("%s decks must have exactly %d cards (found %d)", titleCase(format), exactSize, total), "")
	}
	if d.Commander == "" {
		result.addError(fmt.Sprintf("%s deck must have a commander specified", titleCase(format)), "")
	}
	checkCopyLimits(d, result, 1)
	checkFormatLegality(ctx, source, d, result, format)
	checkColorIdentity(ctx, source, d, result)
}

func checkCopyLimits(d Deck, result *Result, maxCopies int) {
	counts := make(map[string]int)
	for _, c := range append(append([]Card{}, d.Mainboard...), d.Sideboard...) {
		lower := strings.ToLower(c.Name)
		if _, isBasic := basicLands[lower]; isBasic {
			continue
		}
		counts[lower] += c.Quantity
	}
	for name, count := range counts {
		if count > maxCopies {
			result.addError(fmt.Sprintf("Too many copies of '%s': %d (maximum %d)", name, count, maxCopies), name)
		}
	}
}

func checkFormatLegality(ctx context.Context, source card.Source, d Deck, result *Result, format string) {
	if source == nil {
		return
	}
	seen := make(map[string]struct{})
	var names []string
	for _, c := range append(append([]Card{}, d.Mainboard...), d.Sideboard...) {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		names = append(names, c.Name)
	}

	checked := 0
	for _, name := range names {
		if checked >= maxLegalityChecks {
			result.addWarning(fmt.Sprintf("Only checked first %d unique cards for legality", maxLegalityChecks), "")
			break
		}
		legality, err := card.CheckLegality(ctx, source, name, format)
		if err != nil {
			// A lookup failure (network, not-found) never fails validation
			// outright, matching the original's swallow-and-continue policy.
			continue
		}
		switch legality {
		case card.LegalityBanned:
			result.addError(fmt.Sprintf("'%s' is BANNED in %s", name, titleCase(format)), name)
		case card.LegalityRestricted:
			if d.CardCount(name) > 1 {
				result.addError(fmt.Sprintf("'%s' is RESTRICTED in %s: found %d copies, maximum is 1", name, titleCase(format), d.CardCount(name)), name)
			} else {
				result.addWarning(fmt.Sprintf("'%s' is RESTRICTED in %s (max 1 copy)", name, titleCase(format)), name)
			}
		case card.LegalityNotLegal:
			result.addError(fmt.Sprintf("'%s' is not legal in %s", name, titleCase(format)), name)
		}
		checked++
	}
}

// checkColorIdentity enforces spec §4.8: in Commander and Brawl, every
// mainboard card's color identity must be a subset of the commander's.
// Ported from deck_validator.py's color identity pass, gated the same way
// checkFormatLegality is (a nil source, or no declared commander, skips the
// check rather than failing the deck).
func checkColorIdentity(ctx context.Context, source card.Source, d Deck, result *Result) {
	if source == nil || d.Commander == "" {
		return
	}
	commanderCard, err := source.FetchCard(ctx, d.Commander)
	if err != nil {
		return
	}
	allowed := make(map[string]struct{}, len(commanderCard.ColorIdentity))
	for _, ci := range commanderCard.ColorIdentity {
		allowed[ci] = struct{}{}
	}

	checked := 0
	for _, entry := range d.Mainboard {
		if checked >= maxLegalityChecks {
			result.addWarning(fmt.Sprintf("Only checked first %d unique cards for color identity", maxLegalityChecks), "")
			break
		}
		c, err := source.FetchCard(ctx, entry.Name)
		if err != nil {
			continue
		}
		checked++
		for _, ci := range c.ColorIdentity {
			if _, ok := allowed[ci]; !ok {
				result.addError(fmt.Sprintf("'%s' has color identity (%s) outside commander %s's identity",
					entry.Name, strings.Join(c.ColorIdentity, ""), d.Commander), entry.Name)
				break
			}
		}
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
