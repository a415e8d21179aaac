package card

import (
	"context"
	"strings"
)

// Legality is check_format_legality's result shape, per SPEC_FULL.md §4.1.
type Legality string

const (
	LegalityLegal     Legality = "legal"
	LegalityBanned    Legality = "banned"
	LegalityRestricted Legality = "restricted"
	LegalityNotLegal  Legality = "not_legal"
	LegalityUnknown   Legality = "unknown"
)

// CheckLegality fetches name (through source, so a cache hit avoids a
// second Scryfall round trip after an earlier fetch_card call) and reads
// off its legality for format from Scryfall's per-format legalities map.
func CheckLegality(ctx context.Context, source Source, name, format string) (Legality, error) {
	c, err := source.FetchCard(ctx, name)
	if err != nil {
		return LegalityUnknown, err
	}
	if c.Legalities == nil {
		return LegalityUnknown, nil
	}
	status, ok := c.Legalities[strings.ToLower(format)]
	if !ok {
		return LegalityUnknown, nil
	}
	switch status {
	case "legal":
		return LegalityLegal, nil
	case "banned":
		return LegalityBanned, nil
	case "restricted":
		return LegalityRestricted, nil
	case "not_legal":
		return LegalityNotLegal, nil
	default:
		return LegalityUnknown, nil
	}
}
