package card

import (
	"regexp"
	"strings"
)

// quotedPattern captures high-confidence card names the user wrapped in
// quotes, exactly as original_source/backend/core/scryfall.py does.
var quotedPattern = regexp.MustCompile(`"([^"]+)"`)

// capitalizedPattern matches runs of capitalized words optionally joined by
// short connective words ("of", "the", "in", ...), catching multi-word card
// names like "Rest in Peace" or "Wrath of God" without also matching a
// single capitalized sentence-starting word.
var capitalizedPattern = regexp.MustCompile(
	`\b[A-Z][a-z]+(?:\s+(?:of|the|in|from|to|with|and|or)?\s*[A-Z][a-z]+)+\b`,
)

// falsePositives lists capitalized phrases the heuristic would otherwise
// mistake for card names because they follow the same Title Case shape.
var falsePositives = map[string]struct{}{
	"Magic The Gathering": {},
	"The Stack":           {},
	"The Battlefield":     {},
}

// ExtractCardNames pulls candidate card names out of a free-text question,
// ported from original_source's extract_card_names. It is used both to seed
// the Card Agent's lookups and as the Planner's deterministic fallback when
// the LLM's task_plan JSON fails to parse even after one retry.
func ExtractCardNames(query string) []string {
	var candidates []string

	for _, m := range quotedPattern.FindAllStringSubmatch(query, -1) {
		candidates = append(candidates, m[1])
	}

	for _, m := range capitalizedPattern.FindAllString(query, -1) {
		if _, isFalsePositive := falsePositives[m]; isFalsePositive {
			continue
		}
		candidates = append(candidates, m)
	}

	seen := make(map[string]struct{}, len(candidates))
	unique := make([]string, 0, len(candidates))
	for _, name := range candidates {
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, name)
	}
	return unique
}
