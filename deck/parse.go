package deck

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// quantityLine matches "4 Lightning Bolt" or "4x Lightning Bolt"; a line
// with no leading number is treated as one copy, per parse_decklist.
var quantityLine = regexp.MustCompile(`^(\d+)x?\s+(.+)$`)

// ParseDecklist parses a plain-text decklist into mainboard and sideboard
// card slices, ported line-for-line from
// original_source/backend/core/deck_models.py's parse_decklist.
func ParseDecklist(text string) (mainboard, sideboard []Card) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	inSideboard := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		lower := strings.ToLower(line)
		if strings.Contains(lower, "sideboard") || strings.HasPrefix(lower, "sb:") {
			inSideboard = true
			continue
		}

		var card Card
		if m := quantityLine.FindStringSubmatch(line); m != nil {
			qty, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			card = Card{Name: strings.TrimSpace(m[2]), Quantity: qty, IsSideboard: inSideboard}
		} else {
			card = Card{Name: line, Quantity: 1, IsSideboard: inSideboard}
		}

		if inSideboard {
			sideboard = append(sideboard, card)
		} else {
			mainboard = append(mainboard, card)
		}
	}
	return mainboard, sideboard
}
