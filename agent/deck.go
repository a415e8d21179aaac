package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/stacksage/stacksage/agentstate"
	"github.com/stacksage/stacksage/deck"
)

const deckAgentID = "deck"

// deckLinePattern recognizes a decklist line ("4 Lightning Bolt" or
// "4x Lightning Bolt"), the same shape deck.ParseDecklist accepts. It
// decides whether the user's message contains a decklist at all, and which
// of the message's lines (plus any sideboard marker lines) are parsed.
var deckLinePattern = regexp.MustCompile(`(?m)^\s*\d+x?\s+\S`)

// Deck runs the Deck Agent: parse a decklist out of the user's message,
// validate it against its declared (or detected) format, and set
// DraftAnswer directly — deck_validation's task_plan is [deck, finalizer]
// with no Interaction/Judge step (spec §4.4), so unlike every other intent
// this agent is the one that composes the user-facing text, in the
// Markdown-with-status-line shape deck_agent.py's _format_validation_result
// uses. Finalizer still runs after it, but only to append the standard
// tools-used/citations footer.
func Deck(ctx context.Context, state *agentstate.State, deps Deps) error {
	state.MarkToolUsed(deckAgentID)

	if !deckLinePattern.MatchString(state.UserQuestion) {
		state.DraftAnswer = "I couldn't find a decklist in your message. Paste one card per line, e.g. \"4 Lightning Bolt\"."
		return nil
	}

	format := detectFormat(state.UserQuestion)
	var deckLines []string
	for _, line := range strings.Split(state.UserQuestion, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		if deckLinePattern.MatchString(line) || strings.HasPrefix(lower, "sideboard") || strings.HasPrefix(lower, "sb:") {
			deckLines = append(deckLines, line)
		}
	}
	mainboard, sideboard := deck.ParseDecklist(strings.Join(deckLines, "\n"))
	d := deck.Deck{
		Name:      "submitted deck",
		Format:    format,
		Mainboard: mainboard,
		Sideboard: sideboard,
	}

	result := deck.Validate(ctx, deps.Cards, d)

	ev := &agentstate.DeckEvidence{
		Format:    result.Format,
		Mainboard: toCounts(mainboard),
		Sideboard: toCounts(sideboard),
		Commander: d.Commander,
		Validation: agentstate.DeckValidation{
			IsLegal:    result.IsLegal,
			TotalCards: result.TotalCards,
		},
	}
	for _, e := range result.Errors {
		ev.Validation.Errors = append(ev.Validation.Errors, e.Message)
	}
	for _, w := range result.Warnings {
		ev.Validation.Warnings = append(ev.Validation.Warnings, w.Message)
	}
	state.AddEvidence(agentstate.EvidenceKindDeck, agentstate.Evidence{Kind: agentstate.EvidenceKindDeck, Deck: ev})

	state.DraftAnswer = formatValidationResult(result)
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func toCounts(cards []deck.Card) map[string]int {
	counts := make(map[string]int, len(cards))
	for _, c := range cards {
		counts[c.Name] += c.Quantity
	}
	return counts
}

// formatValidationResult renders a Result into the Markdown status block
// deck_agent.py's _format_validation_result produces, minus its emoji
// (kept plain to match this codebase's otherwise emoji-free output).
func formatValidationResult(r *deck.Result) string {
	var b strings.Builder
	formatName := titleCase(r.Format)
	if r.IsLegal {
		fmt.Fprintf(&b, "**Deck is legal for %s.** (%d cards)\n", formatName, r.TotalCards)
	} else {
		fmt.Fprintf(&b, "**Deck is NOT legal for %s.** (%d cards)\n", formatName, r.TotalCards)
	}
	if len(r.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "- %s\n", e.Message)
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w.Message)
		}
	}
	return b.String()
}
