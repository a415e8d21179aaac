package agent

import (
	"strings"

	"github.com/stacksage/stacksage/agentstate"
)

const finalizerAgentID = "finalizer"

// recursionCapIssue is the sentinel Issues entry the orchestrator appends
// when a graph run breaks the visit-count cap without ever populating
// DraftAnswer, so Finalizer can tell that apart from a genuine empty
// answer and produce a distinct refusal.
const recursionCapIssue = "recursion_cap_exceeded"

// overallTimeoutIssue is the sentinel Issues entry the orchestrator appends
// when a question's cumulative wall-clock exceeds its overall soft budget
// (spec's Cancellation & timeouts, 60s), so Finalizer can produce a timeout
// message instead of the generic empty-answer refusal.
const overallTimeoutIssue = "overall_timeout_exceeded"

// Finalize runs the Finalizer: assemble the user-visible string from
// whatever DraftAnswer holds, plus a tools-used line and a citations
// block. It never adds factual content (spec §4.11) — every fact in the
// output already passed through DraftAnswer via Interaction, Judge, or
// Deck.
func Finalize(state *agentstate.State) error {
	state.MarkToolUsed(finalizerAgentID)

	answer := state.DraftAnswer
	if answer == "" {
		answer = fallbackAnswer(state)
	}

	var b strings.Builder
	b.WriteString(answer)

	if len(state.ToolsUsed) > 0 {
		b.WriteString("\n\n---\n")
		b.WriteString("Agents consulted: " + strings.Join(state.ToolsUsed, ", "))
	}

	if len(state.Citations) > 0 {
		b.WriteString("\nCitations: ")
		b.WriteString(strings.Join(citationLabels(state.Citations), "; "))
	}

	state.FinalAnswer = b.String()
	return nil
}

func fallbackAnswer(state *agentstate.State) string {
	for _, issue := range state.Issues {
		if issue == recursionCapIssue {
			return "This question needed more back-and-forth between agents than I allow. Try breaking it into smaller questions."
		}
		if issue == overallTimeoutIssue {
			return "This question took longer than my overall time budget allows. Here's what I gathered before stopping."
		}
	}
	return "I wasn't able to put together an answer for that question."
}

func citationLabels(citations []agentstate.Citation) []string {
	labels := make([]string, 0, len(citations))
	seen := make(map[string]struct{}, len(citations))
	for _, c := range citations {
		var label string
		switch {
		case c.CardName != "" && c.CardSet != "":
			label = c.CardName + " (" + strings.ToUpper(c.CardSet) + ")"
		case c.CardName != "":
			label = c.CardName
		case c.RuleID != "":
			label = "CR " + c.RuleID
		default:
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}
