package agent

import (
	"context"
	"strings"

	"github.com/stacksage/stacksage/agentstate"
	"github.com/stacksage/stacksage/llm"
	"github.com/stacksage/stacksage/message"
)

const interactionAgentID = "interaction"

// interactionTemperature keeps the drafting step close to deterministic:
// the corpus's synthesizer.go and interaction_agent.py both run their
// compose step at a low, non-zero temperature rather than 0.
const interactionTemperature = 0.1

// interactionSystemPrompt encodes spec §4.9's four drafting rules.
const interactionSystemPrompt = `You are the drafting agent for a Magic: The Gathering rules assistant.
Compose a direct answer to the user's question using ONLY the evidence given below.
Rules:
1. Cite every card and rule you rely on by name or rule number.
2. Never state a rule or card interaction that isn't backed by the evidence.
3. If the evidence doesn't cover the question, say so plainly instead of guessing.
4. Keep the answer concise: a short paragraph, not an essay.`

// missingContextPhrases mirrors interaction_agent.py's
// _indicates_missing_context substring check: if the draft itself admits it
// doesn't have enough to go on, treat that as a missing_context signal
// rather than trusting the prose at face value.
var missingContextPhrases = []string{
	"i don't have enough information",
	"i don't have information",
	"not enough context",
	"cannot determine",
	"i'm not sure",
	"insufficient information",
}

// Interact runs the Interaction Agent: compose a draft answer from
// whatever cards/rules/meta evidence the earlier specialists gathered.
func Interact(ctx context.Context, state *agentstate.State, deps Deps) error {
	state.MarkToolUsed(interactionAgentID)

	contextBlock := buildContextBlock(state)
	if contextBlock == "" {
		if state.MissingContext == "" {
			state.MissingContext = pickMissingKind(state)
		}
		state.DraftAnswer = "I don't have enough information to answer that yet."
		return nil
	}

	req := &llm.GenerateRequest{
		Messages: []*message.Message{
			message.NewMessage(message.RoleSystem, interactionSystemPrompt),
			message.NewMessage(message.RoleUser, "Question: "+state.UserQuestion+"\n\nEvidence:\n"+contextBlock),
		},
		Temperature: interactionTemperature,
	}
	resp, err := deps.InteractionLLM.Generate(ctx, req)
	if err != nil {
		state.AppendIssue("interaction: LLM call failed: " + err.Error())
		state.DraftAnswer = "I don't have enough information to answer that yet."
		return nil
	}

	draft := strings.TrimSpace(resp.Message.Content)
	state.DraftAnswer = draft

	lowerDraft := strings.ToLower(draft)
	for _, phrase := range missingContextPhrases {
		if strings.Contains(lowerDraft, phrase) {
			if state.MissingContext == "" {
				state.MissingContext = pickMissingKind(state)
			}
			break
		}
	}
	return nil
}

// pickMissingKind guesses which evidence kind is thin, favoring rules over
// cards since most questions lean on the Comprehensive Rules index.
func pickMissingKind(state *agentstate.State) string {
	if len(state.Context[agentstate.EvidenceKindRules]) == 0 {
		return "rules"
	}
	if len(state.Context[agentstate.EvidenceKindCards]) == 0 && len(state.ExtractedCards) > 0 {
		return "card"
	}
	return "rules"
}

func buildContextBlock(state *agentstate.State) string {
	var b strings.Builder
	for _, ev := range state.Context[agentstate.EvidenceKindCards] {
		if ev.Card == nil {
			continue
		}
		b.WriteString("Card: " + ev.Card.Name + "\n")
		b.WriteString("Type: " + ev.Card.TypeLine + "\n")
		b.WriteString("Oracle Text: " + ev.Card.OracleText + "\n\n")
	}
	for _, ev := range state.Context[agentstate.EvidenceKindRules] {
		if ev.Rule == nil {
			continue
		}
		b.WriteString("Rule " + ev.Rule.RuleID + ": " + ev.Rule.Text + "\n\n")
	}
	for _, ev := range state.Context[agentstate.EvidenceKindMeta] {
		if ev.Meta == nil {
			continue
		}
		staleNote := ""
		if ev.Meta.Stale {
			staleNote = " (stale snapshot from " + ev.Meta.SnapshotDate + ")"
		}
		b.WriteString("Metagame summary for " + ev.Meta.Format + staleNote + ": " + ev.Meta.Summary + "\n\n")
	}
	return strings.TrimSpace(b.String())
}
