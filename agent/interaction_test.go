package agent

import (
	"context"
	"testing"

	"github.com/stacksage/stacksage/agentstate"
)

func TestInteractWithNoEvidenceSetsMissingContext(t *testing.T) {
	state := agentstate.New("What does flying do?")
	llmClient := &stubLLM{reply: "should never be called"}
	if err := Interact(context.Background(), state, Deps{InteractionLLM: llmClient}); err != nil {
		t.Fatalf("Interact error: %v", err)
	}
	if state.MissingContext == "" {
		t.Fatalf("expected MissingContext to be set with no evidence")
	}
	if llmClient.calls != 0 {
		t.Fatalf("expected no LLM call with empty evidence, got %d calls", llmClient.calls)
	}
}

func TestInteractComposesDraftFromEvidence(t *testing.T) {
	state := agentstate.New("What does flying do?")
	state.AddEvidence(agentstate.EvidenceKindRules, agentstate.Evidence{
		Kind: agentstate.EvidenceKindRules,
		Rule: &agentstate.RuleEvidence{RuleID: "702.15b", Text: "Flying is an evasion ability."},
	})
	llmClient := &stubLLM{reply: "Flying creatures can only be blocked by flying or reach (CR 702.15b)."}
	if err := Interact(context.Background(), state, Deps{InteractionLLM: llmClient}); err != nil {
		t.Fatalf("Interact error: %v", err)
	}
	if state.DraftAnswer == "" {
		t.Fatalf("expected a draft answer")
	}
	if llmClient.calls != 1 {
		t.Fatalf("expected exactly one LLM call, got %d", llmClient.calls)
	}
}

func TestInteractFlagsSelfReportedMissingContext(t *testing.T) {
	state := agentstate.New("What does flying do?")
	state.AddEvidence(agentstate.EvidenceKindRules, agentstate.Evidence{
		Kind: agentstate.EvidenceKindRules,
		Rule: &agentstate.RuleEvidence{RuleID: "702.15b", Text: "Flying is an evasion ability."},
	})
	llmClient := &stubLLM{reply: "I don't have enough information to answer that."}
	if err := Interact(context.Background(), state, Deps{InteractionLLM: llmClient}); err != nil {
		t.Fatalf("Interact error: %v", err)
	}
	if state.MissingContext == "" {
		t.Fatalf("expected MissingContext to be set when the draft admits insufficiency")
	}
}
