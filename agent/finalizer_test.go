package agent

import (
	"strings"
	"testing"

	"github.com/stacksage/stacksage/agentstate"
)

func TestFinalizeWrapsDraftWithFooter(t *testing.T) {
	state := agentstate.New("What does flying do?")
	state.DraftAnswer = "Flying is an evasion ability."
	state.MarkToolUsed("rules")
	state.MarkToolUsed("interaction")
	state.Citations = []agentstate.Citation{{RuleID: "702.15b", RuleText: "Flying is an evasion ability."}}

	if err := Finalize(state); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if !strings.Contains(state.FinalAnswer, "Flying is an evasion ability.") {
		t.Fatalf("expected the draft text to survive into the final answer, got %q", state.FinalAnswer)
	}
	if !strings.Contains(state.FinalAnswer, "rules") || !strings.Contains(state.FinalAnswer, "interaction") {
		t.Fatalf("expected tools-used footer to list both agents, got %q", state.FinalAnswer)
	}
	if !strings.Contains(state.FinalAnswer, "702.15b") {
		t.Fatalf("expected citation footer to include the rule id, got %q", state.FinalAnswer)
	}
}

func TestFinalizeUsesRecursionCapMessage(t *testing.T) {
	state := agentstate.New("An impossibly tangled rules question")
	state.AppendIssue(recursionCapIssue)

	if err := Finalize(state); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if !strings.Contains(state.FinalAnswer, "more back-and-forth") {
		t.Fatalf("expected the recursion-cap refusal text, got %q", state.FinalAnswer)
	}
}

func TestFinalizeGenericFallbackWithNoIssue(t *testing.T) {
	state := agentstate.New("An empty question")
	if err := Finalize(state); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if !strings.Contains(state.FinalAnswer, "wasn't able to put together") {
		t.Fatalf("expected the generic fallback text, got %q", state.FinalAnswer)
	}
}

func TestFinalizeUsesOverallTimeoutMessage(t *testing.T) {
	state := agentstate.New("A question that ran long")
	state.AppendIssue(overallTimeoutIssue)

	if err := Finalize(state); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if !strings.Contains(state.FinalAnswer, "time budget") {
		t.Fatalf("expected the overall-timeout refusal text, got %q", state.FinalAnswer)
	}
}

func TestFinalizeCitationLabelIncludesCardSet(t *testing.T) {
	state := agentstate.New("Is Lightning Bolt in Limited Edition Alpha?")
	state.DraftAnswer = "Yes."
	state.Citations = []agentstate.Citation{{CardName: "Lightning Bolt", CardSet: "lea"}}

	if err := Finalize(state); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if !strings.Contains(state.FinalAnswer, "Lightning Bolt (LEA)") {
		t.Fatalf("expected citation label to include the uppercased set code, got %q", state.FinalAnswer)
	}
}
