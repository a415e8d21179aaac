package agent

import (
	"context"
	"testing"

	"github.com/stacksage/stacksage/agentstate"
)

func TestJudgeNoOpWithEmptyDraft(t *testing.T) {
	state := agentstate.New("What does flying do?")
	if err := Judge(context.Background(), state, Deps{}); err != nil {
		t.Fatalf("Judge error: %v", err)
	}
	if state.JudgeReport.Grounded {
		t.Fatalf("expected no judgment to be recorded for an empty draft")
	}
}

func TestJudgePassesGroundedDraft(t *testing.T) {
	state := agentstate.New("What does flying do?")
	state.Citations = []agentstate.Citation{{RuleID: "702.15b", RuleText: "Flying is an evasion ability."}}
	state.DraftAnswer = "Per CR 702.15b, flying is an evasion ability restricting which creatures may block."
	if err := Judge(context.Background(), state, Deps{}); err != nil {
		t.Fatalf("Judge error: %v", err)
	}
	if !state.JudgeReport.Grounded {
		t.Fatalf("expected the draft to pass grounding, issues: %v", state.JudgeReport.Issues)
	}
	if state.DraftAnswer == "" {
		t.Fatalf("expected the draft answer to survive a passing judgment")
	}
}

func TestJudgeFlagsUngroundedCardNames(t *testing.T) {
	state := agentstate.New("What happens if I cast Fireball?")
	state.Citations = nil
	state.DraftAnswer = "Shivan Dragon deals 10 damage, Serra Angel gains flying, and Craterhoof Behemoth triggers " +
		"a massive combat step while Blightsteel Colossus enters the battlefield."
	if err := Judge(context.Background(), state, Deps{}); err != nil {
		t.Fatalf("Judge error: %v", err)
	}
	if state.JudgeReport.Grounded {
		t.Fatalf("expected ungrounded verdict for a draft full of uncited card claims")
	}
}

func TestJudgeAppliesControllerCorrection(t *testing.T) {
	state := stateWithCardEvidence("My opponent controls Blood Artist, and my creature dies. Do I gain life?",
		"Blood Artist", "Whenever Blood Artist or another creature dies, target player loses 1 life and you gain 1 life.")
	state.ControllerSensitive = true
	state.Citations = []agentstate.Citation{{CardName: "Blood Artist"}}
	state.DraftAnswer = "Yes, you gain 1 life whenever a creature dies."
	if err := Judge(context.Background(), state, Deps{}); err != nil {
		t.Fatalf("Judge error: %v", err)
	}
	if state.JudgeReport.ControllerCorrection == "" {
		t.Fatalf("expected a controller-logic correction to be recorded")
	}
}
