package agent

import (
	"testing"

	"github.com/stacksage/stacksage/agentstate"
)

func TestDetectControllerSensitive(t *testing.T) {
	cases := map[string]bool{
		"My opponent controls Blood Artist":  true,
		"Their Blood Artist triggers":        true,
		"What does flying do?":               false,
		"How many lands should my deck run?": true,
	}
	for question, want := range cases {
		if got := DetectControllerSensitive(question); got != want {
			t.Errorf("DetectControllerSensitive(%q) = %v, want %v", question, got, want)
		}
	}
}

func stateWithCardEvidence(question, name, oracleText string) *agentstate.State {
	state := agentstate.New(question)
	state.AddEvidence(agentstate.EvidenceKindCards, agentstate.Evidence{
		Kind: agentstate.EvidenceKindCards,
		Card: &agentstate.CardEvidence{Name: name, OracleText: oracleText},
	})
	return state
}

func TestCheckControllerLogicFlagsReversedBenefit(t *testing.T) {
	question := "My opponent controls Blood Artist, and my creature dies. Do I gain life?"
	oracleText := "Whenever Blood Artist or another creature dies, target player loses 1 life and you gain 1 life."
	state := stateWithCardEvidence(question, "Blood Artist", oracleText)

	draft := "Yes, you gain 1 life whenever a creature dies."
	if got := checkControllerLogic(state, question, draft); got == "" {
		t.Fatalf("expected a correction for a reversed Blood Artist benefit claim")
	}
}

func TestCheckControllerLogicIgnoresCorrectDraft(t *testing.T) {
	question := "My opponent controls Blood Artist, and my creature dies. Do I gain life?"
	oracleText := "Whenever Blood Artist or another creature dies, target player loses 1 life and you gain 1 life."
	state := stateWithCardEvidence(question, "Blood Artist", oracleText)

	draft := "No, your opponent gains 1 life and you lose 1 life."
	if got := checkControllerLogic(state, question, draft); got != "" {
		t.Fatalf("expected no correction for an already-correct draft, got %q", got)
	}
}

func TestCheckControllerLogicNoOpponentClaims(t *testing.T) {
	state := agentstate.New("What does flying do?")
	if got := checkControllerLogic(state, "What does flying do?", "Flying is an evasion ability."); got != "" {
		t.Fatalf("expected no correction with no parsed controller claims, got %q", got)
	}
}

func TestCheckControllerLogicGeneralizesToAnyBenefitOwningCard(t *testing.T) {
	question := "My opponent has Zulaport Cutthroat. If my creature dies, who gains life?"
	oracleText := "Whenever Zulaport Cutthroat or another creature you control dies, target player loses 1 life and you gain 1 life."
	state := stateWithCardEvidence(question, "Zulaport Cutthroat", oracleText)

	draft := "You gain 1 life since a creature died."
	if got := checkControllerLogic(state, question, draft); got == "" {
		t.Fatalf("expected the check to generalize to an oracle-text-derived benefit-owning card not in any hardcoded list")
	}
}

func TestCheckControllerLogicIgnoresCardWithoutBenefitPronoun(t *testing.T) {
	question := "My opponent has Grizzly Bears. Does it have flying?"
	oracleText := "Grizzly Bears has no abilities."
	state := stateWithCardEvidence(question, "Grizzly Bears", oracleText)

	draft := "No, Grizzly Bears does not have flying."
	if got := checkControllerLogic(state, question, draft); got != "" {
		t.Fatalf("expected no correction for a card whose oracle text grants no controller benefit, got %q", got)
	}
}
