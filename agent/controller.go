package agent

import (
	"regexp"
	"strings"

	"github.com/stacksage/stacksage/agentstate"
)

// controllerPhrasePattern flags questions where getting "you" vs. "your
// opponent" backwards would silently change the answer, ported from
// judge_agent.py's inline "opponent" substring gate but widened to also
// catch "my"/"their" framing per spec §4.4.
var controllerPhrasePattern = regexp.MustCompile(`(?i)\b(opponent|opponent's|my |their )`)

// DetectControllerSensitive reports whether question's phrasing makes a
// controller-swap error plausible enough that the Judge should run its
// controller-logic check against it.
func DetectControllerSensitive(question string) bool {
	return controllerPhrasePattern.MatchString(question)
}

// controllerClaimPattern extracts "opponent('s) [has] <permanent phrase>"
// fragments, generalizing check_controller_map's single regex into the
// parser step of a table-driven rule system (spec §9's redesign flag)
// instead of judge_agent.py's two hardcoded Blood-Artist/reversed-benefit
// branches.
var controllerClaimPattern = regexp.MustCompile(`(?i)opponent(?:'s)?\s+(?:has\s+|controls\s+)?([A-Za-z][A-Za-z\s]*?)(?:\s*[,.?]|\s+and\b|$)`)

// controllerMap is question's parsed set of permanents attributed to the
// opponent, lowercased for case-insensitive lookups.
type controllerMap map[string]struct{}

// parseControllerMap builds a controllerMap from the user's question.
func parseControllerMap(question string) controllerMap {
	m := make(controllerMap)
	for _, match := range controllerClaimPattern.FindAllStringSubmatch(question, -1) {
		phrase := strings.ToLower(strings.TrimSpace(match[1]))
		if phrase == "" {
			continue
		}
		m[phrase] = struct{}{}
	}
	return m
}

// benefitPronounPattern flags oracle text that grants "you" — the
// permanent's controller — a direct benefit (life, cards, counters),
// rather than affecting "target player" or "each opponent" generically.
// Blood Artist's "target player loses 1 life and you gain 1 life" is the
// shape judge_agent.py special-cased for that one card; matching against
// the fetched card's own oracle text generalizes the check to whatever
// permanent the question actually names, per spec §4.10.
var benefitPronounPattern = regexp.MustCompile(`(?i)\byou\s+(?:would\s+)?(gain|draw|create|put|scry|surveil)\b`)

// draftBenefitPhrases are the ways a draft answer might claim the asking
// user personally received a benefit that the oracle text actually grants
// to the permanent's controller.
var draftBenefitPhrases = []string{"you gain", "you would gain", "you draw", "you create"}

// checkControllerLogic looks for a permanent attributed to the opponent in
// question whose oracle text (from the Card Agent's own evidence) redirects
// a benefit to its controller, and whose reversed-benefit phrasing then
// appears in draft — i.e. the draft says "you gain life" from a permanent
// the question itself says the opponent controls. Returns a correction
// message, or "" when nothing looks wrong.
func checkControllerLogic(state *agentstate.State, question, draft string) string {
	cmap := parseControllerMap(question)
	if len(cmap) == 0 {
		return ""
	}
	lowerDraft := strings.ToLower(draft)

	for _, ev := range state.Context[agentstate.EvidenceKindCards] {
		if ev.Card == nil || ev.Card.Name == "" {
			continue
		}
		name := strings.ToLower(ev.Card.Name)
		owned := false
		for phrase := range cmap {
			if strings.Contains(phrase, name) || strings.Contains(name, phrase) {
				owned = true
				break
			}
		}
		if !owned || !benefitPronounPattern.MatchString(ev.Card.OracleText) {
			continue
		}
		for _, reversed := range draftBenefitPhrases {
			if strings.Contains(lowerDraft, reversed) && !strings.Contains(lowerDraft, "opponent gains") {
				return "Note: since your opponent controls " + ev.Card.Name + ", triggered abilities on it benefit them, not you — double check who gains or loses life here."
			}
		}
	}
	return ""
}
