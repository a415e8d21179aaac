package agent

import (
	"context"
	"testing"

	"github.com/stacksage/stacksage/agentstate"
	"github.com/stacksage/stacksage/rules"
)

func TestRulesAppendsEvidenceAndCitations(t *testing.T) {
	engine := rules.NewEngine(rules.NewLocalEmbedder(32))
	if err := engine.IndexText(context.Background(), "702.15b Flying is an evasion ability.\n"); err != nil {
		t.Fatalf("IndexText error: %v", err)
	}

	state := agentstate.New("What does flying do?")
	if err := Rules(context.Background(), state, Deps{RulesIndex: engine}); err != nil {
		t.Fatalf("Rules error: %v", err)
	}

	if len(state.Context[agentstate.EvidenceKindRules]) == 0 {
		t.Fatalf("expected rule evidence to be appended")
	}
	if len(state.Citations) == 0 {
		t.Fatalf("expected rule citations to be appended")
	}
}

func TestRulesSetsMissingContextBelowCoverageThreshold(t *testing.T) {
	engine := rules.NewEngine(rules.NewLocalEmbedder(32))
	if err := engine.IndexText(context.Background(), "702.15b Flying is an evasion ability.\n"); err != nil {
		t.Fatalf("IndexText error: %v", err)
	}

	state := agentstate.New("What does flying do?")
	if err := Rules(context.Background(), state, Deps{RulesIndex: engine}); err != nil {
		t.Fatalf("Rules error: %v", err)
	}

	// A single indexed rule gives coverage 1/6, well under CoverageThreshold.
	if state.MissingContext != "rules" {
		t.Fatalf("expected MissingContext to be set to rules, got %q", state.MissingContext)
	}
}

func TestRulesCrossReferencesWhenTwoCardsExtracted(t *testing.T) {
	engine := rules.NewEngine(rules.NewLocalEmbedder(32))
	err := engine.IndexChunks(context.Background(), []rules.Chunk{
		{ID: "702.15b", RuleID: "702.15b", Text: "Flying is an evasion ability."},
		{ID: "702.19b", RuleID: "702.19b", Text: "Deathtouch causes any damage to be considered lethal."},
	})
	if err != nil {
		t.Fatalf("IndexChunks error: %v", err)
	}

	state := agentstate.New("How does Serra Angel interact with Deathtouch?")
	state.ExtractedCards = []string{"flying", "deathtouch"}
	if err := Rules(context.Background(), state, Deps{RulesIndex: engine}); err != nil {
		t.Fatalf("Rules error: %v", err)
	}

	evidence := state.Context[agentstate.EvidenceKindRules]
	if len(evidence) < 2 {
		t.Fatalf("expected evidence from both cross-referenced topics, got %d", len(evidence))
	}
}

func TestMergeRuleHitsDedupesByRuleIDKeepingHigherScore(t *testing.T) {
	a := []rules.Rule{{RuleID: "702.15b", Score: 0.4}}
	b := []rules.Rule{{RuleID: "702.15b", Score: 0.9}, {RuleID: "702.19b", Score: 0.5}}

	merged := mergeRuleHits(a, b, rules.DefaultTopK)
	if len(merged) != 2 {
		t.Fatalf("expected 2 deduped hits, got %d", len(merged))
	}
	if merged[0].RuleID != "702.15b" || merged[0].Score != 0.9 {
		t.Fatalf("expected the higher-scoring 702.15b hit to win, got %+v", merged[0])
	}
}
