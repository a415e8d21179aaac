package rules

import (
	"context"
	"testing"
)

func TestEngineIndexAndSearchFindsRelevantRule(t *testing.T) {
	engine := NewEngine(NewLocalEmbedder(128))
	ctx := context.Background()

	source := "702.15b Flying is an evasion ability that restricts which creatures can block it.\n" +
		"509.1 Each attacking and blocking creature deals combat damage.\n"

	if err := engine.IndexText(ctx, source); err != nil {
		t.Fatalf("IndexText error: %v", err)
	}
	if engine.Count() != 2 {
		t.Fatalf("expected 2 indexed chunks, got %d", engine.Count())
	}

	results, err := engine.Search(ctx, "what does flying do", DefaultTopK, 0)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one result")
	}
	if results[0].RuleID != "702.15b" {
		t.Fatalf("expected rule 702.15b to rank first, got %+v", results[0])
	}
}

func TestEngineSearchDedupesByRuleID(t *testing.T) {
	engine := NewEngine(NewLocalEmbedder(64))
	ctx := context.Background()
	if err := engine.IndexChunks(ctx, []Chunk{
		{ID: "c1", RuleID: "100.1", Text: "A game is a game between two players.", Ordinal: 0},
		{ID: "c2", RuleID: "100.1", Text: "A game is a game between two players.", Ordinal: 1},
	}); err != nil {
		t.Fatalf("IndexChunks error: %v", err)
	}

	results, err := engine.Search(ctx, "game between two players", 5, 0)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	seen := make(map[string]bool)
	for _, r := range results {
		if seen[r.RuleID] {
			t.Fatalf("rule id %q appeared more than once in results", r.RuleID)
		}
		seen[r.RuleID] = true
	}
}

func TestEngineSearchRejectsEmptyQuery(t *testing.T) {
	engine := NewEngine(NewLocalEmbedder(32))
	if _, err := engine.Search(context.Background(), "  ", 5, 0); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestEngineSearchAppliesMinScoreFilter(t *testing.T) {
	engine := NewEngine(NewLocalEmbedder(64))
	ctx := context.Background()
	if err := engine.IndexChunks(ctx, []Chunk{
		{ID: "c1", RuleID: "1", Text: "unrelated glossary preamble text", Ordinal: 0},
	}); err != nil {
		t.Fatalf("IndexChunks error: %v", err)
	}

	results, err := engine.Search(ctx, "completely different query about combat damage", 5, 0.999)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected min_score filter to exclude weak matches, got %+v", results)
	}
}

func TestSearchVectorOnlyIgnoresKeywordSignal(t *testing.T) {
	engine := NewEngine(NewLocalEmbedder(64))
	ctx := context.Background()
	if err := engine.IndexText(ctx, "702.15b Flying is an evasion ability.\n"); err != nil {
		t.Fatalf("IndexText error: %v", err)
	}

	results, err := engine.SearchVectorOnly(ctx, "flying evasion", DefaultTopK)
	if err != nil {
		t.Fatalf("SearchVectorOnly error: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one vector-only hit")
	}
}

func TestSearchKeywordOnlyFindsExactTermMatch(t *testing.T) {
	engine := NewEngine(NewLocalEmbedder(64))
	ctx := context.Background()
	if err := engine.IndexText(ctx, "702.15b Flying is an evasion ability.\n"); err != nil {
		t.Fatalf("IndexText error: %v", err)
	}

	results := engine.SearchKeywordOnly("flying", DefaultTopK)
	if len(results) == 0 {
		t.Fatalf("expected at least one bm25 hit for an exact term match")
	}
}

func TestCrossReferenceReturnsBothTopicsIndependently(t *testing.T) {
	engine := NewEngine(NewLocalEmbedder(64))
	ctx := context.Background()
	err := engine.IndexChunks(ctx, []Chunk{
		{ID: "702.15b", RuleID: "702.15b", Text: "Flying is an evasion ability."},
		{ID: "702.19b", RuleID: "702.19b", Text: "Deathtouch causes any damage to be considered lethal."},
	})
	if err != nil {
		t.Fatalf("IndexChunks error: %v", err)
	}

	a, b, err := engine.CrossReference(ctx, "flying", "deathtouch")
	if err != nil {
		t.Fatalf("CrossReference error: %v", err)
	}
	if len(a) == 0 || a[0].RuleID != "702.15b" {
		t.Fatalf("expected topic_a to rank the flying rule first, got %+v", a)
	}
	if len(b) == 0 || b[0].RuleID != "702.19b" {
		t.Fatalf("expected topic_b to rank the deathtouch rule first, got %+v", b)
	}
}

func TestCrossReferenceRejectsEmptyTopic(t *testing.T) {
	engine := NewEngine(NewLocalEmbedder(32))
	if _, _, err := engine.CrossReference(context.Background(), "  ", "deathtouch"); err == nil {
		t.Fatalf("expected error for an empty topic_a")
	}
}
