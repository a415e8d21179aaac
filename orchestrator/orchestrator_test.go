package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stacksage/stacksage/agent"
	"github.com/stacksage/stacksage/card"
	"github.com/stacksage/stacksage/llm"
	"github.com/stacksage/stacksage/message"
	"github.com/stacksage/stacksage/meta"
	"github.com/stacksage/stacksage/rules"
)

type fakeLLM struct{ reply string }

func (f *fakeLLM) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return &llm.GenerateResponse{Message: message.NewMessage(message.RoleAssistant, f.reply)}, nil
}

type stubCardSource struct{ cards map[string]*card.Card }

func (s *stubCardSource) FetchCard(ctx context.Context, name string) (*card.Card, error) {
	if c, ok := s.cards[name]; ok {
		return c, nil
	}
	return nil, context.DeadlineExceeded
}

func buildTestDeps(t *testing.T, plannerReply, interactionReply string) agent.Deps {
	t.Helper()
	engine := rules.NewEngine(rules.NewLocalEmbedder(32))
	if err := engine.IndexText(context.Background(), "702.15b Flying is an evasion ability.\n"); err != nil {
		t.Fatalf("IndexText error: %v", err)
	}
	cache, err := meta.NewCache(0, 0)
	if err != nil {
		t.Fatalf("NewCache error: %v", err)
	}
	svc := meta.NewService(cache, meta.NewSearcher("", ""), func() string { return "2026-08-06" })

	return agent.Deps{
		PlannerLLM:     &fakeLLM{reply: plannerReply},
		InteractionLLM: &fakeLLM{reply: interactionReply},
		JudgeLLM:       &fakeLLM{reply: ""},
		Cards:          &stubCardSource{cards: map[string]*card.Card{}},
		RulesIndex:     engine,
		Meta:           svc,
	}
}

func TestOrchestratorRunsRulesIntentToCompletion(t *testing.T) {
	deps := buildTestDeps(t,
		`{"intent": "rules", "card_names": []}`,
		"Flying is an evasion ability per CR 702.15b.",
	)
	orch := New(deps)
	state, err := orch.Run(context.Background(), "What does flying do?")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if state.FinalAnswer == "" {
		t.Fatalf("expected a non-empty final answer")
	}
	if !strings.Contains(state.FinalAnswer, "Flying is an evasion ability") {
		t.Fatalf("expected the drafted answer to survive to FinalAnswer, got %q", state.FinalAnswer)
	}
}

func TestOrchestratorRunsDeckValidationWithoutInteractionOrJudge(t *testing.T) {
	deps := buildTestDeps(t, `{"intent": "deck_validation", "card_names": []}`, "")
	orch := New(deps)
	state, err := orch.Run(context.Background(), "4 Lightning Bolt\n56 Mountain\nstandard")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	for _, agentName := range []string{"interaction", "judge"} {
		for _, used := range state.ToolsUsed {
			if used == agentName {
				t.Fatalf("expected deck_validation to skip %s, but it ran", agentName)
			}
		}
	}
	if state.FinalAnswer == "" {
		t.Fatalf("expected a non-empty final answer")
	}
}

func TestOrchestratorProducesTimeoutMessageWhenOverallBudgetExpires(t *testing.T) {
	deps := buildTestDeps(t,
		`{"intent": "rules", "card_names": []}`,
		"Flying is an evasion ability per CR 702.15b.",
	)
	orch := New(deps)

	expiredCtx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	state, err := orch.Run(expiredCtx, "What does flying do?")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !strings.Contains(state.FinalAnswer, "time budget") {
		t.Fatalf("expected the overall-timeout message once the request's soft budget has expired, got %q", state.FinalAnswer)
	}
}
