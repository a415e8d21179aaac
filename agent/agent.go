// Package agent implements Stack Sage's specialist agents: Planner, Card,
// Rules, Meta, Deck, Interaction, Judge, and Finalizer. Each is a plain
// function over *agentstate.State, grounded on the corpus's rag/agentic
// node shape (one small struct per role, an LLM client, a narrow method)
// but adapted to the fixed AgentState this system threads through the
// graph instead of rag/agentic's generic pipeline state.
package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stacksage/stacksage/card"
	"github.com/stacksage/stacksage/llm"
	"github.com/stacksage/stacksage/meta"
	"github.com/stacksage/stacksage/rules"
)

// Deps wires every specialist agent to the concrete backends it needs.
// Built once by the orchestrator and passed to every node function.
type Deps struct {
	PlannerLLM     llm.Client
	InteractionLLM llm.Client
	JudgeLLM       llm.Client

	Cards      card.Source
	RulesIndex *rules.Engine
	Meta       *meta.Service
}

// decodeJSON mirrors rag/agentic/encode.go's decodeJSON[T]: strip markdown
// code fences an LLM might wrap its JSON reply in, then unmarshal.
func decodeJSON[T any](raw string) (*T, error) {
	clean := sanitizeJSON(raw)
	var out T
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	return &out, nil
}

func sanitizeJSON(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = trimmed[3:]
		trimmed = strings.TrimPrefix(trimmed, "json")
		trimmed = strings.TrimPrefix(trimmed, "JSON")
		if idx := strings.Index(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
	}
	return strings.TrimSpace(trimmed)
}
