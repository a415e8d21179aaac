package agent

import (
	"context"
	"strings"

	"github.com/stacksage/stacksage/agentstate"
	"github.com/stacksage/stacksage/card"
	"github.com/stacksage/stacksage/llm"
	"github.com/stacksage/stacksage/message"
)

const plannerAgentID = "planner"

// plannerSystemPrompt mirrors planner.py's classification instructions: pull
// candidate card names, then bucket the question into exactly one of the
// four intents the rest of the graph understands.
const plannerSystemPrompt = `You are the planning agent for a Magic: The Gathering rules assistant.
Given a user's question, respond with a single JSON object and nothing else:
{"intent": "card_interaction"|"rules"|"meta"|"deck_validation", "card_names": ["..."]}

Intent guide:
- card_interaction: the question asks how two or more named cards interact.
- rules: the question asks about a rule, keyword, or timing, with at most one card named.
- meta: the question asks about the current competitive metagame, tier lists, or what's popular.
- deck_validation: the message contains or describes a decklist to check for legality.

List every card name you can find in card_names, exactly as written by the user.`

// plannerDecision is the JSON contract the Planner's LLM call must satisfy.
type plannerDecision struct {
	Intent    string   `json:"intent"`
	CardNames []string `json:"card_names"`
}

// taskPlans is the deterministic intent -> agent sequence table from spec
// §4.4. The meta row ends at interaction and finalizer, with no judge step,
// matching meta_agent.py's own _generate_meta_answer, which shortcuts
// straight to finalize in the original rather than routing through a
// controller-logic/reversed-benefit check that a metagame question never
// triggers.
func taskPlan(intent agentstate.Intent, hasCards bool) []string {
	switch intent {
	case agentstate.IntentCardInteraction:
		plan := []string{}
		if hasCards {
			plan = append(plan, "card")
		}
		plan = append(plan, "rules")
		return append(plan, "interaction", "judge", "finalizer")
	case agentstate.IntentRules:
		plan := []string{"rules"}
		if hasCards {
			plan = append(plan, "card")
		}
		return append(plan, "interaction", "judge", "finalizer")
	case agentstate.IntentMeta:
		plan := []string{"meta"}
		if hasCards {
			plan = append(plan, "card")
		}
		return append(plan, "interaction", "finalizer")
	case agentstate.IntentDeckValidation:
		return []string{"deck", "finalizer"}
	default:
		return []string{"rules", "interaction", "judge", "finalizer"}
	}
}

// Plan runs the Planner: classify the question's intent, extract candidate
// card names, and build TaskPlan. On a malformed LLM reply it retries once,
// then falls back to a deterministic classification, grounded on
// rag/agentic/planner.go's decodeJSON-retry-then-fallback shape.
func Plan(ctx context.Context, state *agentstate.State, deps Deps) error {
	state.MarkToolUsed(plannerAgentID)

	decision, err := plannerAnalyze(ctx, deps.PlannerLLM, state.UserQuestion)
	if err != nil {
		decision, err = plannerAnalyze(ctx, deps.PlannerLLM, state.UserQuestion)
	}
	if err != nil {
		state.AppendIssue("planner: LLM classification failed twice, falling back to deterministic rules intent")
		decision = &plannerDecision{
			Intent:    string(agentstate.IntentRules),
			CardNames: card.ExtractCardNames(state.UserQuestion),
		}
	}

	intent := agentstate.Intent(decision.Intent)
	switch intent {
	case agentstate.IntentCardInteraction, agentstate.IntentRules, agentstate.IntentMeta, agentstate.IntentDeckValidation:
	default:
		intent = agentstate.IntentRules
	}

	state.Intent = intent
	state.ExtractedCards = decision.CardNames
	if len(state.ExtractedCards) == 0 {
		state.ExtractedCards = card.ExtractCardNames(state.UserQuestion)
	}
	state.TaskPlan = taskPlan(intent, len(state.ExtractedCards) > 0)
	state.ControllerSensitive = DetectControllerSensitive(state.UserQuestion)
	return nil
}

func plannerAnalyze(ctx context.Context, client llm.Client, question string) (*plannerDecision, error) {
	req := &llm.GenerateRequest{
		Messages: []*message.Message{
			message.NewMessage(message.RoleSystem, plannerSystemPrompt),
			message.NewMessage(message.RoleUser, question),
		},
		Temperature: 0,
	}
	resp, err := client.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	decision, err := decodeJSON[plannerDecision](resp.Message.Content)
	if err != nil {
		return nil, err
	}
	decision.Intent = strings.ToLower(strings.TrimSpace(decision.Intent))
	return decision, nil
}
