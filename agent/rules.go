package agent

import (
	"context"
	"sort"
	"strings"

	"github.com/stacksage/stacksage/agentstate"
	"github.com/stacksage/stacksage/rules"
)

const rulesAgentID = "rules"

// Rules runs the Rules Agent: run a hybrid search over the Comprehensive
// Rules index, boosted with any card names the Planner already extracted,
// and compute a coverage score gating whether the retrieval counts as
// sufficient context. Grounded on rules_agent.py, but per spec §4.6's
// explicit formula (num_results / expected, clamped to [0, 1]) rather than
// rules_agent.py's own average-fused-score / 10.0 ratio — spec.md's stated
// formula wins where the two disagree.
func Rules(ctx context.Context, state *agentstate.State, deps Deps) error {
	state.MarkToolUsed(rulesAgentID)

	query := state.UserQuestion
	if len(state.ExtractedCards) > 0 {
		query = query + " " + strings.Join(state.ExtractedCards, " ")
	}

	results, err := retrieveRules(ctx, deps, query, state.ExtractedCards)
	if err != nil {
		state.AppendIssue("rules: search failed: " + err.Error())
		state.MissingContext = "rules"
		return nil
	}

	coverage := float64(len(results)) / float64(rules.ExpectedRuleHits)
	if coverage > 1 {
		coverage = 1
	}
	if coverage < rules.CoverageThreshold {
		state.MissingContext = "rules"
	}

	for i, r := range results {
		state.AddEvidence(agentstate.EvidenceKindRules, agentstate.Evidence{
			Kind: agentstate.EvidenceKindRules,
			Rule: &agentstate.RuleEvidence{RuleID: r.RuleID, Text: r.Text, Score: r.Score},
		})
		if i < 3 {
			state.Citations = append(state.Citations, agentstate.Citation{RuleID: r.RuleID, RuleText: r.Text})
		}
	}
	return nil
}

// retrieveRules runs the plain hybrid search for most questions, but
// switches to a per-card cross reference (spec §4.3's cross_reference_rules)
// once the Planner has extracted two or more card names: an interaction
// question ("how does X interact with Y") is better served by seeing each
// card's own closest rules than by one query embedding both names at once.
func retrieveRules(ctx context.Context, deps Deps, query string, extractedCards []string) ([]rules.Rule, error) {
	if len(extractedCards) < 2 {
		return deps.RulesIndex.Search(ctx, query, rules.DefaultTopK, 0)
	}
	a, b, err := deps.RulesIndex.CrossReference(ctx, extractedCards[0], extractedCards[1])
	if err != nil {
		return nil, err
	}
	return mergeRuleHits(a, b, rules.DefaultTopK), nil
}

// mergeRuleHits joins two independently-ranked rule slices, deduplicating by
// rule id and keeping the higher-scoring hit on a collision.
func mergeRuleHits(a, b []rules.Rule, k int) []rules.Rule {
	byRule := make(map[string]rules.Rule, len(a)+len(b))
	for _, r := range append(append([]rules.Rule{}, a...), b...) {
		key := r.RuleID
		if key == "" {
			key = r.ID
		}
		if existing, ok := byRule[key]; !ok || r.Score > existing.Score {
			byRule[key] = r
		}
	}
	out := make([]rules.Rule, 0, len(byRule))
	for _, r := range byRule {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	return out
}
