package agent

import (
	"context"

	"github.com/stacksage/stacksage/agentstate"
	"github.com/stacksage/stacksage/card"
)

const cardAgentID = "card"

// Card runs the Card Agent: resolve every extracted card name against the
// Card Source Adapter in parallel and append one CardEvidence per hit,
// grounded on card_agent.py's per-card evidence build and
// card.CompareMultiple's bounded-fanout fetch.
func Card(ctx context.Context, state *agentstate.State, deps Deps) error {
	state.MarkToolUsed(cardAgentID)

	names := state.ExtractedCards
	if len(names) == 0 {
		names = card.ExtractCardNames(state.UserQuestion)
	}
	if len(names) == 0 {
		return nil
	}

	results := card.CompareMultiple(ctx, deps.Cards, names)
	for i, c := range results {
		if c == nil {
			state.AppendIssue("card not found: " + names[i])
			continue
		}
		state.AddEvidence(agentstate.EvidenceKindCards, agentstate.Evidence{
			Kind: agentstate.EvidenceKindCards,
			Card: &agentstate.CardEvidence{
				Name:            c.Name,
				ManaCost:        c.ManaCost,
				TypeLine:        c.TypeLine,
				OracleText:      c.OracleText,
				Power:           c.Power,
				Toughness:       c.Toughness,
				Legalities:      c.Legalities,
				Rulings:         c.Rulings,
				Set:             c.Set,
				CollectorNumber: c.CollectorNumber,
			},
		})
		state.Citations = append(state.Citations, agentstate.Citation{CardName: c.Name, CardSet: c.Set})
	}
	return nil
}
