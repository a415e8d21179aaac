package agent

import (
	"context"
	"strings"

	"github.com/stacksage/stacksage/agentstate"
)

const metaAgentID = "meta"

// formatKeywords is the format-detection table ported from
// meta_agent.py's _detect_format, defaulting to "standard" when nothing
// matches, exactly as the original does.
var formatKeywords = []struct {
	format   string
	keywords []string
}{
	{"modern", []string{"modern"}},
	{"pioneer", []string{"pioneer"}},
	{"legacy", []string{"legacy"}},
	{"vintage", []string{"vintage"}},
	{"commander", []string{"commander", "edh", "cedh"}},
	{"pauper", []string{"pauper"}},
	{"brawl", []string{"brawl"}},
	{"standard", []string{"standard"}},
}

func detectFormat(question string) string {
	lower := strings.ToLower(question)
	for _, entry := range formatKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.format
			}
		}
	}
	return "standard"
}

// Meta runs the Meta Agent: infer the format under discussion, consult the
// Meta Cache (falling back to a live search_mtg_meta on a miss or a
// past-stale-window entry), and append one MetaEvidence entry. Unlike
// meta_agent.py's _generate_meta_answer, this never sets DraftAnswer
// itself: spec.md's task_plan runs Interaction after Meta even for the
// meta intent, so composing the user-facing answer is Interaction's job,
// not this agent's.
func Meta(ctx context.Context, state *agentstate.State, deps Deps) error {
	state.MarkToolUsed(metaAgentID)

	format := detectFormat(state.UserQuestion)
	snapshot, stale, err := deps.Meta.Get(ctx, format, state.UserQuestion)
	if err != nil {
		state.AppendIssue("meta: search failed: " + err.Error())
		state.MissingContext = "meta"
		return nil
	}

	ev := &agentstate.MetaEvidence{
		Format:       snapshot.Format,
		SnapshotDate: snapshot.SnapshotDate,
		Summary:      snapshot.Summary,
		Stale:        stale,
	}
	for _, src := range snapshot.Sources {
		ev.Sources = append(ev.Sources, agentstate.MetaSource{Title: src.Title, URL: src.URL, Snippet: src.Snippet})
	}
	state.AddEvidence(agentstate.EvidenceKindMeta, agentstate.Evidence{Kind: agentstate.EvidenceKindMeta, Meta: ev})
	for _, src := range ev.Sources {
		if src.Title != "" {
			state.Citations = append(state.Citations, agentstate.Citation{CardName: src.Title})
		}
	}
	return nil
}
