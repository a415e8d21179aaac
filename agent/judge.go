package agent

import (
	"context"
	"regexp"
	"strings"

	"github.com/stacksage/stacksage/agentstate"
	"github.com/stacksage/stacksage/llm"
	"github.com/stacksage/stacksage/message"
)

const judgeAgentID = "judge"

// groundingSuspicionThreshold is how many ungrounded card-name-like tokens
// (or ungrounded power/toughness numbers) a draft answer may contain before
// the Judge calls it hallucinated, ported directly from judge_agent.py's
// two identical thresholds.
const groundingSuspicionThreshold = 3

// maxGroundingCandidates caps how many candidate tokens are checked, since
// judge_agent.py only inspects the first 10 before giving up.
const maxGroundingCandidates = 10

// mtgActionVerbs is the list of verbs that must immediately follow a
// candidate title-case phrase for it to count as a card-name-shaped claim,
// ported from judge_agent.py's verb allowlist.
var mtgActionVerbs = map[string]struct{}{
	"is": {}, "has": {}, "can": {}, "will": {}, "would": {}, "enters": {}, "leaves": {},
	"triggers": {}, "creates": {}, "deals": {}, "gains": {}, "loses": {}, "taps": {},
	"untaps": {}, "sacrifices": {}, "exiles": {}, "draws": {}, "discards": {}, "reveals": {},
	"searches": {}, "shuffles": {}, "puts": {}, "returns": {}, "destroys": {}, "counters": {},
	"copies": {}, "targets": {},
}

// skipWords filters out common sentence-starters the title-case pattern
// would otherwise mistake for a card name, ported from judge_agent.py's
// skip_words denylist.
var skipWords = map[string]struct{}{
	"The": {}, "This": {}, "That": {}, "These": {}, "Those": {}, "If": {}, "When": {},
	"According": {}, "In": {}, "For": {}, "Since": {}, "Because": {},
}

var candidateCardPattern = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z']+)*)\s+([a-z]+)\b`)
var powerToughnessPattern = regexp.MustCompile(`\b\d+/\d+\b`)

// Judge runs the Judge Agent: verify the draft answer is grounded in cited
// evidence, run the controller-logic check when the question is
// controller-sensitive, and either pass the draft through, correct it, or
// replace it with an "insufficient information" refusal. It mutates
// state.DraftAnswer in place so Finalizer can treat every task_plan path
// (including deck_validation, which never runs Judge) uniformly: wrap
// whatever DraftAnswer holds.
func Judge(ctx context.Context, state *agentstate.State, deps Deps) error {
	state.MarkToolUsed(judgeAgentID)

	if state.DraftAnswer == "" {
		return nil
	}

	grounded, issues := checkGrounding(state.DraftAnswer, state.Citations)
	state.JudgeReport.Grounded = grounded
	state.JudgeReport.Issues = issues

	if !grounded {
		state.AppendIssue("judge: draft answer failed grounding check")
		rewritten := rewriteGrounded(ctx, deps, state)
		if rewritten != "" {
			state.DraftAnswer = rewritten
			state.JudgeReport.Grounded = true
		} else {
			state.DraftAnswer = "I don't have enough verified information to answer that confidently. Could you narrow the question or name the specific cards involved?"
		}
		return nil
	}

	if state.ControllerSensitive {
		if correction := checkControllerLogic(state, state.UserQuestion, state.DraftAnswer); correction != "" {
			state.JudgeReport.ControllerCorrection = correction
			state.DraftAnswer = correction + "\n\n" + state.DraftAnswer
		}
	}

	return nil
}

// checkGrounding extracts candidate card-name-like phrases and
// power/toughness numbers from draft and flags it as ungrounded once
// groundingSuspicionThreshold card-like phrases appear with no matching
// citation, or once groundingSuspicionThreshold power/toughness numbers
// appear at all (numbers are counted, not compared with citations), ported
// from judge_agent.py's _check_grounding.
func checkGrounding(draft string, citations []agentstate.Citation) (bool, []string) {
	citedNames := make(map[string]struct{}, len(citations))
	for _, c := range citations {
		if c.CardName != "" {
			citedNames[strings.ToLower(c.CardName)] = struct{}{}
		}
	}

	var issues []string
	suspiciousNames := 0
	checked := 0
	for _, m := range candidateCardPattern.FindAllStringSubmatch(draft, -1) {
		if checked >= maxGroundingCandidates {
			break
		}
		checked++
		name, verb := m[1], strings.ToLower(m[2])
		if _, isVerb := mtgActionVerbs[verb]; !isVerb {
			continue
		}
		if _, skip := skipWords[strings.Fields(name)[0]]; skip {
			continue
		}
		if _, cited := citedNames[strings.ToLower(name)]; cited {
			continue
		}
		suspiciousNames++
		issues = append(issues, "uncited card-like phrase: "+name)
	}

	suspiciousNumbers := len(powerToughnessPattern.FindAllString(draft, -1))

	if suspiciousNames >= groundingSuspicionThreshold || suspiciousNumbers >= groundingSuspicionThreshold {
		return false, issues
	}
	return true, nil
}

const judgeRewriteSystemPrompt = `You are a fact-checking editor for a Magic: The Gathering rules assistant.
The draft answer below may reference cards or rules not present in the evidence.
Rewrite it so every claim is backed by the evidence, removing anything that isn't. If nothing can be salvaged, reply with exactly: INSUFFICIENT`

func rewriteGrounded(ctx context.Context, deps Deps, state *agentstate.State) string {
	if deps.JudgeLLM == nil {
		return ""
	}
	contextBlock := buildContextBlock(state)
	req := &llm.GenerateRequest{
		Messages: []*message.Message{
			message.NewMessage(message.RoleSystem, judgeRewriteSystemPrompt),
			message.NewMessage(message.RoleUser, "Evidence:\n"+contextBlock+"\n\nDraft answer:\n"+state.DraftAnswer),
		},
		Temperature: 0,
	}
	resp, err := deps.JudgeLLM.Generate(ctx, req)
	if err != nil {
		return ""
	}
	rewritten := strings.TrimSpace(resp.Message.Content)
	if rewritten == "" || strings.EqualFold(rewritten, "INSUFFICIENT") {
		return ""
	}
	return rewritten
}
