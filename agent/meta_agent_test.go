package agent

import (
	"context"
	"testing"

	"github.com/stacksage/stacksage/agentstate"
	"github.com/stacksage/stacksage/meta"
)

func TestDetectFormatKeywords(t *testing.T) {
	cases := map[string]string{
		"What's good in modern right now?":    "modern",
		"Is this legal in commander?":         "commander",
		"cEDH combo lines":                    "commander",
		"How's the standard metagame looking": "standard",
		"no format mentioned at all":          "standard",
	}
	for question, want := range cases {
		if got := detectFormat(question); got != want {
			t.Errorf("detectFormat(%q) = %q, want %q", question, got, want)
		}
	}
}

func TestMetaAppendsEvidence(t *testing.T) {
	cache, err := meta.NewCache(0, 0)
	if err != nil {
		t.Fatalf("NewCache error: %v", err)
	}
	searcher := meta.NewSearcher("", "")
	svc := meta.NewService(cache, searcher, func() string { return "2026-08-06" })

	state := agentstate.New("What's the best standard deck right now?")
	if err := Meta(context.Background(), state, Deps{Meta: svc}); err != nil {
		t.Fatalf("Meta error: %v", err)
	}

	evidence := state.Context[agentstate.EvidenceKindMeta]
	if len(evidence) != 1 {
		t.Fatalf("expected 1 meta evidence entry, got %d", len(evidence))
	}
	if evidence[0].Meta.Format != "standard" {
		t.Fatalf("expected standard format, got %q", evidence[0].Meta.Format)
	}
}
