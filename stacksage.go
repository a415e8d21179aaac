// Package stacksage wires the Card Source Adapter, Rules Index, Meta Cache,
// LLM Registry, and multi-agent graph into the four external operations
// spec.md §6 names: Ask, DeckValidate, CardSearch, and Meta read/refresh.
// This is the boundary the out-of-scope HTTP server, CLI, and frontend
// collaborators would call into; nothing under this package imports any of
// those surfaces.
package stacksage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/stacksage/stacksage/agent"
	"github.com/stacksage/stacksage/agentstate"
	"github.com/stacksage/stacksage/card"
	"github.com/stacksage/stacksage/deck"
	"github.com/stacksage/stacksage/llm"
	"github.com/stacksage/stacksage/meta"
	"github.com/stacksage/stacksage/orchestrator"
	"github.com/stacksage/stacksage/pkg/logging"
	"github.com/stacksage/stacksage/pkg/stackconfig"
	"github.com/stacksage/stacksage/pkg/stackerrors"
	"github.com/stacksage/stacksage/pkg/telemetry"
	"github.com/stacksage/stacksage/rules"
)

// judgeTemperature keeps the verification/rewrite call deterministic, same
// rationale as the Planner's own zero temperature: the Judge either accepts
// a draft or rewrites it from evidence, and drifting prose on retries makes
// its output harder to compare across runs.
const judgeTemperature = 0.0

// Service is the wired, ready-to-call Stack Sage core.
type Service struct {
	orch            *orchestrator.Orchestrator
	cards           card.Source
	scryfall        *card.ScryfallClient
	rulesIndex      *rules.Engine
	metaSvc         *meta.Service
	shutdownTracing func(context.Context) error
}

// AskResult is the Ask operation's response shape from spec §6.
type AskResult struct {
	Answer      string
	ToolsUsed   []string
	Citations   []agentstate.Citation
	Diagnostics AskDiagnostics
	Success     bool
}

// AskDiagnostics carries the internal detail spec §6 asks Ask to surface
// alongside the answer.
type AskDiagnostics struct {
	AgentTimings map[string]float64
	JudgeReport  agentstate.JudgeReport
	StaleMeta    bool
}

// New wires every component from cfg and the process environment (API keys
// are read directly from the environment rather than stackconfig.Config,
// matching the corpus convention of never putting secrets in a validated
// config struct that might get logged). Callers should defer Service.Close
// to flush the trace exporter on shutdown.
func New(ctx context.Context, cfg *stackconfig.Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("stacksage: invalid configuration: %w", err)
	}

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "stacksage",
		Disable:     os.Getenv("OTEL_SDK_DISABLED") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("stacksage: telemetry init: %w", err)
	}

	registry := llm.NewRegistry(
		os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_BASE_URL"),
		os.Getenv("ANTHROPIC_API_KEY"), os.Getenv("ANTHROPIC_BASE_URL"),
	)

	plannerLLM, err := newClient(registry, cfg.LLMProvider, cfg.LLMModel, cfg.PlannerTemperature)
	if err != nil {
		return nil, fmt.Errorf("stacksage: planner LLM: %w", err)
	}
	interactionLLM, err := newClient(registry, cfg.LLMProvider, cfg.LLMModel, cfg.InteractionTemp)
	if err != nil {
		return nil, fmt.Errorf("stacksage: interaction LLM: %w", err)
	}
	judgeLLM, err := newClient(registry, cfg.LLMProvider, cfg.LLMModel, judgeTemperature)
	if err != nil {
		return nil, fmt.Errorf("stacksage: judge LLM: %w", err)
	}

	scryfall := card.NewScryfallClient()
	cachedCards, err := card.NewCachedSource(scryfall, cfg.CardCacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("stacksage: card cache: %w", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("stacksage: embedder: %w", err)
	}
	rulesIndex, err := rules.LoadEngine(cfg.RulesIndexPath, embedder)
	if err != nil {
		return nil, fmt.Errorf("%w: rules index %q: %v", stackerrors.ErrIndexUnavailable, cfg.RulesIndexPath, err)
	}
	queryCache, err := rules.NewQueryCache(cfg.RulesCacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("stacksage: rules query cache: %w", err)
	}
	rulesIndex.SetQueryCache(queryCache)

	metaCache, err := meta.NewCache(
		time.Duration(cfg.MetaCacheFreshTTL)*time.Second,
		time.Duration(cfg.MetaCacheStaleTTL)*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("stacksage: meta cache: %w", err)
	}
	searcher := meta.NewSearcher(cfg.MetaSearchCredential, cfg.MetaSearchURL)
	metaSvc := meta.NewService(metaCache, searcher, func() string { return time.Now().UTC().Format(time.RFC3339) })

	deps := agent.Deps{
		PlannerLLM:     plannerLLM,
		InteractionLLM: interactionLLM,
		JudgeLLM:       judgeLLM,
		Cards:          cachedCards,
		RulesIndex:     rulesIndex,
		Meta:           metaSvc,
	}

	logging.WithComponent("stacksage").Info("service wired",
		"llm_provider", cfg.LLMProvider, "embedding_mode", cfg.EmbeddingMode, "rules_index", cfg.RulesIndexPath)

	return &Service{
		orch:            orchestrator.New(deps),
		cards:           cachedCards,
		scryfall:        scryfall,
		rulesIndex:      rulesIndex,
		metaSvc:         metaSvc,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Close flushes the trace exporter. Callers should defer this after New
// succeeds.
func (s *Service) Close(ctx context.Context) error {
	if s.shutdownTracing == nil {
		return nil
	}
	return s.shutdownTracing(ctx)
}

func newClient(registry *llm.Registry, provider, model string, temperature float64) (llm.Client, error) {
	switch provider {
	case "anthropic":
		return registry.Anthropic(model, temperature)
	default:
		return registry.OpenAI(model, temperature)
	}
}

func newEmbedder(cfg *stackconfig.Config) (rules.Embedder, error) {
	switch cfg.EmbeddingMode {
	case stackconfig.EmbeddingModeHosted:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("%w: EMBEDDING_MODE=hosted requires OPENAI_API_KEY", stackerrors.ErrToolMisconfigured)
		}
		return rules.NewOpenAIEmbedder(apiKey, os.Getenv("OPENAI_BASE_URL"), "text-embedding-3-small", 1536), nil
	default:
		return rules.NewLocalEmbedder(256), nil
	}
}

// Ask runs the full multi-agent graph for question and formats the result
// per spec §6's Ask operation.
func (s *Service) Ask(ctx context.Context, question string) (AskResult, error) {
	state, err := s.orch.Run(ctx, question)
	if err != nil {
		return AskResult{Success: false, Answer: "Stack Sage hit an internal error and could not answer."}, err
	}

	return AskResult{
		Answer:    state.FinalAnswer,
		ToolsUsed: state.ToolsUsed,
		Citations: state.Citations,
		Diagnostics: AskDiagnostics{
			AgentTimings: state.AgentTimings,
			JudgeReport:  state.JudgeReport,
			StaleMeta:    hasStaleMeta(state),
		},
		Success: state.FinalAnswer != "",
	}, nil
}

func hasStaleMeta(state *agentstate.State) bool {
	for _, ev := range state.Context[agentstate.EvidenceKindMeta] {
		if ev.Meta != nil && ev.Meta.Stale {
			return true
		}
	}
	return false
}

// DeckValidateResult is the Deck-validate operation's response shape.
type DeckValidateResult struct {
	IsLegal    bool
	Format     string
	TotalCards int
	Errors     []string
	Warnings   []string
}

// DeckValidate parses decklist and validates it against format, bypassing
// the graph entirely: this is a direct, non-conversational operation, not a
// question routed through the Planner.
func (s *Service) DeckValidate(ctx context.Context, decklist, format, commander string) (DeckValidateResult, error) {
	counted := false
	for _, line := range strings.Split(decklist, "\n") {
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(line), "%d", &n); err == nil {
			counted = true
			break
		}
	}
	mainboard, sideboard := deck.ParseDecklist(decklist)
	if len(mainboard) == 0 || !counted {
		return DeckValidateResult{}, fmt.Errorf("%w: decklist has no recognizable mainboard entries", stackerrors.ErrInvalidQuery)
	}

	d := deck.Deck{Format: format, Mainboard: mainboard, Sideboard: sideboard, Commander: commander}
	result := deck.Validate(ctx, s.cards, d)

	out := DeckValidateResult{
		IsLegal:    result.IsLegal,
		Format:     result.Format,
		TotalCards: result.TotalCards,
	}
	for _, issue := range result.Errors {
		out.Errors = append(out.Errors, issue.Message)
	}
	for _, issue := range result.Warnings {
		out.Warnings = append(out.Warnings, issue.Message)
	}
	return out, nil
}

// CardSearchResult is the Card-search operation's response shape.
type CardSearchResult struct {
	TotalCards int
	Query      card.SearchFilters
	Cards      []*card.Card
	Success    bool
}

// CardSearch runs a structured Scryfall filter search per spec §4.1,
// bypassing the graph the same way DeckValidate does.
func (s *Service) CardSearch(ctx context.Context, filters card.SearchFilters) (CardSearchResult, error) {
	cards, err := s.scryfall.SearchByCriteria(ctx, filters)
	if err != nil {
		return CardSearchResult{Query: filters}, err
	}
	return CardSearchResult{TotalCards: len(cards), Query: filters, Cards: cards, Success: true}, nil
}

// MetaGet returns the cached (or freshly fetched) metagame snapshot for
// format without going through the graph.
func (s *Service) MetaGet(ctx context.Context, format string) (meta.Snapshot, bool, error) {
	return s.metaSvc.Get(ctx, format, "top decks in "+format)
}

// MetaRefresh forces a fresh search_mtg_meta lookup for format, bypassing
// whatever is currently cached.
func (s *Service) MetaRefresh(ctx context.Context, format string) (meta.Snapshot, error) {
	return s.metaSvc.Refresh(ctx, format)
}
