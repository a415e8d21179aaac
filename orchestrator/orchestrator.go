// Package orchestrator wires the Planner, specialist agents, Interaction,
// Judge, and Finalizer into one graph.Graph run per question, grounded on
// the corpus's graph engine (graph/graph.go) but with Stack Sage's own
// dispatch-loop topology instead of a fixed pipeline: task_plan is built
// once by the Planner and then drained by a single condition node, so the
// same graph definition serves every intent's differently-shaped plan.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/stacksage/stacksage/agent"
	"github.com/stacksage/stacksage/agentstate"
	"github.com/stacksage/stacksage/graph"
	"github.com/stacksage/stacksage/pkg/logging"
	"github.com/stacksage/stacksage/pkg/telemetry"
)

// tracer emits one span per Run call, with a child span per agent node, so
// a question's full graph walk shows up as a single trace under whatever
// exporter pkg/telemetry.Init configured (stdout by default, OTLP when
// OTEL_EXPORTER_OTLP_ENDPOINT is set).
var tracer = otel.Tracer("github.com/stacksage/stacksage/orchestrator")

// stateKey is graph.State's single entry: the whole run threads through one
// *agentstate.State value rather than spreading fields across the generic
// map[string]any the graph engine otherwise expects.
const stateKey = "agentState"

// nodeTimeout is the soft per-node budget from SPEC_FULL.md §5: a node that
// overruns it is treated as failed rather than left to hang the graph run.
const nodeTimeout = 30 * time.Second

// requestTimeout is the overall soft budget for one question (spec's
// Cancellation & timeouts, §5): the cumulative wall-clock across every
// re-invocation and specialist call, on top of each node's own nodeTimeout.
const requestTimeout = 60 * time.Second

// overallTimeoutIssue mirrors agent.overallTimeoutIssue so dispatch can
// flag the state without importing agent's unexported sentinel.
const overallTimeoutIssue = "overall_timeout_exceeded"

// maxGraphVisits caps how many times any one node may run in a single
// question's graph walk, guarding against a reinvocation loop that keeps
// declaring the same MissingContext forever even with the per-kind cap.
const maxGraphVisits = 15

// Orchestrator owns the compiled graph and the Deps every node closes over.
type Orchestrator struct {
	graph *graph.Graph
	deps  agent.Deps
}

// New compiles the Stack Sage graph over deps.
func New(deps agent.Deps) *Orchestrator {
	b := graph.NewBuilder()

	b.AddNode("planner", graph.NodeTypeLLM, wrapAgent("planner", deps, func(ctx context.Context, s *agentstate.State, d agent.Deps) error {
		return agent.Plan(ctx, s, d)
	}))
	b.AddNode("card", graph.NodeTypeTool, wrapAgent("card", deps, func(ctx context.Context, s *agentstate.State, d agent.Deps) error {
		return agent.Card(ctx, s, d)
	}))
	b.AddNode("rules", graph.NodeTypeTool, wrapAgent("rules", deps, func(ctx context.Context, s *agentstate.State, d agent.Deps) error {
		return agent.Rules(ctx, s, d)
	}))
	b.AddNode("meta", graph.NodeTypeTool, wrapAgent("meta", deps, func(ctx context.Context, s *agentstate.State, d agent.Deps) error {
		return agent.Meta(ctx, s, d)
	}))
	b.AddNode("deck", graph.NodeTypeTool, wrapAgent("deck", deps, func(ctx context.Context, s *agentstate.State, d agent.Deps) error {
		return agent.Deck(ctx, s, d)
	}))
	b.AddNode("interaction", graph.NodeTypeLLM, wrapAgent("interaction", deps, func(ctx context.Context, s *agentstate.State, d agent.Deps) error {
		return agent.Interact(ctx, s, d)
	}))
	b.AddNode("judge", graph.NodeTypeLLM, wrapAgent("judge", deps, func(ctx context.Context, s *agentstate.State, d agent.Deps) error {
		return agent.Judge(ctx, s, d)
	}))
	b.AddNode("finalizer", graph.NodeTypeEnd, wrapFinalize())

	b.AddConditionNode("dispatch", dispatch, map[string]string{
		"card":        "card",
		"rules":       "rules",
		"meta":        "meta",
		"deck":        "deck",
		"interaction": "interaction",
		"judge":       "judge",
		"finalizer":   "finalizer",
	})

	for _, node := range []string{"planner", "card", "rules", "meta", "deck", "interaction", "judge"} {
		b.AddEdge(node, "dispatch")
	}

	b.SetStart("planner")
	b.SetEnd("finalizer")
	b.SetMaxVisits(maxGraphVisits)

	return &Orchestrator{graph: b.Build(), deps: deps}
}

// Run executes the graph for question and returns the finished State.
func (o *Orchestrator) Run(ctx context.Context, question string) (*agentstate.State, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.Run")
	span.SetAttributes(attribute.Int("question.length", len(question)))
	var runErr error
	defer func() { telemetry.End(span, runErr) }()

	runCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	state := agentstate.New(question)
	initial := graph.State{stateKey: state}

	final, err := o.graph.Execute(runCtx, initial)
	if err != nil {
		if strings.Contains(err.Error(), "infinite loop detected") {
			state.AppendIssue("recursion_cap_exceeded")
			_ = agent.Finalize(state)
			return state, nil
		}
		runErr = fmt.Errorf("orchestrator: graph execution: %w", err)
		return nil, runErr
	}

	result, ok := final[stateKey].(*agentstate.State)
	if !ok {
		runErr = fmt.Errorf("orchestrator: graph returned no agent state")
		return nil, runErr
	}
	span.SetAttributes(attribute.StringSlice("tools_used", result.ToolsUsed))
	return result, nil
}

// dispatch pops the next agent identifier off TaskPlan and routes to it,
// or to "finalizer" once the plan is exhausted. If the overall requestTimeout
// has already expired, it short-circuits straight to "finalizer" regardless
// of what TaskPlan still has queued, so Finalize runs over whatever partial
// evidence and DraftAnswer exist rather than the graph continuing to churn
// through remaining steps against an already-cancelled context. It also
// handles missing-context reinvocation: when a specialist declared
// MissingContext and the per-kind cap hasn't been spent yet, dispatch
// re-queues that specialist ahead of whatever TaskPlan already has queued,
// mirroring the corpus's condition-node routing pattern (graph/graph.go's
// NodeTypeCondition) but adapted to a mutable, agent-populated plan instead
// of a static one.
func dispatch(ctx context.Context, gs graph.State) (string, error) {
	state, ok := gs[stateKey].(*agentstate.State)
	if !ok {
		return "", fmt.Errorf("dispatch: missing agent state")
	}

	if ctx.Err() != nil {
		state.AppendIssue(overallTimeoutIssue)
		return "finalizer", nil
	}

	if kind := state.MissingContext; kind != "" {
		state.MissingContext = ""
		if state.CanReinvoke(kind) {
			return kind, nil
		}
	}

	next := state.DequeueNextAgent()
	if next == "" {
		return "finalizer", nil
	}
	return next, nil
}

// wrapAgent adapts one agent function into a graph.NodeFunc: pull the typed
// state out of graph.State, run the agent under a soft timeout, record its
// timing, and put the (possibly mutated) state back.
func wrapAgent(name string, deps agent.Deps, run func(context.Context, *agentstate.State, agent.Deps) error) graph.NodeFunc {
	return func(ctx context.Context, gs graph.State) (graph.State, error) {
		state, ok := gs[stateKey].(*agentstate.State)
		if !ok {
			return nil, fmt.Errorf("node %s: missing agent state", name)
		}

		nodeCtx, cancel := context.WithTimeout(ctx, nodeTimeout)
		defer cancel()

		start := time.Now()
		err := run(nodeCtx, state, deps)
		state.RecordTiming(name, time.Since(start).Seconds())
		if err != nil {
			logging.WithComponent(name).Error("agent node failed", "error", err)
			state.AppendIssue(fmt.Sprintf("%s: %v", name, err))
		}

		gs[stateKey] = state
		return gs, nil
	}
}

// wrapFinalize adapts agent.Finalize, the graph's sole end node.
func wrapFinalize() graph.NodeFunc {
	return func(ctx context.Context, gs graph.State) (graph.State, error) {
		state, ok := gs[stateKey].(*agentstate.State)
		if !ok {
			return nil, fmt.Errorf("finalizer: missing agent state")
		}
		if err := agent.Finalize(state); err != nil {
			return nil, fmt.Errorf("finalizer: %w", err)
		}
		gs[stateKey] = state
		return gs, nil
	}
}
