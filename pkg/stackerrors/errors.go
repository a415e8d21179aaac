// Package stackerrors defines the error taxonomy shared across Stack Sage's
// tools, agents, and orchestrator. Every propagated error is one of these
// sentinels (wrapped with fmt.Errorf %w for context); callers classify with
// errors.Is and Kind.
package stackerrors

import "errors"

var (
	// ErrNotFound indicates a requested card, rule, or format entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuery indicates a caller-supplied query violates a tool's contract
	// (e.g. a card search with no filters set).
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUpstreamUnavailable indicates a dependency such as Scryfall or a meta
	// source could not be reached or returned a server error.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrIndexUnavailable indicates the Rules Index has not been built/loaded.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrTimeout indicates a per-node or overall soft budget was exceeded.
	ErrTimeout = errors.New("timeout")

	// ErrUngrounded indicates the Judge Agent could not verify a draft answer
	// against retrieved context.
	ErrUngrounded = errors.New("ungrounded answer")

	// ErrToolMisconfigured indicates a tool was invoked without a required
	// dependency wired in (e.g. no LLM client configured for the Planner).
	ErrToolMisconfigured = errors.New("tool misconfigured")

	// ErrInternalInvariantBreach indicates a state invariant listed in
	// SPEC_FULL.md §3 was violated. This is the only error kind that aborts a
	// request outright rather than being translated into an issue.
	ErrInternalInvariantBreach = errors.New("internal invariant breach")
)

// Kind returns the taxonomy name for err, or "" if err does not wrap one of
// the sentinels above.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrInvalidQuery):
		return "InvalidQuery"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "UpstreamUnavailable"
	case errors.Is(err, ErrIndexUnavailable):
		return "IndexUnavailable"
	case errors.Is(err, ErrTimeout):
		return "Timeout"
	case errors.Is(err, ErrUngrounded):
		return "Ungrounded"
	case errors.Is(err, ErrToolMisconfigured):
		return "ToolMisconfigured"
	case errors.Is(err, ErrInternalInvariantBreach):
		return "InternalInvariantBreach"
	default:
		return ""
	}
}

// Fatal reports whether err should abort a request rather than being
// downgraded to an AgentState issue.
func Fatal(err error) bool {
	return errors.Is(err, ErrInternalInvariantBreach)
}
