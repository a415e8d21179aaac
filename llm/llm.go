package llm

import (
	"context"

	"github.com/stacksage/stacksage/message"
)

// GenerateRequest bundles inputs for a non-streaming LLM invocation, adapted
// from agent/llm_types.go's GenerateRequest.
type GenerateRequest struct {
	Messages    []*message.Message
	Tools       []map[string]any
	Temperature float64
}

// GenerateResponse captures the LLM reply for a non-streaming call.
type GenerateResponse struct {
	Message *message.Message
}

// Client is the single provider-agnostic contract every specialist agent
// talks to. Both the OpenAI and Anthropic providers in this package
// implement it, so an agent never imports a vendor SDK directly.
type Client interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}
