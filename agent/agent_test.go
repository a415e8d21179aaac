package agent

import (
	"context"

	"github.com/stacksage/stacksage/llm"
	"github.com/stacksage/stacksage/message"
)

// stubLLM returns a fixed reply (or fails) for every call, standing in for
// a real provider in tests that need a deterministic Generate.
type stubLLM struct {
	reply string
	err   error
	calls int
}

func (s *stubLLM) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.GenerateResponse{Message: message.NewMessage(message.RoleAssistant, s.reply)}, nil
}
