package llm

import (
	"testing"

	"github.com/stacksage/stacksage/message"
)

func TestEncodeOpenAIToolCallsRoundTripsArgs(t *testing.T) {
	calls := []message.ToolCall{
		{ID: "call-1", Name: "fetch_card", Args: map[string]any{"name": "Dockside Extortionist"}},
	}
	encoded, err := encodeOpenAIToolCalls(calls)
	if err != nil {
		t.Fatalf("encodeOpenAIToolCalls error: %v", err)
	}
	if len(encoded) != 1 {
		t.Fatalf("expected 1 encoded tool call, got %d", len(encoded))
	}
	if encoded[0].Function.Name != "fetch_card" {
		t.Fatalf("expected function name fetch_card, got %q", encoded[0].Function.Name)
	}
}

func TestEncodeOpenAIToolsProducesValidSchema(t *testing.T) {
	tools := []map[string]any{
		{
			"type": "function",
			"function": map[string]any{
				"name":        "check_legality",
				"description": "Checks whether a card is legal in a format.",
				"parameters": map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
		},
	}
	encoded, err := encodeOpenAITools(tools)
	if err != nil {
		t.Fatalf("encodeOpenAITools error: %v", err)
	}
	if len(encoded) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(encoded))
	}
}
