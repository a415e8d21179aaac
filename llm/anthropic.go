package llm

import (
	"context"
	"encoding/json"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/stacksage/stacksage/message"
)

// AnthropicConfig holds the settings for the Anthropic provider.
type AnthropicConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64
}

// DefaultAnthropicConfig returns the provider's defaults before caller overrides.
func DefaultAnthropicConfig() *AnthropicConfig {
	return &AnthropicConfig{
		Model:     "claude-3-5-sonnet-20241022",
		MaxTokens: 4096,
	}
}

// AnthropicProvider implements Client against the Anthropic Messages API.
// Rewritten from contrib/provider/claude/claude.go's older
// (messages, tools) (*message.Message, error) contract onto the same
// GenerateRequest/GenerateResponse shape OpenAIProvider uses, so the
// orchestrator's agents can swap providers without a type switch.
type AnthropicProvider struct {
	config *AnthropicConfig
	client anthropicsdk.Client
}

// NewAnthropicProvider builds a client from cfg.
func NewAnthropicProvider(cfg *AnthropicConfig) *AnthropicProvider {
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-sonnet-20241022"
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicProvider{config: cfg, client: anthropicsdk.NewClient(opts...)}
}

// Generate implements Client.
func (p *AnthropicProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("generate request cannot be nil")
	}

	var systemPrompts []string
	conversation := make([]anthropicsdk.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case message.RoleSystem:
			systemPrompts = append(systemPrompts, msg.Content)
		case message.RoleUser:
			conversation = append(conversation, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(msg.Content)))
		case message.RoleAssistant:
			conversation = append(conversation, anthropicsdk.NewAssistantMessage(anthropicsdk.NewTextBlock(msg.Content)))
		case message.RoleTool:
			conversation = append(conversation, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(msg.Content)))
		}
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(p.config.Model),
		Messages:  conversation,
		MaxTokens: p.config.MaxTokens,
	}
	if len(systemPrompts) > 0 {
		text := systemPrompts[0]
		for _, sp := range systemPrompts[1:] {
			text += "\n" + sp
		}
		params.System = []anthropicsdk.TextBlockParam{{Text: text}}
	}

	temp := req.Temperature
	if temp == 0 {
		temp = p.config.Temperature
	}
	if temp > 0 {
		params.Temperature = param.NewOpt(temp)
	}

	if len(req.Tools) > 0 {
		tools := make([]anthropicsdk.ToolUnionParam, 0, len(req.Tools))
		for _, tool := range req.Tools {
			raw, err := json.Marshal(tool)
			if err != nil {
				return nil, fmt.Errorf("marshal tool: %w", err)
			}
			var toolParam anthropicsdk.ToolParam
			if err := json.Unmarshal(raw, &toolParam); err != nil {
				return nil, fmt.Errorf("unmarshal tool param: %w", err)
			}
			tools = append(tools, anthropicsdk.ToolUnionParam{OfTool: &toolParam})
		}
		params.Tools = tools
	}

	apiMsg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic message: %w", err)
	}

	var text string
	var toolCalls []message.ToolCall
	for _, content := range apiMsg.Content {
		switch content.Type {
		case "text":
			text = content.Text
		case "tool_use":
			var args map[string]any
			if err := json.Unmarshal(content.Input, &args); err != nil {
				return nil, fmt.Errorf("parse tool input: %w", err)
			}
			toolCalls = append(toolCalls, message.ToolCall{ID: content.ID, Name: content.Name, Args: args})
		}
	}

	responseMsg := message.NewMessage(message.RoleAssistant, text)
	if len(toolCalls) > 0 {
		responseMsg.ToolCalls = toolCalls
	}
	return &GenerateResponse{Message: responseMsg}, nil
}
