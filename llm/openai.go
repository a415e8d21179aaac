package llm

import (
	"context"
	"encoding/json"
	"fmt"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/stacksage/stacksage/message"
)

// OpenAIConfig holds the settings for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64
}

// DefaultOpenAIConfig returns the provider's defaults before caller overrides.
func DefaultOpenAIConfig() *OpenAIConfig {
	return &OpenAIConfig{
		Model:     "gpt-4o-mini",
		MaxTokens: 2000,
	}
}

// OpenAIProvider implements Client against the OpenAI chat completions API,
// adapted from contrib/provider/openai/openai.go with GenerateStream removed
// (Stack Sage's agents only need synchronous completions).
type OpenAIProvider struct {
	config *OpenAIConfig
	client openaisdk.Client
}

// NewOpenAIProvider builds a client from cfg.
func NewOpenAIProvider(cfg *OpenAIConfig) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIProvider{config: cfg, client: openaisdk.NewClient(opts...)}
}

// Generate implements Client.
func (p *OpenAIProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("generate request cannot be nil")
	}

	msgs := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case message.RoleSystem:
			msgs = append(msgs, openaisdk.SystemMessage(msg.Content))
		case message.RoleUser:
			msgs = append(msgs, openaisdk.UserMessage(msg.Content))
		case message.RoleAssistant:
			assistantMsg := openaisdk.AssistantMessage(msg.Content)
			if len(msg.ToolCalls) > 0 {
				toolCalls, err := encodeOpenAIToolCalls(msg.ToolCalls)
				if err != nil {
					return nil, fmt.Errorf("encode tool calls: %w", err)
				}
				if assistantMsg.OfAssistant != nil {
					unionCalls := make([]openaisdk.ChatCompletionMessageToolCallUnionParam, len(toolCalls))
					for i, tc := range toolCalls {
						tc := tc
						unionCalls[i] = openaisdk.ChatCompletionMessageToolCallUnionParam{OfFunction: &tc}
					}
					assistantMsg.OfAssistant.ToolCalls = unionCalls
				}
			}
			msgs = append(msgs, assistantMsg)
		case message.RoleTool:
			msgs = append(msgs, openaisdk.ToolMessage(msg.Content, msg.ToolID))
		}
	}

	model := p.config.Model
	if model == "" {
		model = string(openaisdk.ChatModelGPT4oMini)
	}
	params := openaisdk.ChatCompletionNewParams{
		Messages: msgs,
		Model:    openaisdk.ChatModel(model),
	}

	temp := req.Temperature
	if temp == 0 {
		temp = p.config.Temperature
	}
	if temp > 0 {
		params.Temperature = param.NewOpt(temp)
	}
	if p.config.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(p.config.MaxTokens)
	}

	if len(req.Tools) > 0 {
		tools, err := encodeOpenAITools(req.Tools)
		if err != nil {
			return nil, err
		}
		params.Tools = tools
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from openai")
	}

	choice := completion.Choices[0]
	responseMsg := message.NewMessage(message.RoleAssistant, choice.Message.Content)
	if len(choice.Message.ToolCalls) > 0 {
		toolCalls := make([]message.ToolCall, len(choice.Message.ToolCalls))
		for i, tc := range choice.Message.ToolCalls {
			var args map[string]any
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("parse tool arguments: %w", err)
			}
			toolCalls[i] = message.ToolCall{ID: tc.ID, Name: tc.Function.Name, Args: args}
		}
		responseMsg.ToolCalls = toolCalls
	}

	return &GenerateResponse{Message: responseMsg}, nil
}

func encodeOpenAIToolCalls(calls []message.ToolCall) ([]openaisdk.ChatCompletionMessageFunctionToolCallParam, error) {
	out := make([]openaisdk.ChatCompletionMessageFunctionToolCallParam, 0, len(calls))
	for _, call := range calls {
		argsJSON, err := json.Marshal(call.Args)
		if err != nil {
			return nil, fmt.Errorf("marshal tool call args: %w", err)
		}
		out = append(out, openaisdk.ChatCompletionMessageFunctionToolCallParam{
			ID: call.ID,
			Function: openaisdk.ChatCompletionMessageFunctionToolCallFunctionParam{
				Name:      call.Name,
				Arguments: string(argsJSON),
			},
		})
	}
	return out, nil
}

func encodeOpenAITools(tools []map[string]any) ([]openaisdk.ChatCompletionToolUnionParam, error) {
	out := make([]openaisdk.ChatCompletionToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		raw, err := json.Marshal(tool)
		if err != nil {
			return nil, fmt.Errorf("marshal tool: %w", err)
		}
		var toolParam openaisdk.ChatCompletionToolUnionParam
		if err := json.Unmarshal(raw, &toolParam); err != nil {
			return nil, fmt.Errorf("unmarshal tool param: %w", err)
		}
		out = append(out, toolParam)
	}
	return out, nil
}
