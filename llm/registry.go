package llm

import (
	"fmt"
	"sync"
)

// registryKey identifies a distinct provider configuration. Two agents that
// ask for the same model and temperature share one underlying client rather
// than constructing a new SDK client (and its own HTTP transport) per call.
type registryKey struct {
	provider    string
	model       string
	temperature float64
}

// Registry caches constructed Client instances by provider/model/temperature.
// It never evicts: the key space is bounded by the handful of distinct
// (model, temperature) pairs Stack Sage's agents actually use.
type Registry struct {
	mu        sync.Mutex
	clients   map[registryKey]Client
	openaiKey string
	openaiURL string
	claudeKey string
	claudeURL string
}

// NewRegistry builds a registry that will lazily construct providers using
// the given credentials.
func NewRegistry(openaiKey, openaiBaseURL, claudeKey, claudeBaseURL string) *Registry {
	return &Registry{
		clients:   make(map[registryKey]Client),
		openaiKey: openaiKey,
		openaiURL: openaiBaseURL,
		claudeKey: claudeKey,
		claudeURL: claudeBaseURL,
	}
}

// OpenAI returns a shared Client for the given model/temperature pair.
func (r *Registry) OpenAI(model string, temperature float64) (Client, error) {
	return r.get(registryKey{provider: "openai", model: model, temperature: temperature}, func() (Client, error) {
		if r.openaiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not configured")
		}
		cfg := DefaultOpenAIConfig()
		cfg.APIKey = r.openaiKey
		cfg.BaseURL = r.openaiURL
		cfg.Model = model
		cfg.Temperature = temperature
		return NewOpenAIProvider(cfg), nil
	})
}

// Anthropic returns a shared Client for the given model/temperature pair.
func (r *Registry) Anthropic(model string, temperature float64) (Client, error) {
	return r.get(registryKey{provider: "anthropic", model: model, temperature: temperature}, func() (Client, error) {
		if r.claudeKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not configured")
		}
		cfg := DefaultAnthropicConfig()
		cfg.APIKey = r.claudeKey
		cfg.BaseURL = r.claudeURL
		cfg.Model = model
		cfg.Temperature = temperature
		return NewAnthropicProvider(cfg), nil
	})
}

func (r *Registry) get(key registryKey, build func() (Client, error)) (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[key]; ok {
		return c, nil
	}
	c, err := build()
	if err != nil {
		return nil, err
	}
	r.clients[key] = c
	return c, nil
}
