package llm

import "testing"

func TestRegistryErrorsWithoutCredential(t *testing.T) {
	r := NewRegistry("", "", "", "")
	if _, err := r.OpenAI("gpt-4o-mini", 0.1); err == nil {
		t.Fatalf("expected error when OPENAI_API_KEY is missing")
	}
	if _, err := r.Anthropic("claude-3-5-sonnet-20241022", 0.1); err == nil {
		t.Fatalf("expected error when ANTHROPIC_API_KEY is missing")
	}
}

func TestRegistryCachesClientsByKey(t *testing.T) {
	r := NewRegistry("test-key", "", "", "")
	a, err := r.OpenAI("gpt-4o-mini", 0.1)
	if err != nil {
		t.Fatalf("OpenAI error: %v", err)
	}
	b, err := r.OpenAI("gpt-4o-mini", 0.1)
	if err != nil {
		t.Fatalf("OpenAI error: %v", err)
	}
	if a != b {
		t.Fatalf("expected the same cached client for identical (model, temperature)")
	}

	c, err := r.OpenAI("gpt-4o", 0.1)
	if err != nil {
		t.Fatalf("OpenAI error: %v", err)
	}
	if a == c {
		t.Fatalf("expected a distinct client for a different model")
	}
}
