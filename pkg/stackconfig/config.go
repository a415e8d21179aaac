// Package stackconfig loads and validates the environment-level configuration
// options named in SPEC_FULL.md §6.
package stackconfig

import (
	"os"
	"strconv"
	"strings"
)

// EmbeddingMode selects where the Rules Index computes embeddings.
type EmbeddingMode string

const (
	EmbeddingModeHosted EmbeddingMode = "hosted"
	EmbeddingModeLocal  EmbeddingMode = "local"
)

// Config is the flat set of environment-recognized options.
type Config struct {
	LLMProvider          string // "openai" or "anthropic"
	LLMModel             string
	LLMTemperature       float64
	PlannerTemperature   float64
	InteractionTemp      float64
	EmbeddingMode        EmbeddingMode
	MetaSearchCredential string
	MetaSearchURL        string
	RulesIndexPath       string
	Verbose              bool

	CardCacheCapacity  int
	RulesCacheCapacity int
	MetaCacheFreshTTL  int // seconds
	MetaCacheStaleTTL  int // seconds
}

// FromEnv loads Config from the process environment, applying spec defaults
// for anything unset.
func FromEnv() *Config {
	cfg := &Config{
		LLMProvider:          getEnv("LLM_PROVIDER", "openai"),
		LLMModel:             getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTemperature:       getEnvFloat("LLM_TEMPERATURE", 0.1),
		PlannerTemperature:   getEnvFloat("PLANNER_TEMPERATURE", 0.0),
		InteractionTemp:      getEnvFloat("INTERACTION_TEMPERATURE", 0.1),
		EmbeddingMode:        EmbeddingMode(getEnv("EMBEDDING_MODE", string(EmbeddingModeLocal))),
		MetaSearchCredential: os.Getenv("META_SEARCH_CREDENTIAL"),
		MetaSearchURL:        getEnv("META_SEARCH_URL", "https://www.googleapis.com/customsearch/v1"),
		RulesIndexPath:       getEnv("RULES_INDEX_PATH", "rules_index.gob"),
		Verbose:              getEnvBool("VERBOSE", false),
		CardCacheCapacity:    getEnvInt("CARD_CACHE_CAPACITY", 1000),
		RulesCacheCapacity:   getEnvInt("RULES_QUERY_CACHE_CAPACITY", 100),
		MetaCacheFreshTTL:    getEnvInt("META_CACHE_FRESH_SECONDS", 24*3600),
		MetaCacheStaleTTL:    getEnvInt("META_CACHE_STALE_SECONDS", 7*24*3600),
	}
	return cfg
}

// Validate checks the loaded configuration using the same accumulate-and-join
// discipline as the rest of the corpus's configuration validators.
func (c *Config) Validate() error {
	v := NewValidator()
	v.RequireNonEmpty("LLM_MODEL", c.LLMModel)
	v.ValidateOneOf("LLM_PROVIDER", c.LLMProvider, "openai", "anthropic")
	v.ValidateFloatRange("LLM_TEMPERATURE", c.LLMTemperature, 0.0, 2.0)
	v.ValidateFloatRange("PLANNER_TEMPERATURE", c.PlannerTemperature, 0.0, 2.0)
	v.ValidateOneOf("EMBEDDING_MODE", string(c.EmbeddingMode), string(EmbeddingModeHosted), string(EmbeddingModeLocal))
	v.RequirePositive("CARD_CACHE_CAPACITY", c.CardCacheCapacity)
	v.RequirePositive("RULES_QUERY_CACHE_CAPACITY", c.RulesCacheCapacity)
	return v.Error()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}
