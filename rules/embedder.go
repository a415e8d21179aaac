package rules

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/stacksage/stacksage/vector"
)

// Embedder produces fixed-dimension vectors for chunk text and queries.
// This mirrors vector.Embedder from the shared vector package but is scoped
// to the rules package so callers never need to import the generic package
// directly.
type Embedder = vector.Embedder

// OpenAIEmbedder implements Embedder against OpenAI's hosted embeddings API,
// used when EMBEDDING_MODE=hosted. Adapted from
// contrib/embedder/openai/openai.go.
type OpenAIEmbedder struct {
	client    openaisdk.Client
	model     openaisdk.EmbeddingModel
	dimension int
}

// NewOpenAIEmbedder builds a hosted embedder.
func NewOpenAIEmbedder(apiKey, baseURL string, model openaisdk.EmbeddingModel, dimension int) *OpenAIEmbedder {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIEmbedder{
		client:    openaisdk.NewClient(opts...),
		model:     model,
		dimension: dimension,
	}
}

// Dimension returns the configured embedding width.
func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

// Embed embeds a single string.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vecs[0], nil
}

// EmbedBatch embeds multiple strings in one request.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	params := openaisdk.EmbeddingNewParams{
		Model: e.model,
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	}
	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = convertVector(d.Embedding, e.dimension)
	}
	return out, nil
}

func convertVector(input []float64, expected int) []float32 {
	vec := make([]float32, expected)
	for i := 0; i < len(input) && i < expected; i++ {
		vec[i] = float32(input[i])
	}
	return vec
}

// LocalEmbedder is a deterministic, dependency-free stand-in for
// EMBEDDING_MODE=local. It hashes each token into a fixed-width vector (a feature-hashing bag-of-words), which gives stable,
// reproducible cosine similarity for tests and for offline environments
// with no embeddings API credential. It is not a semantic embedding model;
// SPEC_FULL.md's hybrid formula tolerates a weaker vector signal because
// the BM25 side carries most of the exact-terminology matching load for
// rules text.
type LocalEmbedder struct {
	dimension int
}

// NewLocalEmbedder builds a hashing embedder of the given width.
func NewLocalEmbedder(dimension int) *LocalEmbedder {
	if dimension <= 0 {
		dimension = 256
	}
	return &LocalEmbedder{dimension: dimension}
}

// Dimension returns the configured width.
func (e *LocalEmbedder) Dimension() int { return e.dimension }

// Embed hashes text into a unit-length vector.
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	for _, tok := range tokenize(text) {
		h := sha256.Sum256([]byte(tok))
		idx := binary.BigEndian.Uint32(h[0:4]) % uint32(e.dimension)
		sign := float32(1)
		if h[4]%2 == 1 {
			sign = -1
		}
		vec[idx] += sign
	}
	return vector.Normalize(vec), nil
}

// EmbedBatch embeds each text independently.
func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
