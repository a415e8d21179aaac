package rules

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stacksage/stacksage/vector"
)

// VectorStore is an in-memory embedding store for the Rules Index.
//
// Unlike contrib/vector/inmemory's teacher implementation, which silently
// skips dimension-mismatched embeddings at Search time, this store rejects a
// mismatched embedding the moment it is added and fails loudly if a
// persisted snapshot is loaded against an embedder of a different
// dimensionality (SPEC_FULL.md §2's embedding-dimension-metadata
// requirement).
type VectorStore struct {
	mu         sync.RWMutex
	dimension  int
	embeddings map[string]*vector.Embedding
}

// NewVectorStore creates an empty store. dimension is fixed on the first
// AddEmbedding call if not given here (dimension == 0 means "learn it").
func NewVectorStore(dimension int) *VectorStore {
	return &VectorStore{
		dimension:  dimension,
		embeddings: make(map[string]*vector.Embedding),
	}
}

// AddEmbedding stores emb, or fails loudly if emb's dimensionality does not
// match the store's fixed dimension.
func (s *VectorStore) AddEmbedding(ctx context.Context, emb *vector.Embedding) error {
	if emb == nil {
		return fmt.Errorf("embedding cannot be nil")
	}
	if emb.ID == "" {
		return fmt.Errorf("embedding ID cannot be empty")
	}
	if len(emb.Vector) == 0 {
		return fmt.Errorf("embedding vector cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension == 0 {
		s.dimension = len(emb.Vector)
	} else if len(emb.Vector) != s.dimension {
		return fmt.Errorf("%w: embedding %q has dimension %d, index expects %d",
			errDimensionMismatch, emb.ID, len(emb.Vector), s.dimension)
	}

	s.embeddings[emb.ID] = emb
	return nil
}

// Search returns the topK embeddings most similar to queryVector by cosine
// similarity. A dimension mismatch on the query itself is also an error
// (never silently skipped).
func (s *VectorStore) Search(ctx context.Context, queryVector []float32, topK int) ([]*vector.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if s.dimension != 0 && len(queryVector) != s.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			errDimensionMismatch, len(queryVector), s.dimension)
	}
	if topK <= 0 {
		topK = 10
	}

	type scored struct {
		emb   *vector.Embedding
		score float32
	}
	results := make([]scored, 0, len(s.embeddings))
	for _, emb := range s.embeddings {
		results = append(results, scored{emb: emb, score: vector.CosineSimilarity(queryVector, emb.Vector)})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].score > results[j].score })

	if topK > len(results) {
		topK = len(results)
	}
	out := make([]*vector.Embedding, topK)
	for i := 0; i < topK; i++ {
		out[i] = results[i].emb
	}
	return out, nil
}

// ScoredHit pairs a stored embedding with its similarity to some query.
type ScoredHit struct {
	Embedding *vector.Embedding
	Score     float32
}

// SearchScored is Search but keeps the similarity score alongside each hit,
// for callers (like the hybrid Engine) that need to fuse it with another
// signal instead of only ranking by it.
func (s *VectorStore) SearchScored(ctx context.Context, queryVector []float32, topK int) ([]ScoredHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if s.dimension != 0 && len(queryVector) != s.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			errDimensionMismatch, len(queryVector), s.dimension)
	}
	if topK <= 0 {
		topK = 10
	}

	hits := make([]ScoredHit, 0, len(s.embeddings))
	for _, emb := range s.embeddings {
		hits = append(hits, ScoredHit{Embedding: emb, Score: vector.CosineSimilarity(queryVector, emb.Vector)})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if topK > len(hits) {
		topK = len(hits)
	}
	return hits[:topK], nil
}

// Dimension returns the store's fixed embedding dimensionality, or 0 if no
// embedding has been added yet.
func (s *VectorStore) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Clear removes all embeddings but keeps the fixed dimension.
func (s *VectorStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeddings = make(map[string]*vector.Embedding)
	return nil
}

// Count returns the number of stored embeddings.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.embeddings), nil
}

// Snapshot returns a copy of every stored embedding, for persistence.
func (s *VectorStore) Snapshot() []*vector.Embedding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*vector.Embedding, 0, len(s.embeddings))
	for _, emb := range s.embeddings {
		cp := *emb
		cp.Vector = append([]float32(nil), emb.Vector...)
		out = append(out, &cp)
	}
	return out
}
