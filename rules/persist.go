package rules

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/stacksage/stacksage/vector"
)

// snapshot is the on-disk representation of a built Rules Index, produced by
// cmd/rulesbuild and loaded at process startup so a live process never pays
// the embedding cost of a full Comprehensive Rules re-index.
type snapshot struct {
	Dimension  int
	Chunks     []Chunk
	Embeddings []*vector.Embedding
}

// Save writes the engine's full state to path in gob format.
func (e *Engine) Save(path string) error {
	e.mu.RLock()
	snap := snapshot{
		Dimension:  e.vectors.Dimension(),
		Chunks:     make([]Chunk, 0, len(e.chunks)),
		Embeddings: e.vectors.Snapshot(),
	}
	for _, c := range e.chunks {
		snap.Chunks = append(snap.Chunks, c)
	}
	e.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// LoadEngine reads a snapshot written by Save and rebuilds an Engine around
// embedder. It fails loudly (rather than silently re-embedding or dropping
// chunks) if the snapshot's embedding dimension does not match embedder's
// dimension, since a dimension mismatch means every stored vector is
// meaningless for cosine similarity against a query embedded with a
// different model.
func LoadEngine(path string, embedder Embedder) (*Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	if snap.Dimension != 0 && snap.Dimension != embedder.Dimension() {
		return nil, fmt.Errorf("%w: snapshot embedded at dimension %d, active embedder produces dimension %d",
			errDimensionMismatch, snap.Dimension, embedder.Dimension())
	}

	e := &Engine{
		chunker:  NewRuleChunker(),
		embedder: embedder,
		vectors:  NewVectorStore(snap.Dimension),
		keyword:  newBM25(),
		chunks:   make(map[string]Chunk, len(snap.Chunks)),
	}

	ctx := context.Background()
	for _, c := range snap.Chunks {
		e.chunks[c.ID] = c
		e.keyword.add(c)
	}
	for _, emb := range snap.Embeddings {
		if err := e.vectors.AddEmbedding(ctx, emb); err != nil {
			return nil, fmt.Errorf("restore embedding %q: %w", emb.ID, err)
		}
	}
	return e, nil
}
