package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/stacksage/stacksage/vector"
)

func TestVectorStoreRejectsMismatchedDimensionOnAdd(t *testing.T) {
	store := NewVectorStore(0)
	ctx := context.Background()

	if err := store.AddEmbedding(ctx, &vector.Embedding{ID: "a", Vector: []float32{1, 0, 0}}); err != nil {
		t.Fatalf("first add should learn the dimension: %v", err)
	}

	err := store.AddEmbedding(ctx, &vector.Embedding{ID: "b", Vector: []float32{1, 0}})
	if err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
	if !errors.Is(err, errDimensionMismatch) {
		t.Fatalf("expected errDimensionMismatch, got %v", err)
	}
}

func TestVectorStoreRejectsMismatchedDimensionOnSearch(t *testing.T) {
	store := NewVectorStore(3)
	ctx := context.Background()
	if err := store.AddEmbedding(ctx, &vector.Embedding{ID: "a", Vector: []float32{1, 0, 0}}); err != nil {
		t.Fatalf("AddEmbedding error: %v", err)
	}

	_, err := store.Search(ctx, []float32{1, 0}, 5)
	if !errors.Is(err, errDimensionMismatch) {
		t.Fatalf("expected errDimensionMismatch, got %v", err)
	}
}

func TestVectorStoreSearchRanksBySimilarity(t *testing.T) {
	store := NewVectorStore(2)
	ctx := context.Background()
	must := func(err error) {
		if err != nil {
			t.Fatalf("AddEmbedding error: %v", err)
		}
	}
	must(store.AddEmbedding(ctx, &vector.Embedding{ID: "close", Vector: []float32{1, 0}}))
	must(store.AddEmbedding(ctx, &vector.Embedding{ID: "far", Vector: []float32{0, 1}}))

	hits, err := store.SearchScored(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("SearchScored error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Embedding.ID != "close" {
		t.Fatalf("expected closest embedding first, got %+v", hits)
	}
}

func TestVectorStoreSnapshotIsIndependentCopy(t *testing.T) {
	store := NewVectorStore(1)
	ctx := context.Background()
	if err := store.AddEmbedding(ctx, &vector.Embedding{ID: "a", Vector: []float32{1}}); err != nil {
		t.Fatalf("AddEmbedding error: %v", err)
	}
	snap := store.Snapshot()
	snap[0].Vector[0] = 99

	hits, err := store.SearchScored(ctx, []float32{1}, 1)
	if err != nil {
		t.Fatalf("SearchScored error: %v", err)
	}
	if hits[0].Embedding.Vector[0] == 99 {
		t.Fatalf("snapshot mutation leaked into store")
	}
}
