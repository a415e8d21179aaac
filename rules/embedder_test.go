package rules

import (
	"context"
	"testing"

	"github.com/stacksage/stacksage/vector"
)

func TestLocalEmbedderIsDeterministic(t *testing.T) {
	e := NewLocalEmbedder(64)
	ctx := context.Background()

	v1, err := e.Embed(ctx, "Flying is a keyword ability.")
	if err != nil {
		t.Fatalf("Embed error: %v", err)
	}
	v2, err := e.Embed(ctx, "Flying is a keyword ability.")
	if err != nil {
		t.Fatalf("Embed error: %v", err)
	}
	if len(v1) != 64 {
		t.Fatalf("expected dimension 64, got %d", len(v1))
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("expected identical vectors for identical text, differ at %d", i)
		}
	}
}

func TestLocalEmbedderSimilarTextsAreCloser(t *testing.T) {
	e := NewLocalEmbedder(128)
	ctx := context.Background()

	a, _ := e.Embed(ctx, "Flying is a keyword ability that restricts blocking")
	b, _ := e.Embed(ctx, "Flying keyword ability restricts which creatures can block")
	c, _ := e.Embed(ctx, "The mulligan rule lets a player draw a new opening hand")

	simAB := vector.CosineSimilarity(a, b)
	simAC := vector.CosineSimilarity(a, c)
	if simAB <= simAC {
		t.Fatalf("expected related texts to be more similar: AB=%f AC=%f", simAB, simAC)
	}
}

func TestLocalEmbedderDefaultsDimension(t *testing.T) {
	e := NewLocalEmbedder(0)
	if e.Dimension() != 256 {
		t.Fatalf("expected default dimension 256, got %d", e.Dimension())
	}
}
