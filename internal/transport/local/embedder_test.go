package local

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/orgrank/internal/domain"
)

func cosine(t *testing.T, a, b []float32) float64 {
	t.Helper()
	s, err := domain.Dot(a, b)
	if err != nil {
		t.Fatalf("dot: %v", err)
	}
	return s
}

func TestEmbed_Deterministic(t *testing.T) {
	e := New(64)
	a, err := e.Embed(context.Background(), "Veterans housing support")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := e.Embed(context.Background(), "veterans HOUSING, support!")
	if len(a.Embedding) != 64 {
		t.Fatalf("expected 64 dims, got %d", len(a.Embedding))
	}
	for i := range a.Embedding {
		if a.Embedding[i] != b.Embedding[i] {
			t.Fatalf("case and punctuation must not change the vector (dim %d)", i)
		}
	}
	if a.TotalTokens != 3 {
		t.Errorf("expected 3 tokens, got %d", a.TotalTokens)
	}
}

func TestEmbed_SimilarTextScoresHigher(t *testing.T) {
	e := New(DefaultDimensions)
	ctx := context.Background()
	q, _ := e.Embed(ctx, "food bank for families")
	near, _ := e.Embed(ctx, "community food bank serving families")
	far, _ := e.Embed(ctx, "youth soccer league")

	if cosine(t, q.Embedding, near.Embedding) <= cosine(t, q.Embedding, far.Embedding) {
		t.Error("overlapping text must be closer than unrelated text")
	}
}

func TestEmbed_EmptyText(t *testing.T) {
	res, err := New(8).Embed(context.Background(), "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range res.Embedding {
		if v != 0 {
			t.Fatalf("empty text must give the zero vector, got %v", res.Embedding)
		}
	}
	if res.TotalTokens != 0 {
		t.Errorf("expected 0 tokens, got %d", res.TotalTokens)
	}
}

func TestBatchEmbed_MatchesSingle(t *testing.T) {
	e := New(32)
	ctx := context.Background()
	texts := []string{"animal rescue", "arts education"}

	batch, err := e.BatchEmbed(ctx, texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Embeddings) != 2 || batch.TotalTokens != 4 {
		t.Fatalf("unexpected batch: %d vectors, %d tokens", len(batch.Embeddings), batch.TotalTokens)
	}
	for i, text := range texts {
		single, _ := e.Embed(ctx, text)
		for d := range single.Embedding {
			if single.Embedding[d] != batch.Embeddings[i][d] {
				t.Fatalf("batch vector %d differs from single at dim %d", i, d)
			}
		}
	}
}

func TestEmbed_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(8).Embed(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := New(8).BatchEmbed(ctx, []string{"x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNew_DefaultDimensions(t *testing.T) {
	if got := New(0).Dimensions(); got != DefaultDimensions {
		t.Errorf("expected %d, got %d", DefaultDimensions, got)
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Kids' after-school program (K-12)")
	want := []string{"kids", "after", "school", "program", "k", "12"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
