package vectorindex

import (
	"context"
	"strings"

	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/domain/org"
)

// keywordEmbedder maps text onto a fixed vocabulary, one axis per word.
type keywordEmbedder struct {
	vocab []string
	calls int
	err   error
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{vocab: []string{"housing", "veterans", "food", "youth"}}
}

func (k *keywordEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	k.calls++
	if k.err != nil {
		return domain.EmbeddingResult{}, k.err
	}
	text = strings.ToLower(text)
	vec := make([]float32, len(k.vocab)+1)
	vec[len(k.vocab)] = 0.01
	for i, w := range k.vocab {
		if strings.Contains(text, w) {
			vec[i] = 1
		}
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: len(strings.Fields(text))}, nil
}

func testRecords() []org.Record {
	return []org.Record{
		{ID: "a", Name: "Bay Housing", MissionText: "housing for families", Causes: []string{"housing"}},
		{ID: "b", Name: "Vet Aid", MissionText: "veterans support", Causes: []string{"veterans"}},
		{ID: "c", Name: "Food Bank", MissionText: "food for all", Causes: []string{"food"}},
	}
}
