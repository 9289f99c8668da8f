package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects query embedding token usage for a single search request.
// The handler stores a pointer in the context, the vector index writes to it,
// and the handler reports it in the X-Embedding-Tokens header.
type EmbeddingUsage struct {
	TotalTokens int
	Used        bool // set even on a cache hit that consumed no tokens
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext returns the collector from ctx, or nil.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records consumed tokens. Safe on a nil receiver.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Used = true
	}
}
