package orgrank

import "github.com/kailas-cloud/orgrank/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrIndexNotReady          = domain.ErrIndexNotReady
	ErrSearchUnavailable      = domain.ErrSearchUnavailable
	ErrUnknownCandidate       = domain.ErrUnknownCandidate
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
)
