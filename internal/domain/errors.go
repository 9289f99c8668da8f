package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a malformed search request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnknownCandidate signals that the index returned an id absent from the catalog.
	ErrUnknownCandidate = errors.New("unknown candidate")
	// ErrIndexNotReady signals a search issued before the vector index was built.
	ErrIndexNotReady = errors.New("index not ready")
	// ErrSearchUnavailable signals a failed or timed out nearest-neighbour lookup.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals that the daily embedding token quota is spent.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)

// UnknownCandidateError wraps ErrUnknownCandidate with the offending id.
type UnknownCandidateError struct {
	ID string
}

func (e *UnknownCandidateError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownCandidate.Error(), e.ID)
}

func (e *UnknownCandidateError) Unwrap() error { return ErrUnknownCandidate }

// NewUnknownCandidate creates an unknown candidate error.
func NewUnknownCandidate(id string) error {
	return &UnknownCandidateError{ID: id}
}
