package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/orgrank/internal/domain"
)

// Error codes returned in the "code" field of error responses.
const (
	codeBadRequest       = "bad_request"
	codeNotFound         = "not_found"
	codeQuotaExceeded    = "embedding_quota_exceeded"
	codeIndexNotReady    = "index_not_ready"
	codeUnavailable      = "search_unavailable"
	codeProviderError    = "embedding_provider_error"
	codeUnknownCandidate = "unknown_candidate"
	codeInternal         = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusTooManyRequests, codeQuotaExceeded),
		sentinelHandler(domain.ErrIndexNotReady, http.StatusServiceUnavailable, codeIndexNotReady),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusServiceUnavailable, codeProviderError),
		sentinelHandler(domain.ErrSearchUnavailable, http.StatusServiceUnavailable, codeUnavailable),
		sentinelHandler(domain.ErrUnknownCandidate, http.StatusInternalServerError, codeUnknownCandidate),
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Request validation errors are the exception: their detail is the caller's own input.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrIndexNotReady,
		domain.ErrEmbeddingProviderError,
		domain.ErrSearchUnavailable,
		domain.ErrUnknownCandidate,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
