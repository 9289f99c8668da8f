package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace          = "orgrank"
	embeddingSubsystem = "embedding"
)

// Embedding metrics cover the provider at the bottom of the decorator chain
// (openai or local), the vector cache in front of it and the daily token quota.
// The cache and quota series stay empty when those layers are disabled.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "requests_total",
			Help:      "Provider calls made while indexing the catalog or embedding search queries, by outcome",
		},
		[]string{"provider", "model", "status"},
	)

	// Local hashing finishes in microseconds; remote providers take up to seconds.
	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Latency of one provider call, single text or batch",
			Buckets:   []float64{0.0005, 0.005, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "tokens_total",
			Help:      "Tokens reported by the provider, split into prompt and total; these count against the daily quota",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "errors_total",
			Help:      "Failed provider calls by cause (api_error, count_mismatch); searches surface them as 503",
		},
		[]string{"provider", "model", "error_type"},
	)

	EmbeddingQuotaTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "quota_tokens_remaining",
			Help:      "Tokens left in today's UTC quota window, -1 when no quota is configured",
		},
		[]string{"provider"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: embeddingSubsystem,
			Name:      "cache_total",
			Help:      "Valkey vector cache lookups keyed by model and text hash; a hit skips the provider call",
		},
		[]string{"result"}, // hit | miss
	)
)

var embMetricsRegistered bool

// RegisterEmbeddingMetrics registers the embedding collectors with the default registry.
// Safe to call more than once.
func RegisterEmbeddingMetrics() {
	if embMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingTokensTotal,
		EmbeddingErrorsTotal,
		EmbeddingQuotaTokensRemaining,
		EmbeddingCacheTotal,
	)
	embMetricsRegistered = true
}
