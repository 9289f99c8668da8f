package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"sort", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search pipeline duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"sort"},
	)

	SearchCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_candidates",
			Help:      "Candidates surviving radius gating and filters per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	IndexDocuments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_documents",
			Help:      "Records in the built vector index",
		},
		[]string{"backend"},
	)

	IndexBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_build_duration_seconds",
			Help:      "Vector index build duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"backend"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchCandidates)
	prometheus.MustRegister(IndexDocuments)
	prometheus.MustRegister(IndexBuildDuration)
	searchMetricsRegistered = true
}
