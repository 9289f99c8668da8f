package health

import "context"

// IndexState reports vector index readiness.
type IndexState interface {
	Ready() bool
	Len() int
}

// CatalogCounter reports the number of loaded records.
type CatalogCounter interface {
	Len() int
}

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
