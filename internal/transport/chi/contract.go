package chi

import (
	"context"

	"github.com/kailas-cloud/orgrank/internal/domain/org"
	"github.com/kailas-cloud/orgrank/internal/domain/search/request"
	"github.com/kailas-cloud/orgrank/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/orgrank/internal/usecase/health"
)

// Searcher runs the ranking pipeline.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (*result.Page, error)
}

// Catalog exposes the loaded records.
type Catalog interface {
	All() []org.Record
	Get(id string) (*org.Record, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
