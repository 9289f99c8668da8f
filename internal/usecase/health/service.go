package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means search works but a dependency is failing.
	Degraded Status = "degraded"
	// Unhealthy means searches cannot be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status    Status
	Checks    map[string]CheckResult
	Count     int
	Indexed   int
	Timestamp time.Time
}

// Service coordinates health checks.
type Service struct {
	index     IndexState
	catalog   CatalogCounter
	db        DBPinger
	embedding EmbeddingChecker
	now       func() time.Time
}

// New creates a Service. db and embedding may be nil.
func New(index IndexState, catalog CatalogCounter, db DBPinger, embedding EmbeddingChecker) *Service {
	return &Service{
		index:     index,
		catalog:   catalog,
		db:        db,
		embedding: embedding,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Check runs every configured check. A not-ready index is unhealthy;
// other failures degrade.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"index": CheckOK}
	status := Healthy

	if !s.index.Ready() {
		checks["index"] = CheckError
		status = Unhealthy
	}
	if s.db != nil {
		checks["database"] = result(s.db.Ping(ctx))
	}
	if s.embedding != nil {
		checks["embedding"] = result(s.embedding.HealthCheck(ctx))
	}

	if status == Healthy {
		for _, v := range checks {
			if v == CheckError {
				status = Degraded
				break
			}
		}
	}

	return Report{
		Status:    status,
		Checks:    checks,
		Count:     s.catalog.Len(),
		Indexed:   s.index.Len(),
		Timestamp: s.now(),
	}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
