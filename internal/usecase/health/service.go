// Package health aggregates component checks for the health endpoint.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
	// CheckAbsent indicates a component that is legitimately not there
	// (the vector model before the first rebuild).
	CheckAbsent CheckResult = "absent"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Pinger checks a dependency's connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service coordinates health checks.
type Service struct {
	db           Pinger
	cache        Pinger // nil when the query cache is disabled
	modelPresent bool
}

// New creates a Service. cache may be nil.
func New(db Pinger, cache Pinger, modelPresent bool) *Service {
	return &Service{db: db, cache: cache, modelPresent: modelPresent}
}

// Check runs health checks against all components. An absent model is
// reported but does not degrade the service: search still works through
// the substring fallback.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	if s.modelPresent {
		checks["model"] = CheckOK
	} else {
		checks["model"] = CheckAbsent
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
