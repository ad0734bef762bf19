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
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the session store is unreachable.
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

const checkDatabase = "database"

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	timeout time.Duration
}

// New creates a Service. timeout bounds each ping; zero means the caller's deadline.
func New(db DBPinger, timeout time.Duration) *Service {
	return &Service{db: db, timeout: timeout}
}

// Check pings the session store. Without it no session operation can succeed,
// so a failing store makes the service Unhealthy rather than Degraded.
func (s *Service) Check(ctx context.Context) Report {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	checks := map[string]CheckResult{checkDatabase: CheckOK}
	if err := s.db.Ping(ctx); err != nil {
		checks[checkDatabase] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	return Report{Status: Healthy, Checks: checks}
}
