package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/highroller/payroll-api/internal/models"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type employeeCounter interface {
	Count(ctx context.Context) (int, error)
}

// SessionPinger adapts a redis client ping to a plain error result.
type SessionPinger func(ctx context.Context) error

const healthCheckTimeout = 3 * time.Second

// HealthService probes the database and the session store.
type HealthService struct {
	db        pinger
	employees employeeCounter
	sessions  SessionPinger
	logger    *zap.Logger
	now       func() time.Time
}

// NewHealthService constructs a HealthService. sessions may be nil.
func NewHealthService(db pinger, employees employeeCounter, sessions SessionPinger, logger *zap.Logger) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{db: db, employees: employees, sessions: sessions, logger: logger, now: time.Now}
}

// Check runs every probe and reports the first failure per dependency.
func (s *HealthService) Check(ctx context.Context) models.HealthReport {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	report := models.HealthReport{
		Status:    models.HealthStatusHealthy,
		Checks:    map[string]string{},
		CheckedAt: s.now().UTC(),
	}
	fail := func(name string, err error) {
		report.Status = models.HealthStatusUnhealthy
		report.Checks[name] = "down"
		s.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
	}

	if err := s.db.PingContext(ctx); err != nil {
		fail("database", err)
	} else if count, err := s.employees.Count(ctx); err != nil {
		fail("database", err)
	} else {
		report.Checks["database"] = "up"
		report.EmployeeCount = count
	}

	if s.sessions != nil {
		if err := s.sessions(ctx); err != nil {
			fail("sessions", err)
		} else {
			report.Checks["sessions"] = "up"
		}
	}
	return report
}
