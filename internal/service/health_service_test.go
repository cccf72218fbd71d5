package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/highroller/payroll-api/internal/models"
)

type pingStub struct{ err error }

func (p pingStub) PingContext(ctx context.Context) error { return p.err }

type counterStub struct {
	count int
	err   error
}

func (c counterStub) Count(ctx context.Context) (int, error) { return c.count, c.err }

func TestHealthServiceHealthy(t *testing.T) {
	svc := NewHealthService(pingStub{}, counterStub{count: 12}, func(ctx context.Context) error { return nil }, nil)

	report := svc.Check(context.Background())
	assert.True(t, report.Healthy())
	assert.Equal(t, 12, report.EmployeeCount)
	assert.Equal(t, "up", report.Checks["database"])
	assert.Equal(t, "up", report.Checks["sessions"])
}

func TestHealthServiceDatabaseDown(t *testing.T) {
	svc := NewHealthService(pingStub{err: errors.New("refused")}, counterStub{count: 12}, nil, nil)

	report := svc.Check(context.Background())
	assert.Equal(t, models.HealthStatusUnhealthy, report.Status)
	assert.Equal(t, "down", report.Checks["database"])
	assert.Zero(t, report.EmployeeCount)
	_, hasSessions := report.Checks["sessions"]
	assert.False(t, hasSessions)
}

func TestHealthServiceCountFailure(t *testing.T) {
	svc := NewHealthService(pingStub{}, counterStub{err: errors.New("relation missing")}, nil, nil)
	assert.False(t, svc.Check(context.Background()).Healthy())
}
