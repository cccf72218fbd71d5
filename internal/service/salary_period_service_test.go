package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/highroller/payroll-api/internal/dto"
	"github.com/highroller/payroll-api/internal/models"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
)

type salaryPeriodRepoStub struct {
	periods map[int64]*models.SalaryPeriod
	nextID  int64
}

func newSalaryPeriodRepoStub() *salaryPeriodRepoStub {
	return &salaryPeriodRepoStub{periods: make(map[int64]*models.SalaryPeriod), nextID: 1}
}

func (r *salaryPeriodRepoStub) Create(ctx context.Context, period *models.SalaryPeriod) error {
	period.ID = r.nextID
	r.nextID++
	r.periods[period.ID] = period
	return nil
}

func (r *salaryPeriodRepoStub) FindByID(ctx context.Context, id int64) (*models.SalaryPeriod, error) {
	if p, ok := r.periods[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (r *salaryPeriodRepoStub) ListByEmployee(ctx context.Context, employeeID int64) ([]models.SalaryPeriod, error) {
	var out []models.SalaryPeriod
	for _, p := range r.periods {
		if p.EmployeeID == employeeID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *salaryPeriodRepoStub) Delete(ctx context.Context, id int64) error {
	if _, ok := r.periods[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.periods, id)
	return nil
}

type employeeExistenceStub map[int64]bool

func (e employeeExistenceStub) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return e[id], nil
}

func int64Ptr(v int64) *int64 { return &v }

func salaryRequest() dto.CreateSalaryPeriodRequest {
	return dto.CreateSalaryPeriodRequest{
		EmployeeID:   int64Ptr(42),
		PeriodFrom:   "2024-05-01",
		PeriodTo:     "2024-05-31",
		MonthlyRate:  floatPtr(85000),
		RegularHours: floatPtr(184),
		GrossPay:     floatPtr(85000),
		NetPay:       floatPtr(72000),
	}
}

func TestSalaryPeriodCreateStoresAmountsAsSupplied(t *testing.T) {
	repo := newSalaryPeriodRepoStub()
	svc := NewSalaryPeriodService(repo, employeeExistenceStub{42: true}, nil)

	period, err := svc.Create(context.Background(), salaryRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), period.ID)
	assert.Equal(t, 72000.0, *period.NetPay)
	assert.Equal(t, "2024-05-31", period.PeriodTo.Format("2006-01-02"))
}

func TestSalaryPeriodHourCeilings(t *testing.T) {
	svc := NewSalaryPeriodService(newSalaryPeriodRepoStub(), employeeExistenceStub{42: true}, nil)

	cases := []struct {
		name  string
		mut   func(*dto.CreateSalaryPeriodRequest)
		valid bool
	}{
		{"zero regular", func(r *dto.CreateSalaryPeriodRequest) { r.RegularHours = floatPtr(0) }, true},
		{"regular over ceiling", func(r *dto.CreateSalaryPeriodRequest) { r.RegularHours = floatPtr(184.01) }, false},
		{"overtime at ceiling", func(r *dto.CreateSalaryPeriodRequest) { r.OvertimeHours = floatPtr(80) }, true},
		{"overtime over ceiling", func(r *dto.CreateSalaryPeriodRequest) { r.OvertimeHours = floatPtr(80.5) }, false},
		{"holiday negative", func(r *dto.CreateSalaryPeriodRequest) { r.HolidayHours = floatPtr(-1) }, false},
		{"holiday at ceiling", func(r *dto.CreateSalaryPeriodRequest) { r.HolidayHours = floatPtr(64) }, true},
		{"night diff over ceiling", func(r *dto.CreateSalaryPeriodRequest) { r.NightDiffHours = floatPtr(185) }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := salaryRequest()
			tc.mut(&req)
			_, err := svc.Create(context.Background(), req)
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, appErrors.ErrValidation.Is(err))
		})
	}
}

func TestSalaryPeriodCreateRequiresFields(t *testing.T) {
	svc := NewSalaryPeriodService(newSalaryPeriodRepoStub(), employeeExistenceStub{42: true}, nil)

	req := salaryRequest()
	req.MonthlyRate = nil
	_, err := svc.Create(context.Background(), req)
	assert.True(t, appErrors.ErrValidation.Is(err))

	req = salaryRequest()
	req.PeriodFrom = "May 1"
	_, err = svc.Create(context.Background(), req)
	assert.True(t, appErrors.ErrValidation.Is(err))
}

func TestSalaryPeriodCreateUnknownEmployee(t *testing.T) {
	svc := NewSalaryPeriodService(newSalaryPeriodRepoStub(), employeeExistenceStub{}, nil)

	_, err := svc.Create(context.Background(), salaryRequest())
	require.Error(t, err)
	assert.True(t, appErrors.ErrNotFound.Is(err))
}

func TestSalaryPeriodInvertedRangeLogsWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo := newSalaryPeriodRepoStub()
	svc := NewSalaryPeriodService(repo, employeeExistenceStub{42: true}, zap.New(core))

	req := salaryRequest()
	req.PeriodFrom = "2024-06-01"
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, repo.periods, 1)
	assert.Equal(t, 1, logs.FilterMessage("salary period starts after it ends").Len())
}

func TestSalaryPeriodGetAndDelete(t *testing.T) {
	repo := newSalaryPeriodRepoStub()
	svc := NewSalaryPeriodService(repo, employeeExistenceStub{42: true}, nil)
	period, err := svc.Create(context.Background(), salaryRequest())
	require.NoError(t, err)

	found, err := svc.Get(context.Background(), period.ID)
	require.NoError(t, err)
	assert.Equal(t, period.ID, found.ID)

	list, err := svc.ListByEmployee(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(context.Background(), period.ID))
	_, err = svc.Get(context.Background(), period.ID)
	assert.True(t, appErrors.ErrNotFound.Is(err))
	assert.True(t, appErrors.ErrNotFound.Is(svc.Delete(context.Background(), period.ID)))
}
