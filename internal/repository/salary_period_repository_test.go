package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/highroller/payroll-api/internal/models"
)

func TestSalaryPeriodRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSalaryPeriodRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO salary_periods")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(15))

	hours := 160.0
	period := &models.SalaryPeriod{
		EmployeeID:   42,
		PeriodFrom:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		PeriodTo:     time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		MonthlyRate:  45000,
		RegularHours: &hours,
	}
	require.NoError(t, repo.Create(context.Background(), period))
	assert.Equal(t, int64(15), period.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalaryPeriodRepositoryListByEmployeeOrdersByStart(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSalaryPeriodRepository(db)

	cols := []string{"id", "employee_id", "period_from", "period_to", "monthly_rate", "regular_hours", "overtime_hours", "holiday_hours",
		"night_diff_hours", "rate_per_day", "rate_per_hour", "regular_pay", "overtime_pay", "holiday_pay", "night_diff_pay", "gross_pay",
		"sss_contribution", "philhealth_contribution", "pagibig_contribution", "withholding_tax", "total_deductions", "net_pay", "created_at"}
	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	may := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(cols).
		AddRow(1, 42, april, april.AddDate(0, 1, -1), 45000, 160.0, nil, nil, nil, nil, nil, nil, nil, nil, nil, 45000.0, nil, nil, nil, nil, nil, 41000.0, april).
		AddRow(2, 42, may, may.AddDate(0, 1, -1), 45000, 168.0, 4.0, nil, nil, nil, nil, nil, nil, nil, nil, 46500.0, nil, nil, nil, nil, nil, 42300.0, may)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE employee_id = $1 ORDER BY period_from ASC, id ASC")).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	periods, err := repo.ListByEmployee(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.True(t, periods[0].PeriodFrom.Before(periods[1].PeriodFrom))
	assert.Nil(t, periods[0].OvertimeHours)
	assert.Equal(t, 4.0, *periods[1].OvertimeHours)
	assert.NoError(t, mock.ExpectationsWereMet())
}
