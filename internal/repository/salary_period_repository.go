package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/highroller/payroll-api/internal/models"
)

const salaryPeriodColumns = `id, employee_id, period_from, period_to, monthly_rate, regular_hours, overtime_hours, holiday_hours,
       night_diff_hours, rate_per_day, rate_per_hour, regular_pay, overtime_pay, holiday_pay, night_diff_pay, gross_pay,
       sss_contribution, philhealth_contribution, pagibig_contribution, withholding_tax, total_deductions, net_pay, created_at`

// SalaryPeriodRepository persists computed pay periods.
type SalaryPeriodRepository struct {
	db *sqlx.DB
}

// NewSalaryPeriodRepository constructs the repository.
func NewSalaryPeriodRepository(db *sqlx.DB) *SalaryPeriodRepository {
	return &SalaryPeriodRepository{db: db}
}

// Create inserts the period and assigns its identifier.
func (r *SalaryPeriodRepository) Create(ctx context.Context, period *models.SalaryPeriod) error {
	if period.CreatedAt.IsZero() {
		period.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO salary_periods (employee_id, period_from, period_to, monthly_rate, regular_hours, overtime_hours,
	holiday_hours, night_diff_hours, rate_per_day, rate_per_hour, regular_pay, overtime_pay, holiday_pay, night_diff_pay,
	gross_pay, sss_contribution, philhealth_contribution, pagibig_contribution, withholding_tax, total_deductions, net_pay, created_at)
VALUES (:employee_id, :period_from, :period_to, :monthly_rate, :regular_hours, :overtime_hours,
	:holiday_hours, :night_diff_hours, :rate_per_day, :rate_per_hour, :regular_pay, :overtime_pay, :holiday_pay, :night_diff_pay,
	:gross_pay, :sss_contribution, :philhealth_contribution, :pagibig_contribution, :withholding_tax, :total_deductions, :net_pay, :created_at)
RETURNING id`
	bound, args, err := r.db.BindNamed(query, period)
	if err != nil {
		return fmt.Errorf("bind salary period insert: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, bound, args...).Scan(&period.ID); err != nil {
		return fmt.Errorf("create salary period: %w", err)
	}
	return nil
}

// FindByID returns a period or sql.ErrNoRows.
func (r *SalaryPeriodRepository) FindByID(ctx context.Context, id int64) (*models.SalaryPeriod, error) {
	query := `SELECT ` + salaryPeriodColumns + ` FROM salary_periods WHERE id = $1`
	var period models.SalaryPeriod
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find salary period: %w", err)
	}
	return &period, nil
}

// ListByEmployee returns an employee's periods ordered by period start.
func (r *SalaryPeriodRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]models.SalaryPeriod, error) {
	query := `SELECT ` + salaryPeriodColumns + ` FROM salary_periods WHERE employee_id = $1 ORDER BY period_from ASC, id ASC`
	var periods []models.SalaryPeriod
	if err := r.db.SelectContext(ctx, &periods, query, employeeID); err != nil {
		return nil, fmt.Errorf("list salary periods: %w", err)
	}
	return periods, nil
}

// Delete removes a period. Returns sql.ErrNoRows when nothing was deleted.
func (r *SalaryPeriodRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM salary_periods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete salary period: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check salary period delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
