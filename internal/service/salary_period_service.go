package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/highroller/payroll-api/internal/dto"
	"github.com/highroller/payroll-api/internal/models"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/validation"
)

type salaryPeriodStore interface {
	Create(ctx context.Context, period *models.SalaryPeriod) error
	FindByID(ctx context.Context, id int64) (*models.SalaryPeriod, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]models.SalaryPeriod, error)
	Delete(ctx context.Context, id int64) error
}

type employeeExistence interface {
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// SalaryPeriodService records computed pay periods.
type SalaryPeriodService struct {
	repo      salaryPeriodStore
	employees employeeExistence
	logger    *zap.Logger
}

// NewSalaryPeriodService constructs the service.
func NewSalaryPeriodService(repo salaryPeriodStore, employees employeeExistence, logger *zap.Logger) *SalaryPeriodService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalaryPeriodService{repo: repo, employees: employees, logger: logger}
}

type hourCeiling struct {
	name    string
	value   *float64
	ceiling float64
	check   func(float64) bool
}

// Create validates hour ceilings and stores the period. Pay amounts are kept as supplied.
func (s *SalaryPeriodService) Create(ctx context.Context, req dto.CreateSalaryPeriodRequest) (*models.SalaryPeriod, error) {
	if req.EmployeeID == nil || req.MonthlyRate == nil || strings.TrimSpace(req.PeriodFrom) == "" || strings.TrimSpace(req.PeriodTo) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employeeId, monthlyRate, periodFrom and periodTo are required")
	}
	from, err := time.Parse(dateLayout, strings.TrimSpace(req.PeriodFrom))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "periodFrom must be YYYY-MM-DD")
	}
	to, err := time.Parse(dateLayout, strings.TrimSpace(req.PeriodTo))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "periodTo must be YYYY-MM-DD")
	}

	hours := []hourCeiling{
		{"regularHours", req.RegularHours, validation.MaxRegularHoursMonthly, validation.IsValidRegularHours},
		{"overtimeHours", req.OvertimeHours, validation.MaxOvertimeHoursMonthly, validation.IsValidOvertimeHours},
		{"holidayHours", req.HolidayHours, validation.MaxHolidayHoursMonthly, validation.IsValidHolidayHours},
		{"nightDiffHours", req.NightDiffHours, validation.MaxNightDiffHoursMonthly, validation.IsValidNightDiffHours},
	}
	for _, h := range hours {
		if h.value != nil && !h.check(*h.value) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be between 0 and %g", h.name, h.ceiling))
		}
	}

	exists, err := s.employees.ExistsByID(ctx, *req.EmployeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check employee")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	// Inverted ranges are stored; callers rely on the warning only.
	if from.After(to) {
		s.logger.Warn("salary period starts after it ends",
			zap.Int64("employee_id", *req.EmployeeID),
			zap.String("period_from", req.PeriodFrom),
			zap.String("period_to", req.PeriodTo),
		)
	}

	period := &models.SalaryPeriod{
		EmployeeID:             *req.EmployeeID,
		PeriodFrom:             from,
		PeriodTo:               to,
		MonthlyRate:            *req.MonthlyRate,
		RegularHours:           req.RegularHours,
		OvertimeHours:          req.OvertimeHours,
		HolidayHours:           req.HolidayHours,
		NightDiffHours:         req.NightDiffHours,
		RatePerDay:             req.RatePerDay,
		RatePerHour:            req.RatePerHour,
		RegularPay:             req.RegularPay,
		OvertimePay:            req.OvertimePay,
		HolidayPay:             req.HolidayPay,
		NightDiffPay:           req.NightDiffPay,
		GrossPay:               req.GrossPay,
		SSSContribution:        req.SSSContribution,
		PhilHealthContribution: req.PhilHealthContribution,
		PagIbigContribution:    req.PagIbigContribution,
		WithholdingTax:         req.WithholdingTax,
		TotalDeductions:        req.TotalDeductions,
		NetPay:                 req.NetPay,
	}
	if err := s.repo.Create(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create salary period")
	}
	return period, nil
}

// ListByEmployee returns the periods of an employee, oldest first.
func (s *SalaryPeriodService) ListByEmployee(ctx context.Context, employeeID int64) ([]models.SalaryPeriod, error) {
	periods, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list salary periods")
	}
	return periods, nil
}

// Get returns a single period.
func (s *SalaryPeriodService) Get(ctx context.Context, id int64) (*models.SalaryPeriod, error) {
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "salary period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load salary period")
	}
	return period, nil
}

// Delete removes a period.
func (s *SalaryPeriodService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "salary period not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete salary period")
	}
	return nil
}
