package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/highroller/payroll-api/internal/models"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ParseExportFormat accepts "csv" or "pdf" case-insensitively; empty selects def.
func ParseExportFormat(raw string, def ExportFormat) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return def, nil
	case ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
}

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	if f == ExportFormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// ExportFile is a rendered document ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type rosterSource interface {
	ListAll(ctx context.Context) ([]models.Employee, error)
	FindByID(ctx context.Context, id int64) (*models.Employee, error)
}

type payslipSource interface {
	FindByID(ctx context.Context, id int64) (*models.SalaryPeriod, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders the employee roster and payslips.
type ExportService struct {
	employees rosterSource
	periods   payslipSource
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers default to the pkg/export ones.
func NewExportService(employees rosterSource, periods payslipSource, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		employees: employees,
		periods:   periods,
		csv:       csv,
		pdf:       pdf,
		logger:    logger,
		now:       time.Now,
	}
}

var rosterHeaders = []string{"ID", "Name", "Email", "Cellphone", "Department", "Position", "Salary", "Date Hired"}

// Roster renders every employee.
func (s *ExportService) Roster(ctx context.Context, format ExportFormat) (*ExportFile, error) {
	employees, err := s.employees.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	rows := make([]map[string]string, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, map[string]string{
			"ID":         fmt.Sprintf("%d", e.ID),
			"Name":       e.FullName(),
			"Email":      e.Email,
			"Cellphone":  e.Cellphone,
			"Department": e.Department,
			"Position":   e.Position,
			"Salary":     money(e.Salary),
			"Date Hired": formatDate(e.DateHired),
		})
	}
	generated := s.now().UTC()
	dataset := export.Dataset{
		Meta: []export.Field{
			{Label: "Generated", Value: generated.Format(time.RFC3339)},
			{Label: "Employees", Value: fmt.Sprintf("%d", len(employees))},
		},
		Headers: rosterHeaders,
		Rows:    rows,
	}
	name := fmt.Sprintf("employees_%s", generated.Format("20060102_150405"))
	return s.render(dataset, "Employee Roster", name, format)
}

// Payslip renders one salary period with its employee header.
func (s *ExportService) Payslip(ctx context.Context, periodID int64, format ExportFormat) (*ExportFile, error) {
	period, err := s.periods.FindByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "salary period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load salary period")
	}
	employee, err := s.employees.FindByID(ctx, period.EmployeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	dataset := export.Dataset{
		Meta: []export.Field{
			{Label: "Employee", Value: employee.FullName()},
			{Label: "Department", Value: employee.Department},
			{Label: "Position", Value: employee.Position},
			{Label: "Period", Value: fmt.Sprintf("%s to %s", period.PeriodFrom.Format(dateLayout), period.PeriodTo.Format(dateLayout))},
			{Label: "Monthly Rate", Value: money(period.MonthlyRate)},
		},
		Headers: []string{"Item", "Hours", "Amount"},
		Rows:    payslipRows(period),
	}
	name := fmt.Sprintf("payslip_%d_%s", period.ID, period.PeriodTo.Format("20060102"))
	return s.render(dataset, "Payslip", name, format)
}

func (s *ExportService) render(dataset export.Dataset, title, name string, format ExportFormat) (*ExportFile, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", format))
	}
	if err != nil {
		s.logger.Error("export render failed", zap.String("file", name), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s.%s", name, format),
		ContentType: format.ContentType(),
		Data:        payload,
	}, nil
}

func payslipRows(p *models.SalaryPeriod) []map[string]string {
	lines := []struct {
		item   string
		hours  *float64
		amount *float64
	}{
		{"Regular Pay", p.RegularHours, p.RegularPay},
		{"Overtime Pay", p.OvertimeHours, p.OvertimePay},
		{"Holiday Pay", p.HolidayHours, p.HolidayPay},
		{"Night Differential", p.NightDiffHours, p.NightDiffPay},
		{"Gross Pay", nil, p.GrossPay},
		{"SSS", nil, p.SSSContribution},
		{"PhilHealth", nil, p.PhilHealthContribution},
		{"Pag-IBIG", nil, p.PagIbigContribution},
		{"Withholding Tax", nil, p.WithholdingTax},
		{"Total Deductions", nil, p.TotalDeductions},
		{"Net Pay", nil, p.NetPay},
	}
	rows := make([]map[string]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, map[string]string{
			"Item":   line.item,
			"Hours":  optionalAmount(line.hours),
			"Amount": optionalAmount(line.amount),
		})
	}
	return rows
}

// money formats v with exactly two decimal places.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func optionalAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return money(*v)
}
