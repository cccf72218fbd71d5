package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/highroller/payroll-api/internal/dto"
	"github.com/highroller/payroll-api/internal/models"
	"github.com/highroller/payroll-api/internal/service"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/response"
)

type salaryPeriodService interface {
	Create(ctx context.Context, req dto.CreateSalaryPeriodRequest) (*models.SalaryPeriod, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]models.SalaryPeriod, error)
	Get(ctx context.Context, id int64) (*models.SalaryPeriod, error)
	Delete(ctx context.Context, id int64) error
}

type payslipExporter interface {
	Payslip(ctx context.Context, periodID int64, format service.ExportFormat) (*service.ExportFile, error)
}

// SalaryPeriodHandler exposes salary period endpoints.
type SalaryPeriodHandler struct {
	periods salaryPeriodService
	exports payslipExporter
}

// NewSalaryPeriodHandler constructs SalaryPeriodHandler.
func NewSalaryPeriodHandler(periods salaryPeriodService, exports payslipExporter) *SalaryPeriodHandler {
	return &SalaryPeriodHandler{periods: periods, exports: exports}
}

// Create godoc
// @Summary Record a salary period
// @Tags SalaryPeriods
// @Accept json
// @Produce json
// @Param payload body dto.CreateSalaryPeriodRequest true "Salary period"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /salary-periods [post]
func (h *SalaryPeriodHandler) Create(c *gin.Context) {
	var req dto.CreateSalaryPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.periods.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, period)
}

// ListByEmployee godoc
// @Summary List salary periods of an employee
// @Tags SalaryPeriods
// @Produce json
// @Param employeeId path int true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /salary-periods/employee/{employeeId} [get]
func (h *SalaryPeriodHandler) ListByEmployee(c *gin.Context) {
	employeeID, ok := int64Param(c, "employeeId")
	if !ok {
		return
	}
	periods, err := h.periods.ListByEmployee(c.Request.Context(), employeeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}

// Get godoc
// @Summary Get salary period detail
// @Tags SalaryPeriods
// @Produce json
// @Param id path int true "Salary period ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /salary-periods/{id} [get]
func (h *SalaryPeriodHandler) Get(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	period, err := h.periods.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Payslip godoc
// @Summary Download a payslip
// @Tags SalaryPeriods
// @Produce application/pdf,text/csv
// @Param id path int true "Salary period ID"
// @Param format query string false "pdf (default) or csv"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /salary-periods/{id}/payslip [get]
func (h *SalaryPeriodHandler) Payslip(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"), service.ExportFormatPDF)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Payslip(c.Request.Context(), id, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Delete godoc
// @Summary Delete a salary period
// @Tags SalaryPeriods
// @Produce json
// @Param id path int true "Salary period ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /salary-periods/{id} [delete]
func (h *SalaryPeriodHandler) Delete(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.periods.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
