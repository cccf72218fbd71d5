package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/highroller/payroll-api/internal/dto"
	"github.com/highroller/payroll-api/internal/models"
	"github.com/highroller/payroll-api/internal/service"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/response"
)

type employeeService interface {
	List(ctx context.Context, query dto.EmployeeQuery) ([]models.Employee, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.Employee, error)
	Create(ctx context.Context, identity models.Identity, req dto.CreateEmployeeRequest) (*models.Employee, error)
	Update(ctx context.Context, identity models.Identity, id int64, req dto.UpdateEmployeeRequest) (*models.Employee, error)
	Delete(ctx context.Context, identity models.Identity, id int64) error
}

type rosterExporter interface {
	Roster(ctx context.Context, format service.ExportFormat) (*service.ExportFile, error)
}

// EmployeeHandler exposes employee endpoints.
type EmployeeHandler struct {
	employees employeeService
	exports   rosterExporter
}

// NewEmployeeHandler constructs EmployeeHandler.
func NewEmployeeHandler(employees employeeService, exports rosterExporter) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, exports: exports}
}

// List godoc
// @Summary List employees
// @Tags Employees
// @Produce json
// @Param search query string false "Search by name or email"
// @Param department query string false "Filter by department"
// @Param position query string false "Filter by position"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort column"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	query := dto.EmployeeQuery{
		Search:     strings.TrimSpace(c.Query("search")),
		Department: c.Query("department"),
		Position:   c.Query("position"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "limit", 20),
		SortBy:     c.Query("sort"),
		SortOrder:  c.Query("order"),
	}

	employees, pagination, err := h.employees.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees, pagination)
}

// Get godoc
// @Summary Get employee detail
// @Tags Employees
// @Produce json
// @Param id path int true "Employee ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	employee, err := h.employees.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Create godoc
// @Summary Create employee
// @Description Salary is derived from the position
// @Tags Employees
// @Accept json
// @Produce json
// @Param payload body dto.CreateEmployeeRequest true "Employee payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	employee, err := h.employees.Create(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, employee)
}

// Update godoc
// @Summary Update employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path int true "Employee ID"
// @Param payload body dto.UpdateEmployeeRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /employees/{id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	employee, err := h.employees.Update(c.Request.Context(), identity, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Delete godoc
// @Summary Delete employee
// @Tags Employees
// @Produce json
// @Param id path int true "Employee ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.employees.Delete(c.Request.Context(), identity, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export employee roster
// @Tags Employees
// @Produce text/csv,application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /employees/export [get]
func (h *EmployeeHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"), service.ExportFormatCSV)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Roster(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
