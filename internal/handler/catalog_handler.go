package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/highroller/payroll-api/internal/service"
	"github.com/highroller/payroll-api/pkg/response"
)

type catalogService interface {
	Departments() []string
	Positions(department string) ([]string, error)
	Salary(position string) (service.PositionSalary, error)
}

// CatalogHandler exposes the department, position and salary tables.
type CatalogHandler struct {
	catalog catalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog catalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Departments godoc
// @Summary List departments
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *CatalogHandler) Departments(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.catalog.Departments(), nil)
}

// Positions godoc
// @Summary List positions of a department
// @Tags Catalog
// @Produce json
// @Param department path string true "Department"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /departments/{department}/positions [get]
func (h *CatalogHandler) Positions(c *gin.Context) {
	positions, err := h.catalog.Positions(c.Param("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, positions, nil)
}

// Salary godoc
// @Summary Get the catalog salary of a position
// @Tags Catalog
// @Produce json
// @Param position path string true "Position"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /positions/{position}/salary [get]
func (h *CatalogHandler) Salary(c *gin.Context) {
	salary, err := h.catalog.Salary(c.Param("position"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, salary, nil)
}
