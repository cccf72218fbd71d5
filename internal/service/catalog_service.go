package service

import (
	"fmt"
	"strings"

	"github.com/highroller/payroll-api/pkg/config"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
)

// PositionSalary is the salary lookup response.
type PositionSalary struct {
	Position string  `json:"position"`
	Salary   float64 `json:"salary"`
}

// CatalogService exposes the department, position and salary tables.
type CatalogService struct {
	catalog config.Catalog
}

// NewCatalogService wraps catalog.
func NewCatalogService(catalog config.Catalog) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// Departments lists department names.
func (s *CatalogService) Departments() []string {
	return s.catalog.Departments()
}

// Positions lists positions of department.
func (s *CatalogService) Positions(department string) ([]string, error) {
	positions, ok := s.catalog.Positions(strings.TrimSpace(department))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("department %q not found", department))
	}
	return positions, nil
}

// Salary returns the configured salary of a known position.
func (s *CatalogService) Salary(position string) (PositionSalary, error) {
	position = strings.TrimSpace(position)
	if !s.catalog.KnownPosition(position) {
		return PositionSalary{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("position %q not found", position))
	}
	return PositionSalary{Position: position, Salary: s.catalog.SalaryFor(position)}, nil
}
