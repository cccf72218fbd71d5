package service

import (
	"context"
	"database/sql"
	"errors"
	"html"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/highroller/payroll-api/internal/dto"
	"github.com/highroller/payroll-api/internal/models"
	"github.com/highroller/payroll-api/internal/repository"
	"github.com/highroller/payroll-api/pkg/config"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/validation"
)

type employeeStore interface {
	FindByID(ctx context.Context, id int64) (*models.Employee, error)
	EmailTaken(ctx context.Context, exec sqlx.ExtContext, email string, excludeID int64) (bool, error)
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	Create(ctx context.Context, exec sqlx.ExtContext, employee *models.Employee) error
	Update(ctx context.Context, exec sqlx.ExtContext, employee *models.Employee) error
	Delete(ctx context.Context, id int64) error
}

type addressValidator interface {
	Validate(ctx context.Context, addr models.Address) AddressCheck
}

// EmployeeServiceParams groups constructor dependencies.
type EmployeeServiceParams struct {
	Repo      employeeStore
	Addresses addressValidator
	Audit     auditLogger
	Catalog   config.Catalog
	Validator *validator.Validate
	Logger    *zap.Logger
}

// EmployeeService manages direct employee CRUD.
type EmployeeService struct {
	repo      employeeStore
	addresses addressValidator
	audit     auditLogger
	catalog   config.Catalog
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(params EmployeeServiceParams) *EmployeeService {
	validate := params.Validator
	if validate == nil {
		validate = validation.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := params.Catalog
	if catalog.PositionSalaries == nil {
		catalog = config.DefaultCatalog()
	}
	return &EmployeeService{
		repo:      params.Repo,
		addresses: params.Addresses,
		audit:     params.Audit,
		catalog:   catalog,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns employees and pagination metadata.
func (s *EmployeeService) List(ctx context.Context, query dto.EmployeeQuery) ([]models.Employee, *models.Pagination, error) {
	filter := models.EmployeeFilter{
		Search:     strings.TrimSpace(query.Search),
		Department: strings.TrimSpace(query.Department),
		Position:   strings.TrimSpace(query.Position),
		Page:       query.Page,
		PageSize:   query.PageSize,
		SortBy:     query.SortBy,
		SortOrder:  query.SortOrder,
	}
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return employees, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns an employee by id.
func (s *EmployeeService) Get(ctx context.Context, id int64) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

// Create validates and stores a new employee. Salary comes from the catalog.
func (s *EmployeeService) Create(ctx context.Context, identity models.Identity, req dto.CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Message(err, "invalid employee payload"))
	}
	fields := req.Fields()
	for name, value := range fields {
		if strings.TrimSpace(value) == "" && name != "firstName" && name != "lastName" {
			delete(fields, name)
		}
	}
	changes, err := s.buildChanges(fields)
	if err != nil {
		return nil, err
	}

	employee := &models.Employee{Image: strings.TrimSpace(req.Image)}
	ApplyEmployeeChanges(employee, changes, s.catalog)
	employee.Salary = s.catalog.SalaryFor(employee.Position)

	if err := s.checkAddress(ctx, rawAddress(models.Address{}, fields)); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, employee.Email, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, nil, employee); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}

	after, _ := EmployeeSnapshot(employee)
	s.emitAudit(ctx, identity, models.AuditActionEmployeeCreate, employee.ID, nil, []byte(after))
	s.logger.Info("employee created", zap.Int64("employee_id", employee.ID), zap.String("by", identity.Username))
	return employee, nil
}

// Update applies a partial update. Changing position re-derives the salary.
func (s *EmployeeService) Update(ctx context.Context, identity models.Identity, id int64, req dto.UpdateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Message(err, "invalid employee payload"))
	}
	changes, err := s.buildChanges(req.Fields())
	if err != nil {
		return nil, err
	}
	employee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before, _ := EmployeeSnapshot(employee)
	previousEmail := employee.Email
	previousAddress := employee.Address()

	ApplyEmployeeChanges(employee, changes, s.catalog)
	if req.Image != nil {
		employee.Image = strings.TrimSpace(*req.Image)
	}

	if employee.Address() != previousAddress {
		if err := s.checkAddress(ctx, rawAddress(previousAddress, req.Fields())); err != nil {
			return nil, err
		}
	}
	if !strings.EqualFold(employee.Email, previousEmail) {
		if err := s.ensureEmailFree(ctx, employee.Email, employee.ID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, nil, employee); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}

	after, _ := EmployeeSnapshot(employee)
	s.emitAudit(ctx, identity, models.AuditActionEmployeeUpdate, employee.ID, []byte(before), []byte(after))
	return employee, nil
}

// Delete removes the employee permanently.
func (s *EmployeeService) Delete(ctx context.Context, identity models.Identity, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete employee")
	}
	s.emitAudit(ctx, identity, models.AuditActionEmployeeDelete, id, nil, nil)
	s.logger.Info("employee deleted", zap.Int64("employee_id", id), zap.String("by", identity.Username))
	return nil
}

// buildChanges validates every field in name order so the first error is deterministic.
func (s *EmployeeService) buildChanges(fields map[string]string) ([]EmployeeChange, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	now := s.now()
	changes := make([]EmployeeChange, 0, len(names))
	for _, name := range names {
		change, err := NewEmployeeChange(name, fields[name], now)
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	return changes, nil
}

func (s *EmployeeService) checkAddress(ctx context.Context, addr models.Address) error {
	if s.addresses == nil || !addr.Complete() {
		return nil
	}
	check := s.addresses.Validate(ctx, addr)
	if !check.Valid {
		return appErrors.Clone(appErrors.ErrValidation, "invalid address")
	}
	return nil
}

// rawAddress overlays the unsanitised request values on base. Stored parts of base are unescaped
// so the check sees the address as typed.
func rawAddress(base models.Address, fields map[string]string) models.Address {
	addr := models.Address{
		House:    html.UnescapeString(base.House),
		Barangay: html.UnescapeString(base.Barangay),
		City:     html.UnescapeString(base.City),
		Province: html.UnescapeString(base.Province),
		Zip:      html.UnescapeString(base.Zip),
		Country:  html.UnescapeString(base.Country),
	}
	parts := map[string]*string{
		"addressHouse":    &addr.House,
		"addressBarangay": &addr.Barangay,
		"addressCity":     &addr.City,
		"addressProvince": &addr.Province,
		"addressZip":      &addr.Zip,
		"addressCountry":  &addr.Country,
	}
	for name, ref := range parts {
		if value, ok := fields[name]; ok {
			*ref = strings.TrimSpace(value)
		}
	}
	return addr
}

func (s *EmployeeService) ensureEmailFree(ctx context.Context, email string, excludeID int64) error {
	if email == "" {
		return nil
	}
	taken, err := s.repo.EmailTaken(ctx, nil, email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrConflict, "email already in use")
	}
	return nil
}

func (s *EmployeeService) emitAudit(ctx context.Context, identity models.Identity, action string, employeeID int64, oldValues, newValues []byte) {
	if s.audit == nil {
		return
	}
	userID := identity.UserID
	resourceID := strconv.FormatInt(employeeID, 10)
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "employee",
		ResourceID: &resourceID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  "system",
		UserAgent:  "employee-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
