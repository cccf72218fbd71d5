package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/highroller/payroll-api/internal/dto"
	"github.com/highroller/payroll-api/internal/models"
	"github.com/highroller/payroll-api/internal/repository"
	"github.com/highroller/payroll-api/pkg/config"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/validation"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type modifyRequestStore interface {
	Create(ctx context.Context, request *models.ModifyRequest) error
	GetByID(ctx context.Context, id int64) (*models.ModifyRequest, error)
	GetByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.ModifyRequest, error)
	List(ctx context.Context, filter models.ModifyRequestFilter) ([]models.ModifyRequest, error)
	Resolve(ctx context.Context, exec sqlx.ExtContext, params repository.ResolveParams) error
	Delete(ctx context.Context, id int64) error
}

type approvalEmployeeStore interface {
	FindByID(ctx context.Context, id int64) (*models.Employee, error)
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Employee, error)
	EmailTaken(ctx context.Context, exec sqlx.ExtContext, email string, excludeID int64) (bool, error)
	Update(ctx context.Context, exec sqlx.ExtContext, employee *models.Employee) error
}

// ModifyRequestServiceParams groups constructor dependencies.
type ModifyRequestServiceParams struct {
	Requests  modifyRequestStore
	Employees approvalEmployeeStore
	Tx        txProvider
	Audit     auditLogger
	Metrics   *MetricsService
	Catalog   config.Catalog
	Logger    *zap.Logger
}

// ModifyRequestService runs the employee change request workflow: PENDING -> APPROVED | REJECTED.
type ModifyRequestService struct {
	requests  modifyRequestStore
	employees approvalEmployeeStore
	tx        txProvider
	audit     auditLogger
	metrics   *MetricsService
	catalog   config.Catalog
	logger    *zap.Logger
	now       func() time.Time
}

// NewModifyRequestService constructs the workflow service.
func NewModifyRequestService(params ModifyRequestServiceParams) *ModifyRequestService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := params.Catalog
	if catalog.PositionSalaries == nil {
		catalog = config.DefaultCatalog()
	}
	return &ModifyRequestService{
		requests:  params.Requests,
		employees: params.Employees,
		tx:        params.Tx,
		audit:     params.Audit,
		metrics:   params.Metrics,
		catalog:   catalog,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit validates the proposed change and stores it as a PENDING request.
func (s *ModifyRequestService) Submit(ctx context.Context, identity models.Identity, req dto.SubmitModifyRequest) (*models.ModifyRequest, error) {
	if req.EmployeeID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employeeId is required")
	}
	fieldName := strings.TrimSpace(req.FieldName)
	updatedData, err := normalizeSnapshotPayload(req.UpdatedData)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "updatedData must be a JSON object")
	}
	originalData, err := normalizeSnapshotPayload(req.OriginalData)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "originalData must be a JSON object")
	}
	if fieldName == "" && updatedData == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fieldName or updatedData is required")
	}

	now := s.now().UTC()
	request := &models.ModifyRequest{
		EmployeeID:      req.EmployeeID,
		Reason:          validation.Sanitize(req.Reason),
		Status:          models.ModifyRequestStatusPending,
		RequestedBy:     identity.Username,
		RequestedByRole: identity.Role,
		RequestDate:     now,
	}

	if fieldName != "" {
		if req.RequestedValue == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "requestedValue is required")
		}
		change, err := NewEmployeeChange(fieldName, *req.RequestedValue, now)
		if err != nil {
			return nil, err
		}
		employee, err := s.loadEmployee(ctx, req.EmployeeID)
		if err != nil {
			return nil, err
		}
		current := req.CurrentValue
		if current == nil {
			value, _ := EmployeeFieldValue(employee, change.Field())
			current = &value
		}
		field := change.Field()
		value := change.Value()
		request.Kind = models.ModifyRequestKindField
		request.FieldName = &field
		request.CurrentValue = current
		request.RequestedValue = &value
	} else {
		employee, err := s.loadEmployee(ctx, req.EmployeeID)
		if err != nil {
			return nil, err
		}
		if originalData == "" {
			if originalData, err = EmployeeSnapshot(employee); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to capture employee snapshot")
			}
		}
		changes, err := ParseSnapshotChanges(originalData, updatedData, now)
		if err != nil {
			return nil, err
		}
		if len(changes) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "updatedData contains no changes")
		}
		request.Kind = models.ModifyRequestKindSnapshot
		request.OriginalData = &originalData
		request.UpdatedData = &updatedData
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create modify request")
	}
	s.metrics.RecordModifyRequest(models.ModifyRequestStatusPending)
	s.logger.Info("modify request submitted",
		zap.Int64("request_id", request.ID),
		zap.Int64("employee_id", request.EmployeeID),
		zap.String("kind", string(request.Kind)),
		zap.String("requested_by", request.RequestedBy),
	)
	return request, nil
}

// Approve applies the request to the employee and marks it APPROVED in one transaction.
func (s *ModifyRequestService) Approve(ctx context.Context, identity models.Identity, id int64, comment string) (result *models.ModifyRequest, err error) {
	if !identity.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	started := time.Now()
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	request, err := s.lockPending(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	employee, err := s.employees.FindByIDForUpdate(ctx, tx, request.EmployeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "employee no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	before, _ := EmployeeSnapshot(employee)

	now := s.now().UTC()
	changes, err := decodeRequestChanges(request, now)
	if err != nil {
		return nil, err
	}
	for _, change := range changes {
		email, ok := change.(EmailChange)
		if !ok {
			continue
		}
		taken, err := s.employees.EmailTaken(ctx, tx, email.Value(), employee.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
	}
	ApplyEmployeeChanges(employee, changes, s.catalog)
	if err = s.employees.Update(ctx, tx, employee); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "employee no longer exists")
		}
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}

	if err = s.resolve(ctx, tx, request, identity, models.ModifyRequestStatusApproved, optionalString(comment), now); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit approval")
	}
	s.metrics.ObserveDBQuery("modify_request_approve", time.Since(started))

	after, _ := EmployeeSnapshot(employee)
	s.emitAudit(ctx, identity, models.AuditActionModifyRequestApprove, request.ID, []byte(before), []byte(after))
	s.metrics.RecordModifyRequest(models.ModifyRequestStatusApproved)
	s.logger.Info("modify request approved",
		zap.Int64("request_id", request.ID),
		zap.Int64("employee_id", employee.ID),
		zap.Int("changes", len(changes)),
		zap.String("processed_by", identity.Username),
	)
	return request, nil
}

// Reject closes the request without touching the employee. The comment is mandatory.
func (s *ModifyRequestService) Reject(ctx context.Context, identity models.Identity, id int64, comment string) (result *models.ModifyRequest, err error) {
	if !identity.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	if strings.TrimSpace(comment) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "comments are required when rejecting a request")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	request, err := s.lockPending(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err = s.resolve(ctx, tx, request, identity, models.ModifyRequestStatusRejected, &comment, now); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit rejection")
	}

	s.emitAudit(ctx, identity, models.AuditActionModifyRequestReject, request.ID, nil, []byte(strconv.Quote(comment)))
	s.metrics.RecordModifyRequest(models.ModifyRequestStatusRejected)
	s.logger.Info("modify request rejected",
		zap.Int64("request_id", request.ID),
		zap.String("processed_by", identity.Username),
	)
	return request, nil
}

// List returns requests matching the query, newest first.
func (s *ModifyRequestService) List(ctx context.Context, query dto.ModifyRequestQuery) ([]models.ModifyRequest, error) {
	if query.Status != "" && !query.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be PENDING, APPROVED or REJECTED")
	}
	requests, err := s.requests.List(ctx, models.ModifyRequestFilter{
		Status:      query.Status,
		RequestedBy: strings.TrimSpace(query.RequestedBy),
		EmployeeID:  query.EmployeeID,
		Limit:       query.Limit,
		Offset:      query.Offset,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modify requests")
	}
	return requests, nil
}

// Pending is List restricted to PENDING.
func (s *ModifyRequestService) Pending(ctx context.Context, limit, offset int) ([]models.ModifyRequest, error) {
	return s.List(ctx, dto.ModifyRequestQuery{Status: models.ModifyRequestStatusPending, Limit: limit, Offset: offset})
}

// Get returns a single request.
func (s *ModifyRequestService) Get(ctx context.Context, id int64) (*models.ModifyRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "modify request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load modify request")
	}
	return request, nil
}

// Delete removes a request in any state. Admin only.
func (s *ModifyRequestService) Delete(ctx context.Context, identity models.Identity, id int64) error {
	if !identity.IsAdmin() {
		return appErrors.ErrForbidden
	}
	if err := s.requests.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "modify request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete modify request")
	}
	s.emitAudit(ctx, identity, models.AuditActionModifyRequestDelete, id, nil, nil)
	return nil
}

func (s *ModifyRequestService) loadEmployee(ctx context.Context, id int64) (*models.Employee, error) {
	employee, err := s.employees.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

func (s *ModifyRequestService) lockPending(ctx context.Context, tx *sqlx.Tx, id int64) (*models.ModifyRequest, error) {
	request, err := s.requests.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "modify request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load modify request")
	}
	if request.Status != models.ModifyRequestStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("request is already %s", strings.ToLower(string(request.Status))))
	}
	return request, nil
}

func (s *ModifyRequestService) resolve(ctx context.Context, tx *sqlx.Tx, request *models.ModifyRequest, identity models.Identity, status models.ModifyRequestStatus, comment *string, now time.Time) error {
	err := s.requests.Resolve(ctx, tx, repository.ResolveParams{
		ID:            request.ID,
		Status:        status,
		ProcessedBy:   identity.Username,
		ProcessedDate: now,
		AdminComments: comment,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrInvalidState
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update modify request")
	}
	processedBy := identity.Username
	request.Status = status
	request.ProcessedBy = &processedBy
	request.ProcessedDate = &now
	request.AdminComments = comment
	return nil
}

func (s *ModifyRequestService) emitAudit(ctx context.Context, identity models.Identity, action string, requestID int64, oldValues, newValues []byte) {
	if s.audit == nil {
		return
	}
	userID := identity.UserID
	resourceID := strconv.FormatInt(requestID, 10)
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "modify_request",
		ResourceID: &resourceID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  "system",
		UserAgent:  "modify-request-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

// decodeRequestChanges rebuilds the typed change set from the stored request.
func decodeRequestChanges(request *models.ModifyRequest, now time.Time) ([]EmployeeChange, error) {
	switch request.Kind {
	case models.ModifyRequestKindField:
		if request.FieldName == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "request has no field name")
		}
		value := ""
		if request.RequestedValue != nil {
			value = *request.RequestedValue
		}
		change, err := NewEmployeeChange(*request.FieldName, value, now)
		if err != nil {
			return nil, err
		}
		return []EmployeeChange{change}, nil
	case models.ModifyRequestKindSnapshot:
		var original, updated string
		if request.OriginalData != nil {
			original = *request.OriginalData
		}
		if request.UpdatedData != nil {
			updated = *request.UpdatedData
		}
		return ParseSnapshotChanges(original, updated, now)
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown request kind: %s", request.Kind))
}

// normalizeSnapshotPayload accepts a JSON object or a JSON string holding an object and returns
// the compact object text. Empty and null payloads return "".
func normalizeSnapshotPayload(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return "", err
		}
		trimmed = strings.TrimSpace(inner)
		if trimmed == "" {
			return "", nil
		}
	}
	var object map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &object); err != nil {
		return "", err
	}
	compact, err := json.Marshal(object)
	if err != nil {
		return "", err
	}
	return string(compact), nil
}

func optionalString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	v := strings.TrimSpace(value)
	return &v
}
