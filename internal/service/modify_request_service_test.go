package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/highroller/payroll-api/internal/dto"
	"github.com/highroller/payroll-api/internal/models"
	"github.com/highroller/payroll-api/internal/repository"
	"github.com/highroller/payroll-api/pkg/config"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
)

type modifyRequestRepoStub struct {
	requests map[int64]*models.ModifyRequest
	nextID   int64
	filter   models.ModifyRequestFilter
	resolved []repository.ResolveParams
}

func newModifyRequestRepoStub(requests ...*models.ModifyRequest) *modifyRequestRepoStub {
	stub := &modifyRequestRepoStub{requests: make(map[int64]*models.ModifyRequest), nextID: 1}
	for _, r := range requests {
		stub.requests[r.ID] = r
		if r.ID >= stub.nextID {
			stub.nextID = r.ID + 1
		}
	}
	return stub
}

func (m *modifyRequestRepoStub) Create(ctx context.Context, request *models.ModifyRequest) error {
	request.ID = m.nextID
	m.nextID++
	copy := *request
	m.requests[request.ID] = &copy
	return nil
}

func (m *modifyRequestRepoStub) GetByID(ctx context.Context, id int64) (*models.ModifyRequest, error) {
	if r, ok := m.requests[id]; ok {
		copy := *r
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *modifyRequestRepoStub) GetByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.ModifyRequest, error) {
	return m.GetByID(ctx, id)
}

func (m *modifyRequestRepoStub) List(ctx context.Context, filter models.ModifyRequestFilter) ([]models.ModifyRequest, error) {
	m.filter = filter
	var out []models.ModifyRequest
	for _, r := range m.requests {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *modifyRequestRepoStub) Resolve(ctx context.Context, exec sqlx.ExtContext, params repository.ResolveParams) error {
	r, ok := m.requests[params.ID]
	if !ok || r.Status != models.ModifyRequestStatusPending {
		return sql.ErrNoRows
	}
	m.resolved = append(m.resolved, params)
	r.Status = params.Status
	r.ProcessedBy = &params.ProcessedBy
	r.ProcessedDate = &params.ProcessedDate
	r.AdminComments = params.AdminComments
	return nil
}

func (m *modifyRequestRepoStub) Delete(ctx context.Context, id int64) error {
	if _, ok := m.requests[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.requests, id)
	return nil
}

type employeeRepoStub struct {
	employees  map[int64]*models.Employee
	takenEmail string
	updates    int
	updateErr  error
	created    []*models.Employee
}

func newEmployeeRepoStub(employees ...*models.Employee) *employeeRepoStub {
	stub := &employeeRepoStub{employees: make(map[int64]*models.Employee)}
	for _, e := range employees {
		stub.employees[e.ID] = e
	}
	return stub
}

func (e *employeeRepoStub) FindByID(ctx context.Context, id int64) (*models.Employee, error) {
	if emp, ok := e.employees[id]; ok {
		copy := *emp
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (e *employeeRepoStub) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Employee, error) {
	return e.FindByID(ctx, id)
}

func (e *employeeRepoStub) EmailTaken(ctx context.Context, exec sqlx.ExtContext, email string, excludeID int64) (bool, error) {
	return e.takenEmail != "" && e.takenEmail == email, nil
}

func (e *employeeRepoStub) Update(ctx context.Context, exec sqlx.ExtContext, employee *models.Employee) error {
	if e.updateErr != nil {
		return e.updateErr
	}
	if _, ok := e.employees[employee.ID]; !ok {
		return sql.ErrNoRows
	}
	e.updates++
	copy := *employee
	e.employees[employee.ID] = &copy
	return nil
}

type auditStub struct {
	logs []*models.AuditLog
}

func (a *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb, mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

var (
	adminIdentity = models.Identity{UserID: 1, Username: "admin", Role: models.RoleAdmin}
	hrIdentity    = models.Identity{UserID: 2, Username: "hr.maria", Role: models.RoleHR}
	fixedNow      = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
)

func strPtr(v string) *string { return &v }

func newModifyRequestFixture(t *testing.T, requests *modifyRequestRepoStub, employees *employeeRepoStub) (*ModifyRequestService, sqlmock.Sqlmock, *auditStub) {
	tx, mock := newTxProviderMock(t)
	audit := &auditStub{}
	svc := NewModifyRequestService(ModifyRequestServiceParams{
		Requests:  requests,
		Employees: employees,
		Tx:        tx,
		Audit:     audit,
		Catalog:   config.DefaultCatalog(),
	})
	svc.now = func() time.Time { return fixedNow }
	return svc, mock, audit
}

func itSupportEmployee() *models.Employee {
	return &models.Employee{
		ID:         42,
		FirstName:  "Juan",
		LastName:   "Dela Cruz",
		Email:      "juan@example.com",
		Department: "IT",
		Position:   "IT Support",
		Salary:     35000,
	}
}

func TestModifyRequestSubmitFieldFillsCurrentValue(t *testing.T) {
	requests := newModifyRequestRepoStub()
	svc, _, _ := newModifyRequestFixture(t, requests, newEmployeeRepoStub(itSupportEmployee()))

	req, err := svc.Submit(context.Background(), hrIdentity, dto.SubmitModifyRequest{
		EmployeeID:     42,
		FieldName:      "position",
		RequestedValue: strPtr("DevOps Engineer"),
		Reason:         "promotion",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ModifyRequestStatusPending, req.Status)
	assert.Equal(t, models.ModifyRequestKindField, req.Kind)
	assert.Equal(t, "IT Support", *req.CurrentValue)
	assert.Equal(t, "DevOps Engineer", *req.RequestedValue)
	assert.Equal(t, "hr.maria", req.RequestedBy)
	assert.Equal(t, models.RoleHR, req.RequestedByRole)
	assert.Equal(t, fixedNow, req.RequestDate)
	assert.Len(t, requests.requests, 1)
}

func TestModifyRequestSubmitRejectsUnsupportedField(t *testing.T) {
	requests := newModifyRequestRepoStub()
	svc, _, _ := newModifyRequestFixture(t, requests, newEmployeeRepoStub(itSupportEmployee()))

	_, err := svc.Submit(context.Background(), hrIdentity, dto.SubmitModifyRequest{
		EmployeeID:     42,
		FieldName:      "salary",
		RequestedValue: strPtr("999999"),
	})
	require.Error(t, err)
	assert.True(t, appErrors.ErrUnsupportedField.Is(err))
	assert.Empty(t, requests.requests)
}

func TestModifyRequestSubmitRejectsFutureBirthday(t *testing.T) {
	requests := newModifyRequestRepoStub()
	svc, _, _ := newModifyRequestFixture(t, requests, newEmployeeRepoStub(itSupportEmployee()))

	_, err := svc.Submit(context.Background(), hrIdentity, dto.SubmitModifyRequest{
		EmployeeID:     42,
		FieldName:      "birthday",
		RequestedValue: strPtr("2999-01-01"),
	})
	require.Error(t, err)
	assert.True(t, appErrors.ErrValidation.Is(err))
	assert.Empty(t, requests.requests)
}

func TestModifyRequestSubmitUnknownEmployee(t *testing.T) {
	svc, _, _ := newModifyRequestFixture(t, newModifyRequestRepoStub(), newEmployeeRepoStub())

	_, err := svc.Submit(context.Background(), hrIdentity, dto.SubmitModifyRequest{
		EmployeeID:     7,
		FieldName:      "lastName",
		RequestedValue: strPtr("Santos"),
	})
	require.Error(t, err)
	assert.True(t, appErrors.ErrNotFound.Is(err))
}

func TestModifyRequestSubmitSnapshotAcceptsStringPayload(t *testing.T) {
	requests := newModifyRequestRepoStub()
	svc, _, _ := newModifyRequestFixture(t, requests, newEmployeeRepoStub(itSupportEmployee()))

	updated, err := json.Marshal(`{"lastName":"Santos","position":"IT Support"}`)
	require.NoError(t, err)
	req, err := svc.Submit(context.Background(), hrIdentity, dto.SubmitModifyRequest{
		EmployeeID:  42,
		UpdatedData: updated,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ModifyRequestKindSnapshot, req.Kind)
	require.NotNil(t, req.OriginalData)
	assert.Contains(t, *req.OriginalData, `"lastName":"Dela Cruz"`)
	assert.JSONEq(t, `{"lastName":"Santos","position":"IT Support"}`, *req.UpdatedData)
}

func TestModifyRequestSubmitSnapshotAcceptsEmployeeJSON(t *testing.T) {
	employee := itSupportEmployee()
	birthday := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)
	hired := time.Date(2018, 3, 15, 0, 0, 0, 0, time.UTC)
	employee.Birthday = &birthday
	employee.DateHired = &hired
	requests := newModifyRequestRepoStub()
	svc, _, _ := newModifyRequestFixture(t, requests, newEmployeeRepoStub(employee))

	edited := *employee
	edited.Position = "DevOps Engineer"
	updated, err := json.Marshal(edited)
	require.NoError(t, err)

	req, err := svc.Submit(context.Background(), hrIdentity, dto.SubmitModifyRequest{
		EmployeeID:  42,
		UpdatedData: updated,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ModifyRequestKindSnapshot, req.Kind)

	changes, err := ParseSnapshotChanges(*req.OriginalData, *req.UpdatedData, fixedNow)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "position", changes[0].Field())
	assert.Equal(t, "DevOps Engineer", changes[0].Value())
}

func TestModifyRequestSubmitSnapshotWithoutChanges(t *testing.T) {
	svc, _, _ := newModifyRequestFixture(t, newModifyRequestRepoStub(), newEmployeeRepoStub(itSupportEmployee()))

	_, err := svc.Submit(context.Background(), hrIdentity, dto.SubmitModifyRequest{
		EmployeeID:   42,
		OriginalData: json.RawMessage(`{"lastName":"Dela Cruz"}`),
		UpdatedData:  json.RawMessage(`{"lastName":"Dela Cruz"}`),
	})
	require.Error(t, err)
	assert.True(t, appErrors.ErrValidation.Is(err))
}

func TestModifyRequestApprovePositionRecalculatesSalary(t *testing.T) {
	requests := newModifyRequestRepoStub(&models.ModifyRequest{
		ID:             5,
		EmployeeID:     42,
		Kind:           models.ModifyRequestKindField,
		FieldName:      strPtr("position"),
		CurrentValue:   strPtr("IT Support"),
		RequestedValue: strPtr("DevOps Engineer"),
		Status:         models.ModifyRequestStatusPending,
		RequestedBy:    "hr.maria",
	})
	employees := newEmployeeRepoStub(itSupportEmployee())
	svc, mock, audit := newModifyRequestFixture(t, requests, employees)

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.Approve(context.Background(), adminIdentity, 5, "")
	require.NoError(t, err)
	assert.Equal(t, models.ModifyRequestStatusApproved, result.Status)
	require.NotNil(t, result.ProcessedBy)
	assert.Equal(t, "admin", *result.ProcessedBy)
	assert.Equal(t, fixedNow, *result.ProcessedDate)
	assert.Nil(t, result.AdminComments)

	updated := employees.employees[42]
	assert.Equal(t, "DevOps Engineer", updated.Position)
	assert.Equal(t, 85000.0, updated.Salary)
	assert.Equal(t, models.ModifyRequestStatusApproved, requests.requests[5].Status)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionModifyRequestApprove, audit.logs[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestApproveTwiceIsInvalidState(t *testing.T) {
	requests := newModifyRequestRepoStub(&models.ModifyRequest{
		ID:             5,
		EmployeeID:     42,
		Kind:           models.ModifyRequestKindField,
		FieldName:      strPtr("position"),
		RequestedValue: strPtr("DevOps Engineer"),
		Status:         models.ModifyRequestStatusPending,
	})
	employees := newEmployeeRepoStub(itSupportEmployee())
	svc, mock, _ := newModifyRequestFixture(t, requests, employees)

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), adminIdentity, 5, "ok")
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), adminIdentity, 5, "again")
	require.Error(t, err)
	assert.True(t, appErrors.ErrInvalidState.Is(err))
	assert.Equal(t, 1, employees.updates)
	assert.Len(t, requests.resolved, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestApproveSnapshotMergesChanges(t *testing.T) {
	requests := newModifyRequestRepoStub(&models.ModifyRequest{
		ID:           9,
		EmployeeID:   42,
		Kind:         models.ModifyRequestKindSnapshot,
		OriginalData: strPtr(`{"lastName":"Dela Cruz","position":"IT Support","salary":35000}`),
		UpdatedData:  strPtr(`{"lastName":"Santos","position":"Network Administrator","salary":1}`),
		Status:       models.ModifyRequestStatusPending,
	})
	employees := newEmployeeRepoStub(itSupportEmployee())
	svc, mock, _ := newModifyRequestFixture(t, requests, employees)

	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.Approve(context.Background(), adminIdentity, 9, "")
	require.NoError(t, err)
	updated := employees.employees[42]
	assert.Equal(t, "Santos", updated.LastName)
	assert.Equal(t, "Network Administrator", updated.Position)
	assert.Equal(t, config.DefaultCatalog().SalaryFor("Network Administrator"), updated.Salary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestApproveEmailConflictRollsBack(t *testing.T) {
	requests := newModifyRequestRepoStub(&models.ModifyRequest{
		ID:             3,
		EmployeeID:     42,
		Kind:           models.ModifyRequestKindField,
		FieldName:      strPtr("email"),
		RequestedValue: strPtr("taken@example.com"),
		Status:         models.ModifyRequestStatusPending,
	})
	employees := newEmployeeRepoStub(itSupportEmployee())
	employees.takenEmail = "taken@example.com"
	svc, mock, _ := newModifyRequestFixture(t, requests, employees)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), adminIdentity, 3, "")
	require.Error(t, err)
	assert.True(t, appErrors.ErrConflict.Is(err))
	assert.Equal(t, 0, employees.updates)
	assert.Equal(t, models.ModifyRequestStatusPending, requests.requests[3].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestApproveUniqueViolationIsConflict(t *testing.T) {
	requests := newModifyRequestRepoStub(&models.ModifyRequest{
		ID:             4,
		EmployeeID:     42,
		Kind:           models.ModifyRequestKindField,
		FieldName:      strPtr("email"),
		RequestedValue: strPtr("raced@example.com"),
		Status:         models.ModifyRequestStatusPending,
	})
	employees := newEmployeeRepoStub(itSupportEmployee())
	employees.updateErr = fmt.Errorf("update employee: %w", &pq.Error{Code: "23505"})
	svc, mock, _ := newModifyRequestFixture(t, requests, employees)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), adminIdentity, 4, "")
	require.Error(t, err)
	assert.True(t, appErrors.ErrConflict.Is(err))
	assert.Equal(t, models.ModifyRequestStatusPending, requests.requests[4].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestApproveMissingEmployeeIsInvalidState(t *testing.T) {
	requests := newModifyRequestRepoStub(&models.ModifyRequest{
		ID:             4,
		EmployeeID:     99,
		Kind:           models.ModifyRequestKindField,
		FieldName:      strPtr("lastName"),
		RequestedValue: strPtr("Reyes"),
		Status:         models.ModifyRequestStatusPending,
	})
	svc, mock, _ := newModifyRequestFixture(t, requests, newEmployeeRepoStub())

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), adminIdentity, 4, "")
	require.Error(t, err)
	assert.True(t, appErrors.ErrInvalidState.Is(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestApproveNotFound(t *testing.T) {
	svc, mock, _ := newModifyRequestFixture(t, newModifyRequestRepoStub(), newEmployeeRepoStub())

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), adminIdentity, 404, "")
	require.Error(t, err)
	assert.True(t, appErrors.ErrNotFound.Is(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestApproveRequiresAdmin(t *testing.T) {
	svc, mock, _ := newModifyRequestFixture(t, newModifyRequestRepoStub(), newEmployeeRepoStub())

	_, err := svc.Approve(context.Background(), hrIdentity, 1, "")
	require.Error(t, err)
	assert.True(t, appErrors.ErrForbidden.Is(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestRejectKeepsEmployee(t *testing.T) {
	requests := newModifyRequestRepoStub(&models.ModifyRequest{
		ID:             6,
		EmployeeID:     42,
		Kind:           models.ModifyRequestKindField,
		FieldName:      strPtr("position"),
		RequestedValue: strPtr("DevOps Engineer"),
		Status:         models.ModifyRequestStatusPending,
	})
	employees := newEmployeeRepoStub(itSupportEmployee())
	svc, mock, _ := newModifyRequestFixture(t, requests, employees)

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.Reject(context.Background(), adminIdentity, 6, "insufficient justification")
	require.NoError(t, err)
	assert.Equal(t, models.ModifyRequestStatusRejected, result.Status)
	require.NotNil(t, result.AdminComments)
	assert.Equal(t, "insufficient justification", *result.AdminComments)
	assert.Equal(t, "IT Support", employees.employees[42].Position)
	assert.Equal(t, 0, employees.updates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestRejectRequiresComment(t *testing.T) {
	requests := newModifyRequestRepoStub(&models.ModifyRequest{ID: 6, EmployeeID: 42, Status: models.ModifyRequestStatusPending})
	svc, mock, _ := newModifyRequestFixture(t, requests, newEmployeeRepoStub())

	_, err := svc.Reject(context.Background(), adminIdentity, 6, "   ")
	require.Error(t, err)
	assert.True(t, appErrors.ErrValidation.Is(err))
	assert.Equal(t, models.ModifyRequestStatusPending, requests.requests[6].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestRejectAfterApproveIsInvalidState(t *testing.T) {
	requests := newModifyRequestRepoStub(&models.ModifyRequest{ID: 8, EmployeeID: 42, Status: models.ModifyRequestStatusApproved})
	svc, mock, _ := newModifyRequestFixture(t, requests, newEmployeeRepoStub())

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Reject(context.Background(), adminIdentity, 8, "too late")
	require.Error(t, err)
	assert.True(t, appErrors.ErrInvalidState.Is(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestPendingFiltersStatus(t *testing.T) {
	requests := newModifyRequestRepoStub(
		&models.ModifyRequest{ID: 1, Status: models.ModifyRequestStatusPending},
		&models.ModifyRequest{ID: 2, Status: models.ModifyRequestStatusApproved},
	)
	svc, _, _ := newModifyRequestFixture(t, requests, newEmployeeRepoStub())

	items, err := svc.Pending(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, models.ModifyRequestStatusPending, requests.filter.Status)
	assert.Equal(t, 10, requests.filter.Limit)
}

func TestModifyRequestListRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newModifyRequestFixture(t, newModifyRequestRepoStub(), newEmployeeRepoStub())

	_, err := svc.List(context.Background(), dto.ModifyRequestQuery{Status: "DONE"})
	require.Error(t, err)
	assert.True(t, appErrors.ErrValidation.Is(err))
}

func TestModifyRequestDelete(t *testing.T) {
	requests := newModifyRequestRepoStub(&models.ModifyRequest{ID: 2, Status: models.ModifyRequestStatusRejected})
	svc, _, audit := newModifyRequestFixture(t, requests, newEmployeeRepoStub())

	require.NoError(t, svc.Delete(context.Background(), adminIdentity, 2))
	assert.Empty(t, requests.requests)
	assert.Len(t, audit.logs, 1)

	err := svc.Delete(context.Background(), adminIdentity, 2)
	assert.True(t, appErrors.ErrNotFound.Is(err))

	err = svc.Delete(context.Background(), hrIdentity, 2)
	assert.True(t, appErrors.ErrForbidden.Is(err))
}

func TestNormalizeSnapshotPayload(t *testing.T) {
	out, err := normalizeSnapshotPayload(json.RawMessage(`{ "a" : "b" }`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":"b"}`, out)

	out, err = normalizeSnapshotPayload(json.RawMessage(`"{\"a\":\"b\"}"`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":"b"}`, out)

	out, err = normalizeSnapshotPayload(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = normalizeSnapshotPayload(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}
