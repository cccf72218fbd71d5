package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/highroller/payroll-api/internal/models"
)

var modifyRequestColumnNames = []string{"id", "employee_id", "kind", "field_name", "current_value", "requested_value", "original_data", "updated_data",
	"reason", "status", "requested_by", "requested_by_role", "request_date", "processed_date", "processed_by", "admin_comments"}

func TestModifyRequestRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewModifyRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO modify_requests")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	field, current, requested := "position", "IT Support", "DevOps Engineer"
	request := &models.ModifyRequest{
		EmployeeID:      42,
		Kind:            models.ModifyRequestKindField,
		FieldName:       &field,
		CurrentValue:    &current,
		RequestedValue:  &requested,
		Reason:          "promotion",
		RequestedBy:     "jose",
		RequestedByRole: models.RoleHR,
	}
	require.NoError(t, repo.Create(context.Background(), request))
	assert.Equal(t, int64(3), request.ID)
	assert.Equal(t, models.ModifyRequestStatusPending, request.Status)
	assert.False(t, request.RequestDate.IsZero())

	rows := sqlmock.NewRows(modifyRequestColumnNames).
		AddRow(3, 42, "FIELD", field, current, requested, nil, nil, "promotion", "PENDING", "jose", "HR", time.Now(), nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM modify_requests WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "DevOps Engineer", *found.RequestedValue)
	assert.Nil(t, found.ProcessedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestRepositoryGetForUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewModifyRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM modify_requests WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(8)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	_, err = repo.GetByIDForUpdate(context.Background(), tx, 8)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewModifyRequestRepository(db)

	rows := sqlmock.NewRows(modifyRequestColumnNames).
		AddRow(4, 42, "SNAPSHOT", nil, nil, nil, `{"position":"IT Support"}`, `{"position":"DevOps Engineer"}`, "", "PENDING", "jose", "HR", time.Now(), nil, nil, nil)
	mock.ExpectQuery("FROM modify_requests WHERE status = \\$1 AND requested_by = \\$2 ORDER BY request_date DESC, id DESC LIMIT 50 OFFSET 0").
		WithArgs(models.ModifyRequestStatusPending, "jose").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.ModifyRequestFilter{
		Status:      models.ModifyRequestStatusPending,
		RequestedBy: "jose",
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ModifyRequestKindSnapshot, list[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestRepositoryListUnfilteredClampsLimit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewModifyRequestRepository(db)

	mock.ExpectQuery("FROM modify_requests ORDER BY request_date DESC, id DESC LIMIT 50 OFFSET 0").
		WillReturnRows(sqlmock.NewRows(modifyRequestColumnNames))

	list, err := repo.List(context.Background(), models.ModifyRequestFilter{Limit: 1000, Offset: -3})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestRepositoryResolveGuardsPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewModifyRequestRepository(db)

	comment := "insufficient justification"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE modify_requests SET status = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("WHERE id = \\? AND status = 'PENDING'").
		WillReturnResult(sqlmock.NewResult(0, 0))

	params := ResolveParams{
		ID:            5,
		Status:        models.ModifyRequestStatusRejected,
		ProcessedBy:   "maria",
		ProcessedDate: time.Now(),
		AdminComments: &comment,
	}
	require.NoError(t, repo.Resolve(context.Background(), nil, params))
	assert.ErrorIs(t, repo.Resolve(context.Background(), nil, params), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyRequestRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewModifyRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM modify_requests WHERE id = $1")).WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 9), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
