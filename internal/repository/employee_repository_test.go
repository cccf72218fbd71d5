package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/highroller/payroll-api/internal/models"
)

var employeeColumnNames = []string{"id", "first_name", "last_name", "middle_initial", "suffix", "email", "cellphone", "birthday", "date_hired",
	"department", "position", "salary", "religion", "blood_type", "sss", "philhealth", "pagibig", "tin", "image",
	"address_house", "address_barangay", "address_city", "address_province", "address_zip", "address_country",
	"created_at", "updated_at"}

func employeeRow(rows *sqlmock.Rows, id int64, position string, salary float64) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, "Ana", "Reyes", "B", "", "ana@example.com", "9171234567", nil, nil,
		"IT", position, salary, "", "O+", "", "", "", "", "",
		"12 Mabini St", "Lahug", "Cebu City", "Cebu", "6000", "Philippines", now, now)
}

func TestEmployeeRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM employees WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(employeeRow(sqlmock.NewRows(employeeColumnNames), 42, "IT Support", 45000))

	employee, err := repo.FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "IT Support", employee.Position)
	assert.Equal(t, 45000.0, employee.Salary)
	assert.Equal(t, "Cebu", employee.Address().Province)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryFindByIDForUpdateLocksRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM employees WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	_, err = repo.FindByIDForUpdate(context.Background(), tx, 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery("INSERT INTO employees").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	employee := &models.Employee{FirstName: "Ana", LastName: "Reyes", Email: "ana@example.com", Position: "IT Support", Salary: 45000}
	require.NoError(t, repo.Create(context.Background(), nil, employee))
	assert.Equal(t, int64(42), employee.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryCreateDuplicateEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery("INSERT INTO employees").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "employees_email_key"})

	err := repo.Create(context.Background(), nil, &models.Employee{FirstName: "Ana", LastName: "Reyes", Email: "ana@example.com"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(sql.ErrNoRows))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectExec("UPDATE employees SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), nil, &models.Employee{ID: 99})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryEmailTaken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM employees WHERE LOWER(email) = LOWER($1) AND id <> $2)")).
		WithArgs("ana@example.com", int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.EmailTaken(context.Background(), nil, "ana@example.com", 42)
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery("FROM employees WHERE 1=1 AND department = \\$1 AND \\(LOWER\\(first_name\\) LIKE \\$2 .* ORDER BY last_name DESC LIMIT 10 OFFSET 10").
		WithArgs("IT", "%ana%").
		WillReturnRows(employeeRow(sqlmock.NewRows(employeeColumnNames), 1, "IT Support", 45000))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM employees WHERE 1=1 AND department").
		WithArgs("IT", "%ana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	list, total, err := repo.List(context.Background(), models.EmployeeFilter{
		Department: "IT", Search: "Ana", Page: 2, PageSize: 10, SortBy: "lastName", SortOrder: "desc",
	})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees WHERE id = $1")).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees WHERE id = $1")).WithArgs(int64(6)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 5))
	assert.ErrorIs(t, repo.Delete(context.Background(), 6), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
