package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/highroller/payroll-api/internal/models"
)

const employeeColumns = `id, first_name, last_name, middle_initial, suffix, email, cellphone, birthday, date_hired,
       department, position, salary, religion, blood_type, sss, philhealth, pagibig, tin, image,
       address_house, address_barangay, address_city, address_province, address_zip, address_country,
       created_at, updated_at`

// EmployeeRepository provides database access for employee records.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs the repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID returns an employee or sql.ErrNoRows.
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return &employee, nil
}

// FindByIDForUpdate locks the employee row inside exec's transaction.
func (r *EmployeeRepository) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 FOR UPDATE`
	var employee models.Employee
	if err := sqlx.GetContext(ctx, r.exec(exec), &employee, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock employee: %w", err)
	}
	return &employee, nil
}

// ExistsByID reports whether an employee row exists.
func (r *EmployeeRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check employee exists: %w", err)
	}
	return exists, nil
}

// EmailTaken reports whether another employee already uses email. excludeID may be zero.
func (r *EmployeeRepository) EmailTaken(ctx context.Context, exec sqlx.ExtContext, email string, excludeID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM employees WHERE LOWER(email) = LOWER($1) AND id <> $2)`
	var taken bool
	if err := sqlx.GetContext(ctx, r.exec(exec), &taken, query, email, excludeID); err != nil {
		return false, fmt.Errorf("check employee email: %w", err)
	}
	return taken, nil
}

// List returns employees matching the filter with the total count.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	baseQuery := `FROM employees WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Position != "" {
		conditions = append(conditions, fmt.Sprintf("position = $%d", len(args)+1))
		args = append(args, filter.Position)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"id":         "id",
		"lastName":   "last_name",
		"firstName":  "first_name",
		"department": "department",
		"position":   "position",
		"salary":     "salary",
		"createdAt":  "created_at",
	}
	sortBy, ok := allowedSorts[filter.SortBy]
	if !ok {
		sortBy = "id"
	}
	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", employeeColumns, baseQuery, sortBy, sortOrder, pageSize, offset)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}
	return employees, total, nil
}

// ListAll returns every employee ordered by last name, used for roster exports.
func (r *EmployeeRepository) ListAll(ctx context.Context) ([]models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY last_name, first_name`
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("list all employees: %w", err)
	}
	return employees, nil
}

// Count returns the number of employee rows.
func (r *EmployeeRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM employees`); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return total, nil
}

// Create inserts the employee and assigns its generated identifier.
func (r *EmployeeRepository) Create(ctx context.Context, exec sqlx.ExtContext, employee *models.Employee) error {
	now := time.Now().UTC()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now

	const query = `INSERT INTO employees (first_name, last_name, middle_initial, suffix, email, cellphone, birthday, date_hired,
	department, position, salary, religion, blood_type, sss, philhealth, pagibig, tin, image,
	address_house, address_barangay, address_city, address_province, address_zip, address_country, created_at, updated_at)
VALUES (:first_name, :last_name, :middle_initial, :suffix, :email, :cellphone, :birthday, :date_hired,
	:department, :position, :salary, :religion, :blood_type, :sss, :philhealth, :pagibig, :tin, :image,
	:address_house, :address_barangay, :address_city, :address_province, :address_zip, :address_country, :created_at, :updated_at)
RETURNING id`

	target := r.exec(exec)
	bound, args, err := target.BindNamed(query, employee)
	if err != nil {
		return fmt.Errorf("bind employee insert: %w", err)
	}
	if err := target.QueryRowxContext(ctx, bound, args...).Scan(&employee.ID); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// Update persists every mutable column. Returns sql.ErrNoRows when the row is gone.
func (r *EmployeeRepository) Update(ctx context.Context, exec sqlx.ExtContext, employee *models.Employee) error {
	employee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE employees SET first_name = :first_name, last_name = :last_name, middle_initial = :middle_initial,
	suffix = :suffix, email = :email, cellphone = :cellphone, birthday = :birthday, date_hired = :date_hired,
	department = :department, position = :position, salary = :salary, religion = :religion, blood_type = :blood_type,
	sss = :sss, philhealth = :philhealth, pagibig = :pagibig, tin = :tin, image = :image,
	address_house = :address_house, address_barangay = :address_barangay, address_city = :address_city,
	address_province = :address_province, address_zip = :address_zip, address_country = :address_country,
	updated_at = :updated_at
WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, employee)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check employee update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the employee row. Returns sql.ErrNoRows when nothing was deleted.
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check employee delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
