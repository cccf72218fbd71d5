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

const modifyRequestColumns = `id, employee_id, kind, field_name, current_value, requested_value, original_data, updated_data,
       reason, status, requested_by, requested_by_role, request_date, processed_date, processed_by, admin_comments`

// ModifyRequestRepository persists the employee change request workflow.
type ModifyRequestRepository struct {
	db *sqlx.DB
}

// NewModifyRequestRepository constructs the repository.
func NewModifyRequestRepository(db *sqlx.DB) *ModifyRequestRepository {
	return &ModifyRequestRepository{db: db}
}

func (r *ModifyRequestRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a new request row and assigns its identifier.
func (r *ModifyRequestRepository) Create(ctx context.Context, request *models.ModifyRequest) error {
	if request.Status == "" {
		request.Status = models.ModifyRequestStatusPending
	}
	if request.RequestDate.IsZero() {
		request.RequestDate = time.Now().UTC()
	}
	const query = `INSERT INTO modify_requests
	(employee_id, kind, field_name, current_value, requested_value, original_data, updated_data, reason, status,
	 requested_by, requested_by_role, request_date)
	VALUES (:employee_id, :kind, :field_name, :current_value, :requested_value, :original_data, :updated_data, :reason, :status,
	 :requested_by, :requested_by_role, :request_date)
	RETURNING id`
	bound, args, err := r.db.BindNamed(query, request)
	if err != nil {
		return fmt.Errorf("bind modify request insert: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, bound, args...).Scan(&request.ID); err != nil {
		return fmt.Errorf("create modify request: %w", err)
	}
	return nil
}

// GetByID fetches a request by identifier.
func (r *ModifyRequestRepository) GetByID(ctx context.Context, id int64) (*models.ModifyRequest, error) {
	query := `SELECT ` + modifyRequestColumns + ` FROM modify_requests WHERE id = $1`
	var request models.ModifyRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get modify request: %w", err)
	}
	return &request, nil
}

// GetByIDForUpdate locks the request row inside exec's transaction.
func (r *ModifyRequestRepository) GetByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.ModifyRequest, error) {
	query := `SELECT ` + modifyRequestColumns + ` FROM modify_requests WHERE id = $1 FOR UPDATE`
	var request models.ModifyRequest
	if err := sqlx.GetContext(ctx, r.exec(exec), &request, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock modify request: %w", err)
	}
	return &request, nil
}

// List returns requests matching the filter, newest first.
func (r *ModifyRequestRepository) List(ctx context.Context, filter models.ModifyRequestFilter) ([]models.ModifyRequest, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 3)
	builder.WriteString(`SELECT ` + modifyRequestColumns + ` FROM modify_requests`)

	conditions := make([]string, 0, 3)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.RequestedBy != "" {
		args = append(args, filter.RequestedBy)
		conditions = append(conditions, fmt.Sprintf("requested_by = $%d", len(args)))
	}
	if filter.EmployeeID > 0 {
		args = append(args, filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY request_date DESC, id DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.ModifyRequest
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list modify requests: %w", err)
	}
	return requests, nil
}

// ResolveParams groups the columns written when a request is approved or rejected.
type ResolveParams struct {
	ID            int64
	Status        models.ModifyRequestStatus
	ProcessedBy   string
	ProcessedDate time.Time
	AdminComments *string
}

// Resolve moves a PENDING request to its terminal status. Returns sql.ErrNoRows when the row
// is missing or no longer pending.
func (r *ModifyRequestRepository) Resolve(ctx context.Context, exec sqlx.ExtContext, params ResolveParams) error {
	query := fmt.Sprintf(`UPDATE modify_requests SET status = :status, processed_by = :processed_by,
	processed_date = :processed_date, admin_comments = :admin_comments
	WHERE id = :id AND status = '%s'`, models.ModifyRequestStatusPending)
	result, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, map[string]interface{}{
		"id":             params.ID,
		"status":         params.Status,
		"processed_by":   params.ProcessedBy,
		"processed_date": params.ProcessedDate,
		"admin_comments": params.AdminComments,
	})
	if err != nil {
		return fmt.Errorf("resolve modify request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check modify request update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a request regardless of status.
func (r *ModifyRequestRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM modify_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete modify request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check modify request delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
