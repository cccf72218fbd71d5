package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/highroller/payroll-api/internal/models"
)

// TicketRepository persists support tickets.
type TicketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository constructs the repository.
func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Create inserts a ticket and assigns its identifier.
func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	if ticket.Status == "" {
		ticket.Status = models.TicketStatusUnderProcess
	}
	now := time.Now().UTC()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	const query = `INSERT INTO tickets (name, category, details, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, ticket.Name, ticket.Category, ticket.Details, ticket.Status, ticket.CreatedAt, ticket.UpdatedAt).Scan(&ticket.ID); err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

// List returns all tickets, newest first.
func (r *TicketRepository) List(ctx context.Context) ([]models.Ticket, error) {
	const query = `SELECT id, name, category, details, status, created_at, updated_at FROM tickets ORDER BY created_at DESC, id DESC`
	var tickets []models.Ticket
	if err := r.db.SelectContext(ctx, &tickets, query); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// FindByID returns a ticket or sql.ErrNoRows.
func (r *TicketRepository) FindByID(ctx context.Context, id int64) (*models.Ticket, error) {
	const query = `SELECT id, name, category, details, status, created_at, updated_at FROM tickets WHERE id = $1`
	var ticket models.Ticket
	if err := r.db.GetContext(ctx, &ticket, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	return &ticket, nil
}

// UpdateStatus sets the status. Returns sql.ErrNoRows when the ticket is missing.
func (r *TicketRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tickets SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update ticket status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check ticket update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a ticket. Returns sql.ErrNoRows when nothing was deleted.
func (r *TicketRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check ticket delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
