package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/highroller/payroll-api/internal/dto"
	"github.com/highroller/payroll-api/internal/models"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/validation"
)

type ticketStore interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	List(ctx context.Context) ([]models.Ticket, error)
	FindByID(ctx context.Context, id int64) (*models.Ticket, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

// TicketService manages support tickets.
type TicketService struct {
	repo      ticketStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(repo ticketStore, validate *validator.Validate, logger *zap.Logger) *TicketService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{repo: repo, validator: validate, logger: logger}
}

// Create opens a ticket in the "under process" state.
func (s *TicketService) Create(ctx context.Context, req dto.CreateTicketRequest) (*models.Ticket, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Message(err, "name and category are required"))
	}
	ticket := &models.Ticket{
		Name:     validation.Sanitize(req.Name),
		Category: validation.Sanitize(req.Category),
		Details:  validation.Sanitize(req.Details),
		Status:   models.TicketStatusUnderProcess,
	}
	if ticket.Name == "" || ticket.Category == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name and category are required")
	}
	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create ticket")
	}
	return ticket, nil
}

// List returns every ticket, newest first.
func (s *TicketService) List(ctx context.Context) ([]models.Ticket, error) {
	tickets, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tickets")
	}
	return tickets, nil
}

// Get returns a ticket by id.
func (s *TicketService) Get(ctx context.Context, id int64) (*models.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ticket not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ticket")
	}
	return ticket, nil
}

// UpdateStatus changes the ticket status and returns the updated ticket.
func (s *TicketService) UpdateStatus(ctx context.Context, id int64, req dto.UpdateTicketStatusRequest) (*models.Ticket, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validation.Message(err, "status is required"))
	}
	status := validation.Sanitize(req.Status)
	if status == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status is required")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ticket not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update ticket")
	}
	return s.Get(ctx, id)
}

// Delete removes a ticket.
func (s *TicketService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "ticket not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete ticket")
	}
	return nil
}
