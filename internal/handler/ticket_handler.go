package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/highroller/payroll-api/internal/dto"
	"github.com/highroller/payroll-api/internal/models"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/response"
)

type ticketService interface {
	Create(ctx context.Context, req dto.CreateTicketRequest) (*models.Ticket, error)
	List(ctx context.Context) ([]models.Ticket, error)
	Get(ctx context.Context, id int64) (*models.Ticket, error)
	UpdateStatus(ctx context.Context, id int64, req dto.UpdateTicketStatusRequest) (*models.Ticket, error)
	Delete(ctx context.Context, id int64) error
}

// TicketHandler exposes support ticket endpoints.
type TicketHandler struct {
	tickets ticketService
}

// NewTicketHandler constructs TicketHandler.
func NewTicketHandler(tickets ticketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// List godoc
// @Summary List tickets
// @Tags Tickets
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /tickets [get]
func (h *TicketHandler) List(c *gin.Context) {
	tickets, err := h.tickets.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tickets, nil)
}

// Create godoc
// @Summary Open a ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Param payload body dto.CreateTicketRequest true "Ticket"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tickets [post]
func (h *TicketHandler) Create(c *gin.Context) {
	var req dto.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ticket, err := h.tickets.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ticket)
}

// Get godoc
// @Summary Get ticket detail
// @Tags Tickets
// @Produce json
// @Param id path int true "Ticket ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tickets/{id} [get]
func (h *TicketHandler) Get(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	ticket, err := h.tickets.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}

// UpdateStatus godoc
// @Summary Change ticket status
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param payload body dto.UpdateTicketStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tickets/{id}/status [put]
func (h *TicketHandler) UpdateStatus(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ticket, err := h.tickets.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}

// Delete godoc
// @Summary Delete a ticket
// @Tags Tickets
// @Produce json
// @Param id path int true "Ticket ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /tickets/{id} [delete]
func (h *TicketHandler) Delete(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.tickets.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
