package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/highroller/payroll-api/internal/dto"
	"github.com/highroller/payroll-api/internal/models"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/response"
)

type modifyRequestService interface {
	Submit(ctx context.Context, identity models.Identity, req dto.SubmitModifyRequest) (*models.ModifyRequest, error)
	Approve(ctx context.Context, identity models.Identity, id int64, comment string) (*models.ModifyRequest, error)
	Reject(ctx context.Context, identity models.Identity, id int64, comment string) (*models.ModifyRequest, error)
	List(ctx context.Context, query dto.ModifyRequestQuery) ([]models.ModifyRequest, error)
	Pending(ctx context.Context, limit, offset int) ([]models.ModifyRequest, error)
	Get(ctx context.Context, id int64) (*models.ModifyRequest, error)
	Delete(ctx context.Context, identity models.Identity, id int64) error
}

// ModifyRequestHandler exposes the employee change approval workflow.
type ModifyRequestHandler struct {
	service modifyRequestService
}

// NewModifyRequestHandler constructs ModifyRequestHandler.
func NewModifyRequestHandler(svc modifyRequestService) *ModifyRequestHandler {
	return &ModifyRequestHandler{service: svc}
}

// List godoc
// @Summary List modify requests
// @Tags ModifyRequests
// @Produce json
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Param requestedBy query string false "Filter by requester username"
// @Param employeeId query int false "Filter by employee"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /modify-requests [get]
func (h *ModifyRequestHandler) List(c *gin.Context) {
	query := dto.ModifyRequestQuery{
		Status:      models.ModifyRequestStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		RequestedBy: c.Query("requestedBy"),
		Limit:       queryInt(c, "limit", 0),
		Offset:      queryInt(c, "offset", 0),
	}
	if raw := c.Query("employeeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid employeeId"))
			return
		}
		query.EmployeeID = id
	}

	requests, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Pending godoc
// @Summary List pending modify requests
// @Tags ModifyRequests
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /modify-requests/pending [get]
func (h *ModifyRequestHandler) Pending(c *gin.Context) {
	requests, err := h.service.Pending(c.Request.Context(), queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Submit godoc
// @Summary Submit a modify request
// @Description Proposes a single field edit or a full snapshot edit of an employee
// @Tags ModifyRequests
// @Accept json
// @Produce json
// @Param payload body dto.SubmitModifyRequest true "Change proposal"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /modify-requests [post]
func (h *ModifyRequestHandler) Submit(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req dto.SubmitModifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.service.Submit(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Get godoc
// @Summary Get modify request detail
// @Tags ModifyRequests
// @Produce json
// @Param id path int true "Modify request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /modify-requests/{id} [get]
func (h *ModifyRequestHandler) Get(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	request, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Approve godoc
// @Summary Approve a pending modify request
// @Description Applies the change to the employee and resolves the request atomically
// @Tags ModifyRequests
// @Accept json
// @Produce json
// @Param id path int true "Modify request ID"
// @Param payload body dto.ResolveModifyRequest false "Optional comment"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /modify-requests/{id}/approve [put]
func (h *ModifyRequestHandler) Approve(c *gin.Context) {
	h.resolve(c, h.service.Approve)
}

// Reject godoc
// @Summary Reject a pending modify request
// @Tags ModifyRequests
// @Accept json
// @Produce json
// @Param id path int true "Modify request ID"
// @Param payload body dto.ResolveModifyRequest true "Rejection comment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /modify-requests/{id}/reject [put]
func (h *ModifyRequestHandler) Reject(c *gin.Context) {
	h.resolve(c, h.service.Reject)
}

// Delete godoc
// @Summary Delete a modify request
// @Tags ModifyRequests
// @Produce json
// @Param id path int true "Modify request ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /modify-requests/{id} [delete]
func (h *ModifyRequestHandler) Delete(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), identity, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

type resolveFunc func(ctx context.Context, identity models.Identity, id int64, comment string) (*models.ModifyRequest, error)

func (h *ModifyRequestHandler) resolve(c *gin.Context, fn resolveFunc) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var req dto.ResolveModifyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	request, err := fn(c.Request.Context(), identity, id, req.Comments)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
