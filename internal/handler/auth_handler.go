package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/highroller/payroll-api/internal/middleware"
	"github.com/highroller/payroll-api/internal/models"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/response"
)

type authService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, sessionID string, identity models.Identity, meta models.LoginRequest) error
	ListUsers(ctx context.Context, identity models.Identity, filter models.UserFilter) ([]models.User, *models.Pagination, error)
	SessionTTL() time.Duration
}

// CookieConfig controls the session cookie written on login.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
	cookie  CookieConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{service: svc, cookie: cookie}
}

// Signup godoc
// @Summary Create HR account
// @Description Registers a user with the HR role
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SignupRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid signup payload"))
		return
	}

	user, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, models.NewSessionInfo(models.Identity{UserID: user.ID, Username: user.Username, Role: user.Role}))
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate by username and password; sets the session cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setCookie(c, res.Token, int(h.service.SessionTTL().Seconds()))
	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Logout current session
// @Description Ends the session and clears the cookie
// @Tags Authentication
// @Produce json
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /users/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}

	meta := models.LoginRequest{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if err := h.service.Logout(c.Request.Context(), middleware.SessionIDFromContext(c), identity, meta); err != nil {
		response.Error(c, err)
		return
	}

	h.setCookie(c, "", -1)
	response.NoContent(c)
}

// Session godoc
// @Summary Get current session
// @Description Returns the authenticated user's info
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, models.NewSessionInfo(identity), nil)
}

// ListUsers godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param role query string false "ADMIN or HR"
// @Param search query string false "Search by username"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [get]
func (h *AuthHandler) ListUsers(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}

	filter := models.UserFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 20),
	}
	if role := strings.ToUpper(strings.TrimSpace(c.Query("role"))); role != "" {
		r := models.UserRole(role)
		filter.Role = &r
	}

	users, pagination, err := h.service.ListUsers(c.Request.Context(), identity, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	if h.cookie.Name == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
