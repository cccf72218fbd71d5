package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/highroller/payroll-api/internal/models"
	"github.com/highroller/payroll-api/internal/service"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
)

type authenticatorStub struct {
	sessions map[string]*models.Session
	tokens   []string
}

func (a *authenticatorStub) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	a.tokens = append(a.tokens, token)
	if session, ok := a.sessions[token]; ok {
		return session, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
}

type auditRecorder struct {
	logs []*models.AuditLog
}

func (a *auditRecorder) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func newAuthenticator() *authenticatorStub {
	return &authenticatorStub{sessions: map[string]*models.Session{
		"admin-token": {ID: "s1", UserID: 1, Username: "admin", Role: models.RoleAdmin},
		"hr-token":    {ID: "s2", UserID: 2, Username: "maria", Role: models.RoleHR},
	}}
}

func newRouter(auth *authenticatorStub, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Session(auth, "PAYROLLSESSION")}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		identity, _ := IdentityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"username": identity.Username, "sid": SessionIDFromContext(c)})
	})
	r.GET("/protected/:id", handlers...)
	return r
}

func TestSessionAcceptsCookieAndBearer(t *testing.T) {
	auth := newAuthenticator()
	r := newRouter(auth)

	req := httptest.NewRequest(http.MethodGet, "/protected/1", nil)
	req.AddCookie(&http.Cookie{Name: "PAYROLLSESSION", Value: "hr-token"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"maria"`)
	assert.Contains(t, rec.Body.String(), `"sid":"s2"`)

	req = httptest.NewRequest(http.MethodGet, "/protected/1", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"hr-token", "admin-token"}, auth.tokens)
}

func TestSessionRejectsMissingOrUnknownToken(t *testing.T) {
	r := newRouter(newAuthenticator())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected/1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/protected/1", nil)
	req.Header.Set("Authorization", "Token admin-token")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected/1", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "session expired")
}

func TestRequireRoles(t *testing.T) {
	r := newRouter(newAuthenticator(), RequireRoles(models.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/protected/1", nil)
	req.Header.Set("Authorization", "Bearer hr-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected/1", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	audit := &auditRecorder{}
	r := newRouter(newAuthenticator(), Audit(audit, nil, AuditActionExportPayslip, "salary_period"))

	req := httptest.NewRequest(http.MethodGet, "/protected/7?format=pdf", nil)
	req.Header.Set("Authorization", "Bearer hr-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, audit.logs, 1)
	log := audit.logs[0]
	assert.Equal(t, AuditActionExportPayslip, log.Action)
	require.NotNil(t, log.UserID)
	assert.Equal(t, int64(2), *log.UserID)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "7", *log.ResourceID)
	assert.Contains(t, string(log.NewValues), `"query":"format=pdf"`)
}

func TestRateLimitBlocksAfterQuota(t *testing.T) {
	limit, err := RateLimit("2-M", nil)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", limit, func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.9:5000"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	_, err = RateLimit("lots", nil)
	assert.Error(t, err)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	metrics := service.NewMetricsService()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/employees/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/employees/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wp-admin", nil))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `path="/employees/:id"`)
	assert.Contains(t, body, `path="unmatched"`)
	assert.NotContains(t, body, "wp-admin")
}
