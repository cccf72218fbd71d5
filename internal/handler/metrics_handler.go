package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/highroller/payroll-api/internal/models"
	"github.com/highroller/payroll-api/internal/service"
)

type healthChecker interface {
	Check(ctx context.Context) models.HealthReport
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	health  healthChecker
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, health healthChecker) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, health: health}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health godoc
// @Summary Dependency health
// @Description Pings the database and the session store and reports the employee count
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthReport
// @Failure 500 {object} models.HealthReport
// @Router /health [get]
func (h *MetricsHandler) Health(c *gin.Context) {
	report := h.health.Check(c.Request.Context())
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusInternalServerError
	}
	c.JSON(status, report)
}

// Ready responds once the process is serving requests.
func (h *MetricsHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
