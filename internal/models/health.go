package models

import "time"

// Health status values.
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
)

// HealthReport is returned by the health endpoint.
type HealthReport struct {
	Status        string            `json:"status"`
	Checks        map[string]string `json:"checks"`
	EmployeeCount int               `json:"employeeCount"`
	CheckedAt     time.Time         `json:"checkedAt"`
}

// Healthy reports whether every dependency check passed.
func (h HealthReport) Healthy() bool {
	return h.Status == HealthStatusHealthy
}
