package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/highroller/payroll-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	dbQueryDuration   *prometheus.HistogramVec
	modifyRequests    *prometheus.CounterVec
	geocodingDuration *prometheus.HistogramVec
	logins            *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	modifyRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_modify_requests_total",
		Help: "Modify requests by workflow transition",
	}, []string{"transition"})

	geocodingDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payroll_geocoding_duration_seconds",
		Help:    "Latency of address geocoding lookups",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"outcome"})

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, dbQueryDuration, modifyRequests, geocodingDuration, logins, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		dbQueryDuration:   dbQueryDuration,
		modifyRequests:    modifyRequests,
		geocodingDuration: geocodingDuration,
		logins:            logins,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordModifyRequest counts a workflow transition: submitted, approved or rejected.
func (m *MetricsService) RecordModifyRequest(status models.ModifyRequestStatus) {
	if m == nil {
		return
	}
	transition := "submitted"
	switch status {
	case models.ModifyRequestStatusApproved:
		transition = "approved"
	case models.ModifyRequestStatusRejected:
		transition = "rejected"
	}
	m.modifyRequests.WithLabelValues(transition).Inc()
}

// ObserveGeocoding records a lookup duration by outcome.
func (m *MetricsService) ObserveGeocoding(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.geocodingDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordLogin counts login attempts as "success" or "failure".
func (m *MetricsService) RecordLogin(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.logins.WithLabelValues(result).Inc()
}
