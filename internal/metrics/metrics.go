// Package metrics exposes Prometheus collectors for HTTP traffic, sync runs
// and outbound notifications.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics methods are safe to call on a nil receiver so services can run without it.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	syncRuns        *prometheus.CounterVec
	syncRecords     *prometheus.CounterVec
	syncDuration    *prometheus.HistogramVec
	notifications   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		syncRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erp_sync_runs_total",
				Help: "Sync runs by type and terminal status",
			},
			[]string{"type", "status"},
		),
		syncRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erp_sync_records_total",
				Help: "Records handled by sync runs by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		syncDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "erp_sync_duration_seconds",
				Help:    "Wall time of sync runs",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
			[]string{"type"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_notifications_total",
				Help: "Stock notifications by kind and result",
			},
			[]string{"kind", "result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.syncRuns,
		m.syncRecords,
		m.syncDuration,
		m.notifications,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware records request count and latency keyed by the matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		path := c.Route().Path
		m.requests.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) SyncFinished(syncType, status string, elapsed time.Duration, created, updated, failed int) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(syncType, status).Inc()
	m.syncDuration.WithLabelValues(syncType).Observe(elapsed.Seconds())
	m.syncRecords.WithLabelValues(syncType, "created").Add(float64(created))
	m.syncRecords.WithLabelValues(syncType, "updated").Add(float64(updated))
	m.syncRecords.WithLabelValues(syncType, "failed").Add(float64(failed))
}

func (m *Metrics) NotificationSent(kind string, err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}
