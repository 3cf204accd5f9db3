package metrics

import "github.com/gofiber/fiber/v2"

type MetricsApi struct {
	metrics *Metrics
}

func NewMetricsApi(m *Metrics) *MetricsApi {
	return &MetricsApi{metrics: m}
}

func (h *MetricsApi) Setup(app *fiber.App) {
	app.Get("/metrics", h.metrics.Handler())
}
