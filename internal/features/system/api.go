package system

import (
	"context"
	"time"

	"supplier-portal/internal/common/api"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SystemApi serves the API docs and a readiness probe.
type SystemApi struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewSystemApi(db *gorm.DB, rdb *redis.Client) api.Route {
	return &SystemApi{db: db, rdb: rdb}
}

func (h *SystemApi) Setup(app *fiber.App) {
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/healthz", h.health)
}

func (h *SystemApi) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	checks := fiber.Map{"database": "ok"}
	healthy := true

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unreachable"
		healthy = false
	}
	if h.rdb != nil {
		checks["redis"] = "ok"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unreachable"
			healthy = false
		}
	}

	status := fiber.StatusOK
	if !healthy {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"healthy": healthy, "checks": checks})
}
