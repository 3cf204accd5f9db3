package cron_feature

import (
	"supplier-portal/internal/common/api"
	"supplier-portal/internal/common/models"
	"supplier-portal/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type CronApi struct {
	cronController *CronController
	auth           *middleware.Auth
}

func NewCronApi(cronController *CronController, auth *middleware.Auth) api.Route {
	return &CronApi{
		cronController: cronController,
		auth:           auth,
	}
}

func (h *CronApi) Setup(app *fiber.App) {
	app.Get("/api/cron", h.auth.Handler(), middleware.RequireRole(models.UserTypeAdmin), h.cronController.ListEntries)
}
