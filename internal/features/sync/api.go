package sync

import (
	"supplier-portal/internal/common/api"
	"supplier-portal/internal/common/models"
	"supplier-portal/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SyncApi struct {
	controller *SyncController
	auth       *middleware.Auth
}

func NewSyncApi(controller *SyncController, auth *middleware.Auth) api.Route {
	return &SyncApi{
		controller: controller,
		auth:       auth,
	}
}

// Setup registers all sync routes
func (h *SyncApi) Setup(app *fiber.App) {
	syncGroup := app.Group("/api/sync", h.auth.Handler(), middleware.RequireRole(models.UserTypeAdmin))

	syncGroup.Post("/:type/run", h.controller.RunSync)
	syncGroup.Get("/logs", h.controller.ListSyncLogs)
	syncGroup.Get("/logs/export", h.controller.ExportSyncLogs)
	syncGroup.Get("/logs/:id", h.controller.GetSyncLog)
}
