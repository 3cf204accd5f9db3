package account

import (
	"supplier-portal/internal/common/api"
	"supplier-portal/internal/common/models"
	"supplier-portal/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AccountApi struct {
	controller *AccountController
	auth       *middleware.Auth
}

func NewAccountApi(controller *AccountController, auth *middleware.Auth) api.Route {
	return &AccountApi{controller: controller, auth: auth}
}

func (h *AccountApi) Setup(app *fiber.App) {
	internal := middleware.RequireRole(models.UserTypeAdmin, models.UserTypeBuyer, models.UserTypeAccounting)

	accounts := app.Group("/api/accounts", h.auth.Handler())
	accounts.Get("/", internal, h.controller.List)
	accounts.Get("/:id", h.controller.Get)

	app.Get("/api/me/accounts", h.auth.Handler(), h.controller.Mine)

	users := app.Group("/api/users", h.auth.Handler(), middleware.RequireRole(models.UserTypeAdmin))
	users.Get("/", h.controller.ListUsers)
	users.Put("/:id/active", h.controller.SetUserActive)
}
