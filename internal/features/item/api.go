package item

import (
	"supplier-portal/internal/common/api"
	"supplier-portal/internal/common/models"
	"supplier-portal/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ItemApi struct {
	controller *ItemController
	auth       *middleware.Auth
}

func NewItemApi(controller *ItemController, auth *middleware.Auth) api.Route {
	return &ItemApi{controller: controller, auth: auth}
}

func (h *ItemApi) Setup(app *fiber.App) {
	items := app.Group("/api/items", h.auth.Handler())

	items.Get("/", middleware.RequireRole(models.UserTypeDealer, models.UserTypeAdmin, models.UserTypeBuyer), h.controller.List)

	dealer := middleware.RequireRole(models.UserTypeDealer)
	// registered before /:id so "subscriptions" is not parsed as an id
	items.Get("/subscriptions", dealer, h.controller.ListSubscriptions)
	items.Delete("/subscriptions/:id", dealer, h.controller.Unsubscribe)

	items.Get("/:id", middleware.RequireRole(models.UserTypeDealer, models.UserTypeAdmin, models.UserTypeBuyer), h.controller.Get)
	items.Post("/:id/subscriptions", dealer, h.controller.Subscribe)
}
