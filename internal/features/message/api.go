package message

import (
	"supplier-portal/internal/common/api"
	"supplier-portal/internal/common/models"
	"supplier-portal/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type MessageApi struct {
	controller *MessageController
	auth       *middleware.Auth
}

func NewMessageApi(controller *MessageController, auth *middleware.Auth) api.Route {
	return &MessageApi{controller: controller, auth: auth}
}

func (h *MessageApi) Setup(app *fiber.App) {
	participants := middleware.RequireRole(models.UserTypeVendor, models.UserTypeAccounting, models.UserTypeBuyer, models.UserTypeAdmin)

	group := app.Group("/api/messages", h.auth.Handler(), middleware.RequireActiveAccount(), participants)
	group.Get("/ws/:id", h.controller.Upgrade, websocket.New(h.controller.Stream))
	group.Get("/", h.controller.List)
	group.Post("/", middleware.RequireRole(models.UserTypeVendor), h.controller.Start)
	group.Get("/:id", h.controller.Get)
	group.Post("/:id", h.controller.Send)
	group.Post("/:id/read", h.controller.MarkRead)
}
