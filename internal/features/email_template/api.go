package email_template

import (
	"supplier-portal/internal/common/api"
	"supplier-portal/internal/common/models"
	"supplier-portal/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type EmailTemplateApi struct {
	controller *EmailTemplateController
	auth       *middleware.Auth
}

func NewEmailTemplateApi(controller *EmailTemplateController, auth *middleware.Auth) api.Route {
	return &EmailTemplateApi{
		controller: controller,
		auth:       auth,
	}
}

func (h *EmailTemplateApi) Setup(app *fiber.App) {
	templates := app.Group("/api/email-templates", h.auth.Handler(), middleware.RequireRole(models.UserTypeAdmin))

	templates.Post("/", h.controller.Create)
	templates.Get("/", h.controller.List)
	templates.Get("/:id", h.controller.Get)
	templates.Put("/:id", h.controller.Update)
	templates.Delete("/:id", h.controller.Delete)
	templates.Post("/:id/test", h.controller.SendTestEmail)
}
