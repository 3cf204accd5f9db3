package invoice

import (
	"supplier-portal/internal/common/api"
	"supplier-portal/internal/common/models"
	"supplier-portal/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type InvoiceApi struct {
	controller *InvoiceController
	auth       *middleware.Auth
}

func NewInvoiceApi(controller *InvoiceController, auth *middleware.Auth) api.Route {
	return &InvoiceApi{controller: controller, auth: auth}
}

func (h *InvoiceApi) Setup(app *fiber.App) {
	reviewers := middleware.RequireRole(models.UserTypeAccounting, models.UserTypeAdmin)

	group := app.Group("/api/invoices", h.auth.Handler(), middleware.RequireActiveAccount())
	group.Post("/", middleware.RequireRole(models.UserTypeVendor), h.controller.Submit)
	group.Get("/", middleware.RequireRole(models.UserTypeVendor, models.UserTypeAccounting, models.UserTypeAdmin), h.controller.List)
	group.Get("/:id", middleware.RequireRole(models.UserTypeVendor, models.UserTypeAccounting, models.UserTypeAdmin), h.controller.Get)
	group.Post("/:id/approve", reviewers, h.controller.Approve)
	group.Post("/:id/reject", reviewers, h.controller.Reject)
}
