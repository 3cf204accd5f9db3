package purchase_order

import (
	"supplier-portal/internal/common/api"
	"supplier-portal/internal/common/models"
	"supplier-portal/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PurchaseOrderApi struct {
	controller *PurchaseOrderController
	auth       *middleware.Auth
}

func NewPurchaseOrderApi(controller *PurchaseOrderController, auth *middleware.Auth) api.Route {
	return &PurchaseOrderApi{controller: controller, auth: auth}
}

func (h *PurchaseOrderApi) Setup(app *fiber.App) {
	readers := middleware.RequireRole(models.UserTypeVendor, models.UserTypeBuyer, models.UserTypeAdmin, models.UserTypeAccounting)
	reviewers := middleware.RequireRole(models.UserTypeBuyer, models.UserTypeAdmin)

	group := app.Group("/api/purchase-orders", h.auth.Handler(), middleware.RequireActiveAccount())
	group.Get("/", readers, h.controller.List)
	group.Get("/export", readers, h.controller.Export)
	group.Get("/:id", readers, h.controller.Get)
	group.Post("/:id/proposals", middleware.RequireRole(models.UserTypeVendor), h.controller.Propose)
	group.Patch("/:id", reviewers, h.controller.Update)
	group.Post("/:id/approve", reviewers, h.controller.Approve)
	group.Post("/:id/reject", reviewers, h.controller.Reject)
}
