package purchase_order

import (
	"errors"
	"strconv"
	"time"

	"supplier-portal/internal/common/api"
	"supplier-portal/internal/session"

	"github.com/gofiber/fiber/v2"
)

type PurchaseOrderController struct {
	Service PurchaseOrderService
}

func NewPurchaseOrderController(service PurchaseOrderService) *PurchaseOrderController {
	return &PurchaseOrderController{Service: service}
}

// ChangesRequest carries editable fields as YYYY-MM-DD strings.
type ChangesRequest struct {
	ShipDate          *string `json:"ship_date" validate:"omitempty,datetime=2006-01-02"`
	PortDate          *string `json:"port_date" validate:"omitempty,datetime=2006-01-02"`
	EstimatedDelivery *string `json:"estimated_delivery" validate:"omitempty,datetime=2006-01-02"`
	Memo              *string `json:"memo" validate:"omitempty,max=4000"`
}

func (r ChangesRequest) Changes() Changes {
	parse := func(s *string) *time.Time {
		if s == nil {
			return nil
		}
		t, err := time.Parse("2006-01-02", *s)
		if err != nil {
			return nil
		}
		return &t
	}
	return Changes{
		ShipDate:          parse(r.ShipDate),
		PortDate:          parse(r.PortDate),
		EstimatedDelivery: parse(r.EstimatedDelivery),
		Memo:              r.Memo,
	}
}

type RejectRequest struct {
	Note string `json:"note" validate:"max=2000"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNoChanges):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNoPendingChanges):
		return fiber.StatusConflict
	case errors.Is(err, session.ErrNoSession):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func poID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func filterFrom(c *fiber.Ctx) Filter {
	filter := Filter{
		VendorID:    int64(c.QueryInt("vendor_id", 0)),
		Status:      Status(c.Query("status")),
		PendingOnly: c.QueryBool("pending"),
		Search:      c.Query("search"),
		Limit:       c.QueryInt("limit", 100),
		Offset:      c.QueryInt("offset", 0),
	}
	if c.QueryBool("mine") {
		if sess, err := session.FromContext(c.UserContext()); err == nil && sess.NetSuiteID != nil {
			filter.BuyerID = sess.NetSuiteID
		}
	}
	return filter
}

// List godoc
// @Summary List purchase orders
// @Description Vendors only see orders of their active account.
// @Tags purchase-orders
// @Produce json
// @Param status query string false "Status letter A-H"
// @Param vendor_id query int false "Vendor account id"
// @Param pending query bool false "Only orders with vendor changes awaiting review"
// @Param mine query bool false "Only orders assigned to the calling buyer"
// @Success 200 {object} map[string]interface{}
// @Router /api/purchase-orders [get]
func (ctrl *PurchaseOrderController) List(c *fiber.Ctx) error {
	orders, total, err := ctrl.Service.List(c.UserContext(), filterFrom(c))
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"data": orders, "total": total})
}

// Get godoc
// @Summary Get a purchase order with its lines
// @Tags purchase-orders
// @Produce json
// @Param id path int true "ERP purchase order id"
// @Success 200 {object} PurchaseOrder
// @Router /api/purchase-orders/{id} [get]
func (ctrl *PurchaseOrderController) Get(c *fiber.Ctx) error {
	id, err := poID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}
	po, err := ctrl.Service.Get(c.UserContext(), id)
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(po)
}

// Propose godoc
// @Summary Propose changes to a purchase order
// @Tags purchase-orders
// @Accept json
// @Produce json
// @Param id path int true "ERP purchase order id"
// @Param changes body ChangesRequest true "Fields to change"
// @Router /api/purchase-orders/{id}/proposals [post]
func (ctrl *PurchaseOrderController) Propose(c *fiber.Ctx) error {
	id, err := poID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}
	var req ChangesRequest
	if err := api.ParseAndValidate(c, &req); err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}
	po, err := ctrl.Service.ProposeChanges(c.UserContext(), id, req.Changes())
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"message": "Changes submitted for review", "data": po})
}

// Update godoc
// @Summary Edit a purchase order directly
// @Tags purchase-orders
// @Accept json
// @Produce json
// @Param id path int true "ERP purchase order id"
// @Param changes body ChangesRequest true "Fields to change"
// @Router /api/purchase-orders/{id} [patch]
func (ctrl *PurchaseOrderController) Update(c *fiber.Ctx) error {
	id, err := poID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}
	var req ChangesRequest
	if err := api.ParseAndValidate(c, &req); err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}
	po, err := ctrl.Service.Update(c.UserContext(), id, req.Changes())
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"message": "Purchase order updated", "data": po})
}

func (ctrl *PurchaseOrderController) Approve(c *fiber.Ctx) error {
	id, err := poID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}
	po, err := ctrl.Service.ApproveChanges(c.UserContext(), id)
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"message": "Changes approved", "data": po})
}

func (ctrl *PurchaseOrderController) Reject(c *fiber.Ctx) error {
	id, err := poID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}
	var req RejectRequest
	if len(c.Body()) > 0 {
		if err := api.ParseAndValidate(c, &req); err != nil {
			return api.Error(c, fiber.StatusBadRequest, err)
		}
	}
	po, err := ctrl.Service.RejectChanges(c.UserContext(), id, req.Note)
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"message": "Changes rejected", "data": po})
}

// Export godoc
// @Summary Export purchase orders as XLSX
// @Tags purchase-orders
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /api/purchase-orders/export [get]
func (ctrl *PurchaseOrderController) Export(c *fiber.Ctx) error {
	data, filename, err := ctrl.Service.Export(c.UserContext(), filterFrom(c))
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}
