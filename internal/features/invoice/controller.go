package invoice

import (
	"errors"
	"strconv"

	"supplier-portal/internal/common/api"
	"supplier-portal/internal/features/purchase_order"
	"supplier-portal/internal/session"

	"github.com/gofiber/fiber/v2"
)

type InvoiceController struct {
	Service InvoiceService
}

func NewInvoiceController(service InvoiceService) *InvoiceController {
	return &InvoiceController{Service: service}
}

type RejectRequest struct {
	Note string `json:"note" validate:"required,max=2000"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, purchase_order.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrNotReviewable):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalidAmount):
		return fiber.StatusBadRequest
	case errors.Is(err, session.ErrNoSession):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func invoiceID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	return uint(id), err
}

// Submit godoc
// @Summary Submit an invoice against a purchase order
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body SubmitRequest true "Invoice"
// @Success 201 {object} Invoice
// @Router /api/invoices [post]
func (ctrl *InvoiceController) Submit(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := api.ParseAndValidate(c, &req); err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}
	inv, err := ctrl.Service.Submit(c.UserContext(), req)
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Invoice submitted",
		"data":    inv,
	})
}

// List godoc
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param status query string false "submitted, approved or rejected"
// @Param purchase_order_id query int false "Purchase order"
// @Router /api/invoices [get]
func (ctrl *InvoiceController) List(c *fiber.Ctx) error {
	filter := Filter{
		VendorID:        int64(c.QueryInt("vendor_id", 0)),
		PurchaseOrderID: int64(c.QueryInt("purchase_order_id", 0)),
		Status:          Status(c.Query("status")),
		Limit:           c.QueryInt("limit", 100),
		Offset:          c.QueryInt("offset", 0),
	}
	invoices, total, err := ctrl.Service.List(c.UserContext(), filter)
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"data": invoices, "total": total})
}

func (ctrl *InvoiceController) Get(c *fiber.Ctx) error {
	id, err := invoiceID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}
	inv, err := ctrl.Service.Get(c.UserContext(), id)
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(inv)
}

// Approve godoc
// @Summary Approve an invoice and create the vendor bill
// @Tags invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Router /api/invoices/{id}/approve [post]
func (ctrl *InvoiceController) Approve(c *fiber.Ctx) error {
	id, err := invoiceID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}
	inv, err := ctrl.Service.Approve(c.UserContext(), id)
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"message": "Invoice approved", "data": inv})
}

// Reject godoc
// @Summary Reject an invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path int true "Invoice ID"
// @Param body body RejectRequest true "Reason"
// @Router /api/invoices/{id}/reject [post]
func (ctrl *InvoiceController) Reject(c *fiber.Ctx) error {
	id, err := invoiceID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}
	var req RejectRequest
	if err := api.ParseAndValidate(c, &req); err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}
	inv, err := ctrl.Service.Reject(c.UserContext(), id, req.Note)
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"message": "Invoice rejected", "data": inv})
}
