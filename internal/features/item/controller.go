package item

import (
	"errors"
	"strconv"

	"supplier-portal/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type ItemController struct {
	Service ItemService
}

func NewItemController(service ItemService) *ItemController {
	return &ItemController{Service: service}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrInvalidRequest):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// List godoc
// @Summary List dealer items
// @Tags items
// @Produce json
// @Param search query string false "SKU or name contains"
// @Param in_stock query bool false "Only items with stock"
// @Success 200 {object} map[string]interface{}
// @Router /api/items [get]
func (ctrl *ItemController) List(c *fiber.Ctx) error {
	filter := ItemFilter{
		Search:  c.Query("search"),
		InStock: c.QueryBool("in_stock", false),
		Limit:   c.QueryInt("limit", 100),
		Offset:  c.QueryInt("offset", 0),
	}
	items, total, err := ctrl.Service.ListItems(c.UserContext(), filter)
	if err != nil {
		return api.Error(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"data": items, "total": total})
}

func (ctrl *ItemController) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}
	it, err := ctrl.Service.GetItem(c.UserContext(), id)
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"data": it})
}

func (ctrl *ItemController) ListSubscriptions(c *fiber.Ctx) error {
	subs, err := ctrl.Service.ListSubscriptions(c.UserContext())
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"data": subs})
}

// Subscribe godoc
// @Summary Subscribe to stock changes of an item
// @Tags items
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param request body SubscribeRequest true "Subscription"
// @Success 201 {object} Subscription
// @Failure 400 {object} map[string]interface{}
// @Router /api/items/{id}/subscriptions [post]
func (ctrl *ItemController) Subscribe(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	var req SubscribeRequest
	if err := api.ParseAndValidate(c, &req); err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}

	sub, err := ctrl.Service.Subscribe(c.UserContext(), id, req)
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Subscribed successfully",
		"data":    sub,
	})
}

func (ctrl *ItemController) Unsubscribe(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}
	if err := ctrl.Service.Unsubscribe(c.UserContext(), uint(id)); err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
