package account

import (
	"errors"
	"strconv"

	"supplier-portal/internal/common/api"
	"supplier-portal/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

type AccountController struct {
	Service AccountService
}

func NewAccountController(service AccountService) *AccountController {
	return &AccountController{Service: service}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

func accountType(c *fiber.Ctx) models.AccountType {
	if models.AccountType(c.Query("type")) == models.AccountTypeDealer {
		return models.AccountTypeDealer
	}
	return models.AccountTypeVendor
}

// List godoc
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Param type query string false "vendor or dealer"
// @Param search query string false "Name or email contains"
// @Success 200 {object} map[string]interface{}
// @Router /api/accounts [get]
func (ctrl *AccountController) List(c *fiber.Ctx) error {
	filter := AccountFilter{
		Search: c.Query("search"),
		Limit:  c.QueryInt("limit", 100),
		Offset: c.QueryInt("offset", 0),
	}
	if t := c.Query("type"); t != "" {
		filter.Type = models.AccountType(t)
	}
	if v := c.Query("active"); v != "" {
		active := v == "true"
		filter.Active = &active
	}

	accounts, total, err := ctrl.Service.ListAccounts(c.UserContext(), filter)
	if err != nil {
		return api.Error(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"data": accounts, "total": total})
}

// Get godoc
// @Summary Get account with profile and contacts
// @Tags accounts
// @Produce json
// @Param id path int true "ERP account id"
// @Param type query string false "vendor or dealer"
// @Success 200 {object} AccountDetail
// @Failure 404 {object} map[string]interface{}
// @Router /api/accounts/{id} [get]
func (ctrl *AccountController) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	detail, err := ctrl.Service.GetAccount(c.UserContext(), id, accountType(c))
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"data": detail})
}

func (ctrl *AccountController) Mine(c *fiber.Ctx) error {
	accounts, err := ctrl.Service.MyAccounts(c.UserContext())
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"data": accounts})
}

func (ctrl *AccountController) ListUsers(c *fiber.Ctx) error {
	users, err := ctrl.Service.ListUsers(c.UserContext(), models.UserType(c.Query("type")))
	if err != nil {
		return api.Error(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"data": users})
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (ctrl *AccountController) SetUserActive(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID format"})
	}

	var req setActiveRequest
	if err := api.ParseAndValidate(c, &req); err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}

	if err := ctrl.Service.SetUserActive(c.UserContext(), uint(id), *req.Active); err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"message": "User updated successfully"})
}
