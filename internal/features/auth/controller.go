package auth

import (
	"errors"
	"time"

	"supplier-portal/internal/common/api"
	"supplier-portal/internal/common/models"
	"supplier-portal/internal/middleware"
	"supplier-portal/internal/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthController struct {
	AuthService AuthService
	Logger      *zap.Logger
}

func NewAuthController(authService AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{
		AuthService: authService,
		Logger:      logger,
	}
}

type CodeRequest struct {
	Email string          `json:"email" validate:"required,email"`
	Type  models.UserType `json:"type" validate:"required,oneof=admin accounting buyer vendor dealer"`
}

type VerifyRequest struct {
	Email string          `json:"email" validate:"required,email"`
	Type  models.UserType `json:"type" validate:"required,oneof=admin accounting buyer vendor dealer"`
	Code  string          `json:"code" validate:"required,len=6,numeric"`
}

type SwitchAccountRequest struct {
	AccountID int64 `json:"account_id" validate:"required,gt=0"`
}

// RequestCode godoc
// @Summary      Email a one-time login code
// @Description  The response is the same whether or not the address is known.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body CodeRequest true "Email and user type"
// @Success      202  {object} map[string]string
// @Router       /api/auth/otp [post]
func (ctrl *AuthController) RequestCode(c *fiber.Ctx) error {
	var req CodeRequest
	if err := api.ParseAndValidate(c, &req); err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}

	err := ctrl.AuthService.RequestCode(c.UserContext(), req.Email, req.Type)
	switch {
	case err == nil, errors.Is(err, ErrUnknownUser), errors.Is(err, ErrInactive):
		if err != nil {
			ctrl.Logger.Info("Login code not sent", zap.String("email", req.Email), zap.Error(err))
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"message": "If the address is registered, a code has been sent",
		})
	default:
		ctrl.Logger.Error("Failed to issue login code", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to send code",
		})
	}
}

// Verify godoc
// @Summary      Exchange a login code for a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body VerifyRequest true "Code"
// @Success      200  {object} LoginResult
// @Failure      401  {string} string "Invalid or expired code"
// @Router       /api/auth/otp/verify [post]
func (ctrl *AuthController) Verify(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := api.ParseAndValidate(c, &req); err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}

	res, err := ctrl.AuthService.Verify(c.UserContext(), req.Email, req.Type, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrCodeInvalid), errors.Is(err, ErrTooManyTries), errors.Is(err, ErrUnknownUser), errors.Is(err, ErrInactive):
			return api.Error(c, fiber.StatusUnauthorized, err)
		case errors.Is(err, ErrNoAccounts):
			return api.Error(c, fiber.StatusForbidden, err)
		}
		ctrl.Logger.Error("Login verification failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    res.Token,
		Expires:  res.Session.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(res)
}

func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	sess, err := session.FromContext(c.UserContext())
	if err != nil {
		return api.Error(c, fiber.StatusUnauthorized, err)
	}
	return c.JSON(fiber.Map{"data": sess})
}

// SwitchAccount godoc
// @Summary      Change the account a vendor or dealer is acting for
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body SwitchAccountRequest true "Account"
// @Success      200  {object} map[string]interface{}
// @Router       /api/auth/active-account [post]
func (ctrl *AuthController) SwitchAccount(c *fiber.Ctx) error {
	var req SwitchAccountRequest
	if err := api.ParseAndValidate(c, &req); err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}
	sess, err := ctrl.AuthService.SwitchAccount(c.UserContext(), req.AccountID)
	if errors.Is(err, session.ErrAccountDenied) {
		return api.Error(c, fiber.StatusForbidden, err)
	}
	if err != nil {
		return api.Error(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"data": sess})
}

func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	if err := ctrl.AuthService.Logout(c.UserContext()); err != nil {
		return api.Error(c, fiber.StatusInternalServerError, err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"message": "Logged out"})
}
