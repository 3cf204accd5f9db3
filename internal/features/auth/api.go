package auth

import (
	"supplier-portal/internal/common/api"
	"supplier-portal/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	auth       *middleware.Auth
}

func NewAuthApi(controller *AuthController, auth *middleware.Auth) api.Route {
	return &AuthApi{
		controller: controller,
		auth:       auth,
	}
}

// Setup registers all auth-related routes
func (h *AuthApi) Setup(app *fiber.App) {
	// Public routes
	app.Post("/api/auth/otp", h.controller.RequestCode)
	app.Post("/api/auth/otp/verify", h.controller.Verify)

	app.Get("/api/auth/me", h.auth.Handler(), h.controller.Me)
	app.Post("/api/auth/active-account", h.auth.Handler(), h.controller.SwitchAccount)
	app.Post("/api/auth/logout", h.auth.Handler(), h.controller.Logout)
}
