package middleware

import (
	"errors"
	"strings"
	"time"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/config"
	"supplier-portal/internal/session"

	"github.com/gofiber/fiber/v2"
)

const SessionCookie = "portal_session"

type Auth struct {
	issuer   *session.TokenIssuer
	store    session.Store
	skipAuth bool
}

func NewAuth(cfg *config.Config, issuer *session.TokenIssuer, store session.Store) *Auth {
	return &Auth{issuer: issuer, store: store, skipAuth: cfg.SkipAuth}
}

// Handler resolves the bearer token (header, cookie or ?token= for websockets)
// to a stored session and puts it in the request's user context.
func (a *Auth) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if a.skipAuth {
			dev := &session.Session{
				ID:        "dev",
				Email:     "dev@localhost",
				Type:      models.UserTypeAdmin,
				ExpiresAt: time.Now().Add(time.Hour),
			}
			c.SetUserContext(session.WithContext(c.UserContext(), dev))
			return c.Next()
		}

		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		sessionID, err := a.issuer.Parse(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		sess, err := a.store.Get(c.UserContext(), sessionID)
		if errors.Is(err, session.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Session expired",
			})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		}

		c.SetUserContext(session.WithContext(c.UserContext(), sess))
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	if v := c.Cookies(SessionCookie); v != "" {
		return v
	}
	return c.Query("token")
}
