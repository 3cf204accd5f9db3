package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/config"
	"supplier-portal/internal/kv"
	"supplier-portal/internal/session"

	"github.com/gofiber/fiber/v2"
)

func setupApp(t *testing.T) (*fiber.App, *session.TokenIssuer, session.Store) {
	t.Helper()
	issuer := session.NewTokenIssuer("secret", "test")
	store := session.NewKVStore(kv.NewMemoryStore())
	auth := NewAuth(&config.Config{}, issuer, store)

	app := fiber.New()
	app.Get("/vendor", auth.Handler(), RequireRole(models.UserTypeVendor), func(c *fiber.Ctx) error {
		sess, _ := session.FromContext(c.UserContext())
		return c.SendString(sess.Email)
	})
	return app, issuer, store
}

func TestAuthRejectsMissingToken(t *testing.T) {
	app, _, _ := setupApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/vendor", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAuthAndRole(t *testing.T) {
	app, issuer, store := setupApp(t)

	tests := []struct {
		name     string
		userType models.UserType
		save     bool
		want     int
	}{
		{"vendor allowed", models.UserTypeVendor, true, fiber.StatusOK},
		{"dealer forbidden", models.UserTypeDealer, true, fiber.StatusForbidden},
		{"unknown session", models.UserTypeVendor, false, fiber.StatusUnauthorized},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &session.Session{
				ID:        string(rune('a' + i)),
				Email:     "v@example.com",
				Type:      tt.userType,
				ExpiresAt: time.Now().Add(time.Hour),
			}
			if tt.save {
				if err := store.Save(context.Background(), sess); err != nil {
					t.Fatal(err)
				}
			}
			token, _ := issuer.Issue(sess)

			req := httptest.NewRequest("GET", "/vendor", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
