package item

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/session"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(svc ItemService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		s := &session.Session{UserID: 1, Type: models.UserTypeDealer}
		c.SetUserContext(session.WithContext(c.UserContext(), s))
		return c.Next()
	})
	ctrl := NewItemController(svc)
	app.Get("/api/items/:id", ctrl.Get)
	app.Post("/api/items/:id/subscriptions", ctrl.Subscribe)
	app.Delete("/api/items/subscriptions/:id", ctrl.Unsubscribe)
	return app
}

func TestControllerStatuses(t *testing.T) {
	svc, _ := newItemService(nil)
	app := newTestApp(svc)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"get item", http.MethodGet, "/api/items/5", "", fiber.StatusOK},
		{"missing item", http.MethodGet, "/api/items/7", "", fiber.StatusNotFound},
		{"bad id", http.MethodGet, "/api/items/abc", "", fiber.StatusBadRequest},
		{"subscribe", http.MethodPost, "/api/items/5/subscriptions", `{"kind":"in_stock"}`, fiber.StatusCreated},
		{"subscribe bad kind", http.MethodPost, "/api/items/5/subscriptions", `{"kind":"never"}`, fiber.StatusBadRequest},
		{"low stock no threshold", http.MethodPost, "/api/items/5/subscriptions", `{"kind":"low_stock"}`, fiber.StatusBadRequest},
		{"unsubscribe unknown", http.MethodDelete, "/api/items/subscriptions/99", "", fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
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
