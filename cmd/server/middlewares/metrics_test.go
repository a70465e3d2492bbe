package middlewares

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestRouteLabel(t *testing.T) {
	t.Run("matched route returns the template", func(t *testing.T) {
		app := fiber.New()
		app.Get("/api/v1/notes/:id", func(c *fiber.Ctx) error {
			assert.Equal(t, "/api/v1/notes/:id", routeLabel(c), "note ids must not leak into the label")
			return c.SendString("ok")
		})

		req := httptest.NewRequest("GET", "/api/v1/notes/683cdb8aa96ad71e8e075bd2", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("unmatched route falls back to the raw path", func(t *testing.T) {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			assert.NotEmpty(t, routeLabel(c))
			return c.SendStatus(404)
		})

		req := httptest.NewRequest("GET", "/nonexistent", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{201, "2xx"},
		{404, "4xx"},
		{429, "4xx"},
		{500, "5xx"},
		{302, "302"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusClass(tt.status))
	}
}
