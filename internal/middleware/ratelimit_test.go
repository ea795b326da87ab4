package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"vastra/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimitThrottlesAfterBurst(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RateLimit(rate.Limit(0.001), 3))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, "request %d inside the burst", i)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimitKeysByCustomer(t *testing.T) {
	app := fiber.New()
	// Simulated auth: the header names the caller.
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get("X-Customer"); id != "" {
			c.Locals("customer_id", id)
		}
		return c.Next()
	})
	app.Use(middleware.RateLimit(rate.Limit(0.001), 1))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	first := httptest.NewRequest(http.MethodGet, "/ping", nil)
	first.Header.Set("X-Customer", "cust-1")
	resp, err := app.Test(first, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	again := httptest.NewRequest(http.MethodGet, "/ping", nil)
	again.Header.Set("X-Customer", "cust-1")
	resp, err = app.Test(again, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// A different customer gets a fresh bucket.
	fresh := httptest.NewRequest(http.MethodGet, "/ping", nil)
	fresh.Header.Set("X-Customer", "cust-2")
	resp, err = app.Test(fresh, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
