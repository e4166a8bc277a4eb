package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	app := newTestApp(func(app *fiber.App) {
		h := NewHealthHandler(nil)
		app.Get("/health", h.Health)
	})

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "ok", payload.Status)
	assert.NotEmpty(t, payload.Version)
}

func TestReady(t *testing.T) {
	app := newTestApp(func(app *fiber.App) {
		h := NewHealthHandler(func(ctx context.Context) error { return nil })
		app.Get("/ready", h.Ready)
	})

	req, _ := http.NewRequest(http.MethodGet, "/ready", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "ready", payload.Status)
}

func TestReady_DatabaseDown(t *testing.T) {
	app := newTestApp(func(app *fiber.App) {
		h := NewHealthHandler(func(ctx context.Context) error { return assert.AnError })
		app.Get("/ready", h.Ready)
	})

	req, _ := http.NewRequest(http.MethodGet, "/ready", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var payload HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "unavailable", payload.Status)
}
