package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		status string
		store  string
	}{
		{"healthy", nil, fiber.StatusOK, "ok", "ok"},
		{"store down", errors.New("dial tcp 10.0.4.7:5432: connect: connection refused"), fiber.StatusServiceUnavailable, "degraded", "unhealthy"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/health", NewHealthHandler(stubPinger{err: tc.err}).Check)

			resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.code, resp.StatusCode)
			var got dto.HealthResponse
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, tc.status, got.Status)
			assert.Equal(t, tc.store, got.Store)
			assert.NotContains(t, string(body), "10.0.4.7")
		})
	}
}
