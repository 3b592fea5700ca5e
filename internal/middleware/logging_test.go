package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogs points Logger at a JSON buffer for the duration of the test.
func captureLogs(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger
	Logger = NewLogger(&buf, "production", level)
	t.Cleanup(func() { Logger = prev })
	return &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNewLogger_AddsRequestAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "production", "info")

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = WithUser(ctx, "u-42")
	log.With(slog.String("component", "feed")).InfoContext(ctx, "feed refreshed")

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, "u-42", lines[0]["user_id"])
	assert.Equal(t, "feed", lines[0]["component"])
	assert.Equal(t, "jobmandu", lines[0]["service"])
	assert.NotContains(t, lines[0], "trace_id")
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "production", "").Debug("hidden")
	assert.Empty(t, buf.String())

	NewLogger(&buf, "production", "DEBUG").Debug("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	NewLogger(&buf, "development", "").Info("plain")
	assert.True(t, strings.HasPrefix(buf.String(), "time="))
}

func TestStructuredLogger(t *testing.T) {
	buf := captureLogs(t, "info")

	app := fiber.New()
	app.Use(requestid.New(), ContextMiddleware(), StructuredLogger())
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/api/listings/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/api/listings/:id/report", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusTooManyRequests)
	})
	app.Delete("/api/listings/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusInternalServerError)
	})

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/health"},
		{http.MethodGet, "/api/listings/l1"},
		{http.MethodPost, "/api/listings/l1/report"},
		{http.MethodDelete, "/api/listings/l1"},
	} {
		resp, err := app.Test(httptest.NewRequest(r.method, r.path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	lines := logLines(t, buf)
	require.Len(t, lines, 3, "health check is logged at debug")

	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "/api/listings/:id", lines[0]["route"])
	assert.Equal(t, "l1", lines[0]["listing_id"])
	assert.NotEmpty(t, lines[0]["request_id"])

	assert.Equal(t, "WARN", lines[1]["level"])
	assert.EqualValues(t, fiber.StatusTooManyRequests, lines[1]["status"])

	assert.Equal(t, "ERROR", lines[2]["level"])
	assert.Equal(t, "request failed", lines[2]["msg"])
}
