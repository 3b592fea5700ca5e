package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateStore(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestQuotaTake_Environments(t *testing.T) {
	q := Quota{Action: "report", Limit: 1, Window: time.Minute}

	tests := []struct {
		name    string
		env     string
		force   string
		wantErr bool
	}{
		{name: "unset env skips", env: ""},
		{name: "development skips", env: "development"},
		{name: "stress skips", env: "stress"},
		{name: "test skips without force", env: "test"},
		{name: "test with force needs store", env: "test", force: "1", wantErr: true},
		{name: "production needs store", env: "production", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.env)
			t.Setenv("RATE_LIMIT_FORCE", tt.force)

			d, err := q.Take(context.Background(), nil, "user:u1")
			if tt.wantErr {
				assert.ErrorIs(t, err, errNoRateStore)
				return
			}
			require.NoError(t, err)
			assert.True(t, d.Allowed)
			assert.Equal(t, 1, d.Remaining)
		})
	}
}

func TestQuotaTake_CountsPerWindow(t *testing.T) {
	mr, rdb := newRateStore(t)
	t.Setenv("APP_ENV", "production")

	ctx := context.Background()
	q := Quota{Action: "report", Limit: 3, Window: time.Minute}

	for i := 0; i < 3; i++ {
		d, err := q.Take(ctx, rdb, "user:u1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "attempt %d", i+1)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := q.Take(ctx, rdb, "user:u1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Zero(t, d.Remaining)
	assert.InDelta(t, time.Minute.Seconds(), d.RetryAfter.Seconds(), 1)

	d, err = q.Take(ctx, rdb, "user:u2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	mr.FastForward(2 * time.Minute)
	d, err = q.Take(ctx, rdb, "user:u1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, d.Remaining)
}

func TestRateLimit_NilStoreLetsRequestsThrough(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	app := fiber.New()
	app.Post("/listings", RateLimit(nil, 1, time.Minute, "post_listing"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/listings", nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}
}

func TestRateLimit_RejectsPerUser(t *testing.T) {
	mr, rdb := newRateStore(t)
	t.Setenv("APP_ENV", "test")
	t.Setenv("RATE_LIMIT_FORCE", "1")

	app := fiber.New()
	app.Post("/listings/:id/report", func(c *fiber.Ctx) error {
		c.Locals("userID", c.Get("X-User"))
		return c.Next()
	}, RateLimit(rdb, 1, time.Hour, "report"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	do := func(user, listing string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/listings/"+listing+"/report", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	first := do("alice", "l1")
	_ = first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, "1", first.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", first.Header.Get("X-RateLimit-Remaining"))

	// a different listing still counts against the same action
	limited := do("alice", "l2")
	defer func() { _ = limited.Body.Close() }()
	assert.Equal(t, http.StatusTooManyRequests, limited.StatusCode)
	assert.Equal(t, "3600", limited.Header.Get(fiber.HeaderRetryAfter))

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(limited.Body).Decode(&body))
	assert.Equal(t, models.CodeRateLimited, body.Code)

	other := do("bob", "l1")
	_ = other.Body.Close()
	assert.Equal(t, http.StatusOK, other.StatusCode)

	assert.True(t, mr.Exists("rl:report:user:alice"))
	assert.True(t, mr.Exists("rl:report:user:bob"))
}

func TestRateLimit_AnonymousKeyedByAddress(t *testing.T) {
	mr, rdb := newRateStore(t)
	t.Setenv("APP_ENV", "production")

	app := fiber.New()
	app.Post("/auth/login", RateLimit(rdb, 5, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "4", resp.Header.Get("X-RateLimit-Remaining"))
	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "rl:/auth/login:ip:")
}
