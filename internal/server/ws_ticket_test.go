package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mitronepal/JobMandu/internal/cache"
	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ticketResponse struct {
	Ticket    string `json:"ticket"`
	ExpiresIn int    `json:"expires_in"`
}

func TestIssueWSTicket(t *testing.T) {
	env := newTestEnv(t)
	token, uid := env.signup(t, "ticket@example.com")

	var res ticketResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/ws/ticket", token, nil, &res))
	assert.NotEmpty(t, res.Ticket)
	assert.Equal(t, int(cache.WSTicketTTL.Seconds()), res.ExpiresIn)

	stored, err := env.mr.Get(cache.WSTicketKey(res.Ticket))
	require.NoError(t, err)
	assert.Equal(t, uid, stored)
	assert.Equal(t, cache.WSTicketTTL, env.mr.TTL(cache.WSTicketKey(res.Ticket)))
}

func TestIssueWSTicket_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/ws/ticket", "", nil, nil))
}

func TestConsumeWSTicket_SingleUse(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.mr.Set(cache.WSTicketKey("abc"), "user-1"))

	uid, ok := env.srv.consumeWSTicket(t.Context(), "abc")
	assert.True(t, ok)
	assert.Equal(t, "user-1", uid)
	assert.False(t, env.mr.Exists(cache.WSTicketKey("abc")))

	_, ok = env.srv.consumeWSTicket(t.Context(), "abc")
	assert.False(t, ok)
}

func TestAuthRequired_TicketOnFeedSocket(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Invalid ticket is rejected", func(t *testing.T) {
		var errRes models.ErrorResponse
		status := env.do(t, http.MethodGet, "/api/ws/feed?ticket=missing", "", nil, &errRes)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid or expired WebSocket ticket", errRes.Error)
	})

	t.Run("Valid ticket without upgrade", func(t *testing.T) {
		require.NoError(t, env.mr.Set(cache.WSTicketKey("good"), "user-1"))

		req := httptest.NewRequest(http.MethodGet, "/api/ws/feed?ticket=good", nil)
		resp, err := env.app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		// Authenticated, but a plain GET is not a WebSocket handshake.
		assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
		assert.False(t, env.mr.Exists(cache.WSTicketKey("good")))
	})
}

func TestAuthRequired_TicketIgnoredElsewhere(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signup(t, "elsewhere@example.com")

	// An unknown ticket off the socket path falls back to the bearer token.
	status := env.do(t, http.MethodGet, "/api/auth/me?ticket=missing", token, nil, nil)
	assert.Equal(t, http.StatusOK, status)
}
