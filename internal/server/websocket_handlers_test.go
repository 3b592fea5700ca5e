package server

import (
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listen serves the test app on a real socket so WebSocket upgrades work.
func (e *testEnv) listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = e.app.Listener(ln) }()
	t.Cleanup(func() { _ = e.app.Shutdown() })
	return ln.Addr().String()
}

func (e *testEnv) dialFeed(t *testing.T, addr, token, query string) *websocket.Conn {
	t.Helper()
	var ticket ticketResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/ws/ticket", token, nil, &ticket))

	url := "ws://" + addr + "/api/ws/feed?ticket=" + ticket.Ticket
	if query != "" {
		url += "&" + query
	}
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// nextFeed reads feed messages until one has want listings.
func nextFeed(t *testing.T, conn *websocket.Conn, want int) feedResponse {
	t.Helper()
	return nextFeedWhere(t, conn, func(res feedResponse) bool { return res.Count == want })
}

func nextFeedWhere(t *testing.T, conn *websocket.Conn, match func(feedResponse) bool) feedResponse {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var msg feedMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != "feed" {
			continue
		}
		var res feedResponse
		require.NoError(t, json.Unmarshal(msg.Payload, &res))
		if match(res) {
			return res
		}
	}
}

func TestWebSocketFeed_LiveUpdates(t *testing.T) {
	env := newTestEnv(t)
	addr := env.listen(t)
	provider, _ := env.user(t, "live@example.com", models.RoleProvider)
	seeker, _ := env.user(t, "watcher@example.com", models.RoleSeeker)

	conn := env.dialFeed(t, addr, seeker, "category=room")
	nextFeed(t, conn, 0)

	env.post(t, provider, validRoomDraft())
	res := nextFeed(t, conn, 1)
	assert.Equal(t, "Sunny single room", res.Listings[0].Title)

	// Posting a job does not change the room feed, switching criteria does.
	env.post(t, provider, validJobDraft())
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "criteria",
		"payload": map[string]string{"category": "job"},
	}))
	res = nextFeedWhere(t, conn, func(res feedResponse) bool {
		return res.Count == 1 && res.Listings[0].Category == models.CategoryJob
	})
	assert.Equal(t, "Backend Developer", res.Listings[0].Title)
}

func TestWebSocketFeed_BlockedOwnerIsDisconnected(t *testing.T) {
	env := newTestEnv(t)
	addr := env.listen(t)
	owner, ownerID := env.user(t, "kicked@example.com", models.RoleProvider)

	conn := env.dialFeed(t, addr, owner, "")
	nextFeed(t, conn, 0)
	require.Eventually(t, func() bool { return env.srv.feedHub.UserCount(ownerID) == 1 },
		time.Second, 10*time.Millisecond)

	require.NoError(t, suspender{env.srv.profiles, env.srv.feedHub}.Block(t.Context(), ownerID))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "unexpected error: %v", err)
			break
		}
	}
}

func TestWebSocketFeed_RejectsReusedTicket(t *testing.T) {
	env := newTestEnv(t)
	addr := env.listen(t)
	token, _ := env.signup(t, "reuse@example.com")

	var ticket ticketResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/ws/ticket", token, nil, &ticket))

	url := "ws://" + addr + "/api/ws/feed?ticket=" + ticket.Ticket
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	_ = conn.Close()

	_, resp, err = websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
