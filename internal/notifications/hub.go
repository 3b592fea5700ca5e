package notifications

import (
	"context"
	"errors"
	"sync"

	"github.com/mitronepal/JobMandu/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	hubLabel        = "feed"
	maxConnsPerUser = 8
	maxTotalConns   = 10000
)

var (
	ErrServerConnLimit = errors.New("server connection limit reached")
	ErrUserConnLimit   = errors.New("user connection limit reached")
	ErrHubShutdown     = errors.New("hub is shutting down")
)

// FeedHub tracks live feed connections by user id.
type FeedHub struct {
	mu         sync.RWMutex
	conns      map[string]map[*FeedConn]struct{}
	totalConns int
	closed     bool
	log        *observability.WSLogger
}

// NewFeedHub creates an empty hub.
func NewFeedHub() *FeedHub {
	return &FeedHub{
		conns: make(map[string]map[*FeedConn]struct{}),
		log:   observability.NewWSLogger(hubLabel),
	}
}

// Register admits a socket for userID unless the hub is closing or a
// connection limit is reached.
func (h *FeedHub) Register(userID string, conn *websocket.Conn) (*FeedConn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubShutdown
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerConnLimit
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*FeedConn]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserConnLimit
	}

	client := newFeedConn(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnectionsTotal.Inc()
	h.log.LogConnect(context.Background(), userID, ListingsChannel)
	return client, nil
}

// unregister removes client; calling it twice is harmless.
func (h *FeedHub) unregister(client *FeedConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
	h.totalConns--
	observability.WebSocketConnectionsTotal.Dec()
	h.log.LogDisconnect(context.Background(), client.UserID, ListingsChannel, "unregistered")
}

// Count returns the number of registered connections.
func (h *FeedHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// UserCount returns the number of connections held by userID.
func (h *FeedHub) UserCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// Disconnect closes every connection held by userID, for example after a ban.
func (h *FeedHub) Disconnect(userID string) {
	h.mu.RLock()
	clients := make([]*FeedConn, 0, len(h.conns[userID]))
	for c := range h.conns[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		closeConn(c, websocket.ClosePolicyViolation, "Account suspended")
	}
}

// Shutdown closes every socket and refuses new ones.
func (h *FeedHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	h.closed = true
	conns := h.conns
	h.conns = make(map[string]map[*FeedConn]struct{})
	observability.WebSocketConnectionsTotal.Sub(float64(h.totalConns))
	h.totalConns = 0
	h.mu.Unlock()

	for _, userConns := range conns {
		for client := range userConns {
			closeConn(client, websocket.CloseGoingAway, "Server shutting down")
		}
	}
	h.log.LogLifecycle(context.Background(), "shutdown", map[string]interface{}{"users": len(conns)})
	return nil
}

func closeConn(c *FeedConn, code int, reason string) {
	if c.ws == nil {
		return
	}
	_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	_ = c.ws.Close()
}
