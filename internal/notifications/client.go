package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/mitronepal/JobMandu/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Criteria messages are small JSON objects.
	maxInboundBytes = 4096
	outboundFrames  = 16
)

// FeedConn is one live feed socket. Frames are full feed snapshots, so when
// the peer falls behind older frames are discarded in favour of newer ones.
type FeedConn struct {
	UserID string

	hub *FeedHub
	ws  *websocket.Conn
	log *observability.WSLogger

	mu     sync.Mutex
	out    chan []byte
	closed bool
}

func newFeedConn(hub *FeedHub, ws *websocket.Conn, userID string) *FeedConn {
	return &FeedConn{
		UserID: userID,
		hub:    hub,
		ws:     ws,
		log:    hub.log,
		out:    make(chan []byte, outboundFrames),
	}
}

// Queue hands frame to the writer without blocking. It reports false once
// the connection has been closed.
func (c *FeedConn) Queue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		observability.WebSocketBackpressureDrops.WithLabelValues(hubLabel, "closed").Inc()
		return false
	}
	for {
		select {
		case c.out <- frame:
			return true
		default:
		}
		select {
		case <-c.out:
			observability.WebSocketBackpressureDrops.WithLabelValues(hubLabel, "full").Inc()
		default:
		}
	}
}

// Close stops the writer once queued frames are flushed. Safe to call twice.
func (c *FeedConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.out)
	}
}

// Serve pumps queued frames and keepalive pings to the peer and hands each
// inbound text frame to onMessage. It returns when the peer goes away, after
// removing the connection from the hub.
func (c *FeedConn) Serve(onMessage func([]byte)) {
	go c.writeLoop()
	c.readLoop(onMessage)
}

func (c *FeedConn) readLoop(onMessage func([]byte)) {
	defer func() {
		c.hub.unregister(c)
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(maxInboundBytes)
	extend := func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) }
	_ = extend("")
	c.ws.SetPongHandler(extend)

	ctx := context.Background()
	for {
		kind, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.LogError(ctx, c.UserID, ListingsChannel, err, "read")
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		c.log.LogMessage(ctx, c.UserID, ListingsChannel, "criteria")
		if onMessage != nil {
			onMessage(raw)
		}
	}
}

func (c *FeedConn) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case frame, ok := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ping.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
