package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mitronepal/JobMandu/internal/cache"
	"github.com/mitronepal/JobMandu/internal/feed"
	"github.com/mitronepal/JobMandu/internal/middleware"
	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const criteriaLocal = "feedCriteria"

var errClientGone = errors.New("websocket client gone")

// feedMessage is the envelope for both directions of the live feed socket.
type feedMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// IssueWSTicket handles POST /api/ws/ticket
// @Summary WebSocket ticket
// @Description Single-use ticket for opening the live feed socket from a browser
// @Tags realtime
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{ticket=string,expires_in=int}
// @Failure 503 {object} models.ErrorResponse
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(errors.New("ticket store unavailable")))
	}

	ticket := uuid.NewString()
	if err := s.redis.Set(c.UserContext(), cache.WSTicketKey(ticket), currentUserID(c), cache.WSTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(cache.WSTicketTTL.Seconds()),
	})
}

// consumeWSTicket redeems ticket once and returns its user id.
func (s *Server) consumeWSTicket(ctx context.Context, ticket string) (string, bool) {
	if s.redis == nil {
		return "", false
	}
	userID, err := s.redis.GetDel(ctx, cache.WSTicketKey(ticket)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			middleware.Logger.WarnContext(ctx, "ws ticket lookup failed", slog.String("error", err.Error()))
		}
		return "", false
	}
	return userID, userID != ""
}

// WebSocketFeedHandler streams the caller's feed. The initial criteria come
// from the query string; a {"type":"criteria"} message replaces them.
func (s *Server) WebSocketFeedHandler() fiber.Handler {
	upgrade := websocket.New(s.serveFeed)

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		var params feed.Params
		if err := c.QueryParser(&params); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid query parameters"))
		}
		c.Locals(criteriaLocal, feed.ParseCriteria(params, currentUserID(c)))
		return upgrade(c)
	}
}

func (s *Server) serveFeed(conn *websocket.Conn) {
	userID, _ := conn.Locals("userID").(string)
	initial, _ := conn.Locals(criteriaLocal).(feed.Criteria)

	client, err := s.feedHub.Register(userID, conn)
	if err != nil {
		middleware.Logger.Warn("feed socket rejected", slog.String("user_id", userID), slog.String("error", err.Error()))
		_ = conn.WriteJSON(fiber.Map{"type": "error", "error": err.Error()})
		_ = conn.Close()
		return
	}

	ctx, cancel := context.WithCancel(s.baseContext())
	defer cancel()

	if _, err := s.broker.Snapshot(ctx); err != nil {
		middleware.Logger.Warn("feed socket opened without a snapshot", slog.String("error", err.Error()))
	}

	updates := make(chan feed.Criteria, 1)
	onCriteria := func(raw []byte) {
		criteria, ok := parseCriteriaMessage(raw, userID)
		if !ok {
			return
		}
		// Only the newest criteria matter.
		select {
		case <-updates:
		default:
		}
		updates <- criteria
	}

	session := feed.NewSession(s.engine, s.broker.Subscribe(ctx), updates, func(listings []models.Listing) error {
		payload, err := json.Marshal(newFeedResponse(listings))
		if err != nil {
			return err
		}
		msg, err := json.Marshal(feedMessage{Type: "feed", Payload: payload})
		if err != nil {
			return err
		}
		if !client.Queue(msg) {
			return errClientGone
		}
		return nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := session.Run(ctx, initial); err != nil && !errors.Is(err, context.Canceled) {
			middleware.Logger.Warn("feed session ended", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
		// Closes the socket so the read loop below returns.
		_ = conn.Close()
	}()

	client.Serve(onCriteria)

	cancel()
	<-done
	client.Close()
}

// parseCriteriaMessage decodes a client criteria message.
func parseCriteriaMessage(raw []byte, viewerID string) (feed.Criteria, bool) {
	var msg feedMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != "criteria" {
		return feed.Criteria{}, false
	}
	var params feed.Params
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &params); err != nil {
			return feed.Criteria{}, false
		}
	}
	return feed.ParseCriteria(params, viewerID), true
}

func (s *Server) baseContext() context.Context {
	if s.shutdownCtx != nil {
		return s.shutdownCtx
	}
	return context.Background()
}
