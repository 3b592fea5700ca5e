package middleware

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mitronepal/JobMandu/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Logger is the process-wide structured logger. Records written with a
// request context carry request_id, user_id and trace_id.
var Logger *slog.Logger

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
)

var requestAttrs = []contextKey{RequestIDKey, UserIDKey, TraceIDKey}

type requestHandler struct {
	slog.Handler
}

func (h requestHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, key := range requestAttrs {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			r.AddAttrs(slog.String(string(key), v))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h requestHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return requestHandler{h.Handler.WithAttrs(attrs)}
}

func (h requestHandler) WithGroup(name string) slog.Handler {
	return requestHandler{h.Handler.WithGroup(name)}
}

// NewLogger builds the service logger: JSON in production, text elsewhere.
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if strings.EqualFold(level, "debug") {
		opts.Level = slog.LevelDebug
	}

	var h slog.Handler
	switch env {
	case "production", "prod":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(requestHandler{h}).With(slog.String("service", "jobmandu"))
}

func init() {
	Logger = NewLogger(os.Stdout, os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	observability.SetLogger(Logger)
}

// WithUser tags ctx with the authenticated user.
func WithUser(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, UserIDKey, uid)
}

// ContextMiddleware copies the request id into the user context so service
// and repository logs can be joined to the access log line.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ctx := context.WithValue(c.UserContext(), RequestIDKey, rid)
			c.SetUserContext(observability.WithCorrelationID(ctx, rid))
		}
		return c.Next()
	}
}

// StructuredLogger writes one access log line per request. Health and
// metrics scrapes only show up at debug level.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("route", c.Route().Path),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
		}
		if id := c.Params("id"); id != "" {
			attrs = append(attrs, slog.String("listing_id", id))
		}

		level := slog.LevelInfo
		msg := "request"
		switch {
		case err != nil:
			level, msg = slog.LevelError, "request failed"
			attrs = append(attrs, slog.String("error", err.Error()))
		case status >= fiber.StatusInternalServerError:
			level, msg = slog.LevelError, "request failed"
		case status == fiber.StatusTooManyRequests, status == fiber.StatusForbidden:
			level = slog.LevelWarn
		case isInfraPath(c.Path()):
			level = slog.LevelDebug
		}

		Logger.LogAttrs(c.UserContext(), level, msg, attrs...)
		return err
	}
}
