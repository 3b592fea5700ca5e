// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger.Store(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

// SetLogger routes repository and websocket logs through l. Nil is ignored.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger.Store(l)
	}
}

// Logger returns the logger used by RepoLogger and WSLogger.
func Logger() *slog.Logger {
	return logger.Load()
}

type correlationKey struct{}

// WithCorrelationID returns a copy of ctx carrying id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// ExtractCorrelationID returns the id stored by WithCorrelationID, or "".
func ExtractCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// emit logs msg with base attributes first, then fields sorted by key.
func emit(ctx context.Context, level slog.Level, msg string, base []slog.Attr, fields map[string]any) {
	l := Logger()
	if !l.Enabled(ctx, level) {
		return
	}
	attrs := base
	if id := ExtractCorrelationID(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	l.LogAttrs(ctx, level, msg, attrs...)
}

// RepoLogger logs store operations for one collection. Reads log at debug.
type RepoLogger struct {
	collection string
}

// NewRepoLogger creates a RepoLogger for collection.
func NewRepoLogger(collection string) *RepoLogger {
	return &RepoLogger{collection: collection}
}

func (l *RepoLogger) log(ctx context.Context, level slog.Level, op string, fields map[string]any, extra ...slog.Attr) {
	base := append([]slog.Attr{
		slog.String("collection", l.collection),
		slog.String("operation", op),
	}, extra...)
	emit(ctx, level, "repository "+op, base, fields)
}

func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelInfo, "create", fields)
}

func (l *RepoLogger) LogRead(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelDebug, "read", fields)
}

func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelInfo, "update", fields)
}

func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelInfo, "delete", fields)
}

// LogError logs a failed operation.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	base := []slog.Attr{
		slog.String("collection", l.collection),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}
	emit(ctx, slog.LevelError, "repository error", base, nil)
}

// WSLogger logs socket events for one hub.
type WSLogger struct {
	hub string
}

// NewWSLogger creates a WSLogger for hub.
func NewWSLogger(hub string) *WSLogger {
	return &WSLogger{hub: hub}
}

func (l *WSLogger) base(userID, channel string, extra ...slog.Attr) []slog.Attr {
	return append([]slog.Attr{
		slog.String("hub", l.hub),
		slog.String("user_id", userID),
		slog.String("channel", channel),
	}, extra...)
}

func (l *WSLogger) LogConnect(ctx context.Context, userID, channel string) {
	emit(ctx, slog.LevelInfo, "websocket connected", l.base(userID, channel), nil)
}

func (l *WSLogger) LogDisconnect(ctx context.Context, userID, channel, reason string) {
	emit(ctx, slog.LevelInfo, "websocket disconnected", l.base(userID, channel, slog.String("reason", reason)), nil)
}

func (l *WSLogger) LogError(ctx context.Context, userID, channel string, err error, eventType string) {
	emit(ctx, slog.LevelError, "websocket error", l.base(userID, channel,
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	), nil)
}

// LogMessage logs an inbound client message at debug.
func (l *WSLogger) LogMessage(ctx context.Context, userID, channel, messageType string) {
	emit(ctx, slog.LevelDebug, "websocket message", l.base(userID, channel, slog.String("message_type", messageType)), nil)
}

// LogLifecycle logs a hub-wide event such as shutdown.
func (l *WSLogger) LogLifecycle(ctx context.Context, event string, fields map[string]any) {
	emit(ctx, slog.LevelInfo, "websocket lifecycle", []slog.Attr{
		slog.String("hub", l.hub),
		slog.String("event", event),
	}, fields)
}
