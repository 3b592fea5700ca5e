// Package cache holds the Redis plumbing shared by profiles, reverse
// geocoding, websocket tickets and token revocation.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mitronepal/JobMandu/internal/middleware"
	"github.com/mitronepal/JobMandu/internal/observability"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

const pingTimeout = 5 * time.Second

// errorCounter feeds failed commands into the redis error metric. A miss is
// not a failure.
type errorCounter struct{}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countError(cmd.Name(), err)
		return err
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countError("pipeline", err)
		return err
	}
}

func countError(name string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrorRate.WithLabelValues(name).Inc()
	}
}

// parseAddr accepts a redis:// or rediss:// URL or a bare host:port.
func parseAddr(addr string) (*redis.Options, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("empty redis address")
	}
	if !strings.Contains(addr, "://") {
		return &redis.Options{Addr: addr}, nil
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opts, nil
}

// Open connects to Redis. The marketplace runs without a cache, so any
// failure is logged and reported as a nil client.
func Open(ctx context.Context, addr string) *redis.Client {
	opts, err := parseAddr(addr)
	if err != nil {
		middleware.Logger.Warn("redis disabled", slog.String("error", err.Error()))
		return nil
	}
	// Managed servers without CLIENT MAINT_NOTIFICATIONS reject the handshake.
	opts.MaintNotificationsConfig = &maintnotifications.Config{Mode: maintnotifications.ModeDisabled}

	rdb := NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		middleware.Logger.Warn("redis unreachable, running without cache",
			slog.String("addr", opts.Addr),
			slog.String("error", err.Error()))
		_ = rdb.Close()
		return nil
	}
	middleware.Logger.Info("redis ready", slog.String("addr", opts.Addr), slog.Int("db", opts.DB))
	return rdb
}

// NewClient builds a client with error metrics installed.
func NewClient(opts *redis.Options) *redis.Client {
	rdb := redis.NewClient(opts)
	rdb.AddHook(errorCounter{})
	return rdb
}
