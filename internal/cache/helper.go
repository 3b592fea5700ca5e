package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/mitronepal/JobMandu/internal/middleware"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var loads singleflight.Group

// getJSON decodes key into dest and reports whether it was present.
func getJSON(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	raw, err := rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Aside reads key into dest, falling back to fetch on a miss. fetch must
// fill dest. Concurrent misses on the same key share one fetch, and cache
// failures never fail the read.
func Aside(ctx context.Context, rdb *redis.Client, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := getJSON(ctx, rdb, key, dest)
	if err != nil {
		middleware.Logger.DebugContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		return nil
	}

	leader := false
	raw, err, _ := loads.Do(key, func() (any, error) {
		leader = true
		if err := fetch(); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(dest)
		if err != nil {
			return nil, err
		}
		if rdb != nil {
			if err := rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
				middleware.Logger.DebugContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
			}
		}
		return raw, nil
	})
	if err != nil || leader {
		return err
	}
	return json.Unmarshal(raw.([]byte), dest)
}
