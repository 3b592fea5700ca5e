package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const rateLimitKey = "rl:%s:%s"

var errNoRateStore = errors.New("rate limit store unavailable")

// Quota is a fixed-window allowance for one action, shared by all routes
// that use the same action name.
type Quota struct {
	Action string
	Limit  int
	Window time.Duration
}

// Decision is the outcome of counting one request against a Quota.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// rateLimitEnforced reports whether quotas apply in this process. Local and
// load-test environments skip them; the test suite opts in with
// RATE_LIMIT_FORCE.
func rateLimitEnforced() bool {
	switch os.Getenv("APP_ENV") {
	case "", "development", "stress":
		return false
	case "test":
		return os.Getenv("RATE_LIMIT_FORCE") != ""
	default:
		return true
	}
}

// Take counts one request by caller against q.
func (q Quota) Take(ctx context.Context, rdb *redis.Client, caller string) (Decision, error) {
	if !rateLimitEnforced() {
		return Decision{Allowed: true, Remaining: q.Limit}, nil
	}
	if rdb == nil {
		return Decision{}, errNoRateStore
	}

	key := fmt.Sprintf(rateLimitKey, q.Action, caller)
	var count *redis.IntCmd
	var ttl *redis.DurationCmd
	if _, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, key)
		ttl = pipe.PTTL(ctx, key)
		return nil
	}); err != nil {
		return Decision{}, err
	}

	left := ttl.Val()
	if left < 0 {
		// first hit in this window
		if err := rdb.PExpire(ctx, key, q.Window).Err(); err != nil {
			return Decision{}, err
		}
		left = q.Window
	}

	n := int(count.Val())
	return Decision{
		Allowed:    n <= q.Limit,
		Remaining:  max(q.Limit-n, 0),
		RetryAfter: left,
	}, nil
}

// rateLimitCaller identifies the signed-in user, or the client address for
// anonymous routes.
func rateLimitCaller(c *fiber.Ctx) string {
	if uid, ok := c.Locals("userID").(string); ok && uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.IP()
}

// RateLimit allows limit requests per window for each caller. The optional
// name groups routes under one quota and defaults to the request path. When
// Redis is unreachable the request goes through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := Quota{Action: c.Path(), Limit: limit, Window: window}
		if len(name) > 0 {
			q.Action = name[0]
		}
		ctx := c.UserContext()
		caller := rateLimitCaller(c)

		d, err := q.Take(ctx, rdb, caller)
		if err != nil {
			Logger.WarnContext(ctx, "rate limit skipped",
				slog.String("action", q.Action),
				slog.String("error", err.Error()))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(q.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if d.Allowed {
			return c.Next()
		}

		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
		Logger.InfoContext(ctx, "rate limited",
			slog.String("action", q.Action),
			slog.String("caller", caller))
		return models.RespondWithAppError(c, models.NewRateLimitedError(q.Action))
	}
}
