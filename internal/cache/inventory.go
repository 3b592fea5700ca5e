package cache

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ProfileKeyPrefix   = "profile:%s"
	GeocodeKeyPrefix   = "geo:%.5f:%.5f"
	WSTicketKeyPrefix  = "ws_ticket:%s"
	BlacklistKeyPrefix = "blacklist:%s"
)

const (
	ProfileTTL  = 5 * time.Minute
	GeocodeTTL  = 24 * time.Hour
	WSTicketTTL = 30 * time.Second
)

func ProfileKey(uid string) string {
	return fmt.Sprintf(ProfileKeyPrefix, uid)
}

// GeocodeKey rounds coordinates to roughly one metre so nearby map taps share an entry.
func GeocodeKey(lat, lon float64) string {
	return fmt.Sprintf(GeocodeKeyPrefix, round5(lat), round5(lon))
}

func WSTicketKey(ticket string) string {
	return fmt.Sprintf(WSTicketKeyPrefix, ticket)
}

func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistKeyPrefix, jti)
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

// Invalidate removes key; a nil client is a no-op.
func Invalidate(ctx context.Context, rdb *redis.Client, key string) {
	if rdb != nil {
		rdb.Del(ctx, key)
	}
}

func InvalidateProfile(ctx context.Context, rdb *redis.Client, uid string) {
	Invalidate(ctx, rdb, ProfileKey(uid))
}
