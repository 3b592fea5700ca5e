// Package notifications provides real-time delivery of listing changes.
package notifications

import (
	"context"
	"runtime/debug"
	"sync/atomic"

	"github.com/mitronepal/JobMandu/internal/middleware"
	"github.com/mitronepal/JobMandu/internal/observability"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// ListingsChannel carries the id of every created, changed or removed listing.
const ListingsChannel = "listings:changed"

// Notifier publishes listing changes into Redis so every instance refreshes its feed.
// Without a live subscription, changes also go straight to the local handler.
type Notifier struct {
	rdb        *redis.Client
	local      func(ctx context.Context, listingID string)
	subscribed atomic.Bool
}

// NewNotifier creates a new Notifier. local may be nil.
func NewNotifier(rdb *redis.Client, local func(ctx context.Context, listingID string)) *Notifier {
	return &Notifier{rdb: rdb, local: local}
}

// PublishListingsChanged announces that listingID changed.
func (n *Notifier) PublishListingsChanged(ctx context.Context, listingID string) error {
	if n.rdb == nil {
		return nil
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "publish")
	span.SetAttributes(attribute.String("listing.id", listingID))

	err := n.rdb.Publish(ctx, ListingsChannel, listingID).Err()
	observability.EndSpan(span, err)
	return err
}

// ListingsChanged publishes the change. The local handler runs as well when
// Redis is absent, the publish fails, or this instance is not subscribed.
// It never blocks on the handler.
func (n *Notifier) ListingsChanged(ctx context.Context, listingID string) {
	if n.rdb != nil {
		err := n.PublishListingsChanged(ctx, listingID)
		if err == nil && n.subscribed.Load() {
			return
		}
		if err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish listing change", "listing_id", listingID, "error", err)
		}
	}
	if n.local != nil {
		go n.local(context.WithoutCancel(ctx), listingID)
	}
}

// StartListingsSubscriber subscribes to ListingsChannel and calls onChange for
// each message until ctx is done.
func (n *Notifier) StartListingsSubscriber(ctx context.Context, onChange func(listingID string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ListingsChannel)
	// Wait for the subscription to be confirmed before returning.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()
	n.subscribed.Store(true)

	go func() {
		defer func() {
			n.subscribed.Store(false)
			_ = sub.Close()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in listings subscriber", "panic", r, "stack", string(debug.Stack()))
						}
					}()
					onChange(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
