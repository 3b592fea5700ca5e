package feed

import (
	"context"
	"sync"

	"github.com/mitronepal/JobMandu/internal/middleware"
	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Source lists every listing, newest first.
type Source interface {
	List(ctx context.Context) ([]models.Listing, error)
}

// Broker owns the latest listing snapshot and fans it out to subscribers.
// Each subscriber channel buffers one snapshot; a slow reader only ever
// sees the newest one.
type Broker struct {
	src Source

	mu     sync.Mutex
	latest []models.Listing
	loaded bool
	subs   map[uint64]chan []models.Listing
	nextID uint64
}

// NewBroker creates a broker reading from src.
func NewBroker(src Source) *Broker {
	return &Broker{
		src:  src,
		subs: make(map[uint64]chan []models.Listing),
	}
}

// Refresh reloads the snapshot from the source and delivers it to every subscriber.
func (b *Broker) Refresh(ctx context.Context) error {
	span, ctx := observability.NewSpan(ctx, "feed.refresh")
	defer span.End()

	listings, err := b.src.List(ctx)
	if err != nil {
		span.SetError(err)
		middleware.Logger.ErrorContext(ctx, "feed snapshot refresh failed", "error", err)
		return err
	}
	span.AddAttributes(
		attribute.Int("feed.listings", len(listings)),
		attribute.Int("feed.subscribers", b.Subscribers()),
	)
	b.Publish(listings)
	return nil
}

// Publish replaces the snapshot and delivers it.
func (b *Broker) Publish(listings []models.Listing) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.latest = listings
	b.loaded = true
	for _, ch := range b.subs {
		deliver(ch, listings)
	}
}

// Snapshot returns the latest snapshot, loading it on first use.
func (b *Broker) Snapshot(ctx context.Context) ([]models.Listing, error) {
	b.mu.Lock()
	if b.loaded {
		latest := b.latest
		b.mu.Unlock()
		return latest, nil
	}
	b.mu.Unlock()

	if err := b.Refresh(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, nil
}

// Subscribe returns a channel of snapshots. The current snapshot, if any, is
// delivered immediately. The channel is closed once ctx is done.
func (b *Broker) Subscribe(ctx context.Context) <-chan []models.Listing {
	ch := make(chan []models.Listing, 1)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	if b.loaded {
		deliver(ch, b.latest)
	}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()
	return ch
}

// Subscribers returns the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// deliver replaces any undelivered snapshot with listings. Callers hold b.mu.
func deliver(ch chan []models.Listing, listings []models.Listing) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- listings:
	default:
	}
}
