// Package service holds the marketplace business rules: posting, moderation,
// view tracking, listing ownership and profiles.
package service

import "context"

// ChangeNotifier is told whenever the listing collection changes so live
// feeds can refresh. Implementations must not block.
type ChangeNotifier interface {
	ListingsChanged(ctx context.Context, listingID string)
}

// ChangeNotifierFunc adapts a function to ChangeNotifier.
type ChangeNotifierFunc func(ctx context.Context, listingID string)

// ListingsChanged calls f.
func (f ChangeNotifierFunc) ListingsChanged(ctx context.Context, listingID string) {
	f(ctx, listingID)
}

type noopNotifier struct{}

func (noopNotifier) ListingsChanged(context.Context, string) {}

func notifierOrNoop(n ChangeNotifier) ChangeNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
