package service

import (
	"context"

	"github.com/mitronepal/JobMandu/internal/middleware"
	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/observability"
	"github.com/mitronepal/JobMandu/internal/repository"
)

// ViewService counts each distinct viewer of a listing once. A counted view
// is announced like any other listing change so live feeds pick up the new
// total.
type ViewService struct {
	listings repository.ListingRepository
	changes  ChangeNotifier
}

func NewViewService(listings repository.ListingRepository, changes ChangeNotifier) *ViewService {
	return &ViewService{listings: listings, changes: notifierOrNoop(changes)}
}

// Record registers viewerID as a viewer of listing. Store failures are logged
// and reported through the outcome; they never fail the caller.
func (s *ViewService) Record(ctx context.Context, listing *models.Listing, viewerID string) models.ViewResult {
	res := s.record(ctx, listing, viewerID)
	observability.ListingViewsTotal.WithLabelValues(string(res.Outcome)).Inc()
	return res
}

func (s *ViewService) record(ctx context.Context, listing *models.Listing, viewerID string) models.ViewResult {
	switch {
	case viewerID == "":
		return models.ViewResult{Outcome: models.ViewAnonymous, Views: listing.Views}
	case listing.IsOwnedBy(viewerID):
		return models.ViewResult{Outcome: models.ViewOwnListing, Views: listing.Views}
	case listing.HasViewer(viewerID):
		return models.ViewResult{Outcome: models.ViewAlreadyCounted, Views: listing.Views}
	}

	added, views, err := s.listings.AddView(ctx, listing.ID, viewerID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "view tracking failed",
			"listing_id", listing.ID, "viewer_id", viewerID, "error", err)
		return models.ViewResult{Outcome: models.ViewFailed, Views: listing.Views}
	}
	if !added {
		return models.ViewResult{Outcome: models.ViewAlreadyCounted, Views: views}
	}
	s.changes.ListingsChanged(ctx, listing.ID)
	return models.ViewResult{Outcome: models.ViewRecorded, Views: views}
}
