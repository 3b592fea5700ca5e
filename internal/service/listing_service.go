package service

import (
	"context"

	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/repository"
)

// ListingService covers reads and the owner-only mutations of a listing.
type ListingService struct {
	listings repository.ListingRepository
	changes  ChangeNotifier
}

func NewListingService(listings repository.ListingRepository, changes ChangeNotifier) *ListingService {
	return &ListingService{listings: listings, changes: notifierOrNoop(changes)}
}

func (s *ListingService) Get(ctx context.Context, id string) (*models.Listing, error) {
	return s.listings.GetByID(ctx, id)
}

// ToggleStatus flips Open/Closed for jobs and Available/Rented for rooms.
func (s *ListingService) ToggleStatus(ctx context.Context, id, actorID string) (*models.Listing, error) {
	listing, err := s.owned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	next := models.ToggledStatus(listing.Category, listing.Status)
	if err := s.listings.SetStatus(ctx, listing.ID, next); err != nil {
		return nil, err
	}
	listing.Status = next
	s.changes.ListingsChanged(ctx, listing.ID)
	return listing, nil
}

// Delete permanently removes the actor's listing.
func (s *ListingService) Delete(ctx context.Context, id, actorID string) error {
	listing, err := s.owned(ctx, id, actorID)
	if err != nil {
		return err
	}
	if err := s.listings.Delete(ctx, listing.ID); err != nil {
		return err
	}
	s.changes.ListingsChanged(ctx, listing.ID)
	return nil
}

func (s *ListingService) owned(ctx context.Context, id, actorID string) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !listing.IsOwnedBy(actorID) {
		return nil, models.NewForbiddenError("Only the poster can change this listing")
	}
	return listing, nil
}
