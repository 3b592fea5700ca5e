package service

import (
	"context"
	"sync"

	"github.com/mitronepal/JobMandu/internal/models"
)

// listingRepoStub is a stub for repository.ListingRepository.
type listingRepoStub struct {
	createFn    func(context.Context, *models.Listing) error
	getByIDFn   func(context.Context, string) (*models.Listing, error)
	listFn      func(context.Context) ([]models.Listing, error)
	deleteFn    func(context.Context, string) error
	setStatusFn func(context.Context, string, models.ListingStatus) error
	addReportFn func(context.Context, string, string) (bool, int, error)
	addViewFn   func(context.Context, string, string) (bool, int, error)
}

func (s *listingRepoStub) Create(ctx context.Context, l *models.Listing) error {
	return s.createFn(ctx, l)
}
func (s *listingRepoStub) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	return s.getByIDFn(ctx, id)
}
func (s *listingRepoStub) List(ctx context.Context) ([]models.Listing, error) {
	return s.listFn(ctx)
}
func (s *listingRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *listingRepoStub) SetStatus(ctx context.Context, id string, status models.ListingStatus) error {
	return s.setStatusFn(ctx, id, status)
}
func (s *listingRepoStub) AddReport(ctx context.Context, id, reporterID string) (bool, int, error) {
	return s.addReportFn(ctx, id, reporterID)
}
func (s *listingRepoStub) AddView(ctx context.Context, id, viewerID string) (bool, int, error) {
	return s.addViewFn(ctx, id, viewerID)
}

func noopListingRepo(listing *models.Listing) *listingRepoStub {
	return &listingRepoStub{
		createFn:    func(context.Context, *models.Listing) error { return nil },
		getByIDFn:   func(context.Context, string) (*models.Listing, error) { return listing, nil },
		listFn:      func(context.Context) ([]models.Listing, error) { return nil, nil },
		deleteFn:    func(context.Context, string) error { return nil },
		setStatusFn: func(context.Context, string, models.ListingStatus) error { return nil },
		addReportFn: func(context.Context, string, string) (bool, int, error) { return true, 1, nil },
		addViewFn:   func(context.Context, string, string) (bool, int, error) { return true, 1, nil },
	}
}

// moderatorStub is a stub for ProfileModerator.
type moderatorStub struct {
	blockFn  func(context.Context, string) error
	recordFn func(context.Context, string) error
}

func (s *moderatorStub) Block(ctx context.Context, uid string) error {
	return s.blockFn(ctx, uid)
}
func (s *moderatorStub) RecordReportReceived(ctx context.Context, uid string) error {
	return s.recordFn(ctx, uid)
}

func noopModerator() *moderatorStub {
	return &moderatorStub{
		blockFn:  func(context.Context, string) error { return nil },
		recordFn: func(context.Context, string) error { return nil },
	}
}

// changeRecorder collects ListingsChanged calls.
type changeRecorder struct {
	mu  sync.Mutex
	ids []string
}

func (r *changeRecorder) ListingsChanged(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

func reportedListing(owner string, reporters ...string) *models.Listing {
	l := &models.Listing{
		ID:         "listing-1",
		Category:   models.CategoryJob,
		ProviderID: owner,
		Status:     models.StatusOpen,
	}
	l.Reports = append(l.Reports, reporters...)
	l.ReportsCount = len(reporters)
	l.Normalize()
	return l
}
