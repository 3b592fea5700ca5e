package repository

import (
	"context"

	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingRepository defines persistence operations for listings.
// AddReport and AddView are atomic set-union operations: the id is added and the
// matching counter incremented only if the id is not already present.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	// List returns every listing, newest first.
	List(ctx context.Context) ([]models.Listing, error)
	// Delete removes the listing; deleting a missing listing succeeds.
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status models.ListingStatus) error
	AddReport(ctx context.Context, id, reporterID string) (added bool, reportsCount int, err error)
	AddView(ctx context.Context, id, viewerID string) (added bool, views int, err error)
}

type listingRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewListingRepository creates a gorm backed listing repository.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db, log: observability.NewRepoLogger("listings")}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	defer observability.TrackQuery("create", "listings")()
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, dbSystemSQL, "Create", "listings")
	defer span.End()

	listing.Normalize()
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return gormError(err, "Listing", listing.ID)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"listing_id": listing.ID, "category": listing.Category})
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	defer observability.TrackQuery("get", "listings")()

	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, gormError(err, "Listing", id)
	}
	listing.Normalize()
	return &listing, nil
}

func (r *listingRepository) List(ctx context.Context) ([]models.Listing, error) {
	defer observability.TrackQuery("list", "listings")()

	var listings []models.Listing
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&listings).Error; err != nil {
		return nil, gormError(err, "Listing", "*")
	}
	for i := range listings {
		listings[i].Normalize()
	}
	r.log.LogRead(ctx, map[string]interface{}{"count": len(listings)})
	return listings, nil
}

func (r *listingRepository) Delete(ctx context.Context, id string) error {
	defer observability.TrackQuery("delete", "listings")()

	res := r.db.WithContext(ctx).Delete(&models.Listing{}, "id = ?", id)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return gormError(res.Error, "Listing", id)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"listing_id": id, "rows": res.RowsAffected})
	return nil
}

func (r *listingRepository) SetStatus(ctx context.Context, id string, status models.ListingStatus) error {
	defer observability.TrackQuery("update", "listings")()

	res := r.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return gormError(res.Error, "Listing", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Listing", id)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"listing_id": id, "status": status})
	return nil
}

func (r *listingRepository) AddReport(ctx context.Context, id, reporterID string) (bool, int, error) {
	defer observability.TrackQuery("add_report", "listings")()
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, dbSystemSQL, "AddReport", "listings")
	defer span.End()

	var (
		added bool
		count int
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := lockListing(tx, id)
		if err != nil {
			return err
		}
		if listing.HasReporter(reporterID) {
			count = len(listing.Reports)
			return nil
		}

		reports := append(listing.Reports, reporterID)
		count = len(reports)
		added = true
		return tx.Model(&models.Listing{}).Where("id = ?", id).Updates(map[string]interface{}{
			"reports":       reports,
			"reports_count": count,
		}).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "add_report")
		return false, 0, gormError(err, "Listing", id)
	}
	if added {
		r.log.LogUpdate(ctx, map[string]interface{}{"listing_id": id, "reports_count": count})
	}
	return added, count, nil
}

func (r *listingRepository) AddView(ctx context.Context, id, viewerID string) (bool, int, error) {
	defer observability.TrackQuery("add_view", "listings")()

	var (
		added bool
		views int
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := lockListing(tx, id)
		if err != nil {
			return err
		}
		views = listing.Views
		if listing.HasViewer(viewerID) {
			return nil
		}

		added = true
		views++
		return tx.Model(&models.Listing{}).Where("id = ?", id).Updates(map[string]interface{}{
			"viewed_by": append(listing.ViewedBy, viewerID),
			"views":     gorm.Expr("views + ?", 1),
		}).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "add_view")
		return false, 0, gormError(err, "Listing", id)
	}
	if added {
		r.log.LogUpdate(ctx, map[string]interface{}{"listing_id": id, "views": views})
	}
	return added, views, nil
}

// lockListing reads a listing with a row lock held until the transaction ends.
func lockListing(tx *gorm.DB, id string) (*models.Listing, error) {
	var listing models.Listing
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&listing, "id = ?", id).Error; err != nil {
		return nil, gormError(err, "Listing", id)
	}
	listing.Normalize()
	return &listing, nil
}
