package repository

import (
	"context"

	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/observability"

	"gorm.io/gorm"
)

// ProfileRepository defines persistence operations for user profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, uid string) (*models.Profile, error)
	// Create stores a new profile; an existing uid yields a CONFLICT error.
	Create(ctx context.Context, profile *models.Profile) error
	// SetBlocked is idempotent.
	SetBlocked(ctx context.Context, uid string, blocked bool) error
	IncrementReportsReceived(ctx context.Context, uid string) error
}

type profileRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewProfileRepository creates a gorm backed profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db, log: observability.NewRepoLogger("profiles")}
}

func (r *profileRepository) GetByID(ctx context.Context, uid string) (*models.Profile, error) {
	defer observability.TrackQuery("get", "profiles")()

	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", uid).Error; err != nil {
		return nil, gormError(err, "Profile", uid)
	}
	return &profile, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	defer observability.TrackQuery("create", "profiles")()

	var existing int64
	if err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", profile.ID).Count(&existing).Error; err != nil {
		return gormError(err, "Profile", profile.ID)
	}
	if existing > 0 {
		return models.NewConflictError(models.CodeConflict, "Profile already exists")
	}

	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return gormError(err, "Profile", profile.ID)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"uid": profile.ID, "role": profile.Role})
	return nil
}

func (r *profileRepository) SetBlocked(ctx context.Context, uid string, blocked bool) error {
	defer observability.TrackQuery("update", "profiles")()
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, dbSystemSQL, "SetBlocked", "profiles")
	defer span.End()

	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", uid).Update("is_blocked", blocked)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "set_blocked")
		return gormError(res.Error, "Profile", uid)
	}
	if res.RowsAffected == 0 {
		// Some drivers report zero rows when the value is unchanged.
		if _, err := r.GetByID(ctx, uid); err != nil {
			return err
		}
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"uid": uid, "is_blocked": blocked})
	return nil
}

func (r *profileRepository) IncrementReportsReceived(ctx context.Context, uid string) error {
	defer observability.TrackQuery("update", "profiles")()

	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", uid).
		UpdateColumn("total_reports_received", gorm.Expr("total_reports_received + ?", 1))
	if res.Error != nil {
		return gormError(res.Error, "Profile", uid)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", uid)
	}
	return nil
}
