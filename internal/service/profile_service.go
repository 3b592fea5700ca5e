package service

import (
	"context"

	"github.com/mitronepal/JobMandu/internal/cache"
	"github.com/mitronepal/JobMandu/internal/middleware"
	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/repository"

	"github.com/redis/go-redis/v9"
)

// ProfileService manages marketplace profiles. Reads go through a short
// Redis cache that every write invalidates.
type ProfileService struct {
	profiles repository.ProfileRepository
	rdb      *redis.Client
}

// NewProfileService creates a ProfileService; rdb may be nil.
func NewProfileService(profiles repository.ProfileRepository, rdb *redis.Client) *ProfileService {
	return &ProfileService{profiles: profiles, rdb: rdb}
}

// Get returns the profile for uid.
func (s *ProfileService) Get(ctx context.Context, uid string) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, s.rdb, cache.ProfileKey(uid), &profile, cache.ProfileTTL, func() error {
		p, err := s.profiles.GetByID(ctx, uid)
		if err != nil {
			return err
		}
		profile = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Find is Get with a missing profile reported as nil.
func (s *ProfileService) Find(ctx context.Context, uid string) (*models.Profile, error) {
	p, err := s.Get(ctx, uid)
	if models.IsCode(err, models.CodeNotFound) {
		return nil, nil
	}
	return p, err
}

// SelectRole creates the profile for account. The role is chosen once.
func (s *ProfileService) SelectRole(ctx context.Context, account *models.Account, role models.Role) (*models.Profile, error) {
	if !role.Valid() {
		return nil, models.NewValidationError("Role must be seeker or provider")
	}

	existing, err := s.Find(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError(models.CodeRoleAlreadySet, "Role has already been selected")
	}

	profile := models.NewProfile(account, role)
	if err := s.profiles.Create(ctx, profile); err != nil {
		if models.IsCode(err, models.CodeConflict) {
			return nil, models.NewConflictError(models.CodeRoleAlreadySet, "Role has already been selected")
		}
		return nil, err
	}
	cache.InvalidateProfile(ctx, s.rdb, account.ID)
	middleware.Logger.InfoContext(ctx, "profile created", "uid", profile.ID, "role", profile.Role)
	return profile, nil
}

// Block suspends uid. Blocking an already blocked profile succeeds.
func (s *ProfileService) Block(ctx context.Context, uid string) error {
	return s.setBlocked(ctx, uid, true)
}

// Unblock reinstates uid after a support review.
func (s *ProfileService) Unblock(ctx context.Context, uid string) error {
	return s.setBlocked(ctx, uid, false)
}

func (s *ProfileService) setBlocked(ctx context.Context, uid string, blocked bool) error {
	if err := s.profiles.SetBlocked(ctx, uid, blocked); err != nil {
		return err
	}
	cache.InvalidateProfile(ctx, s.rdb, uid)
	middleware.Logger.InfoContext(ctx, "profile block state changed", "uid", uid, "is_blocked", blocked)
	return nil
}

// RecordReportReceived adds one to the owner's report tally.
func (s *ProfileService) RecordReportReceived(ctx context.Context, uid string) error {
	if err := s.profiles.IncrementReportsReceived(ctx, uid); err != nil {
		return err
	}
	cache.InvalidateProfile(ctx, s.rdb, uid)
	return nil
}
