package service

import (
	"context"
	"strings"
	"time"

	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/observability"
	"github.com/mitronepal/JobMandu/internal/repository"
	"github.com/mitronepal/JobMandu/internal/validation"

	"github.com/google/uuid"
)

// AnonymousProvider is stamped when the author has no display name.
const AnonymousProvider = "Anonymous"

// PostingService runs the posting workflow: draft validation, the ethics
// acknowledgement gate and persistence with system-assigned fields.
type PostingService struct {
	listings  repository.ListingRepository
	validator *validation.Validator
	changes   ChangeNotifier
	now       func() time.Time
}

func NewPostingService(listings repository.ListingRepository, v *validation.Validator, changes ChangeNotifier) *PostingService {
	if v == nil {
		v = validation.New()
	}
	return &PostingService{
		listings:  listings,
		validator: v,
		changes:   notifierOrNoop(changes),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ValidateDraft trims the draft in place and checks the category's required fields.
func (s *PostingService) ValidateDraft(d *models.ListingDraft) error {
	d.Category = models.Category(strings.ToLower(strings.TrimSpace(string(d.Category))))
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.ContactNumber = strings.TrimSpace(d.ContactNumber)
	d.Location = strings.TrimSpace(d.Location)
	d.CompanyName = strings.TrimSpace(d.CompanyName)
	if d.Category == models.CategoryJob && d.Type == "" {
		d.Type = models.JobFullTime
	}
	return s.validator.Struct(d)
}

// Submit publishes the draft for author. Nothing is persisted unless the
// draft is valid and the pact was acknowledged.
func (s *PostingService) Submit(ctx context.Context, author *models.Profile, d models.ListingDraft) (*models.Listing, error) {
	if author == nil {
		return nil, models.NewAuthRequiredError()
	}
	if author.IsBlocked {
		return nil, models.NewBlockedError("")
	}
	if author.Role != models.RoleProvider {
		return nil, models.NewForbiddenError("Only providers can post listings")
	}
	if err := s.ValidateDraft(&d); err != nil {
		return nil, err
	}
	if !d.AcknowledgedPact {
		return nil, models.NewAcknowledgementRequiredError()
	}

	listing := s.build(author, &d)
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}

	observability.ListingsPublishedTotal.WithLabelValues(string(listing.Category)).Inc()
	s.changes.ListingsChanged(ctx, listing.ID)
	return listing, nil
}

func (s *PostingService) build(author *models.Profile, d *models.ListingDraft) *models.Listing {
	name := strings.TrimSpace(author.DisplayName)
	if name == "" {
		name = AnonymousProvider
	}

	l := &models.Listing{
		ID:            uuid.NewString(),
		Category:      d.Category,
		Title:         d.Title,
		Description:   d.Description,
		ContactNumber: d.ContactNumber,
		Location:      d.Location,
		Latitude:      d.Latitude,
		Longitude:     d.Longitude,
		ProviderID:    author.ID,
		ProviderName:  name,
		CreatedAt:     s.now(),
		Status:        models.DefaultStatus(d.Category),
	}
	l.Normalize()

	switch d.Category {
	case models.CategoryJob:
		l.CompanyName = d.CompanyName
		l.MinSalary = d.MinSalary
		l.MaxSalary = d.MaxSalary
		l.Type = d.Type
		l.ExperienceLevel = strings.TrimSpace(d.ExperienceLevel)
		l.SkillsRequired = strings.TrimSpace(d.SkillsRequired)
		l.Benefits = strings.TrimSpace(d.Benefits)
	case models.CategoryRoom:
		l.Price = d.Price
		l.RoomCount = strings.TrimSpace(d.RoomCount)
		l.FloorLevel = strings.TrimSpace(d.FloorLevel)
		l.Amenities = strings.TrimSpace(d.Amenities)
	}
	return l
}
