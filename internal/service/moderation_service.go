package service

import (
	"context"
	"time"

	"github.com/mitronepal/JobMandu/internal/middleware"
	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/observability"
	"github.com/mitronepal/JobMandu/internal/repository"
)

// ProfileModerator applies moderation consequences to a listing owner.
// Block must be idempotent.
type ProfileModerator interface {
	Block(ctx context.Context, uid string) error
	RecordReportReceived(ctx context.Context, uid string) error
}

type reportDecision int

const (
	decideRecord reportDecision = iota
	decideDuplicate
	decideOwnListing
	decideBan
)

// decideReport picks the transition for a report against the listing as it
// was last read. The repository re-checks membership atomically.
func decideReport(l *models.Listing, reporterID string) reportDecision {
	switch {
	case l.IsOwnedBy(reporterID):
		return decideOwnListing
	case l.HasReporter(reporterID):
		return decideDuplicate
	case len(l.Reports)+1 >= models.BanThreshold:
		return decideBan
	default:
		return decideRecord
	}
}

// ModerationService turns community reports into consequences: a listing
// reaching BanThreshold distinct reports is deleted and its owner blocked.
type ModerationService struct {
	listings repository.ListingRepository
	owners   ProfileModerator
	changes  ChangeNotifier

	blockAttempts int
	blockBackoff  time.Duration
}

// NewModerationService returns a new ModerationService.
func NewModerationService(listings repository.ListingRepository, owners ProfileModerator, changes ChangeNotifier) *ModerationService {
	return &ModerationService{
		listings:      listings,
		owners:        owners,
		changes:       notifierOrNoop(changes),
		blockAttempts: 3,
		blockBackoff:  200 * time.Millisecond,
	}
}

// Report files a report by reporterID against listingID.
//
// When the listing is removed but the owner could not be blocked, the result
// carries ReportRemovalPending and the error is a retryable BLOCK_PENDING.
func (s *ModerationService) Report(ctx context.Context, listingID, reporterID string) (*models.ReportResult, error) {
	if reporterID == "" {
		return nil, models.NewAuthRequiredError()
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	switch decideReport(listing, reporterID) {
	case decideOwnListing:
		return s.result(models.ReportOwnListing, listing.ID, listing.ReportsCount), nil
	case decideDuplicate:
		return s.result(models.ReportAlreadyReported, listing.ID, listing.ReportsCount), nil
	case decideBan:
		return s.escalate(ctx, listing, len(listing.Reports)+1)
	}

	added, count, err := s.listings.AddReport(ctx, listing.ID, reporterID)
	if err != nil {
		return nil, err
	}
	if !added {
		return s.result(models.ReportAlreadyReported, listing.ID, count), nil
	}
	if count >= models.BanThreshold {
		// Concurrent reports pushed the count to the threshold.
		return s.escalate(ctx, listing, count)
	}

	if err := s.owners.RecordReportReceived(ctx, listing.ProviderID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to tally report against owner",
			"owner_id", listing.ProviderID, "listing_id", listing.ID, "error", err)
	}
	s.changes.ListingsChanged(ctx, listing.ID)
	return s.result(models.ReportRecorded, listing.ID, count), nil
}

// escalate deletes the listing, then blocks its owner. Both steps are
// idempotent so concurrent escalations of the same listing are harmless.
func (s *ModerationService) escalate(ctx context.Context, listing *models.Listing, count int) (*models.ReportResult, error) {
	if err := s.listings.Delete(ctx, listing.ID); err != nil {
		return nil, err
	}
	s.changes.ListingsChanged(ctx, listing.ID)

	if err := s.owners.RecordReportReceived(ctx, listing.ProviderID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to tally report against owner",
			"owner_id", listing.ProviderID, "listing_id", listing.ID, "error", err)
	}

	if err := s.blockOwner(ctx, listing.ProviderID); err != nil {
		middleware.Logger.ErrorContext(ctx, "listing removed but owner block failed",
			"owner_id", listing.ProviderID, "listing_id", listing.ID, "error", err)
		res := s.result(models.ReportRemovalPending, listing.ID, count)
		pending := models.NewConflictError(models.CodeBlockPending, res.Message)
		pending.Err = err
		pending.Retryable = true
		return res, pending
	}

	observability.AutoBansTotal.Inc()
	middleware.Logger.InfoContext(ctx, "listing removed and owner blocked",
		"owner_id", listing.ProviderID, "listing_id", listing.ID, "reports", count)
	return s.result(models.ReportListingRemoved, listing.ID, count), nil
}

func (s *ModerationService) blockOwner(ctx context.Context, uid string) error {
	var err error
	for attempt := 1; attempt <= s.blockAttempts; attempt++ {
		if err = s.owners.Block(ctx, uid); err == nil || models.IsCode(err, models.CodeNotFound) {
			// An owner without a profile has nothing left to block.
			return nil
		}
		if attempt == s.blockAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * s.blockBackoff):
		}
	}
	return err
}

func (s *ModerationService) result(outcome models.ReportOutcome, listingID string, count int) *models.ReportResult {
	observability.ReportsTotal.WithLabelValues(string(outcome)).Inc()
	return &models.ReportResult{
		Outcome:      outcome,
		ListingID:    listingID,
		ReportsCount: count,
		Message:      reportMessages[outcome],
	}
}

var reportMessages = map[models.ReportOutcome]string{
	models.ReportRecorded:        "Report recorded",
	models.ReportListingRemoved:  "This listing was reported 5 times; it has been removed and the poster blocked",
	models.ReportRemovalPending:  "This listing was removed; blocking the poster is pending",
	models.ReportAlreadyReported: "You have already reported this listing",
	models.ReportOwnListing:      "You cannot report your own listing",
}
