package server

import (
	"log/slog"

	"github.com/mitronepal/JobMandu/internal/feed"
	"github.com/mitronepal/JobMandu/internal/middleware"
	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/gofiber/fiber/v2"
)

type feedResponse struct {
	Listings []models.Listing `json:"listings"`
	Count    int              `json:"count"`
}

type listingDetailResponse struct {
	Listing *models.Listing   `json:"listing"`
	View    models.ViewResult `json:"view"`
}

func newFeedResponse(listings []models.Listing) feedResponse {
	if listings == nil {
		listings = []models.Listing{}
	}
	return feedResponse{Listings: listings, Count: len(listings)}
}

// GetFeed handles GET /api/listings
// @Summary Listing feed
// @Description Listings of one category filtered by text, ownership, salary and job type, in random order
// @Tags listings
// @Produce json
// @Param category query string false "job (default) or room"
// @Param q query string false "Matches title, location and company"
// @Param view query string false "all (default) or mine"
// @Param min_salary query string false "Jobs only"
// @Param max_salary query string false "Jobs only, compared against min salary"
// @Param type query string false "Jobs only, All disables the filter"
// @Success 200 {object} feedResponse
// @Router /listings [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	var params feed.Params
	if err := c.QueryParser(&params); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid query parameters"))
	}

	snapshot, err := s.broker.Snapshot(c.UserContext())
	if err != nil {
		return s.respond(c, err)
	}

	criteria := feed.ParseCriteria(params, currentUserID(c))
	return c.JSON(newFeedResponse(s.engine.Compute(snapshot, criteria)))
}

// ValidateListing handles POST /api/listings/validate
// @Summary Check a draft
// @Description Runs the posting form checks without saving anything
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ListingDraft true "Draft"
// @Success 200 {object} object{valid=bool,draft=models.ListingDraft}
// @Failure 400 {object} models.ErrorResponse
// @Router /listings/validate [post]
func (s *Server) ValidateListing(c *fiber.Ctx) error {
	var draft models.ListingDraft
	if err := c.BodyParser(&draft); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.posting.ValidateDraft(&draft); err != nil {
		return s.respond(c, err)
	}
	return c.JSON(fiber.Map{"valid": true, "draft": draft})
}

// CreateListing handles POST /api/listings
// @Summary Publish a listing
// @Description Providers only. The no-fee ethics agreement must be accepted.
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ListingDraft true "Draft"
// @Success 201 {object} models.Listing
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /listings [post]
func (s *Server) CreateListing(c *fiber.Ctx) error {
	var draft models.ListingDraft
	if err := c.BodyParser(&draft); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	listing, err := s.posting.Submit(c.UserContext(), activeProfile(c), draft)
	if err != nil {
		return s.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// GetListing handles GET /api/listings/:id
// @Summary Listing detail
// @Description Returns the listing and counts the caller as a viewer once
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} listingDetailResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /listings/{id} [get]
func (s *Server) GetListing(c *fiber.Ctx) error {
	id, err := parseListingID(c)
	if err != nil {
		return s.respond(c, err)
	}

	listing, err := s.listings.Get(c.UserContext(), id)
	if err != nil {
		return s.respond(c, err)
	}

	view := s.views.Record(c.UserContext(), listing, currentUserID(c))
	listing.Views = view.Views
	return c.JSON(listingDetailResponse{Listing: listing, View: view})
}

// ReportListing handles POST /api/listings/:id/report
// @Summary Report a listing
// @Description The fifth distinct report removes the listing and suspends its owner
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} models.ReportResult
// @Success 202 {object} models.ReportResult
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /listings/{id}/report [post]
func (s *Server) ReportListing(c *fiber.Ctx) error {
	id, err := parseListingID(c)
	if err != nil {
		return s.respond(c, err)
	}

	result, err := s.moderation.Report(c.UserContext(), id, currentUserID(c))
	if err != nil {
		if result == nil {
			return s.respond(c, err)
		}
		// The listing is gone but the owner block still has to be completed.
		middleware.Logger.WarnContext(c.UserContext(), "report escalation incomplete",
			slog.String("listing_id", id), slog.String("error", err.Error()))
		return c.Status(models.StatusFor(err)).JSON(result)
	}
	return c.JSON(result)
}

// ToggleListingStatus handles POST /api/listings/:id/status
// @Summary Toggle status
// @Description Open/Closed for jobs, Available/Rented for rooms. Owner only.
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} models.Listing
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /listings/{id}/status [post]
func (s *Server) ToggleListingStatus(c *fiber.Ctx) error {
	id, err := parseListingID(c)
	if err != nil {
		return s.respond(c, err)
	}

	listing, err := s.listings.ToggleStatus(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(listing)
}

// DeleteListing handles DELETE /api/listings/:id
// @Summary Delete a listing
// @Description Owner only
// @Tags listings
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /listings/{id} [delete]
func (s *Server) DeleteListing(c *fiber.Ctx) error {
	id, err := parseListingID(c)
	if err != nil {
		return s.respond(c, err)
	}

	if err := s.listings.Delete(c.UserContext(), id, currentUserID(c)); err != nil {
		return s.respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
