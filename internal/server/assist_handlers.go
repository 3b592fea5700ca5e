package server

import (
	"strconv"

	"github.com/mitronepal/JobMandu/internal/assist"
	"github.com/mitronepal/JobMandu/internal/featureflags"
	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/gofiber/fiber/v2"
)

type describeRequest struct {
	Title    string `json:"title"`
	Language string `json:"language"`
}

// GenerateDescription handles POST /api/assist/description
// @Summary Draft a description
// @Description Generates description text for a listing title. Nothing is saved; on failure the client keeps its own text.
// @Tags assist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body describeRequest true "Title and language (en or np)"
// @Success 200 {object} object{description=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /assist/description [post]
func (s *Server) GenerateDescription(c *fiber.Ctx) error {
	if err := s.requireFeature(c, featureflags.AIAssist); err != nil {
		return s.respond(c, err)
	}

	var req describeRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	text, err := s.assist.Describe(c.UserContext(), req.Title, assist.ParseLanguage(req.Language))
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(fiber.Map{"description": text})
}

// ReverseGeocode handles GET /api/geo/reverse
// @Summary Address for coordinates
// @Tags geo
// @Produce json
// @Security BearerAuth
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Success 200 {object} object{address=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /geo/reverse [get]
func (s *Server) ReverseGeocode(c *fiber.Ctx) error {
	if err := s.requireFeature(c, featureflags.Geocode); err != nil {
		return s.respond(c, err)
	}

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("lat and lon must be numbers"))
	}

	address, err := s.geocode.Reverse(c.UserContext(), lat, lon)
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(fiber.Map{"address": address})
}
