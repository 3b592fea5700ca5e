package server

import (
	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/gofiber/fiber/v2"
)

type selectRoleRequest struct {
	Role models.Role `json:"role"`
}

// SelectRole handles POST /api/profile
// @Summary Choose a role
// @Description Creates the profile as seeker or provider. The role cannot be changed later.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body selectRoleRequest true "Role"
// @Success 201 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /profile [post]
func (s *Server) SelectRole(c *fiber.Ctx) error {
	var req selectRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	account, err := s.stores.Accounts.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respond(c, err)
	}

	profile, err := s.profiles.SelectRole(c.UserContext(), account, req.Role)
	if err != nil {
		return s.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

// GetMyProfile handles GET /api/profile/me
// @Summary Current profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profiles.Get(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respond(c, err)
	}
	return c.JSON(profile)
}
