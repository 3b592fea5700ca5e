package server

import (
	"github.com/mitronepal/JobMandu/internal/featureflags"
	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/features
// @Summary Feature flags
// @Description Configured flags and their state for the caller
// @Tags meta
// @Produce json
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool}
// @Router /features [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(s.flagSubject(c)),
	})
}

// requireFeature answers FEATURE_DISABLED unless flag is on for the caller.
func (s *Server) requireFeature(c *fiber.Ctx, flag string) error {
	if s.featureFlags.Enabled(flag, s.flagSubject(c)) {
		return nil
	}
	return models.NewFeatureDisabledError()
}

// flagSubject identifies the caller for flag evaluation. The profile loaded by
// ActiveRequired is reused; otherwise it is looked up for signed-in callers.
func (s *Server) flagSubject(c *fiber.Ctx) featureflags.Subject {
	sub := featureflags.Subject{UserID: currentUserID(c)}
	profile := activeProfile(c)
	if profile == nil && sub.UserID != "" {
		profile, _ = s.profiles.Find(c.UserContext(), sub.UserID)
	}
	if profile != nil {
		sub.Role = profile.Role
	}
	return sub
}

// GetMeta handles GET /api/meta
// @Summary Marketplace metadata
// @Description Categories, job types, locations, map defaults and the report threshold
// @Tags meta
// @Produce json
// @Success 200 {object} models.Catalog
// @Router /meta [get]
func (s *Server) GetMeta(c *fiber.Ctx) error {
	return c.JSON(models.DefaultCatalog())
}

// GetSupportContact handles GET /api/support/contact
// @Summary Support contact link
// @Description WhatsApp link with a pre-filled message. Pass email for the suspension appeal text.
// @Tags meta
// @Produce json
// @Param email query string false "Account email for the appeal message"
// @Success 200 {object} object{link=string}
// @Router /support/contact [get]
func (s *Server) GetSupportContact(c *fiber.Ctx) error {
	if email := c.Query("email"); email != "" {
		return c.JSON(fiber.Map{"link": s.support.Appeal(email)})
	}
	return c.JSON(fiber.Map{"link": s.support.Help()})
}
