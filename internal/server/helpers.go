package server

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/gofiber/fiber/v2"
)

const profileLocal = "profile"

// currentUserID returns the authenticated user id, or "" for anonymous requests.
func currentUserID(c *fiber.Ctx) string {
	uid, _ := c.Locals("userID").(string)
	return uid
}

// respond writes err with its mapped status. Blocked errors without a link get
// the appeal link for the caller.
func (s *Server) respond(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == models.CodeAccountBlocked && appErr.SupportLink == "" {
		err = s.blockedError(c.UserContext(), currentUserID(c))
	}
	return models.RespondWithAppError(c, err)
}

// blockedError builds ACCOUNT_BLOCKED with the appeal link prefilled for uid.
func (s *Server) blockedError(ctx context.Context, uid string) *models.AppError {
	email := ""
	if account, err := s.stores.Accounts.GetByID(ctx, uid); err == nil {
		email = account.Email
	}
	return models.NewBlockedError(s.support.Appeal(email))
}

// ActiveRequired admits members who have chosen a role and are not blocked.
// It must run after AuthRequired. The loaded profile is kept in locals.
func (s *Server) ActiveRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := currentUserID(c)
		profile, err := s.profiles.Find(c.UserContext(), uid)
		switch {
		case err != nil:
			return s.respond(c, err)
		case profile == nil:
			return models.RespondWithAppError(c, models.NewRoleRequiredError())
		case profile.IsBlocked:
			return models.RespondWithAppError(c, s.blockedError(c.UserContext(), uid))
		}
		c.Locals(profileLocal, profile)
		return c.Next()
	}
}

// activeProfile returns the profile loaded by ActiveRequired.
func activeProfile(c *fiber.Ctx) *models.Profile {
	p, _ := c.Locals(profileLocal).(*models.Profile)
	return p
}

// capitalize upper-cases the first letter of an error message.
func capitalize(msg string) string {
	for i, r := range msg {
		return string(unicode.ToUpper(r)) + msg[i+len(string(r)):]
	}
	return msg
}

// parseListingID reads the :id route parameter.
func parseListingID(c *fiber.Ctx) (string, error) {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return "", models.NewValidationError("Invalid listing ID")
	}
	return id, nil
}
