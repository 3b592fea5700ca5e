package server

import (
	"errors"
	"strings"
	"time"

	"github.com/mitronepal/JobMandu/internal/cache"
	"github.com/mitronepal/JobMandu/internal/middleware"
	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// tokenTTL is the lifetime of an identity token; revocations live as long.
const tokenTTL = 7 * 24 * time.Hour

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token   string          `json:"token"`
	Account *models.Account `json:"account"`
}

// Signup handles POST /api/auth/signup
// @Summary Create an account
// @Description Register with email and password. The role is chosen afterwards.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body signupRequest true "Signup request"
// @Success 201 {object} tokenResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	for _, err := range []error{
		validation.ValidateEmail(req.Email),
		validation.ValidatePassword(req.Password),
		validation.ValidateDisplayName(req.DisplayName),
	} {
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
	}

	_, err := s.stores.Accounts.GetByEmail(c.UserContext(), req.Email)
	switch {
	case err == nil:
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError(models.CodeConflict, "An account with this email already exists"))
	case !models.IsCode(err, models.CodeNotFound):
		return s.respond(c, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.stores.Accounts.Create(c.UserContext(), account); err != nil {
		return s.respond(c, err)
	}

	token, err := s.generateToken(account.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(tokenResponse{Token: token, Account: account})
}

// Login handles POST /api/auth/login
// @Summary Sign in
// @Description Authenticate with email and password and return a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Login credentials"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	account, err := s.stores.Accounts.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid credentials"))
		}
		return s.respond(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	token, err := s.generateToken(account.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(tokenResponse{Token: token, Account: account})
}

// Logout handles POST /api/auth/logout
// @Summary Sign out
// @Description Revoke the current token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	if jti != "" && s.redis != nil {
		if err := s.redis.Set(c.UserContext(), cache.BlacklistKey(jti), currentUserID(c), tokenTTL).Err(); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
	}
	return c.JSON(fiber.Map{"message": "Signed out"})
}

// GetAuthState handles GET /api/auth/me
// @Summary Current auth state
// @Description Account, profile (null until a role is chosen) and blocked mode with the support link
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AuthState
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) GetAuthState(c *fiber.Ctx) error {
	ctx := c.UserContext()
	account, err := s.stores.Accounts.GetByID(ctx, currentUserID(c))
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account no longer exists"))
		}
		return s.respond(c, err)
	}

	profile, err := s.profiles.Find(ctx, account.ID)
	if err != nil {
		return s.respond(c, err)
	}

	state := models.AuthState{
		Account:   account,
		Profile:   profile,
		NeedsRole: profile == nil,
	}
	if profile != nil && profile.IsBlocked {
		state.Blocked = true
		state.SupportLink = s.support.Appeal(account.Email)
	}
	return c.JSON(state)
}

// generateToken creates a signed identity token for userID.
func (s *Server) generateToken(userID string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", errors.New("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": middleware.TokenIssuer,
		"aud": middleware.TokenAudience,
		"exp": now.Add(tokenTTL).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
