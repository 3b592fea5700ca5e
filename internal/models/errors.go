package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned to clients.
const (
	CodeNotFound                = "NOT_FOUND"
	CodeValidation              = "VALIDATION_ERROR"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeAuthRequired            = "AUTH_REQUIRED"
	CodeForbidden               = "FORBIDDEN"
	CodeConflict                = "CONFLICT"
	CodeRoleAlreadySet          = "ROLE_ALREADY_SET"
	CodeAccountBlocked          = "ACCOUNT_BLOCKED"
	CodeRoleRequired            = "ROLE_REQUIRED"
	CodeAcknowledgementRequired = "ACKNOWLEDGEMENT_REQUIRED"
	CodeAssistUnavailable       = "ASSIST_UNAVAILABLE"
	CodeGeocodeUnavailable      = "GEOCODE_UNAVAILABLE"
	CodeFeatureDisabled         = "FEATURE_DISABLED"
	CodeBlockPending            = "BLOCK_PENDING"
	CodeRateLimited             = "RATE_LIMITED"
	CodeUnavailable             = "SERVICE_UNAVAILABLE"
	CodeInternal                = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error       string            `json:"error"`
	Code        string            `json:"code,omitempty"`
	Details     string            `json:"details,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
	SupportLink string            `json:"support_link,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
	// Fields carries per-field validation messages keyed by json name.
	Fields map[string]string
	// SupportLink is attached to ACCOUNT_BLOCKED errors.
	SupportLink string
	// Retryable marks failures the caller may safely repeat.
	Retryable bool
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is an AppError carrying code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewFieldValidationError reports missing or malformed fields.
func NewFieldValidationError(fields map[string]string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: "Please fill all required fields",
		Fields:  fields,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

// NewAuthRequiredError is returned when an action needs a signed-in user.
func NewAuthRequiredError() *AppError {
	return &AppError{
		Code:    CodeAuthRequired,
		Message: "Sign in to continue",
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewConflictError(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewBlockedError describes a suspended account and how to appeal.
func NewBlockedError(supportLink string) *AppError {
	return &AppError{
		Code:        CodeAccountBlocked,
		Message:     "Your account has been suspended due to multiple community reports",
		SupportLink: supportLink,
	}
}

// NewRoleRequiredError rejects an account that has not chosen a role yet.
func NewRoleRequiredError() *AppError {
	return &AppError{
		Code:    CodeRoleRequired,
		Message: "Choose whether you are hiring or looking before continuing",
	}
}

// NewAcknowledgementRequiredError blocks a submission made without accepting the posting pact.
func NewAcknowledgementRequiredError() *AppError {
	return &AppError{
		Code:    CodeAcknowledgementRequired,
		Message: "You must accept the no-fee ethics agreement before posting",
	}
}

// NewFeatureDisabledError hides a feature switched off by a flag.
func NewFeatureDisabledError() *AppError {
	return &AppError{
		Code:    CodeFeatureDisabled,
		Message: "This feature is not available",
	}
}

// NewUpstreamError wraps a failed call to an external service.
func NewUpstreamError(code, message string, err error) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

// NewRateLimitedError reports an exhausted per-action quota.
func NewRateLimitedError(action string) *AppError {
	return &AppError{
		Code:      CodeRateLimited,
		Message:   fmt.Sprintf("Rate limit reached for %s, try again later", action),
		Retryable: true,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusFor maps an error to the HTTP status used for it.
func StatusFor(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeValidation, CodeAcknowledgementRequired:
		return fiber.StatusBadRequest
	case CodeUnauthorized, CodeAuthRequired:
		return fiber.StatusUnauthorized
	case CodeForbidden, CodeAccountBlocked, CodeRoleRequired:
		return fiber.StatusForbidden
	case CodeConflict, CodeRoleAlreadySet:
		return fiber.StatusConflict
	case CodeAssistUnavailable, CodeGeocodeUnavailable:
		return fiber.StatusBadGateway
	case CodeFeatureDisabled:
		return fiber.StatusNotFound
	case CodeBlockPending:
		return fiber.StatusAccepted
	case CodeRateLimited:
		return fiber.StatusTooManyRequests
	case CodeUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error:       appErr.Message,
			Code:        appErr.Code,
			Fields:      appErr.Fields,
			SupportLink: appErr.SupportLink,
		}
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}

// RespondWithAppError writes err using the status mapped by StatusFor.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, StatusFor(err), err)
}
