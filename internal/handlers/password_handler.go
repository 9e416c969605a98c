package handlers

import (
	"errors"
	"log"

	"markethub/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PasswordHandler handles the forgot/reset password endpoints.
type PasswordHandler struct {
	resetService *services.PasswordResetService
	validate     *validator.Validate
}

// NewPasswordHandler creates a new PasswordHandler.
func NewPasswordHandler(resetService *services.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{
		resetService: resetService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the password reset routes with the Fiber app.
func (h *PasswordHandler) RegisterRoutes(router fiber.Router) {
	passwordRoutes := router.Group("/auth/password")
	passwordRoutes.Post("/forgot", h.HandleForgot)
	passwordRoutes.Post("/reset", h.HandleReset)
}

// ForgotRequest represents the request body for a reset-link request.
type ForgotRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleForgot issues a password-reset token and emails the reset link.
func (h *PasswordHandler) HandleForgot(c *fiber.Ctx) error {
	var req ForgotRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing forgot-password request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	if err := h.resetService.RequestReset(req.Email, requestMeta(c)); err != nil {
		log.Printf("Password reset request failed for %s: %v", req.Email, err)
		switch {
		case errors.Is(err, services.ErrEmailNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Reset request failed",
				"error":   err.Error(),
			})
		case errors.Is(err, services.ErrNotificationFailed):
			// The token was persisted; only delivery failed.
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"message": "Could not send reset email, please try again",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Reset request failed",
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Reset email sent",
	})
}

// ResetRequest represents the request body for consuming a reset token.
type ResetRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleReset consumes a reset token and sets the new password.
func (h *PasswordHandler) HandleReset(c *fiber.Ctx) error {
	var req ResetRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing reset-password request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	if err := h.resetService.ResetPassword(req.Token, req.Password, requestMeta(c)); err != nil {
		log.Printf("Password reset failed: %v", err)
		switch {
		case errors.Is(err, services.ErrWeakPassword):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Reset failed",
				"error":   err.Error(),
			})
		case errors.Is(err, services.ErrInvalidOrExpiredToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Reset failed",
				"error":   err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Reset failed",
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Password updated successfully",
	})
}
