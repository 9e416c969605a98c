package handlers

import (
	"errors"
	"log"

	"markethub/internal/repositories"
	"markethub/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes the account lifecycle transitions to back-office
// clients. Routes are expected to be mounted behind the admin middleware.
type AdminHandler struct {
	accountService *services.AccountService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(accountService *services.AccountService) *AdminHandler {
	return &AdminHandler{
		accountService: accountService,
	}
}

// RegisterRoutes registers the admin account routes with the Fiber app.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/:id/approve", h.transitionHandler("approve"))
	userRoutes.Post("/:id/reject", h.transitionHandler("reject"))
	userRoutes.Post("/:id/deactivate", h.transitionHandler("deactivate"))
	userRoutes.Post("/:id/reactivate", h.transitionHandler("reactivate"))
}

// transitionHandler builds a handler applying one account status transition.
func (h *AdminHandler) transitionHandler(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		meta := requestMeta(c)

		var err error
		switch action {
		case "approve":
			err = h.accountService.Approve(userID, meta)
		case "reject":
			err = h.accountService.Reject(userID, meta)
		case "deactivate":
			err = h.accountService.Deactivate(userID, meta)
		case "reactivate":
			err = h.accountService.Reactivate(userID, meta)
		}

		if err != nil {
			log.Printf("Admin %s failed for user %s: %v", action, userID, err)
			switch {
			case errors.Is(err, repositories.ErrNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"message": "User not found",
				})
			case errors.Is(err, services.ErrInvalidTransition):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"message": "Invalid status transition",
					"error":   err.Error(),
				})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Could not update account status",
				})
			}
		}

		return c.JSON(fiber.Map{
			"message": "Account status updated",
		})
	}
}
