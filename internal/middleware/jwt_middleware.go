package middleware

import (
	"log"
	"strings"

	"markethub/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthRequired is a Fiber middleware to check for a valid API bearer token.
func AuthRequired(tokenService *services.APITokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := bearerClaims(c, tokenService)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": err.Error(),
			})
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals("user_id", claims["user_id"])
		c.Locals("username", claims["username"])
		c.Locals("role", claims["role"])

		return c.Next()
	}
}

// AdminOnly guards the back-office routes. It accepts either a cookie
// session or an API bearer token, and in both cases requires the admin role
// captured at login time.
func AdminOnly(store *session.Store, tokenService *services.APITokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sess, err := GetSession(c, store); err == nil {
			if role, _ := sess.Get("role").(string); role == "admin" {
				c.Locals("user_id", sess.Get("user_id"))
				c.Locals("username", sess.Get("username"))
				c.Locals("role", role)
				return c.Next()
			}
		}

		claims, err := bearerClaims(c, tokenService)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		if role, _ := claims["role"].(string); role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin role required",
			})
		}

		c.Locals("user_id", claims["user_id"])
		c.Locals("username", claims["username"])
		c.Locals("role", claims["role"])

		return c.Next()
	}
}

// bearerClaims extracts and validates the Authorization bearer token.
func bearerClaims(c *fiber.Ctx, tokenService *services.APITokenService) (map[string]interface{}, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Authorization header is required")
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Authorization header format must be 'Bearer <token>'")
	}

	claims, err := tokenService.ValidateToken(parts[1])
	if err != nil {
		log.Printf("JWT validation failed: %v", err)
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}
	return claims, nil
}
