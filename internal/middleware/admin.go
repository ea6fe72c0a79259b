package middleware

import (
	"crypto/subtle"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// AdminTokenHeader carries the operator token for /api/admin routes.
const AdminTokenHeader = "X-Admin-Token"

// AdminRequired only lets a request through when it carries the configured
// admin token; owner identity is not consulted. With no ADMIN_TOKEN set the
// admin routes are closed.
func AdminRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AdminToken == "" {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin access is disabled",
			})
		}

		token := c.Get(AdminTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cfg.AdminToken)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		return c.Next()
	}
}
