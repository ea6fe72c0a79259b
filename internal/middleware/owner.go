package middleware

import (
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/owner"
	"github.com/gofiber/fiber/v2"
)

// OwnerRequired resolves the calling owner and rejects the request when no
// identity material is present.
func OwnerRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, err := owner.Resolve(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		owner.SetOwnerID(c, ownerID)
		return c.Next()
	}
}
