package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/owner"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// SessionJWT verifies bearer session tokens. Requests without a bearer token
// pass through untouched so init data can still identify the owner.
func SessionJWT(issuer *owner.TokenIssuer) fiber.Handler {
	if !issuer.Enabled() {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: issuer.Secret()},
		ContextKey: owner.SessionTokenKey,
		Filter: func(c *fiber.Ctx) bool {
			return !strings.HasPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired session",
			})
		},
	})
}
