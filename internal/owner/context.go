package owner

import (
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const localsKey = "owner_id"

// SessionTokenKey is where the session JWT middleware leaves a verified token.
const SessionTokenKey = "session"

// SetOwnerID stores the resolved owner for the rest of the request.
func SetOwnerID(c *fiber.Ctx, ownerID string) {
	c.Locals(localsKey, ownerID)
}

// GetOwnerID returns the owner resolved by the OwnerRequired middleware.
func GetOwnerID(c *fiber.Ctx) (string, error) {
	if id, ok := c.Locals(localsKey).(string); ok && id != "" {
		return id, nil
	}
	return "", ErrUnauthorized
}

// FromSessionToken reads the owner from a token verified by the session
// middleware, if there is one.
func FromSessionToken(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals(SessionTokenKey).(*jwt.Token)
	if !ok || token == nil || !token.Valid {
		return "", false
	}
	aud, err := token.Claims.GetAudience()
	if err != nil || !slices.Contains(aud, sessionAudience) {
		return "", false
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}
