package owner

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type identityBody struct {
	InitData string          `json:"initData"`
	UserID   json.RawMessage `json:"user_id"`
}

// Resolve derives the calling owner from the request. Sources are tried in
// order: a verified session token, the init data header, an initData body
// field, then a bare user_id body field. A malformed source falls through
// to the next one.
func Resolve(c *fiber.Ctx) (string, error) {
	if id, ok := FromSessionToken(c); ok {
		return id, nil
	}

	if raw := c.Get(InitHeader); raw != "" {
		if _, id, err := ParseInitData(raw); err == nil {
			return id, nil
		}
	}

	body := c.Body()
	if len(body) == 0 || !strings.Contains(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		return "", ErrUnauthorized
	}

	var ident identityBody
	if err := json.Unmarshal(body, &ident); err != nil {
		return "", ErrUnauthorized
	}
	if ident.InitData != "" {
		if _, id, err := ParseInitData(ident.InitData); err == nil {
			return id, nil
		}
	}
	if len(ident.UserID) > 0 {
		if id, err := NormalizeID(ident.UserID); err == nil {
			return id, nil
		}
	}
	return "", ErrUnauthorized
}
