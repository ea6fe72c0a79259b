package handlers

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/owner"
	"github.com/gofiber/fiber/v2"
)

type SessionHandler struct {
	issuer *owner.TokenIssuer
}

func NewSessionHandler(issuer *owner.TokenIssuer) *SessionHandler {
	return &SessionHandler{issuer: issuer}
}

type sessionRequest struct {
	InitData string `json:"initData"`
}

// Create exchanges mini-app init data, from the header or the initData body
// field, for a bearer session token.
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	if !h.issuer.Enabled() {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Sessions are not enabled",
		})
	}

	raw := c.Get(owner.InitHeader)
	if raw == "" && strings.Contains(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var req sessionRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid request body",
			})
		}
		raw = req.InitData
	}

	_, ownerID, err := owner.ParseInitData(raw)
	if err != nil {
		msg := "Unauthorized"
		if errors.Is(err, owner.ErrInvalidInitData) {
			msg = "Invalid init data"
		}
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: msg,
		})
	}

	token, expiresAt, err := h.issuer.Issue(ownerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to issue session",
		})
	}

	return c.JSON(dto.SessionResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		OwnerID:     ownerID,
	})
}
