package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/notify"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// DispatchRunner runs one pass of the reminder dispatcher.
type DispatchRunner interface {
	RunOnce(ctx context.Context) (notify.Result, error)
}

type AdminHandler struct {
	db         *gorm.DB
	dispatcher DispatchRunner
}

func NewAdminHandler(db *gorm.DB, dispatcher DispatchRunner) *AdminHandler {
	return &AdminHandler{db: db, dispatcher: dispatcher}
}

func (h *AdminHandler) Dispatch(c *fiber.Ctx) error {
	res, err := h.dispatcher.RunOnce(c.UserContext())
	if err != nil {
		slog.Error("manual dispatch failed", "component", "admin", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Dispatch failed",
		})
	}
	return c.JSON(dto.DispatchResponse{
		Owners:   res.Owners,
		Notified: res.Notified,
		Failed:   res.Failed,
	})
}

// Logs lists recent system_logs, newest first. Supports level, component,
// owner_id and limit (max 500) query filters.
func (h *AdminHandler) Logs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := h.db.WithContext(c.UserContext()).Model(&models.SystemLog{})
	if level := strings.ToUpper(strings.TrimSpace(c.Query("level"))); level != "" {
		query = query.Where("level = ?", level)
	}
	if component := c.Query("component"); component != "" {
		query = query.Where("component = ?", component)
	}
	if ownerID := c.Query("owner_id"); ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}

	var logs []models.SystemLog
	if err := query.Order("timestamp DESC").Limit(limit).Find(&logs).Error; err != nil {
		slog.Error("failed to read system logs", "component", "admin", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch logs",
		})
	}
	return c.JSON(fiber.Map{"logs": logs, "count": len(logs)})
}
