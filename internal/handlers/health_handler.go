package handlers

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status, dbStatus := "ok", "ok"
	code := fiber.StatusOK
	if err := database.Ping(h.db); err != nil {
		status, dbStatus = "degraded", "unhealthy"
		code = fiber.StatusServiceUnavailable
		slog.Error("health check database ping failed", "component", "health", "error", err)
	}

	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}

// KeepAlive touches the database so a sleeping free-tier instance stays
// awake. It always answers 200.
func (h *HealthHandler) KeepAlive(c *fiber.Ctx) error {
	resp := dto.KeepAliveResponse{
		Success:   true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if h.db == nil {
		resp.Note = "database not configured"
		return c.JSON(resp)
	}
	if err := h.db.WithContext(c.UserContext()).Exec("SELECT 1").Error; err != nil {
		slog.Warn("keep-alive query failed", "component", "health", "error", err)
	}
	return c.JSON(resp)
}
