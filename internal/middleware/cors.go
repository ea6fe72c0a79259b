package middleware

import (
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/owner"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, " + AdminTokenHeader + ", " + owner.InitHeader,
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: false,
	})
}
