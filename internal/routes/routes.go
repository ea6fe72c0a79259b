package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/owner"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	issuer *owner.TokenIssuer,
	healthHandler *handlers.HealthHandler,
	sessionHandler *handlers.SessionHandler,
	adminHandler *handlers.AdminHandler,
	plugins []apps.Plugin,
) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (no owner required)
	api.Get("/health", healthHandler.Check)
	api.Get("/keep-alive", healthHandler.KeepAlive)

	// Session exchange: 10 req/min per IP (stricter)
	api.Post("/session", limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), sessionHandler.Create)

	// Admin (operator token only)
	admin := api.Group("/admin", middleware.AdminRequired(cfg))
	admin.Post("/dispatch", adminHandler.Dispatch)
	admin.Get("/logs", adminHandler.Logs)
	for _, p := range plugins {
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin)
		}
	}

	// Mini-app routes. Registered last so the owner middleware never runs
	// in front of the public routes above.
	protected := api.Group("", middleware.SessionJWT(issuer), middleware.OwnerRequired())
	for _, p := range plugins {
		p.RegisterRoutes(protected)
	}
}
