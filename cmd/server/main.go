package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/apps/crm"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/owner"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/routes"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	config.LoadDotEnv()
	cfg := config.Load()

	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, session tokens disabled; owners are identified by init data only")
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// Migrate shared models
	if err := database.MigrateShared(); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(os.Stdout, os.Getenv("LOG_LEVEL")),
		pgLogHandler,
	)))

	// Log cleanup
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Mini-apps
	loc := cfg.Location()
	crmApp := crm.New(database.DB, loc)
	plugins := []apps.Plugin{crmApp}

	for _, p := range plugins {
		if models := p.Models(); len(models) > 0 {
			if err := database.MigrateModels(models); err != nil {
				slog.Error("plugin migration failed", "plugin", p.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("plugin migrated", "plugin", p.ID(), "models", len(models))
		}
	}

	// Reminder delivery
	var alerter notify.Alerter = notify.LogAlerter{}
	if tg, err := notify.NewTelegramAlerter(cfg.TelegramBotToken, cfg.TelegramAPIURL, cfg.TelegramTimeout, crmApp.Settings); err == nil {
		alerter = tg
	} else if errors.Is(err, notify.ErrNoBotToken) {
		slog.Warn("TELEGRAM_BOT_TOKEN not set, reminder alerts are only logged")
	} else {
		slog.Error("telegram bot setup failed, reminder alerts are only logged", "error", err)
	}
	dispatcher := notify.NewDispatcher(crmApp.Reminders, crmApp.Settings, crmApp.Reminders, alerter, notify.Options{
		Interval: cfg.ReminderInterval,
		Location: loc,
	})
	dispatchCtx, cancelDispatch := context.WithCancel(context.Background())
	dispatcher.Start(dispatchCtx)

	// Handlers
	issuer := owner.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAccessExpiry)
	healthHandler := handlers.NewHealthHandler(database.DB)
	sessionHandler := handlers.NewSessionHandler(issuer)
	adminHandler := handlers.NewAdminHandler(database.DB, dispatcher)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, issuer, healthHandler, sessionHandler, adminHandler, plugins)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Stop background work before the database goes away
	cancelDispatch()
	dispatcher.Stop()
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
