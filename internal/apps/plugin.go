package apps

import (
	"github.com/gofiber/fiber/v2"
)

// Plugin defines the interface every mini-app must implement.
type Plugin interface {
	// ID returns the unique mini-app identifier.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts mini-app routes on the given Fiber group.
	// The group is already prefixed with /api and resolves the calling owner.
	RegisterRoutes(router fiber.Router)
}

// AdminPlugin extends Plugin with admin-specific route registration.
type AdminPlugin interface {
	Plugin

	// RegisterAdminRoutes mounts admin-only routes on the given Fiber group.
	// The group has the Admin middleware applied.
	RegisterAdminRoutes(router fiber.Router)
}
