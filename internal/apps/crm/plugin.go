package crm

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CRMPlugin struct {
	Clients   *ClientService
	Notes     *NoteService
	Reminders *ReminderService
	Settings  *SettingsService
}

func New(db *gorm.DB, loc *time.Location) *CRMPlugin {
	clients := NewClientService(db)
	return &CRMPlugin{
		Clients:   clients,
		Notes:     NewNoteService(db, clients),
		Reminders: NewReminderService(db, clients, loc),
		Settings:  NewSettingsService(db),
	}
}

func (p *CRMPlugin) ID() string { return "crm" }

func (p *CRMPlugin) Models() []interface{} {
	return []interface{}{
		&Client{},
		&Note{},
		&Reminder{},
		&Settings{},
	}
}

func (p *CRMPlugin) RegisterRoutes(router fiber.Router) {
	clients := NewClientHandler(p.Clients)
	notes := NewNoteHandler(p.Notes)
	reminders := NewReminderHandler(p.Reminders)
	settings := NewSettingsHandler(p.Settings)

	router.Get("/clients", clients.List)
	router.Post("/clients", clients.Create)
	router.Get("/clients/:id", clients.Get)
	router.Put("/clients/:id", clients.Update)
	router.Delete("/clients/:id", clients.Delete)

	router.Get("/notes", notes.List)
	router.Post("/notes", notes.Create)
	router.Get("/notes/:id", notes.Get)
	router.Put("/notes/:id", notes.Update)
	router.Delete("/notes/:id", notes.Delete)

	// /due before /:id
	router.Get("/reminders", reminders.List)
	router.Post("/reminders", reminders.Create)
	router.Get("/reminders/due", reminders.Due)
	router.Get("/reminders/:id", reminders.Get)
	router.Put("/reminders/:id", reminders.Update)
	router.Delete("/reminders/:id", reminders.Delete)
	router.Post("/reminders/:id/notify", reminders.MarkNotified)
	router.Post("/reminders/:id/archive", reminders.Archive)
	router.Post("/reminders/:id/unarchive", reminders.Unarchive)

	router.Get("/settings", settings.Get)
	router.Post("/settings", settings.Save)
}

func (p *CRMPlugin) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/reminders/due-owners", func(c *fiber.Ctx) error {
		owners, err := p.Reminders.DueOwners(c.UserContext())
		if err != nil {
			return fail(c, "", err, "Failed to list owners")
		}
		return c.JSON(fiber.Map{"owners": owners})
	})
}
