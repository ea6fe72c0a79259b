package crm

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/owner"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ClientHandler struct {
	service *ClientService
}

func NewClientHandler(service *ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

func (h *ClientHandler) List(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	clients, err := h.service.List(c.UserContext(), ownerID, c.Query("search"))
	if err != nil {
		return fail(c, ownerID, err, "Failed to fetch clients")
	}
	return c.JSON(clients)
}

func (h *ClientHandler) Get(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, ownerID, err, "")
	}
	client, err := h.service.Get(c.UserContext(), ownerID, id)
	if err != nil {
		return fail(c, ownerID, err, "Failed to fetch client")
	}
	return c.JSON(client)
}

func (h *ClientHandler) Create(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req CreateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	client, err := h.service.Create(c.UserContext(), ownerID, req)
	if err != nil {
		return fail(c, ownerID, err, "Failed to create client")
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

func (h *ClientHandler) Update(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, ownerID, err, "")
	}
	var req UpdateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	client, err := h.service.Update(c.UserContext(), ownerID, id, req)
	if err != nil {
		return fail(c, ownerID, err, "Failed to update client")
	}
	return c.JSON(client)
}

// Delete removes the client together with its notes and reminders.
func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, ownerID, err, "")
	}
	if err := h.service.DeleteCascade(c.UserContext(), ownerID, id); err != nil {
		return fail(c, ownerID, err, "Failed to delete client")
	}
	return c.JSON(DeleteResponse{Success: true})
}

type NoteHandler struct {
	service *NoteService
}

func NewNoteHandler(service *NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

func (h *NoteHandler) List(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	clientID, err := queryClientID(c)
	if err != nil {
		return fail(c, ownerID, err, "")
	}
	notes, err := h.service.List(c.UserContext(), ownerID, clientID)
	if err != nil {
		return fail(c, ownerID, err, "Failed to fetch notes")
	}
	return c.JSON(notes)
}

func (h *NoteHandler) Get(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, ownerID, err, "")
	}
	note, err := h.service.Get(c.UserContext(), ownerID, id)
	if err != nil {
		return fail(c, ownerID, err, "Failed to fetch note")
	}
	return c.JSON(note)
}

func (h *NoteHandler) Create(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req CreateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	note, err := h.service.Create(c.UserContext(), ownerID, req)
	if err != nil {
		return fail(c, ownerID, err, "Failed to create note")
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (h *NoteHandler) Update(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, ownerID, err, "")
	}
	var req UpdateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	note, err := h.service.Update(c.UserContext(), ownerID, id, req)
	if err != nil {
		return fail(c, ownerID, err, "Failed to update note")
	}
	return c.JSON(note)
}

func (h *NoteHandler) Delete(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, ownerID, err, "")
	}
	if err := h.service.Delete(c.UserContext(), ownerID, id); err != nil {
		return fail(c, ownerID, err, "Failed to delete note")
	}
	return c.JSON(DeleteResponse{Success: true})
}

type ReminderHandler struct {
	service *ReminderService
}

func NewReminderHandler(service *ReminderService) *ReminderHandler {
	return &ReminderHandler{service: service}
}

// List accepts client_id and archived (true/false) filters. Without archived
// both sets are returned, active first.
func (h *ReminderHandler) List(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	clientID, err := queryClientID(c)
	if err != nil {
		return fail(c, ownerID, err, "")
	}
	var archived *bool
	if raw := strings.TrimSpace(c.Query("archived")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "archived must be true or false",
			})
		}
		archived = &v
	}
	var list []Reminder
	if date := strings.TrimSpace(c.Query("date")); date != "" {
		list, err = h.service.ListOn(c.UserContext(), ownerID, date, clientID, archived)
	} else {
		list, err = h.service.List(c.UserContext(), ownerID, clientID, archived)
	}
	if err != nil {
		return fail(c, ownerID, err, "Failed to fetch reminders")
	}
	return c.JSON(h.service.Views(list))
}

func (h *ReminderHandler) Due(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	list, err := h.service.ListDue(c.UserContext(), ownerID)
	if err != nil {
		return fail(c, ownerID, err, "Failed to fetch due reminders")
	}
	return c.JSON(h.service.Views(list))
}

func (h *ReminderHandler) Get(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, ownerID, err, "")
	}
	r, err := h.service.Get(c.UserContext(), ownerID, id)
	if err != nil {
		return fail(c, ownerID, err, "Failed to fetch reminder")
	}
	return c.JSON(h.service.View(r))
}

func (h *ReminderHandler) Create(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req CreateReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	r, err := h.service.Create(c.UserContext(), ownerID, req)
	if err != nil {
		return fail(c, ownerID, err, "Failed to create reminder")
	}
	return c.Status(fiber.StatusCreated).JSON(h.service.View(r))
}

func (h *ReminderHandler) Update(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, ownerID, err, "")
	}
	var req UpdateReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	r, err := h.service.Update(c.UserContext(), ownerID, id, req)
	if err != nil {
		return fail(c, ownerID, err, "Failed to update reminder")
	}
	return c.JSON(h.service.View(r))
}

func (h *ReminderHandler) MarkNotified(c *fiber.Ctx) error {
	return h.transition(c, h.service.MarkNotified)
}

func (h *ReminderHandler) Archive(c *fiber.Ctx) error {
	return h.transition(c, h.service.Archive)
}

func (h *ReminderHandler) Unarchive(c *fiber.Ctx) error {
	return h.transition(c, h.service.Unarchive)
}

func (h *ReminderHandler) Delete(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, ownerID, err, "")
	}
	if err := h.service.Delete(c.UserContext(), ownerID, id); err != nil {
		return fail(c, ownerID, err, "Failed to delete reminder")
	}
	return c.JSON(DeleteResponse{Success: true})
}

type transitionFunc func(ctx context.Context, ownerID string, id uuid.UUID) (*Reminder, error)

func (h *ReminderHandler) transition(c *fiber.Ctx, fn transitionFunc) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, ownerID, err, "")
	}
	r, err := fn(c.UserContext(), ownerID, id)
	if err != nil {
		return fail(c, ownerID, err, "Failed to update reminder")
	}
	return c.JSON(h.service.View(r))
}

type SettingsHandler struct {
	service *SettingsService
}

func NewSettingsHandler(service *SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	st, err := h.service.Get(c.UserContext(), ownerID)
	if err != nil {
		return fail(c, ownerID, err, "Failed to fetch settings")
	}
	return c.JSON(st)
}

func (h *SettingsHandler) Save(c *fiber.Ctx) error {
	ownerID, err := owner.GetOwnerID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req SettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	st, err := h.service.Save(c.UserContext(), ownerID, req)
	if err != nil {
		return fail(c, ownerID, err, "Failed to save settings")
	}
	return c.JSON(st)
}

func pathID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

func queryClientID(c *fiber.Ctx) (*uuid.UUID, error) {
	raw := c.Query("client_id")
	return parseClientID(&raw)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid request body",
	})
}

// fail maps service errors to responses. Store failures are logged with
// detail and answered with the generic message.
func fail(c *fiber.Ctx, ownerID string, err error, message string) error {
	switch {
	case errors.Is(err, ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, owner.ErrUnauthorized):
		return unauthorized(c)
	}

	rid, _ := c.Locals("requestid").(string)
	slog.Error(message,
		"component", "crm",
		"owner_id", ownerID,
		"request_id", rid,
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}
