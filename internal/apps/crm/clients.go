package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/phone"
	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientService struct {
	db        *gorm.DB
	clients   *store.Store[Client]
	notes     *store.Store[Note]
	reminders *store.Store[Reminder]
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{
		db:        db,
		clients:   store.New[Client](db),
		notes:     store.New[Note](db),
		reminders: store.New[Reminder](db),
	}
}

// List returns the owner's clients, most recently updated first. search is a
// case-insensitive substring matched against name, phone, email and company.
func (s *ClientService) List(ctx context.Context, ownerID, search string) ([]Client, error) {
	scopes := []store.Scope{}
	if q := strings.TrimSpace(search); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(
				"LOWER(name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company) LIKE ?",
				pattern, pattern, pattern, pattern,
			)
		})
	}
	scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Order("updated_at DESC") })
	return s.clients.List(ctx, ownerID, scopes...)
}

func (s *ClientService) Get(ctx context.Context, ownerID string, id uuid.UUID) (*Client, error) {
	c, err := s.clients.Get(ctx, ownerID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrClientNotFound
	}
	return c, err
}

func (s *ClientService) Create(ctx context.Context, ownerID string, req CreateClientRequest) (*Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	c := &Client{
		OwnerID: ownerID,
		Name:    name,
		Phone:   normalizePhone(req.Phone),
		Email:   optional(req.Email),
		Company: optional(req.Company),
		Notes:   optional(req.Notes),
	}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClientService) Update(ctx context.Context, ownerID string, id uuid.UUID, req UpdateClientRequest) (*Client, error) {
	patch := store.Patch{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		patch["Name"] = name
	}
	if req.Phone.Set {
		patch["Phone"] = normalizePhone(req.Phone.Value)
	}
	if req.Email.Set {
		patch["Email"] = optional(req.Email.Value)
	}
	if req.Company.Set {
		patch["Company"] = optional(req.Company.Value)
	}
	if req.Notes.Set {
		patch["Notes"] = optional(req.Notes.Value)
	}

	c, err := s.clients.Update(ctx, ownerID, id, patch)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrClientNotFound
	}
	return c, err
}

// DeleteCascade removes the client's notes and reminders, then the client,
// in one transaction. Nothing is removed when the client is not the owner's.
func (s *ClientService) DeleteCascade(ctx context.Context, ownerID string, id uuid.UUID) error {
	byClient := func(db *gorm.DB) *gorm.DB { return db.Where("client_id = ?", id) }

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.clients.WithTx(tx).Get(ctx, ownerID, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrClientNotFound
			}
			return err
		}
		if _, err := s.notes.WithTx(tx).DeleteWhere(ctx, ownerID, byClient); err != nil {
			return fmt.Errorf("delete client notes: %w", err)
		}
		if _, err := s.reminders.WithTx(tx).DeleteWhere(ctx, ownerID, byClient); err != nil {
			return fmt.Errorf("delete client reminders: %w", err)
		}
		ok, err := s.clients.WithTx(tx).Delete(ctx, ownerID, id)
		if err != nil {
			return fmt.Errorf("delete client: %w", err)
		}
		if !ok {
			return ErrClientNotFound
		}
		return nil
	})
}

// Exists reports whether id is one of the owner's clients.
func (s *ClientService) Exists(ctx context.Context, ownerID string, id uuid.UUID) (bool, error) {
	n, err := s.clients.Count(ctx, ownerID, func(db *gorm.DB) *gorm.DB { return db.Where("id = ?", id) })
	return n > 0, err
}

// Require checks that an optional client reference points at one of the
// owner's clients.
func (s *ClientService) Require(ctx context.Context, ownerID string, clientID *uuid.UUID) error {
	if clientID == nil {
		return nil
	}
	ok, err := s.Exists(ctx, ownerID, *clientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrClientNotFound
	}
	return nil
}

func normalizePhone(raw *string) *string {
	v := optional(raw)
	if v == nil {
		return nil
	}
	if formatted := phone.Format(*v); formatted != "" {
		return &formatted
	}
	return v
}
