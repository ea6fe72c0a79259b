package crm

import (
	"context"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteService struct {
	notes   *store.Store[Note]
	clients *ClientService
}

func NewNoteService(db *gorm.DB, clients *ClientService) *NoteService {
	return &NoteService{notes: store.New[Note](db), clients: clients}
}

// List returns the owner's notes, newest first, optionally for one client.
func (s *NoteService) List(ctx context.Context, ownerID string, clientID *uuid.UUID) ([]Note, error) {
	scopes := []store.Scope{}
	if clientID != nil {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Where("client_id = ?", *clientID) })
	}
	scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") })
	return s.notes.List(ctx, ownerID, scopes...)
}

func (s *NoteService) Get(ctx context.Context, ownerID string, id uuid.UUID) (*Note, error) {
	n, err := s.notes.Get(ctx, ownerID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoteNotFound
	}
	return n, err
}

func (s *NoteService) Create(ctx context.Context, ownerID string, req CreateNoteRequest) (*Note, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrTextRequired
	}
	clientID, err := parseClientID(req.ClientID)
	if err != nil {
		return nil, err
	}
	if err := s.clients.Require(ctx, ownerID, clientID); err != nil {
		return nil, err
	}

	n := &Note{OwnerID: ownerID, ClientID: clientID, Text: text}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NoteService) Update(ctx context.Context, ownerID string, id uuid.UUID, req UpdateNoteRequest) (*Note, error) {
	patch := store.Patch{}
	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			return nil, ErrTextRequired
		}
		patch["Text"] = text
	}
	if req.ClientID.Set {
		clientID, err := parseClientID(req.ClientID.Value)
		if err != nil {
			return nil, err
		}
		if err := s.clients.Require(ctx, ownerID, clientID); err != nil {
			return nil, err
		}
		patch["ClientID"] = clientID
	}

	n, err := s.notes.Update(ctx, ownerID, id, patch)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoteNotFound
	}
	return n, err
}

func (s *NoteService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	ok, err := s.notes.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoteNotFound
	}
	return nil
}
