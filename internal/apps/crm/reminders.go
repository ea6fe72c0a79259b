package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderService struct {
	db        *gorm.DB
	reminders *store.Store[Reminder]
	clients   *ClientService
	loc       *time.Location
	now       func() time.Time
}

func NewReminderService(db *gorm.DB, clients *ClientService, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderService{
		db:        db,
		reminders: store.New[Reminder](db),
		clients:   clients,
		loc:       loc,
		now:       time.Now,
	}
}

// SetClock replaces the wall clock.
func (s *ReminderService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ReminderService) Location() *time.Location { return s.loc }

// Now is the current time in the reminder location.
func (s *ReminderService) Now() time.Time { return s.now().In(s.loc) }

func (s *ReminderService) Create(ctx context.Context, ownerID string, req CreateReminderRequest) (*Reminder, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrTextRequired
	}

	date := s.Now().Format(dateLayout)
	if strings.TrimSpace(req.Date) != "" {
		d, err := normalizeDate(req.Date)
		if err != nil {
			return nil, err
		}
		date = d
	}
	clock := DefaultReminderTime
	if strings.TrimSpace(req.Time) != "" {
		t, err := normalizeTime(req.Time)
		if err != nil {
			return nil, err
		}
		clock = t
	}

	clientID, err := parseClientID(req.ClientID)
	if err != nil {
		return nil, err
	}
	if err := s.clients.Require(ctx, ownerID, clientID); err != nil {
		return nil, err
	}

	r := &Reminder{
		OwnerID:  ownerID,
		ClientID: clientID,
		Text:     text,
		Date:     date,
		Time:     clock,
	}
	if err := s.reminders.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReminderService) Get(ctx context.Context, ownerID string, id uuid.UUID) (*Reminder, error) {
	return getReminder(ctx, s.reminders, ownerID, id)
}

// Update edits text, date, time and client_id. Flag changes go through the
// same transitions as MarkNotified, Archive and Unarchive, so notified=true
// is never stored without archived=true.
func (s *ReminderService) Update(ctx context.Context, ownerID string, id uuid.UUID, req UpdateReminderRequest) (*Reminder, error) {
	patch := store.Patch{}
	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			return nil, ErrTextRequired
		}
		patch["Text"] = text
	}
	if req.Date != nil {
		d, err := normalizeDate(*req.Date)
		if err != nil {
			return nil, err
		}
		patch["Date"] = d
	}
	if req.Time != nil {
		t, err := normalizeTime(*req.Time)
		if err != nil {
			return nil, err
		}
		patch["Time"] = t
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
	notify := req.Notified != nil && *req.Notified
	if notify && req.Archived != nil && !*req.Archived {
		return nil, ErrReminderNotified
	}

	var out *Reminder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := s.reminders.WithTx(tx)
		cur, err := getReminder(ctx, st, ownerID, id)
		if err != nil {
			return err
		}
		if req.Notified != nil && !*req.Notified && cur.Notified {
			return ErrUnnotify
		}
		if len(patch) > 0 {
			if cur, err = updateReminder(ctx, st, ownerID, id, patch); err != nil {
				return err
			}
		}

		switch {
		case notify:
			cur, err = s.markNotified(ctx, st, ownerID, id)
		case req.Archived != nil && *req.Archived:
			cur, err = s.archive(ctx, st, ownerID, id)
		case req.Archived != nil:
			cur, err = s.unarchive(ctx, st, ownerID, id)
		}
		if err != nil {
			return err
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotified moves a reminder to notified and archived in one statement.
// Calling it again returns the stored reminder unchanged.
func (s *ReminderService) MarkNotified(ctx context.Context, ownerID string, id uuid.UUID) (*Reminder, error) {
	return s.markNotified(ctx, s.reminders, ownerID, id)
}

// Archive hides a reminder from the active view without notifying it.
func (s *ReminderService) Archive(ctx context.Context, ownerID string, id uuid.UUID) (*Reminder, error) {
	return s.archive(ctx, s.reminders, ownerID, id)
}

// Unarchive returns a manually archived reminder to the active view. Notified
// reminders stay archived.
func (s *ReminderService) Unarchive(ctx context.Context, ownerID string, id uuid.UUID) (*Reminder, error) {
	return s.unarchive(ctx, s.reminders, ownerID, id)
}

func (s *ReminderService) markNotified(ctx context.Context, st *store.Store[Reminder], ownerID string, id uuid.UUID) (*Reminder, error) {
	_, err := st.UpdateWhere(ctx, ownerID, id, notNotified, store.Patch{
		"Notified":   true,
		"Archived":   true,
		"ArchivedAt": gorm.Expr("COALESCE(archived_at, ?)", s.now().UTC()),
	})
	if err != nil {
		return nil, err
	}
	return getReminder(ctx, st, ownerID, id)
}

func (s *ReminderService) archive(ctx context.Context, st *store.Store[Reminder], ownerID string, id uuid.UUID) (*Reminder, error) {
	_, err := st.UpdateWhere(ctx, ownerID, id, notArchived, store.Patch{
		"Archived":   true,
		"ArchivedAt": s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return getReminder(ctx, st, ownerID, id)
}

func (s *ReminderService) unarchive(ctx context.Context, st *store.Store[Reminder], ownerID string, id uuid.UUID) (*Reminder, error) {
	_, err := st.UpdateWhere(ctx, ownerID, id, manuallyArchived, store.Patch{
		"Archived":   false,
		"ArchivedAt": nil,
	})
	if err != nil {
		return nil, err
	}
	r, err := getReminder(ctx, st, ownerID, id)
	if err != nil {
		return nil, err
	}
	if r.Notified {
		return nil, ErrReminderNotified
	}
	return r, nil
}

func (s *ReminderService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	ok, err := s.reminders.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrReminderNotFound
	}
	return nil
}

// ListActive returns non-archived reminders, soonest first.
func (s *ReminderService) ListActive(ctx context.Context, ownerID string, clientID *uuid.UUID) ([]Reminder, error) {
	return s.reminders.List(ctx, ownerID, forClient(clientID), notArchived, soonestFirst)
}

// ListArchived returns archived reminders, most recently archived first.
func (s *ReminderService) ListArchived(ctx context.Context, ownerID string, clientID *uuid.UUID) ([]Reminder, error) {
	return s.reminders.List(ctx, ownerID, forClient(clientID), archivedOnly, func(db *gorm.DB) *gorm.DB {
		return db.Order("COALESCE(archived_at, created_at) DESC")
	})
}

// List returns active or archived reminders, or both with the active ones
// first when archived is nil.
func (s *ReminderService) List(ctx context.Context, ownerID string, clientID *uuid.UUID, archived *bool) ([]Reminder, error) {
	if archived != nil {
		if *archived {
			return s.ListArchived(ctx, ownerID, clientID)
		}
		return s.ListActive(ctx, ownerID, clientID)
	}
	active, err := s.ListActive(ctx, ownerID, clientID)
	if err != nil {
		return nil, err
	}
	old, err := s.ListArchived(ctx, ownerID, clientID)
	if err != nil {
		return nil, err
	}
	return append(active, old...), nil
}

// ListOn returns the reminders scheduled on one calendar day, earliest time
// first. archived narrows the result the same way as in List.
func (s *ReminderService) ListOn(ctx context.Context, ownerID, date string, clientID *uuid.UUID, archived *bool) ([]Reminder, error) {
	day, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	return s.reminders.List(ctx, ownerID, forClient(clientID), func(db *gorm.DB) *gorm.DB {
		db = db.Where("date = ?", day)
		if archived != nil {
			db = db.Where("archived = ?", *archived)
		}
		return db
	}, soonestFirst)
}

// ListDue returns the active reminders that are due now, in ListActive order.
func (s *ReminderService) ListDue(ctx context.Context, ownerID string) ([]Reminder, error) {
	now := s.Now()
	today := now.Format(dateLayout)
	list, err := s.reminders.List(ctx, ownerID, notArchived, notNotified, func(db *gorm.DB) *gorm.DB {
		return db.Where("date <= ?", today)
	}, soonestFirst)
	if err != nil {
		return nil, err
	}
	due := make([]Reminder, 0, len(list))
	for i := range list {
		if IsDue(&list[i], now, s.loc) {
			due = append(due, list[i])
		}
	}
	return due, nil
}

// DueOwners lists owners with a pending reminder dated today or earlier.
func (s *ReminderService) DueOwners(ctx context.Context) ([]string, error) {
	today := s.Now().Format(dateLayout)
	owners := make([]string, 0)
	err := s.db.WithContext(ctx).Model(&Reminder{}).
		Where("archived = ? AND notified = ? AND date <= ?", false, false, today).
		Distinct().
		Order("owner_id").
		Pluck("owner_id", &owners).Error
	if err != nil {
		return nil, fmt.Errorf("%w: due owners: %v", store.ErrUpstream, err)
	}
	return owners, nil
}

// ClientName returns the name of the reminder's client, or "" when it has
// none or the client is gone.
func (s *ReminderService) ClientName(ctx context.Context, ownerID string, clientID *uuid.UUID) (string, error) {
	if clientID == nil {
		return "", nil
	}
	c, err := s.clients.Get(ctx, ownerID, *clientID)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

// Views attaches the due flag computed at the current time.
func (s *ReminderService) Views(list []Reminder) []ReminderView {
	now := s.Now()
	out := make([]ReminderView, len(list))
	for i := range list {
		out[i] = ReminderView{Reminder: list[i], Due: IsDue(&list[i], now, s.loc)}
	}
	return out
}

func (s *ReminderService) View(r *Reminder) ReminderView {
	return ReminderView{Reminder: *r, Due: IsDue(r, s.Now(), s.loc)}
}

func getReminder(ctx context.Context, st *store.Store[Reminder], ownerID string, id uuid.UUID) (*Reminder, error) {
	r, err := st.Get(ctx, ownerID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReminderNotFound
	}
	return r, err
}

func updateReminder(ctx context.Context, st *store.Store[Reminder], ownerID string, id uuid.UUID, patch store.Patch) (*Reminder, error) {
	r, err := st.Update(ctx, ownerID, id, patch)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReminderNotFound
	}
	return r, err
}

func forClient(clientID *uuid.UUID) store.Scope {
	return func(db *gorm.DB) *gorm.DB {
		if clientID == nil {
			return db
		}
		return db.Where("client_id = ?", *clientID)
	}
}

func notArchived(db *gorm.DB) *gorm.DB  { return db.Where("archived = ?", false) }
func archivedOnly(db *gorm.DB) *gorm.DB { return db.Where("archived = ?", true) }
func notNotified(db *gorm.DB) *gorm.DB  { return db.Where("notified = ?", false) }
func soonestFirst(db *gorm.DB) *gorm.DB { return db.Order("date ASC").Order("time ASC") }
func manuallyArchived(db *gorm.DB) *gorm.DB {
	return db.Where("archived = ? AND notified = ?", true, false)
}
