package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   string    `gorm:"size:64;not null;index" json:"user_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Phone     *string   `gorm:"size:64" json:"phone"`
	Email     *string   `gorm:"size:255" json:"email"`
	Company   *string   `gorm:"size:255" json:"company"`
	Notes     *string   `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

type Note struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   string     `gorm:"size:64;not null;index" json:"user_id"`
	ClientID  *uuid.UUID `gorm:"type:uuid;index" json:"client_id"`
	Text      string     `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Reminder is scheduled by a local Date and Time with no zone of its own.
// Time is stored as HH:MM:SS.
type Reminder struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID    string     `gorm:"size:64;not null;index:idx_reminder_owner_state" json:"user_id"`
	ClientID   *uuid.UUID `gorm:"type:uuid;index" json:"client_id"`
	Text       string     `gorm:"type:text;not null" json:"text"`
	Date       string     `gorm:"type:varchar(10);not null" json:"date"`
	Time       string     `gorm:"type:varchar(8);not null" json:"time"`
	Notified   bool       `gorm:"not null;default:false;index:idx_reminder_owner_state" json:"notified"`
	Archived   bool       `gorm:"not null;default:false;index:idx_reminder_owner_state" json:"archived"`
	ArchivedAt *time.Time `json:"archived_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type Settings struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	OwnerID       string    `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	Notifications bool      `gorm:"not null" json:"notifications"`
	Sound         bool      `gorm:"not null" json:"sound"`
	Language      string    `gorm:"size:8;not null" json:"language"`
	Theme         string    `gorm:"size:16;not null" json:"theme"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Settings) TableName() string { return "settings" }

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (s *Settings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// --- DTOs ---

type CreateClientRequest struct {
	Name    string  `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Company *string `json:"company"`
	Notes   *string `json:"notes"`
}

type UpdateClientRequest struct {
	Name    *string        `json:"name"`
	Phone   OptionalString `json:"phone"`
	Email   OptionalString `json:"email"`
	Company OptionalString `json:"company"`
	Notes   OptionalString `json:"notes"`
}

type CreateNoteRequest struct {
	ClientID *string `json:"client_id"`
	Text     string  `json:"text"`
}

// UpdateNoteRequest distinguishes an omitted client_id from an explicit null,
// which detaches the note.
type UpdateNoteRequest struct {
	ClientID OptionalID `json:"client_id"`
	Text     *string    `json:"text"`
}

type CreateReminderRequest struct {
	ClientID *string `json:"client_id"`
	Text     string  `json:"text"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
}

type UpdateReminderRequest struct {
	ClientID OptionalID `json:"client_id"`
	Text     *string    `json:"text"`
	Date     *string    `json:"date"`
	Time     *string    `json:"time"`
	Notified *bool      `json:"notified"`
	Archived *bool      `json:"archived"`
}

type SettingsRequest struct {
	Notifications *bool   `json:"notifications"`
	Sound         *bool   `json:"sound"`
	Language      *string `json:"language"`
	Theme         *string `json:"theme"`
}

// ReminderView adds the computed due flag to a stored reminder.
type ReminderView struct {
	Reminder
	Due bool `json:"due"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}
