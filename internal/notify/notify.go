// Package notify delivers alerts for due reminders. A Poller serves one
// owner; the Dispatcher runs a Poller pass for every owner with due work.
package notify

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/apps/crm"
	"github.com/google/uuid"
)

// ReminderSource is the part of the reminder lifecycle the poller drives.
type ReminderSource interface {
	ListDue(ctx context.Context, ownerID string) ([]crm.Reminder, error)
	MarkNotified(ctx context.Context, ownerID string, id uuid.UUID) (*crm.Reminder, error)
	ClientName(ctx context.Context, ownerID string, clientID *uuid.UUID) (string, error)
}

// OwnerSource lists owners that may have due reminders.
type OwnerSource interface {
	DueOwners(ctx context.Context) ([]string, error)
}

// Preferences reports whether an owner wants alerts at all.
type Preferences interface {
	NotificationsEnabled(ctx context.Context, ownerID string) (bool, error)
}

// Alerter shows a rendered reminder to its owner.
type Alerter interface {
	Alert(ctx context.Context, ownerID string, msg Message) error
}

// Acknowledger is an optional side effect run after a reminder is committed
// as notified.
type Acknowledger interface {
	Acknowledge(ctx context.Context, ownerID string, r crm.Reminder) error
}

type Message struct {
	ReminderID uuid.UUID
	ClientName string
	Text       string
}

// Result counts what one pass did.
type Result struct {
	Owners   int
	Notified int
	Failed   int
}

func (r *Result) add(o Result) {
	r.Owners += o.Owners
	r.Notified += o.Notified
	r.Failed += o.Failed
}
