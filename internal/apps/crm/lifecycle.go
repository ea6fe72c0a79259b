package crm

import (
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	timeLayout  = "15:04:05"
	shortLayout = "15:04"

	DefaultReminderTime = "09:00:00"
)

type State string

const (
	StatePending          State = "pending"
	StateDue              State = "due"
	StateNotifiedArchived State = "notified_archived"
	StateArchived         State = "archived"
)

// Combine returns the instant a reminder fires in loc.
func Combine(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := normalizeDate(date)
	if err != nil {
		return time.Time{}, err
	}
	t, err := normalizeTime(clock)
	if err != nil {
		return time.Time{}, err
	}
	at, err := time.ParseInLocation(dateLayout+" "+timeLayout, d+" "+t, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return at, nil
}

// IsDue reports whether r should be alerted at now. A reminder whose instant
// equals now is due. Unparseable schedules are never due.
func IsDue(r *Reminder, now time.Time, loc *time.Location) bool {
	if r == nil || r.Notified || r.Archived {
		return false
	}
	at, err := Combine(r.Date, r.Time, loc)
	if err != nil {
		return false
	}
	return !at.After(now)
}

// StateOf derives the lifecycle state. It is never stored.
func StateOf(r *Reminder, now time.Time, loc *time.Location) State {
	switch {
	case r.Notified:
		return StateNotifiedArchived
	case r.Archived:
		return StateArchived
	case IsDue(r, now, loc):
		return StateDue
	default:
		return StatePending
	}
}

func normalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", ErrInvalidDate
	}
	return d.Format(dateLayout), nil
}

// normalizeTime accepts HH:MM or HH:MM:SS and returns HH:MM:SS.
func normalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{timeLayout, shortLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(timeLayout), nil
		}
	}
	return "", ErrInvalidTime
}
