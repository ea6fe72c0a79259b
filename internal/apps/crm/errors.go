package crm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/store"
	"github.com/google/uuid"
)

// ErrValidation marks input errors reported back to the caller as 400.
var ErrValidation = errors.New("validation failed")

var (
	ErrNameRequired     = invalid("name is required")
	ErrTextRequired     = invalid("text is required")
	ErrInvalidDate      = invalid("date must be YYYY-MM-DD")
	ErrInvalidTime      = invalid("time must be HH:MM or HH:MM:SS")
	ErrInvalidID        = invalid("invalid id")
	ErrInvalidClientID  = invalid("invalid client_id")
	ErrInvalidField     = invalid("optional fields must be a string or null")
	ErrUnnotify         = invalid("a notified reminder cannot be marked as not notified")
	ErrInvalidLanguage  = invalid("language must be ru, en or uk")
	ErrInvalidTheme     = invalid("theme must be auto, light or dark")
	ErrReminderNotified = fmt.Errorf("%w: a notified reminder stays archived", ErrValidation)
)

var (
	ErrClientNotFound   = fmt.Errorf("client %w", store.ErrNotFound)
	ErrNoteNotFound     = fmt.Errorf("note %w", store.ErrNotFound)
	ErrReminderNotFound = fmt.Errorf("reminder %w", store.ErrNotFound)
)

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }
func (e *validationError) Unwrap() error { return ErrValidation }

func invalid(msg string) error { return &validationError{msg: msg} }

// OptionalID is a JSON field that tells an omitted value apart from null.
type OptionalID struct {
	Set   bool
	Value *string
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	v, err := nullableString(b)
	if err != nil {
		return ErrInvalidClientID
	}
	o.Set, o.Value = true, v
	return nil
}

// OptionalString is OptionalID for free-text fields: null clears the value,
// an omitted field leaves it alone.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	v, err := nullableString(b)
	if err != nil {
		return ErrInvalidField
	}
	o.Set, o.Value = true, v
	return nil
}

func nullableString(b []byte) (*string, error) {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// parseClientID turns an optional wire id into a nullable reference. Blank
// strings mean no client.
func parseClientID(raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, ErrInvalidClientID
	}
	return &id, nil
}

// optional trims s and maps empty input to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
