package crm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	Languages = []string{"ru", "en", "uk"}
	Themes    = []string{"auto", "light", "dark"}
)

// DefaultSettings is what an owner gets before saving anything.
func DefaultSettings(ownerID string) Settings {
	return Settings{
		OwnerID:       ownerID,
		Notifications: true,
		Sound:         true,
		Language:      "ru",
		Theme:         "auto",
	}
}

type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

func (s *SettingsService) Get(ctx context.Context, ownerID string) (*Settings, error) {
	var st Settings
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Take(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		d := DefaultSettings(ownerID)
		return &d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: settings: %v", store.ErrUpstream, err)
	}
	return &st, nil
}

// Save merges req into the owner's settings and upserts them on owner_id.
func (s *SettingsService) Save(ctx context.Context, ownerID string, req SettingsRequest) (*Settings, error) {
	cur, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if req.Notifications != nil {
		cur.Notifications = *req.Notifications
	}
	if req.Sound != nil {
		cur.Sound = *req.Sound
	}
	if req.Language != nil {
		lang := strings.ToLower(strings.TrimSpace(*req.Language))
		if !slices.Contains(Languages, lang) {
			return nil, ErrInvalidLanguage
		}
		cur.Language = lang
	}
	if req.Theme != nil {
		theme := strings.ToLower(strings.TrimSpace(*req.Theme))
		if !slices.Contains(Themes, theme) {
			return nil, ErrInvalidTheme
		}
		cur.Theme = theme
	}

	row := *cur
	row.ID = uuid.Nil
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"notifications", "sound", "language", "theme", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("%w: save settings: %v", store.ErrUpstream, err)
	}
	return s.Get(ctx, ownerID)
}

// NotificationsEnabled reports the owner's notifications switch.
func (s *SettingsService) NotificationsEnabled(ctx context.Context, ownerID string) (bool, error) {
	st, err := s.Get(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return st.Notifications, nil
}

// SoundEnabled reports whether the owner's alerts should make a sound.
func (s *SettingsService) SoundEnabled(ctx context.Context, ownerID string) (bool, error) {
	st, err := s.Get(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return st.Sound, nil
}
