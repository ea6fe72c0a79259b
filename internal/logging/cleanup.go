package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/clientdesk-backend/internal/models"
	"gorm.io/gorm"
)

// StartCleanup runs a daily goroutine that deletes system_logs older than
// retentionDays. Closing done stops it.
func StartCleanup(db *gorm.DB, retentionDays int, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PurgeOlderThan(db, time.Now().AddDate(0, 0, -retentionDays))
			case <-done:
				return
			}
		}
	}()
}

// PurgeOlderThan deletes system_logs recorded before cutoff.
func PurgeOlderThan(db *gorm.DB, cutoff time.Time) int64 {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "component", "logging", "error", result.Error)
		return 0
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
	return result.RowsAffected
}
