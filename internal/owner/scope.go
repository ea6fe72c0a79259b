package owner

import "gorm.io/gorm"

// ForOwner returns a GORM scope that filters by owner_id.
func ForOwner(ownerID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	}
}
