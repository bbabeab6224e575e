package database

import (
	"math"

	"gorm.io/gorm"
)

// Paginate is a gorm scope for 1-based page numbers. Offsets past
// math.MaxInt32 are clamped there so the multiplication cannot wrap.
func Paginate(page, perPage int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		offset := math.MaxInt32
		if page-1 <= math.MaxInt32/perPage {
			offset = (page - 1) * perPage
		}
		return db.Offset(offset).Limit(perPage)
	}
}
