package database

import (
	"gorm.io/gorm"
)

// Paginate applies offset and limit to a GORM query. A non-positive limit leaves the query unbounded.
func Paginate(offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db.Offset(offset)
		}
		return db.Offset(offset).Limit(limit)
	}
}
