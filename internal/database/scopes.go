package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// NotDeleted hides soft-deleted tasks. Every task read path goes through it.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("tasks.is_deleted = ?", false)
}

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}
