package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes that cannot be expressed as struct tags
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Listing always filters on is_deleted and orders by created_at
		{"tasks", "idx_tasks_listing", "is_deleted, created_at"},

		// Reverse lookup for tag filters; (task_id, tag_id) is the primary key
		{"task_tags", "idx_task_tags_tag_id", "tag_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index",
			zap.String("index", idx.name),
			zap.String("table", idx.table),
			zap.String("columns", idx.columns))
	}

	return nil
}
