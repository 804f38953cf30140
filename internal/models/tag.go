package models

import "time"

const MaxTagNameLength = 50

// Tag names are stored normalized (lowercase, trimmed) and are unique.
type Tag struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"size:50;not null;uniqueIndex:idx_tags_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskTag is the join row between a task and a tag. It carries no data.
type TaskTag struct {
	TaskID uint64 `gorm:"primarykey"`
	TagID  uint64 `gorm:"primarykey"`
}

func (TaskTag) TableName() string {
	return "task_tags"
}
