package models

import (
	"time"

	"gorm.io/datatypes"
)

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description *string        `gorm:"type:text" json:"description"`
	Priority    int            `gorm:"not null;index:idx_tasks_priority" json:"priority"`
	DueDate     datatypes.Date `gorm:"not null;index:idx_tasks_due_date" json:"due_date"`
	Completed   bool           `gorm:"not null;default:false;index:idx_tasks_completed" json:"completed"`
	IsDeleted   bool           `gorm:"not null;default:false;index:idx_tasks_is_deleted" json:"is_deleted"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	// UpdatedAt stays NULL until the first update that changes something.
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`

	// Relations
	Tags []Tag `gorm:"many2many:task_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
}

// TagNames returns the names of the preloaded tags.
func (t Task) TagNames() []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}
