package repository

import (
	"context"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// TaskRepository defines the interface for task data access.
// Soft-deleted tasks are invisible to every method.
type TaskRepository interface {
	// Create persists a task and its tags in one transaction
	Create(ctx context.Context, task *models.Task, tagNames []string) error

	// FindByID finds a live task by ID with its tags preloaded
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update applies a sparse change set in one transaction
	Update(ctx context.Context, id uint64, changes TaskChanges) (*models.Task, error)

	// SoftDelete marks a task as deleted
	SoftDelete(ctx context.Context, id uint64) error
}

// TagRepository resolves tag names to canonical tags.
type TagRepository interface {
	// Resolve returns the tag with the given normalized name, creating it if needed
	Resolve(ctx context.Context, name string) (*models.Tag, error)

	// ResolveAll resolves every name, preserving input order
	ResolveAll(ctx context.Context, names []string) ([]models.Tag, error)

	// FindByName finds a tag by its normalized name
	FindByName(ctx context.Context, name string) (*models.Tag, error)

	// WithTx binds the repository to an open transaction
	WithTx(tx *gorm.DB) TagRepository
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Completed *bool
	Priority  *int
	// Tags matches tasks carrying at least one of the names
	Tags   []string
	Offset int
	Limit  int
}

// TaskChanges is a sparse update. Only non-nil fields (and Description when
// DescriptionSet, Tags when TagsSet) are applied.
type TaskChanges struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Priority       *int
	DueDate        *time.Time
	Completed      *bool
	Tags           []string
	TagsSet        bool

	// UpdatedAt is stamped only if something actually changes
	UpdatedAt time.Time
}
