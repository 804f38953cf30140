package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db   *gorm.DB
	tags TagRepository
}

// NewTaskRepository creates a new TaskRepository. Tag names are resolved
// through tags, bound to the task's transaction.
func NewTaskRepository(db *gorm.DB, tags TagRepository) TaskRepository {
	return &GormTaskRepository{db: db, tags: tags}
}

// Create inserts the task, resolves its tags and links them atomically.
// task.ID is populated on success.
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := r.tags.WithTx(tx).ResolveAll(ctx, tagNames)
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}

		return replaceTaskTags(tx, task.ID, tagIDs(tags))
	})
}

// FindByID finds a live task by ID with its tags preloaded
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Scopes(database.NotDeleted).
		Preload("Tags", orderTagsByName).
		Where("tasks.id = ?", id).
		Take(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination. The total count is taken
// before pagination; count and page are separate statements.
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(listScopes(filter)...).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tasks := []models.Task{}
	if int64(filter.Offset) >= total {
		return tasks, total, nil
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = constants.DefaultPageLimit
	}

	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(listScopes(filter)...).
		Order("tasks.created_at DESC").
		Order("tasks.id ASC").
		Scopes(database.Paginate(utils.PaginationParams{Limit: limit, Offset: filter.Offset})).
		Preload("Tags", orderTagsByName).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update applies changes to a live task. updated_at is stamped only when a
// value or the tag set differs from what is stored.
func (r *GormTaskRepository) Update(ctx context.Context, id uint64, changes TaskChanges) (*models.Task, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Scopes(database.NotDeleted).
			Preload("Tags").
			Where("tasks.id = ?", id).
			Take(&task).Error; err != nil {
			return err
		}

		updates := columnUpdates(task, changes)

		tagsChanged := false
		if changes.TagsSet {
			tags, err := r.tags.WithTx(tx).ResolveAll(ctx, changes.Tags)
			if err != nil {
				return err
			}
			if !sameTagSet(task.Tags, tags) {
				if err := replaceTaskTags(tx, task.ID, tagIDs(tags)); err != nil {
					return err
				}
				tagsChanged = true
			}
		}

		if len(updates) == 0 && !tagsChanged {
			return nil
		}

		updates["updated_at"] = changes.UpdatedAt
		if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id)
}

// SoftDelete flags a live task as deleted without touching updated_at.
func (r *GormTaskRepository) SoftDelete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(database.NotDeleted).
		Where("tasks.id = ?", id).
		UpdateColumn("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// listScopes composes the list predicate. NotDeleted always comes first.
func listScopes(filter TaskFilter) []func(*gorm.DB) *gorm.DB {
	scopes := []func(*gorm.DB) *gorm.DB{database.NotDeleted}

	if filter.Completed != nil {
		completed := *filter.Completed
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("tasks.completed = ?", completed)
		})
	}
	if filter.Priority != nil {
		priority := *filter.Priority
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("tasks.priority = ?", priority)
		})
	}
	if len(filter.Tags) > 0 {
		names := filter.Tags
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			tagSubQuery := db.Session(&gorm.Session{NewDB: true}).
				Table("task_tags").
				Select("1").
				Joins("JOIN tags ON tags.id = task_tags.tag_id").
				Where("task_tags.task_id = tasks.id").
				Where("tags.name IN ?", names)
			return db.Where("EXISTS (?)", tagSubQuery)
		})
	}

	return scopes
}

func orderTagsByName(db *gorm.DB) *gorm.DB {
	return db.Order("tags.name ASC")
}

// columnUpdates returns the columns whose requested value differs from task.
func columnUpdates(task models.Task, changes TaskChanges) map[string]interface{} {
	updates := make(map[string]interface{})

	if changes.Title != nil && *changes.Title != task.Title {
		updates["title"] = *changes.Title
	}
	if changes.DescriptionSet && !equalStringPtr(changes.Description, task.Description) {
		if changes.Description == nil {
			updates["description"] = gorm.Expr("NULL")
		} else {
			updates["description"] = *changes.Description
		}
	}
	if changes.Priority != nil && *changes.Priority != task.Priority {
		updates["priority"] = *changes.Priority
	}
	if changes.DueDate != nil && !sameDate(*changes.DueDate, time.Time(task.DueDate)) {
		updates["due_date"] = datatypes.Date(*changes.DueDate)
	}
	if changes.Completed != nil && *changes.Completed != task.Completed {
		updates["completed"] = *changes.Completed
	}

	return updates
}

// replaceTaskTags makes the association set of taskID exactly tagIDs.
// Tag rows themselves are never removed.
func replaceTaskTags(tx *gorm.DB, taskID uint64, ids []uint64) error {
	stale := tx.Where("task_id = ?", taskID)
	if len(ids) > 0 {
		stale = stale.Where("tag_id NOT IN ?", ids)
	}
	if err := stale.Delete(&models.TaskTag{}).Error; err != nil {
		return fmt.Errorf("failed to remove task tags: %w", err)
	}

	if len(ids) == 0 {
		return nil
	}

	links := make([]models.TaskTag, len(ids))
	for i, id := range ids {
		links[i] = models.TaskTag{TaskID: taskID, TagID: id}
	}

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
		return fmt.Errorf("failed to link task tags: %w", err)
	}
	return nil
}

func tagIDs(tags []models.Tag) []uint64 {
	ids := make([]uint64, len(tags))
	for i, tag := range tags {
		ids[i] = tag.ID
	}
	return ids
}

func sameTagSet(current, next []models.Tag) bool {
	if len(current) != len(next) {
		return false
	}
	ids := make(map[uint64]struct{}, len(current))
	for _, tag := range current {
		ids[tag.ID] = struct{}{}
	}
	for _, tag := range next {
		if _, ok := ids[tag.ID]; !ok {
			return false
		}
	}
	return true
}

func sameDate(a, b time.Time) bool {
	return a.Format(constants.DateLayout) == b.Format(constants.DateLayout)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
