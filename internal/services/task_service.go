package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/metrics"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/validation"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound = errors.New("task not found")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	now      func() time.Time
	logger   *zap.Logger
}

// NewTaskService creates a new TaskService. now is the clock used for
// created_at and updated_at; nil means time.Now in UTC.
func NewTaskService(taskRepo repository.TaskRepository, now func() time.Time, logger *zap.Logger) *TaskService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		taskRepo: taskRepo,
		now:      now,
		logger:   logger,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Completed *bool
	Priority  *int
	Tags      []string
	Limit     int
	Offset    int
}

// ListTasks returns one page of live tasks and the total number matching
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		Completed: input.Completed,
		Priority:  input.Priority,
		Tags:      input.Tags,
		Limit:     input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a live task with its tags
func (s *TaskService) GetTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask persists a validated task and returns it as stored
func (s *TaskService) CreateTask(ctx context.Context, input validation.TaskCreate) (*models.Task, error) {
	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		DueDate:     datatypes.Date(input.DueDate),
		CreatedAt:   s.now(),
	}

	if err := s.taskRepo.Create(ctx, task, input.Tags); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	metrics.TasksCreated.Inc()
	s.logger.Info("task created", zap.Uint64("task_id", task.ID), zap.Int("tags", len(input.Tags)))

	return s.GetTask(ctx, task.ID)
}

// UpdateTask applies a sparse update to a live task
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint64, input validation.TaskUpdate) (*models.Task, error) {
	if input.IsEmpty() {
		return s.GetTask(ctx, taskID)
	}

	task, err := s.taskRepo.Update(ctx, taskID, repository.TaskChanges{
		Title:          input.Title,
		Description:    input.Description,
		DescriptionSet: input.DescriptionSet,
		Priority:       input.Priority,
		DueDate:        input.DueDate,
		Completed:      input.Completed,
		Tags:           input.Tags,
		TagsSet:        input.TagsSet,
		UpdatedAt:      s.now(),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	metrics.TasksUpdated.Inc()
	s.logger.Info("task updated", zap.Uint64("task_id", taskID))

	return task, nil
}

// DeleteTask soft-deletes a live task
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint64) error {
	if err := s.taskRepo.SoftDelete(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	metrics.TasksDeleted.Inc()
	s.logger.Info("task deleted", zap.Uint64("task_id", taskID))

	return nil
}
