package dto

import (
	"sort"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/models"
)

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID          uint64     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    int        `json:"priority"`
	DueDate     string     `json:"due_date"`
	Completed   bool       `json:"completed"`
	IsDeleted   bool       `json:"is_deleted"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	Tags        []string   `json:"tags"`
}

// TaskListResponse represents one page of tasks
type TaskListResponse struct {
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Tasks  []TaskResponse `json:"tasks"`
}

// ToTaskResponse converts a Task model to TaskResponse. Tags render as their
// names; the order is alphabetical but clients must not rely on it.
func ToTaskResponse(task models.Task) TaskResponse {
	tags := task.TagNames()
	sort.Strings(tags)

	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		DueDate:     time.Time(task.DueDate).Format(constants.DateLayout),
		Completed:   task.Completed,
		IsDeleted:   task.IsDeleted,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Tags:        tags,
	}
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, total int64, limit, offset int) TaskListResponse {
	items := make([]TaskResponse, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskResponse(task)
	}

	return TaskListResponse{
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Tasks:  items,
	}
}
