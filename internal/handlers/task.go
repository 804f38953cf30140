package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/validation"
)

type TaskHandler struct {
	taskService *services.TaskService
	validator   *validation.Validator
}

func NewTaskHandler(taskService *services.TaskService, validator *validation.Validator) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator,
	}
}

// ListTasks returns one page of live tasks, newest first
func (h *TaskHandler) ListTasks(c *gin.Context) {
	query, err := h.validator.ValidateListQuery(c.Request.URL.Query())
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), services.ListTasksInput{
		Completed: query.Completed,
		Priority:  query.Priority,
		Tags:      query.Tags,
		Limit:     query.Pagination.Limit,
		Offset:    query.Pagination.Offset,
	})
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, total, query.Pagination.Limit, query.Pagination.Offset))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	input, err := h.validator.ValidateCreate(body)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), input)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskResponse(*task))
}

// GetTask returns a single live task
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), taskID)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponse(*task))
}

// UpdateTask applies a partial update. The body is validated before the
// task is looked up, so an invalid body is 422 even for a missing task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	input, err := h.validator.ValidateUpdate(body)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, input)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponse(*task))
}

// DeleteTask soft-deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := h.taskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), taskID); err != nil {
		h.respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// taskID reads the id parsed by middleware.RequireTaskID. A route wired
// without it is a programming error and answers 500.
func (h *TaskHandler) taskID(c *gin.Context) (uint64, bool) {
	taskID, ok := middleware.GetTaskID(c)
	if !ok {
		_ = c.Error(errors.New("task id missing from context"))
		apierrors.InternalError(c)
		return 0, false
	}
	return taskID, true
}

func (h *TaskHandler) respondWithError(c *gin.Context, err error) {
	var validationErr *validation.ValidationError
	switch {
	case errors.As(err, &validationErr):
		apierrors.ValidationFailed(c, validationErr.Details)
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, apierrors.MsgTaskNotFound)
	default:
		_ = c.Error(err)
		apierrors.InternalError(c)
	}
}
