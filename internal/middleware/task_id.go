package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
)

// RequireTaskID parses the :id path parameter and stores it in the context.
// Anything other than a positive integer is rejected with 422.
func RequireTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || taskID == 0 {
			apierrors.ValidationFailed(c, map[string]string{
				"id": "must be a positive integer",
			})
			return
		}

		c.Set(constants.ContextKeyTaskID, taskID)
		c.Next()
	}
}

// GetTaskID retrieves the task ID parsed by RequireTaskID
func GetTaskID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(constants.ContextKeyTaskID)
	if !exists {
		return 0, false
	}
	taskID, ok := v.(uint64)
	return taskID, ok
}
