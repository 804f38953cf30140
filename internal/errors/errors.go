package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error messages
const (
	MsgValidationFailed = "Validation Failed"
	MsgTaskNotFound     = "Task not found"
	MsgInternalError    = "Internal server error"
)

// APIError is the body of every error response
type APIError struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err APIError) {
	c.AbortWithStatusJSON(statusCode, err)
}

// ValidationFailed sends a 422 response listing every field problem
func ValidationFailed(c *gin.Context, details map[string]string) {
	RespondWithError(c, http.StatusUnprocessableEntity, APIError{
		Error:   MsgValidationFailed,
		Details: details,
	})
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, APIError{Error: message})
}

// InternalError sends a 500 response. The cause is never exposed.
func InternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, APIError{Error: MsgInternalError})
}
