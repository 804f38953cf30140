package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/constants"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequireTaskID(t *testing.T) {
	r := gin.New()
	r.GET("/tasks/:id", RequireTaskID(), func(c *gin.Context) {
		id, ok := GetTaskID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"valid", "/tasks/12", http.StatusOK},
		{"zero", "/tasks/0", http.StatusUnprocessableEntity},
		{"negative", "/tasks/-3", http.StatusUnprocessableEntity},
		{"not a number", "/tasks/abc", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusUnprocessableEntity {
				return
			}

			var body struct {
				Error   string            `json:"error"`
				Details map[string]string `json:"details"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Validation Failed", body.Error)
			assert.Contains(t, body.Details, "id")
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.ContextKeyRequestID))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(constants.HeaderRequestID)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constants.HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(constants.HeaderRequestID))
}
