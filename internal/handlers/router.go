package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/metrics"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"go.uber.org/zap"
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	Server  config.ServerConfig
	Metrics config.MetricsConfig
	Logger  *zap.Logger
}

// NewRouter builds the HTTP surface of the service
func NewRouter(taskHandler *TaskHandler, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics())
	r.Use(cors.New(corsConfig(opts.Server.CORSAllowedOrigins)))

	// Health check endpoints
	r.GET("/", Health)
	r.GET("/health", Health)

	if opts.Metrics.Enabled {
		r.GET(opts.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	tasks := r.Group("/tasks")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/:id", middleware.RequireTaskID(), taskHandler.GetTask)
		tasks.PATCH("/:id", middleware.RequireTaskID(), taskHandler.UpdateTask)
		tasks.DELETE("/:id", middleware.RequireTaskID(), taskHandler.DeleteTask)
	}

	return r
}

// Health reports that the process is serving requests
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Task Management API is running",
	})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = append(cfg.AllowHeaders, constants.HeaderRequestID)
	cfg.ExposeHeaders = []string{constants.HeaderRequestID}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
