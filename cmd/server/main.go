package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/handlers"
	"github.com/yukikurage/task-tracker-api/internal/logging"
	"github.com/yukikurage/task-tracker-api/internal/metrics"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "task-tracker-api",
		Short: "Task tracking HTTP API",
		RunE:  runServe,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run migrations and serve the HTTP API",
		RunE:  runServe,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE:  runMigrate,
	})

	if err := rootCmd.Execute(); err != nil {
		// Cobra prints the error
		os.Exit(1)
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log.Level)
	defer logger.Sync() //nolint:errcheck

	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer database.Close(db) //nolint:errcheck

	return database.Migrate(db, logger)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log.Level)
	defer logger.Sync() //nolint:errcheck

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Connect to database
	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer database.Close(db) //nolint:errcheck

	// Run migrations
	if err := database.Migrate(db, logger); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	srv := newServer(cfg, db, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// newServer wires repositories, services and handlers into an http.Server
// listening on the configured port.
func newServer(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *http.Server {
	now := func() time.Time { return time.Now().UTC() }

	tagRepo := repository.NewTagRepository(db)
	taskRepo := repository.NewTaskRepository(db, tagRepo)
	taskService := services.NewTaskService(taskRepo, now, logger)
	taskHandler := handlers.NewTaskHandler(taskService, validation.New(now))

	router := handlers.NewRouter(taskHandler, handlers.RouterOptions{
		Server:  cfg.Server,
		Metrics: cfg.Metrics,
		Logger:  logger,
	})

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
