package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a GORM connection for the configured driver.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	dsn := cfg.ConnString()

	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverMySQL:
		dialector = mysql.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnsupportedDriver, cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// Every new connection to ":memory:" is a fresh database, and SQLite
		// serializes writers anyway.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info("database connection established", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate creates or updates the schema and its secondary indexes.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	if err := db.SetupJoinTable(&models.Task{}, "Tags", &models.TaskTag{}); err != nil {
		return fmt.Errorf("failed to set up task_tags join table: %w", err)
	}

	err := db.AutoMigrate(
		&models.Tag{},
		&models.Task{},
		&models.TaskTag{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db, log); err != nil {
		return err
	}

	log.Info("database migrations completed")
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
