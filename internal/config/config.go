package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the runtime configuration of the API server.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port               int      `mapstructure:"port"`
	GinMode            string   `mapstructure:"gin_mode"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig describes how to reach the relational store.
// DSN, when set, takes precedence over the individual fields.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
	LogLevel string `mapstructure:"log_level"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

// envBindings maps config keys to the environment variables that feed them.
var envBindings = map[string]string{
	"server.port":                 "PORT",
	"server.gin_mode":             "GIN_MODE",
	"server.cors_allowed_origins": "CORS_ALLOWED_ORIGINS",
	"database.driver":             "DB_DRIVER",
	"database.dsn":                "DB_DSN",
	"database.host":               "DB_HOST",
	"database.port":               "DB_PORT",
	"database.user":               "DB_USER",
	"database.password":           "DB_PASSWORD",
	"database.name":               "DB_NAME",
	"database.ssl_mode":           "DB_SSLMODE",
	"database.log_level":          "DB_LOG_LEVEL",
	"log.level":                   "LOG_LEVEL",
	"metrics.enabled":             "METRICS_ENABLED",
	"metrics.path":                "METRICS_PATH",
}

// Load reads configuration from a .env file, an optional config.yaml and
// the environment, in increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "taskuser")
	v.SetDefault("database.password", "taskpassword")
	v.SetDefault("database.name", "task_tracker")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func (c DatabaseConfig) validate() error {
	switch c.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}
}

// ConnString returns the driver specific data source name.
func (c DatabaseConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}

	switch c.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name)
	case DriverSQLite:
		return c.Name + ".db"
	default:
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.Name, c.SSLMode)
	}
}
