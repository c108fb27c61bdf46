package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/astro-datacenter/rundb/internal/logger"
	"github.com/joho/godotenv"
)

var (
	customLog = logger.NewLogger()
)

// Supported database drivers
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// Config holds application configuration values
type Config struct {
	ServerPort      string
	DBDriver        string
	DBDSN           string // mysql only
	DatabaseDir     string // sqlite only
	DatabaseFile    string // sqlite only
	JWTSecret       string
	JWTExpiration   time.Duration
	DefaultPageSize int
	MaxPageSize     int
	PlotDir         string
	CORSOrigins     []string
	RateLimit       int           // requests per minute and client, 0 disables
	StatusTimeLimit time.Duration // after this long a started step counts as crashed
	ResetUsers      []string      // user names allowed to reset sequences
}

// MayReset reports whether user may reset sequence processing.
// Nobody may when no reset users are configured.
func (c *Config) MayReset(user string) bool {
	for _, u := range c.ResetUsers {
		if u == user {
			return true
		}
	}
	return false
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig() (*Config, error) {
	customLog.Println("Loading configuration from environment variables...")

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DBDriver:        getEnv("DB_DRIVER", DriverSQLite),
		DBDSN:           os.Getenv("DB_DSN"),
		DatabaseDir:     getEnv("DATABASE_DIRECTORY", "data"),
		DatabaseFile:    getEnv("DATABASE_FILE", "datacenter.db"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTExpiration:   time.Duration(getEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 50),
		MaxPageSize:     getEnvInt("MAX_PAGE_SIZE", 1000),
		PlotDir:         getEnv("PLOT_DIR", "plots"),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
		RateLimit:       getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		StatusTimeLimit: getEnvDuration("STATUS_TIME_LIMIT", 12*time.Hour),
		ResetUsers:      splitList(os.Getenv("RESET_USERS")),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable must be set")
	}
	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverMySQL:
		if cfg.DBDSN == "" {
			return nil, errors.New("DB_DSN environment variable must be set for the mysql driver")
		}
	default:
		return nil, errors.New("DB_DRIVER must be 'sqlite3' or 'mysql'")
	}
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		customLog.Warnf("DEFAULT_PAGE_SIZE %d exceeds MAX_PAGE_SIZE %d, clamping", cfg.DefaultPageSize, cfg.MaxPageSize)
		cfg.DefaultPageSize = cfg.MaxPageSize
	}

	customLog.Printf("Configuration loaded successfully. Port: %s, Driver: %s, Status limit: %v", cfg.ServerPort, cfg.DBDriver, cfg.StatusTimeLimit)
	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 {
		customLog.Warnf("Invalid %s '%s'. Using default %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return i
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		customLog.Warnf("Invalid duration %s '%s'. Using default %v", key, raw, fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
