// Package config loads the application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Store backends
const (
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
	BackendMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Store         StoreConfig
	Supabase      SupabaseConfig
	Auth          AuthConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
	Log           LogConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	CORSOrigins        []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
}

type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Database      string
	SSLMode       string
	MaxConns      int
	RunMigrations bool
}

// StoreConfig picks where families, categories and transactions live.
type StoreConfig struct {
	Backend string
}

type SupabaseConfig struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	MaxRetries     int
	InitialBackoff time.Duration
	Timeout        time.Duration
}

type AuthConfig struct {
	JWTSecret string
}

type StorageConfig struct {
	Dir            string
	MaxUploadBytes int64
	Retention      time.Duration
	SweepSchedule  string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	OTLPEndpoint   string
	ServiceName    string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 40),
			CORSOrigins:        getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			ReadTimeout:        getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:       getEnvAsDuration("SERVER_WRITE_TIMEOUT", 2*time.Minute),
			ShutdownTimeout:    getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:          getEnv("POSTGRES_HOST", "localhost"),
			Port:          getEnvAsInt("POSTGRES_PORT", 5432),
			User:          getEnv("POSTGRES_USER", "postgres"),
			Password:      getEnv("POSTGRES_PASSWORD", "postgres"),
			Database:      getEnv("POSTGRES_DB", "casa_gastos"),
			SSLMode:       getEnv("POSTGRES_SSLMODE", "disable"),
			MaxConns:      getEnvAsInt("POSTGRES_MAX_CONNS", 10),
			RunMigrations: getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
		},
		Supabase: SupabaseConfig{
			URL:            getEnv("SUPABASE_URL", ""),
			AnonKey:        getEnv("SUPABASE_ANON_KEY", ""),
			ServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
			MaxRetries:     getEnvAsInt("SUPABASE_MAX_RETRIES", 3),
			InitialBackoff: getEnvAsDuration("SUPABASE_INITIAL_BACKOFF", 200*time.Millisecond),
			Timeout:        getEnvAsDuration("SUPABASE_TIMEOUT", 15*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Storage: StorageConfig{
			Dir:            getEnv("UPLOAD_DIR", "./uploads"),
			MaxUploadBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10<<20)),
			Retention:      getEnvAsDuration("UPLOAD_RETENTION", 24*time.Hour),
			SweepSchedule:  getEnv("UPLOAD_SWEEP_SCHEDULE", "@hourly"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "casa-gastos"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendPostgres, BackendMemory:
	case BackendSupabase:
		if c.Supabase.URL == "" {
			return errors.New("SUPABASE_URL is required for the supabase backend")
		}
		if c.Supabase.AnonKey == "" && c.Supabase.ServiceRoleKey == "" {
			return errors.New("SUPABASE_ANON_KEY or SUPABASE_SERVICE_ROLE_KEY is required for the supabase backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Auth.JWTSecret == "" && c.Store.Backend != BackendMemory {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
