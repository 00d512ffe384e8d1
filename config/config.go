package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Email      EmailConfig
	ClassOTP   ClassOTPConfig
	Percentage PercentageConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/attendance?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// EmailConfig selects and configures the class code delivery channel.
type EmailConfig struct {
	Provider       string // console | sendgrid
	SendGridAPIKey string
	FromAddress    string
	FromName       string
	Recipient      string // teacher-facing address receiving the class code
}

// Store kinds for the class code slot.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// ClassOTPConfig holds class code lifetime and attendance window settings.
type ClassOTPConfig struct {
	TTLMinutes       int
	NotifyTimeoutSec int
	WindowStartHour  int
	WindowEndHour    int
	Timezone         string
	Store            string
	RetentionMinutes int  // how long an expired slot stays readable in Redis
	EchoCode         bool // return the code in the issue response
}

// PercentageConfig controls how attendance percentages are recomputed.
type PercentageConfig struct {
	Async bool // enqueue on Redis for cmd/worker instead of recomputing inline
}

// TTL returns the class code lifetime.
func (c ClassOTPConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// NotifyTimeout bounds a single delivery attempt.
func (c ClassOTPConfig) NotifyTimeout() time.Duration {
	return time.Duration(c.NotifyTimeoutSec) * time.Second
}

// Retention returns how long an expired slot is kept before Redis evicts it.
func (c ClassOTPConfig) Retention() time.Duration {
	return time.Duration(c.RetentionMinutes) * time.Minute
}

// Location resolves Timezone; "Local" or empty means the server's local time.
func (c ClassOTPConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "5000"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "college_attendance"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		Email: EmailConfig{
			Provider:       strings.ToLower(getEnv("EMAIL_PROVIDER", "console")),
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromAddress:    getEnv("EMAIL_FROM_ADDRESS", "noreply@example.com"),
			FromName:       getEnv("EMAIL_FROM_NAME", "GTN College Attendance System"),
			Recipient:      getEnv("CLASS_OTP_RECIPIENT", ""),
		},
		ClassOTP: ClassOTPConfig{
			TTLMinutes:       getEnvInt("CLASS_OTP_TTL_MINUTES", 30),
			NotifyTimeoutSec: getEnvInt("CLASS_OTP_NOTIFY_TIMEOUT_SEC", 10),
			WindowStartHour:  getEnvInt("ATTENDANCE_WINDOW_START_HOUR", 9),
			WindowEndHour:    getEnvInt("ATTENDANCE_WINDOW_END_HOUR", 17),
			Timezone:         getEnv("ATTENDANCE_TIMEZONE", "Local"),
			Store:            strings.ToLower(getEnv("CLASS_OTP_STORE", StoreMemory)),
			RetentionMinutes: getEnvInt("CLASS_OTP_RETENTION_MINUTES", 60),
			EchoCode:         getEnvBool("CLASS_OTP_ECHO_CODE", false),
		},
		Percentage: PercentageConfig{
			Async: getEnvBool("PERCENTAGE_ASYNC", false),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	o := c.ClassOTP
	if o.TTLMinutes <= 0 {
		return fmt.Errorf("CLASS_OTP_TTL_MINUTES must be positive, got %d", o.TTLMinutes)
	}
	if o.NotifyTimeoutSec <= 0 {
		return fmt.Errorf("CLASS_OTP_NOTIFY_TIMEOUT_SEC must be positive, got %d", o.NotifyTimeoutSec)
	}
	// An expired session must outlive its expiry so late redemptions report expired.
	if o.RetentionMinutes <= 0 {
		return fmt.Errorf("CLASS_OTP_RETENTION_MINUTES must be positive, got %d", o.RetentionMinutes)
	}
	if o.WindowStartHour < 0 || o.WindowEndHour > 24 || o.WindowStartHour >= o.WindowEndHour {
		return fmt.Errorf("invalid attendance window %d-%d", o.WindowStartHour, o.WindowEndHour)
	}
	if o.Store != StoreMemory && o.Store != StoreRedis {
		return fmt.Errorf("unknown CLASS_OTP_STORE %q", o.Store)
	}
	if _, err := o.Location(); err != nil {
		return fmt.Errorf("ATTENDANCE_TIMEZONE: %w", err)
	}
	switch c.Email.Provider {
	case "console":
	case "sendgrid":
		if c.Email.SendGridAPIKey == "" {
			return fmt.Errorf("SENDGRID_API_KEY is required for the sendgrid provider")
		}
		if c.Email.Recipient == "" {
			return fmt.Errorf("CLASS_OTP_RECIPIENT is required for the sendgrid provider")
		}
	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q", c.Email.Provider)
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
