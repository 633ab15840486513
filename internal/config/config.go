// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Ledger   LedgerConfig
	Worker   WorkerConfig
	Notify   NotifyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds database connection settings.
// Driver is "postgres" (default) or "sqlite"; for sqlite only DBName is used, as a file path.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Debug    bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
	Seed       bool
}

// LedgerConfig holds fee ledger settings.
type LedgerConfig struct {
	AllowOverpayment  bool
	AllocationRetries int
	Timezone          string
}

// WorkerConfig holds cron schedules for the background worker.
type WorkerConfig struct {
	RefreshSchedule  string
	ReminderSchedule string
}

// NotifyConfig holds notification provider settings.
type NotifyConfig struct {
	SendGridKey string
	FromName    string
	FromEmail   string
	SMSEnabled  bool
}

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.DBName
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Location returns the ledger timezone, falling back to UTC when it cannot be loaded.
func (l LedgerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "schools"),
			Password: getEnv("DB_PASSWORD", "schools123"),
			DBName:   getEnv("DB_NAME", "schools"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Debug:    getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Dev:        getEnvBool("DEV", true),
			Migrations: getEnvBool("MIGRATIONS", false),
			Seed:       getEnvBool("DB_SEED", true),
		},
		Ledger: LedgerConfig{
			AllowOverpayment:  getEnvBool("LEDGER_ALLOW_OVERPAYMENT", false),
			AllocationRetries: getEnvInt("LEDGER_ALLOCATION_RETRIES", 5),
			Timezone:          getEnv("TIMEZONE", "Africa/Monrovia"),
		},
		Worker: WorkerConfig{
			RefreshSchedule:  getEnv("WORKER_REFRESH_SCHEDULE", "0 1 * * *"),
			ReminderSchedule: getEnv("WORKER_REMINDER_SCHEDULE", "0 8 * * MON"),
		},
		Notify: NotifyConfig{
			SendGridKey: getEnv("SENDGRID_API_KEY", ""),
			FromName:    getEnv("NOTIFY_FROM_NAME", "School Office"),
			FromEmail:   getEnv("NOTIFY_FROM_EMAIL", "noreply@school.local"),
			SMSEnabled:  getEnvBool("NOTIFY_SMS", true),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
