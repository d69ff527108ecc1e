package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Report   ReportConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// JWTConfig holds access token verification settings.
// Tokens are issued by the service desk itself; this service only validates them.
type JWTConfig struct {
	AccessSecret      string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// StorageConfig holds S3-compatible storage settings used to archive exports
type StorageConfig struct {
	Endpoint           string
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	Bucket             string
	UseSSL             bool
	PresignedURLExpiry time.Duration
	// ArchiveRetention is how long archived exports are kept; zero keeps them forever
	ArchiveRetention time.Duration
}

// Enabled reports whether archive storage has been configured
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// ReportConfig holds report pipeline settings
type ReportConfig struct {
	// TimeZone is the IANA zone used to render timestamps and parse plain dates
	TimeZone string
	// AllowedRoles may request reports
	AllowedRoles []string
	// RateLimit is the number of report requests a user may make per RateWindow
	RateLimit  int
	RateWindow time.Duration
}

// Location loads the configured report time zone
func (r ReportConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(r.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", r.TimeZone, err)
	}
	return loc, nil
}

// LogConfig holds logger settings
type LogConfig struct {
	Level     string
	Format    string
	Output    string
	AddSource bool
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			AllowedOrigins:  getListEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			ShutdownTimeout: getSecondsEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "servicedesk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("DB_MAX_CONNS", 10),
			MinConns: getIntEnv("DB_MIN_CONNS", 2),
		},
		JWT: JWTConfig{
			AccessSecret:      getEnv("JWT_ACCESS_SECRET", ""),
			AccessTokenExpiry: getDurationEnv("JWT_ACCESS_EXPIRY", 15*time.Minute),
			Issuer:            getEnv("JWT_ISSUER", "servicedesk"),
		},
		Storage: StorageConfig{
			Endpoint:           getEnv("STORAGE_ENDPOINT", ""),
			Region:             getEnv("STORAGE_REGION", "us-east-1"),
			AccessKeyID:        getEnv("STORAGE_ACCESS_KEY_ID", ""),
			SecretAccessKey:    getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
			Bucket:             getEnv("STORAGE_BUCKET", ""),
			UseSSL:             getBoolEnv("STORAGE_USE_SSL", false),
			PresignedURLExpiry: getDurationEnv("STORAGE_PRESIGNED_URL_EXPIRY", 60*time.Minute),
			ArchiveRetention:   time.Duration(getIntEnv("STORAGE_ARCHIVE_RETENTION_DAYS", 90)) * 24 * time.Hour,
		},
		Report: ReportConfig{
			TimeZone:     getEnv("REPORT_TIMEZONE", "Asia/Jakarta"),
			AllowedRoles: getListEnv("REPORT_ALLOWED_ROLES", []string{"ADMIN", "AUDITOR"}),
			RateLimit:    getIntEnv("REPORT_RATE_LIMIT", 30),
			RateWindow:   getDurationEnv("REPORT_RATE_WINDOW", 1*time.Minute),
		},
		Log: LogConfig{
			Level:     getEnv("LOG_LEVEL", "info"),
			Format:    getEnv("LOG_FORMAT", "json"),
			Output:    getEnv("LOG_OUTPUT", "stdout"),
			AddSource: getBoolEnv("LOG_ADD_SOURCE", false),
		},
	}
}

// Validate checks settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if len(c.Report.AllowedRoles) == 0 {
		return fmt.Errorf("REPORT_ALLOWED_ROLES must not be empty")
	}
	if c.Report.RateLimit <= 0 {
		return fmt.Errorf("REPORT_RATE_LIMIT must be positive, got %d", c.Report.RateLimit)
	}
	if c.Report.RateWindow <= 0 {
		return fmt.Errorf("REPORT_RATE_WINDOW must be positive, got %s", c.Report.RateWindow)
	}
	if _, err := c.Report.Location(); err != nil {
		return err
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return "host=" + d.Host +
		" port=" + d.Port +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.DBName +
		" sslmode=" + d.SSLMode
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv returns duration from environment variable (in minutes) or default
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated variable, dropping empty entries
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
