package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port    string `yaml:"port" env:"SERVER_PORT"`
		Mode    string `yaml:"mode" env:"SERVER_MODE"`
		BaseURL string `yaml:"base_url" env:"SERVER_BASE_URL"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"smtp"`

	Security struct {
		AllowedEmailDomain       string `yaml:"allowed_email_domain" env:"ALLOWED_EMAIL_DOMAIN"`
		MaxLoginAttempts         int    `yaml:"max_login_attempts" env:"MAX_LOGIN_ATTEMPTS"`
		LockoutDuration          string `yaml:"lockout_duration" env:"LOCKOUT_DURATION"`
		RateLimitRequests        int    `yaml:"rate_limit_requests" env:"RATE_LIMIT_REQUESTS"`
		RateLimitWindow          string `yaml:"rate_limit_window" env:"RATE_LIMIT_WINDOW"`
		EmailActionRateLimit     int    `yaml:"email_action_rate_limit" env:"EMAIL_ACTION_RATE_LIMIT"`
		EmailActionRateWindow    string `yaml:"email_action_rate_window" env:"EMAIL_ACTION_RATE_WINDOW"`
		VerificationTokenExpiry  string `yaml:"verification_token_expiry" env:"VERIFICATION_TOKEN_EXPIRY"`
		PasswordResetTokenExpiry string `yaml:"password_reset_token_expiry" env:"PASSWORD_RESET_TOKEN_EXPIRY"`
	} `yaml:"security"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// Read config file if it exists; env vars still apply without one
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.BaseURL = "http://localhost:8080"

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "jkusa_portal"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	// JWT defaults
	config.JWT.AccessTokenExpiration = "30m"
	config.JWT.RefreshTokenExpiration = "168h"
	config.JWT.Issuer = "portal.jkusa.org"

	// SMTP defaults
	config.SMTP.Port = 587
	config.SMTP.FromName = "JKUSA Portal"
	config.SMTP.FromEmail = "no-reply@jkusa.org"

	// Security defaults
	config.Security.AllowedEmailDomain = "students.jkuat.ac.ke"
	config.Security.MaxLoginAttempts = 5
	config.Security.LockoutDuration = "15m"
	config.Security.RateLimitRequests = 10
	config.Security.RateLimitWindow = "1m"
	config.Security.EmailActionRateLimit = 3
	config.Security.EmailActionRateWindow = "5m"
	config.Security.VerificationTokenExpiry = "24h"
	config.Security.PasswordResetTokenExpiry = "1h"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration":  config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": config.JWT.RefreshTokenExpiration,
		"lockout duration":             config.Security.LockoutDuration,
		"rate limit window":            config.Security.RateLimitWindow,
		"email action rate window":     config.Security.EmailActionRateWindow,
		"verification token expiry":    config.Security.VerificationTokenExpiry,
		"password reset token expiry":  config.Security.PasswordResetTokenExpiry,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Security.MaxLoginAttempts <= 0 {
		return fmt.Errorf("max login attempts must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "production"
}
