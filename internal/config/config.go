package config

import (
	"errors"
	"fmt"
	"time"

	"salon_backend/pkg/utils"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	SMS      SMSConfig
	Admin    AdminConfig
}

// AppConfig holds HTTP server and logging settings.
type AppConfig struct {
	Environment        string
	Port               string
	LogLevel           string
	CORSAllowedOrigins []string
	LoginRateLimit     float64 // requests per second per client IP
	LoginRateBurst     int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

// AuthConfig holds token and password hashing settings.
type AuthConfig struct {
	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int
}

// SMSConfig holds the Hubtel gateway credentials.
type SMSConfig struct {
	APIURL       string
	ClientID     string
	ClientSecret string
	SenderID     string
	Timeout      time.Duration
	MaxRetries   int
}

// AdminConfig seeds the first admin account when the users table is empty.
type AdminConfig struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.LogDebug("No .env file found, using process environment")
	}

	cfg := &Config{
		App: AppConfig{
			Environment:        utils.Getenv("APP_ENV", "development"),
			Port:               utils.Getenv("PORT", "8080"),
			LogLevel:           utils.Getenv("LOG_LEVEL", "info"),
			CORSAllowedOrigins: utils.SplitAndTrim(utils.Getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")),
			LoginRateLimit:     utils.GetenvFloat("LOGIN_RATE_LIMIT", 1),
			LoginRateBurst:     utils.GetenvInt("LOGIN_RATE_BURST", 5),
		},
		Database: DatabaseConfig{
			Host:        utils.Getenv("DB_HOST", "localhost"),
			Port:        utils.Getenv("DB_PORT", "5432"),
			User:        utils.Getenv("DB_USER", "salon_user"),
			Password:    utils.Getenv("DB_PASSWORD", "salon_password"),
			DBName:      utils.Getenv("DB_NAME", "salon_db"),
			SSLMode:     utils.Getenv("DB_SSLMODE", "disable"),
			AutoMigrate: utils.GetenvBool("DB_AUTO_MIGRATE", true),
		},
		Auth: AuthConfig{
			JWTSecret:  utils.Getenv("JWT_SECRET", ""),
			JWTTTL:     utils.GetenvDuration("JWT_TTL", utils.DefaultAccessTokenTTL),
			BcryptCost: utils.GetenvInt("BCRYPT_COST", 10),
		},
		SMS: SMSConfig{
			APIURL:       utils.Getenv("HUBTEL_API_URL", "https://smsc.hubtel.com/v1/messages/send"),
			ClientID:     utils.Getenv("HUBTEL_CLIENT_ID", ""),
			ClientSecret: utils.Getenv("HUBTEL_CLIENT_SECRET", ""),
			SenderID:     utils.Getenv("HUBTEL_SENDER_ID", "SALON&SPA"),
			Timeout:      utils.GetenvDuration("HUBTEL_TIMEOUT", 10*time.Second),
			MaxRetries:   utils.GetenvInt("HUBTEL_MAX_RETRIES", 3),
		},
		Admin: AdminConfig{
			Email:     utils.Getenv("ADMIN_EMAIL", ""),
			Password:  utils.Getenv("ADMIN_PASSWORD", ""),
			FirstName: utils.Getenv("ADMIN_FIRST_NAME", "Salon"),
			LastName:  utils.Getenv("ADMIN_LAST_NAME", "Admin"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.App.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST %d out of range 4..31", c.Auth.BcryptCost)
	}
	return nil
}

// IsDevelopment reports whether pretty console logging should be used.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// SMSEnabled reports whether gateway credentials were provided.
func (c *SMSConfig) SMSEnabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}
