package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinBcryptCost is the lowest work factor accepted for password hashing.
const MinBcryptCost = 10

// Config holds all configuration for the application
type Config struct {
	// Environment name ("development", "production", ...)
	Env string

	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Auth        AuthConfig
	GoogleOAuth GoogleOAuthConfig
	CORS        CORSConfig
	Log         LogConfig
	RateLimit   RateLimitConfig

	warnings []string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	// StaticDir, when set, is served as a single-page app for non-API paths.
	StaticDir string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL          string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxConns     int32
	MinConns     int32
	MaxLifetime  time.Duration
	ConnTimeout  time.Duration
	QueryTimeout time.Duration
	PingInterval time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
	StateTokenTTL  time.Duration
}

// AuthConfig holds password and access-policy settings
type AuthConfig struct {
	BcryptCost int
	// UniformLoginErrors reports unknown emails the same way as wrong passwords.
	UniformLoginErrors bool
	// ListRequiresAuth gates GET /api/contact/userid/{id} behind the session token.
	ListRequiresAuth bool
}

// GoogleOAuthConfig holds Google OAuth configuration
type GoogleOAuthConfig struct {
	ClientID            string
	ClientSecret        string
	RedirectURL         string
	FrontendCallbackURL string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
	// ReflectOrigin allows any requesting origin (production default when unset).
	ReflectOrigin  bool
	AllowedMethods []string
	AllowedHeaders []string
}

// RateLimitConfig limits credential endpoints per client IP
type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		// Try loading from parent directory when started from cmd/
		_ = godotenv.Load("../.env")
	}

	config := &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:            getEnv("PORT", "5000"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
			StaticDir:       getEnv("STATIC_DIR", ""),
		},
		Database: DatabaseConfig{
			URL:          getEnv("DATABASE_URL", ""),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_NAME", "contacts"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxConns:     getInt32Env("DB_MAX_CONNS", 5),
			MinConns:     getInt32Env("DB_MIN_CONNS", 0),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", time.Hour),
			ConnTimeout:  getDurationEnv("DB_CONN_TIMEOUT", 8*time.Second),
			QueryTimeout: getDurationEnv("DB_QUERY_TIMEOUT", 5*time.Second),
			PingInterval: getDurationEnv("DB_PING_INTERVAL", 5*time.Second),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT", getEnv("JWT_SECRET", "")),
			StateTokenTTL: getDurationEnv("OAUTH_STATE_TTL", 10*time.Minute),
		},
		Auth: AuthConfig{
			BcryptCost:         int(getInt32Env("BCRYPT_COST", MinBcryptCost)),
			UniformLoginErrors: getBoolEnv("LOGIN_UNIFORM_ERRORS", false),
			ListRequiresAuth:   getBoolEnv("CONTACTS_LIST_REQUIRE_AUTH", false),
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:            getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret:        getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:         getEnv("GOOGLE_REDIRECT_URL", "http://localhost:5000/api/user/google/callback"),
			FrontendCallbackURL: getEnv("GOOGLE_FRONTEND_CALLBACK_URL", "http://localhost:5173/login"),
		},
		CORS: CORSConfig{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Auth", "Authorization"},
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("RL_ENABLED", true),
			Limit:   int(getInt32Env("RL_IP_LIMIT", 20)),
			Window:  getDurationEnv("RL_IP_WINDOW", time.Minute),
		},
	}

	ttl, err := ParseTTL(getEnv("JWT_EXPIRES_IN", "1d"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	config.JWT.AccessTokenTTL = ttl

	config.CORS.AllowedOrigins, config.CORS.ReflectOrigin = parseCORSOrigins(os.Getenv("CORS_ORIGINS"), config.IsProduction())

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate checks the configuration. Missing optional values are recorded
// as warnings; only unusable values are errors.
func (c *Config) Validate() error {
	c.warnings = nil

	if c.Server.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.JWT.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive")
	}

	if c.RateLimit.Enabled && (c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("RL_IP_LIMIT and RL_IP_WINDOW must be positive when RL_ENABLED is set")
	}

	if c.Auth.BcryptCost < MinBcryptCost {
		c.warn(fmt.Sprintf("BCRYPT_COST=%d is below %d, using %d", c.Auth.BcryptCost, MinBcryptCost, MinBcryptCost))
		c.Auth.BcryptCost = MinBcryptCost
	}

	if c.Database.URL == "" && c.Database.Password == "" {
		c.warn("DATABASE_URL is not set. Create .env (copy from .env.example) so the API can connect to Postgres.")
	}

	if c.JWT.Secret == "" {
		c.warn("JWT is not set. Create .env (copy from .env.example) so login can sign tokens.")
	}

	if !c.IsGoogleOAuthConfigured() {
		c.warn("Google OAuth credentials not configured. Google login will not work.")
	}

	return nil
}

// Warnings returns the non-fatal problems found by Validate.
func (c *Config) Warnings() []string {
	return c.warnings
}

func (c *Config) warn(msg string) {
	c.warnings = append(c.warnings, msg)
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&connect_timeout=%d",
		url.QueryEscape(c.Database.User),
		url.QueryEscape(c.Database.Password),
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
		int(c.Database.ConnTimeout.Seconds()),
	)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// IsGoogleOAuthConfigured checks if Google OAuth is properly configured
func (c *Config) IsGoogleOAuthConfigured() bool {
	return c.GoogleOAuth.ClientID != "" && c.GoogleOAuth.ClientSecret != ""
}

// ParseTTL parses token lifetimes. It accepts Go durations ("90m"),
// whole days ("1d", "7d") and bare seconds ("3600").
func ParseTTL(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("invalid seconds %q", value)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}
	return d, nil
}

var devOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

// parseCORSOrigins returns the allowed origin list and whether any origin
// should be reflected back.
func parseCORSOrigins(raw string, production bool) ([]string, bool) {
	if strings.TrimSpace(raw) == "" {
		if production {
			return nil, true
		}
		return append([]string(nil), devOrigins...), false
	}
	if strings.TrimSpace(raw) == "*" {
		return []string{"*"}, false
	}
	return splitList(raw), false
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt32Env(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intValue)
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
